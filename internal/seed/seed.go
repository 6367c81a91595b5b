package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/barrens-blog/barrens/internal/auth"
	"github.com/barrens-blog/barrens/internal/logger"
	"github.com/barrens-blog/barrens/internal/models"
)

var (
	ErrInvalidSeedPath = errors.New("invalid seed file path")
	ErrInvalidAccount  = errors.New("invalid seed account")
)

// File lists accounts to provision at startup
type File struct {
	Users []Account `yaml:"users"`
}

// Account is one seeded user
type Account struct {
	Username string      `yaml:"username"`
	Email    string      `yaml:"email"`
	Password string      `yaml:"password"`
	Role     models.Role `yaml:"role,omitempty"`
	Avatar   string      `yaml:"avatar,omitempty"`
}

// Registrar creates accounts; *auth.Verifier satisfies it
type Registrar interface {
	Register(ctx context.Context, in auth.RegisterInput) (*models.User, error)
}

// Load reads and validates a seed file
func Load(path string) (*File, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates seed YAML
func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: path cannot be empty", ErrInvalidSeedPath)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%w: path must have .yaml or .yml extension", ErrInvalidSeedPath)
	}
	return nil
}

// Validate checks every account carries credentials and a known role
func (f *File) Validate() error {
	for i, a := range f.Users {
		switch {
		case strings.TrimSpace(a.Username) == "":
			return fmt.Errorf("%w: users[%d] has no username", ErrInvalidAccount, i)
		case strings.TrimSpace(a.Email) == "":
			return fmt.Errorf("%w: users[%d] has no email", ErrInvalidAccount, i)
		case a.Password == "":
			return fmt.Errorf("%w: users[%d] has no password", ErrInvalidAccount, i)
		case a.Role != "" && !a.Role.Valid():
			return fmt.Errorf("%w: users[%d] has unknown role %q", ErrInvalidAccount, i, a.Role)
		}
	}
	return nil
}

// Apply registers every account that does not exist yet and returns how many were created
func Apply(ctx context.Context, file *File, registrar Registrar, zlog zerolog.Logger) (int, error) {
	log := logger.Component(zlog, "seed")

	created := 0
	for _, a := range file.Users {
		user, err := registrar.Register(ctx, auth.RegisterInput{
			Username: a.Username,
			Email:    a.Email,
			Password: a.Password,
			Avatar:   a.Avatar,
			Role:     a.Role,
		})
		if errors.Is(err, auth.ErrDuplicateIdentity) {
			log.Debug().Str("username", a.Username).Msg("Seed account already exists")
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to seed %s: %w", a.Username, err)
		}

		created++
		log.Info().Str("user_id", user.ID).Str("username", user.Username).Str("role", string(user.Role)).Msg("Seeded account")
	}
	return created, nil
}
