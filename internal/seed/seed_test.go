package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barrens-blog/barrens/internal/auth"
	"github.com/barrens-blog/barrens/internal/models"
)

const seedYAML = `
users:
  - username: thrall
    email: thrall@orgrimmar.gov
    password: lok-tar-ogar
    role: admin
  - username: grunt
    email: grunt@crossroads.gov
    password: zug-zug-zug
`

type fakeRegistrar struct {
	existing map[string]bool
	inputs   []auth.RegisterInput
}

func (r *fakeRegistrar) Register(ctx context.Context, in auth.RegisterInput) (*models.User, error) {
	if r.existing[in.Email] {
		return nil, auth.ErrEmailTaken
	}
	r.inputs = append(r.inputs, in)
	role := in.Role
	if role == "" {
		role = models.RoleMember
	}
	return &models.User{Username: in.Username, Email: in.Email, Role: role}, nil
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	file, err := Load(path)
	require.NoError(t, err)
	require.Len(t, file.Users, 2)
	assert.Equal(t, models.RoleAdmin, file.Users[0].Role)
	assert.Equal(t, models.Role(""), file.Users[1].Role)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "empty path", path: ""},
		{name: "wrong extension", path: "seed.json"},
		{name: "missing file", path: "missing.yaml"},
		{name: "bad yaml", path: "bad.yaml", body: "users: [\n"},
		{name: "unknown role", path: "role.yaml", body: "users:\n  - {username: a, email: a@b.c, password: secret1, role: warchief}\n"},
		{name: "no password", path: "pw.yaml", body: "users:\n  - {username: a, email: a@b.c}\n"},
		{name: "no email", path: "mail.yaml", body: "users:\n  - {username: a, password: secret1}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if tt.body != "" {
				path = filepath.Join(t.TempDir(), tt.path)
				require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestApply_SkipsExisting(t *testing.T) {
	file, err := Parse([]byte(seedYAML))
	require.NoError(t, err)

	registrar := &fakeRegistrar{existing: map[string]bool{"grunt@crossroads.gov": true}}
	created, err := Apply(context.Background(), file, registrar, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Len(t, registrar.inputs, 1)
	assert.Equal(t, "thrall", registrar.inputs[0].Username)
	assert.Equal(t, models.RoleAdmin, registrar.inputs[0].Role)
}
