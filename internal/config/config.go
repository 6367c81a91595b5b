package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config holds all configuration for the application
type Config struct {
	// Server Configuration
	Server ServerConfig

	// Database Configuration
	Database DatabaseConfig

	// Authentication Configuration
	Auth AuthConfig

	// Logging Configuration
	Logging LoggingConfig

	// Seed Configuration
	Seed SeedConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        string
	Environment string // development, production, test
	CORSOrigin  string // Browser client origin allowed to send credentials
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// AuthConfig holds session token and password hashing configuration
type AuthConfig struct {
	JWTSecret               string
	TokenTTL                time.Duration
	CookieExpireDays        int
	BcryptCost              int
	RevocationPurgeSchedule string // Cron expression for purging expired revocations
	GeneratedSecret         bool   // True when JWTSecret was generated for this process only
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// SeedConfig holds the optional account seed file location
type SeedConfig struct {
	File string
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// IsDevelopment reports whether error details may be exposed to clients
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// CookieTTL returns the lifetime of the session cookie
func (c *Config) CookieTTL() time.Duration {
	return time.Duration(c.Auth.CookieExpireDays) * 24 * time.Hour
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	env := strings.ToLower(getenv("APP_ENV", getenv("NODE_ENV", EnvDevelopment)))

	tokenTTL, err := ParseDuration(getenv("JWT_EXPIRES_IN", "30d"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}
	if tokenTTL <= 0 {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: must be positive")
	}

	cookieDays, err := strconv.Atoi(getenv("COOKIE_EXPIRE", "30"))
	if err != nil || cookieDays <= 0 {
		cookieDays = 30
	}

	bcryptCost, err := strconv.Atoi(getenv("BCRYPT_COST", "12"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	// Secret is mandatory in production; elsewhere a throwaway one keeps local runs simple
	secret := os.Getenv("JWT_SECRET")
	generated := false
	if secret == "" {
		if env == EnvProduction {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		secret, err = randomSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		generated = true
	}

	return &Config{
		Server: ServerConfig{
			Port:        getenv("PORT", "5000"),
			Environment: env,
			CORSOrigin:  getenv("CORS_ORIGIN", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			URL: getenv("DATABASE_URL", "barrens.sqlite"),
		},
		Auth: AuthConfig{
			JWTSecret:               secret,
			TokenTTL:                tokenTTL,
			CookieExpireDays:        cookieDays,
			BcryptCost:              bcryptCost,
			RevocationPurgeSchedule: getenv("REVOCATION_PURGE_SCHEDULE", "@every 1h"),
			GeneratedSecret:         generated,
		},
		Logging: LoggingConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "json"),
		},
		Seed: SeedConfig{
			File: os.Getenv("SEED_FILE"),
		},
	}, nil
}

// ParseDuration accepts Go durations plus a day suffix ("30d", "12h", "90m")
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", value)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(value)
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// 64 hex characters = 32 bytes of randomness
func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
