package config

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		expected    time.Duration
		shouldError bool
	}{
		{name: "days", value: "30d", expected: 30 * 24 * time.Hour},
		{name: "single day", value: "1d", expected: 24 * time.Hour},
		{name: "hours", value: "12h", expected: 12 * time.Hour},
		{name: "minutes", value: "90m", expected: 90 * time.Minute},
		{name: "whitespace", value: " 7d ", expected: 7 * 24 * time.Hour},
		{name: "bad days", value: "xd", shouldError: true},
		{name: "garbage", value: "soon", shouldError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.value)
			if tt.shouldError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "NODE_ENV", "JWT_SECRET", "JWT_EXPIRES_IN", "COOKIE_EXPIRE", "PORT",
		"DATABASE_URL", "BCRYPT_COST", "SEED_FILE", "REVOCATION_PURGE_SCHEDULE", "CORS_ORIGIN",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Environment != EnvDevelopment {
		t.Errorf("expected development environment, got %q", cfg.Server.Environment)
	}
	if cfg.Server.Port != "5000" {
		t.Errorf("expected port 5000, got %q", cfg.Server.Port)
	}
	if cfg.Auth.TokenTTL != 30*24*time.Hour {
		t.Errorf("expected 30 day token TTL, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.CookieTTL() != 30*24*time.Hour {
		t.Errorf("expected 30 day cookie TTL, got %v", cfg.CookieTTL())
	}
	if !cfg.Auth.GeneratedSecret || len(cfg.Auth.JWTSecret) != 64 {
		t.Errorf("expected a generated 64 char secret, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.RevocationPurgeSchedule != "@every 1h" {
		t.Errorf("unexpected purge schedule %q", cfg.Auth.RevocationPurgeSchedule)
	}
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Errorf("environment predicates disagree with %q", cfg.Server.Environment)
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing in production")
	}

	t.Setenv("JWT_SECRET", "kalimdor")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsProduction() {
		t.Errorf("expected production config")
	}
	if cfg.Auth.GeneratedSecret || cfg.Auth.JWTSecret != "kalimdor" {
		t.Errorf("expected configured secret to be used")
	}
}

func TestLoad_CookieExpireFallback(t *testing.T) {
	t.Setenv("COOKIE_EXPIRE", "not-a-number")
	t.Setenv("JWT_SECRET", "x")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth.CookieExpireDays != 30 {
		t.Errorf("expected fallback of 30 days, got %d", cfg.Auth.CookieExpireDays)
	}
}

func TestLoad_InvalidTokenTTL(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "forever")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid JWT_EXPIRES_IN")
	}
}
