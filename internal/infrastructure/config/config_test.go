package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testSecret is long enough to pass the 32-character minimum.
const testSecret = "test-secret-0123456789-0123456789-ok"

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
security:
  jwt:
    secret: "`+testSecret+`"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("api.port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Database.Path != "./data/patra.db" {
		t.Errorf("database.path = %q, want default", cfg.Database.Path)
	}
	if cfg.Security.JWT.Algorithm != "HS256" {
		t.Errorf("jwt.algorithm = %q, want HS256", cfg.Security.JWT.Algorithm)
	}
	if cfg.Security.JWT.AccessTokenTTL != 20 {
		t.Errorf("jwt.access_token_ttl = %d, want 20", cfg.Security.JWT.AccessTokenTTL)
	}
	if cfg.TokenTTL() != 20*time.Minute {
		t.Errorf("TokenTTL() = %v, want 20m", cfg.TokenTTL())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load() should fail for missing file")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
security:
  jwt:
    secret: "`+testSecret+`"
`)

	t.Setenv("PATRA_DATABASE_PATH", "/tmp/override.db")
	t.Setenv("PATRA_API_PORT", "9090")
	t.Setenv("PATRA_JWT_TTL_MINUTES", "45")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("database.path = %q, want env override", cfg.Database.Path)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("api.port = %d, want 9090", cfg.API.Port)
	}
	if cfg.Security.JWT.AccessTokenTTL != 45 {
		t.Errorf("jwt.access_token_ttl = %d, want 45", cfg.Security.JWT.AccessTokenTTL)
	}
}

func TestValidate_MissingSecret(t *testing.T) {
	cfg := defaultConfig()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should fail without a signing secret")
	}
	if !strings.Contains(err.Error(), "security.jwt.secret is required") {
		t.Errorf("error = %v, want missing-secret message", err)
	}
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.JWT.Secret = "too-short"

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject secrets shorter than 32 characters")
	}
}

func TestValidate_UnsupportedAlgorithm(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.JWT.Secret = testSecret
	cfg.Security.JWT.Algorithm = "RS256"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should reject non-HS256 algorithms")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Errorf("error = %v, want unsupported-algorithm message", err)
	}
}

func TestValidate_NonPositiveTTL(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.JWT.Secret = testSecret
	cfg.Security.JWT.AccessTokenTTL = 0

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject a non-positive token TTL")
	}
}
