package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

// clearEnv blanks the variables Load reads so the host environment cannot leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "DATABASE_DRIVER", "DATABASE_URL", "STORAGE_DRIVER", "S3_BUCKET", "JWT_SECRET", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
database:
  driver: memory
jwt:
  secret: yaml-secret
  expiry: 2h
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.JWT.Secret != "yaml-secret" {
		t.Errorf("expected yaml secret, got %q", cfg.JWT.Secret)
	}
	if cfg.JWT.Expiry != 2*time.Hour {
		t.Errorf("expected 2h expiry, got %v", cfg.JWT.Expiry)
	}
	// unset values keep their defaults
	if cfg.JWT.ResetExpiry != 15*time.Minute {
		t.Errorf("expected default reset expiry, got %v", cfg.JWT.ResetExpiry)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("expected memory driver, got %q", cfg.Database.Driver)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
jwt:
  secret: yaml-secret
`)
	t.Setenv("PORT", "7000")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/photos")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("env should override yaml: expected 7000, got %d", cfg.Server.Port)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Errorf("expected env secret, got %q", cfg.JWT.Secret)
	}
	if got := cfg.Database.DSN(); got != "postgres://u:p@db:5432/photos" {
		t.Errorf("expected DATABASE_URL as DSN, got %q", got)
	}
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "only-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing jwt secret")
	}
}

func TestLoad_InvalidPortEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("PORT", "eighty")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for invalid PORT")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := Default()
	cfg.JWT.Secret = "s"
	cfg.Database.Driver = "mongo"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestDSN_FromParts(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: 1, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	want := "host=h port=1 user=u password=p dbname=d sslmode=disable"
	if got := db.DSN(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestValidate_S3NeedsBucket(t *testing.T) {
	cfg := Default()
	cfg.JWT.Secret = "s"
	cfg.Storage.Driver = StorageS3

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for s3 storage without bucket")
	}

	cfg.AWS.S3Bucket = "photos"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
