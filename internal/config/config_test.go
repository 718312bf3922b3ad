package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 8363 {
		t.Errorf("expected default port 8363, got %d", cfg.Server.Port)
	}
	if cfg.Storage.StorageEngine != "sqlite" {
		t.Errorf("expected default engine sqlite, got %s", cfg.Storage.StorageEngine)
	}
	if cfg.Security.SecurityMode != "production" {
		t.Errorf("expected default security mode production, got %s", cfg.Security.SecurityMode)
	}
	if cfg.Security.TokenTTL != 720*time.Hour {
		t.Errorf("expected default token TTL 720h, got %v", cfg.Security.TokenTTL)
	}
	if cfg.Assets.MaxUploadMB != 5 {
		t.Errorf("expected default upload cap 5, got %d", cfg.Assets.MaxUploadMB)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("BANYAN_PORT", "9999")
	t.Setenv("BANYAN_STORAGE_ENGINE", "postgres")
	t.Setenv("BANYAN_TOKEN_TTL", "1h")
	t.Setenv("BANYAN_RATE_LIMIT_RPS", "10.5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Storage.StorageEngine != "postgres" {
		t.Errorf("expected engine postgres, got %s", cfg.Storage.StorageEngine)
	}
	if cfg.Security.TokenTTL != time.Hour {
		t.Errorf("expected TTL 1h, got %v", cfg.Security.TokenTTL)
	}
	if cfg.Security.RateLimitRPS != 10.5 {
		t.Errorf("expected rps 10.5, got %v", cfg.Security.RateLimitRPS)
	}
}

func TestLoadConfig_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv("BANYAN_PORT", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 8363 {
		t.Errorf("expected fallback to default port, got %d", cfg.Server.Port)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banyan.yaml")
	data := []byte(`
server:
  port: 7001
security:
  jwt_secret: file-secret
storage:
  engine: postgres
  postgres_url: postgres://localhost/banyan
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFromFile failed: %v", err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("expected port 7001 from file, got %d", cfg.Server.Port)
	}
	if cfg.Security.JWTSecret != "file-secret" {
		t.Errorf("expected secret from file, got %q", cfg.Security.JWTSecret)
	}
	if cfg.Storage.PostgresURL != "postgres://localhost/banyan" {
		t.Errorf("expected postgres URL from file, got %q", cfg.Storage.PostgresURL)
	}
	// Untouched options keep their defaults.
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected default host, got %s", cfg.Server.Host)
	}
}

func TestLoadConfigFromFile_EnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banyan.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7001\n"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("BANYAN_PORT", "7002")

	cfg, err := LoadConfigFromFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFromFile failed: %v", err)
	}
	if cfg.Server.Port != 7002 {
		t.Errorf("environment must override the file, got %d", cfg.Server.Port)
	}
}

func TestLoadConfigFromFile_Missing(t *testing.T) {
	if _, err := LoadConfigFromFile("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
