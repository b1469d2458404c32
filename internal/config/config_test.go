package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := []byte(`
server:
  port: 9090
database:
  dsn: postgres://localhost/tips
auth:
  secret: file-secret
platform:
  owner: OWNER
  fee_basis_points: 250
`)
	if err := os.WriteFile(path, doc, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "")
	t.Setenv("PLATFORM_FEE_BASIS_POINTS", "300")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Platform.Owner != "OWNER" {
		t.Fatalf("owner = %q", cfg.Platform.Owner)
	}
	// Environment wins over the file.
	if cfg.Platform.FeeBasisPoints != 300 {
		t.Fatalf("fee bps = %d, want 300", cfg.Platform.FeeBasisPoints)
	}
	// Untouched values keep their defaults.
	if cfg.Platform.MaxTipAmount != 1_000_000_000_000 {
		t.Fatalf("max tip = %d", cfg.Platform.MaxTipAmount)
	}
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	t.Setenv("PLATFORM_OWNER", "OWNER")
	t.Setenv("AUTH_SECRET", "env-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Platform.Owner != "OWNER" || cfg.Auth.Secret != "env-secret" {
		t.Fatalf("env values not applied: %+v", cfg)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("default port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadRequiresOwner(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	t.Setenv("PLATFORM_OWNER", "")
	t.Setenv("AUTH_SECRET", "env-secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing owner")
	}
}
