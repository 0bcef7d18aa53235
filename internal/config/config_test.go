package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LISTEN_ADDR", "PORT", "DATABASE_PATH", "SESSION_SECRET",
		"GIN_MODE", "UPLOAD_DIR", "UPLOAD_URL_PATH", "CONFIG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "8080" || cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen defaults: %+v", cfg)
	}
	if cfg.DatabasePath != "carelog.db" {
		t.Fatalf("unexpected database path: %s", cfg.DatabasePath)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("unexpected gin mode: %s", cfg.GinMode)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearConfigEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "carelog.yaml")
	content := "port: \"9000\"\ndatabase_path: from-file.db\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_PATH", "from-env.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("expected file port 9000, got %s", cfg.Port)
	}
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("expected listen addr derived from port, got %s", cfg.ListenAddr)
	}
	if cfg.DatabasePath != "from-env.db" {
		t.Fatalf("expected env to win over file, got %s", cfg.DatabasePath)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
