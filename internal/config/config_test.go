package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != "8600" {
		t.Errorf("expected default port 8600, got %s", cfg.Server.Port)
	}
	if cfg.Storage.PrimaryPath != "/storage/emulated/0" {
		t.Errorf("unexpected primary path %s", cfg.Storage.PrimaryPath)
	}
	if len(cfg.Storage.MountBases) != 2 {
		t.Errorf("expected 2 default mount bases, got %v", cfg.Storage.MountBases)
	}
	if cfg.Storage.QueueSize != 64 {
		t.Errorf("expected default queue size 64, got %d", cfg.Storage.QueueSize)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("rate limiting should default to enabled")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("MOUNT_BASES", "/media,/run/media")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != "9100" {
		t.Errorf("expected port 9100, got %s", cfg.Server.Port)
	}
	if len(cfg.Storage.MountBases) != 2 || cfg.Storage.MountBases[0] != "/media" {
		t.Errorf("unexpected mount bases %v", cfg.Storage.MountBases)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
}

func TestFileOverlayWinsOverEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "server:\n  port: \"9200\"\nstorage:\n  queue_size: 8\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "9100")
	t.Setenv("STORAGEBRIDGE_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != "9200" {
		t.Errorf("file overlay should win, got port %s", cfg.Server.Port)
	}
	if cfg.Storage.QueueSize != 8 {
		t.Errorf("expected queue size 8, got %d", cfg.Storage.QueueSize)
	}
	// Untouched fields keep their env/default values.
	if cfg.Storage.PrimaryPath != "/storage/emulated/0" {
		t.Errorf("overlay clobbered primary path: %s", cfg.Storage.PrimaryPath)
	}
}

func TestLoadOrDefaultBadFile(t *testing.T) {
	t.Setenv("STORAGEBRIDGE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := LoadOrDefault()
	if cfg.Server.Port != "8600" {
		t.Errorf("expected default config, got port %s", cfg.Server.Port)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("unexpected default host %s", cfg.Server.Host)
	}
	if cfg.RateLimit.RequestsPerSecond != 100 || cfg.RateLimit.Burst != 200 {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
}
