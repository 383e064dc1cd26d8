package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Listen != ":3002" {
		t.Errorf("Listen = %q", cfg.Server.Listen)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("Storage.Type = %q", cfg.Storage.Type)
	}
	if cfg.Canvas.Width != 800 || cfg.Canvas.Height != 600 {
		t.Errorf("Canvas = %dx%d, want 800x600", cfg.Canvas.Width, cfg.Canvas.Height)
	}
	if cfg.Sweep.Cron != "" {
		t.Errorf("Sweep.Cron = %q, want disabled", cfg.Sweep.Cron)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  listen: ":9000"
storage:
  type: sqlite
  data_source_name: gallery.db
likes:
  rps: 2
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STORAGE_TYPE", "pebble")
	t.Setenv("LIKE_BURST", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Listen != ":9000" {
		t.Errorf("Listen = %q, want :9000 from file", cfg.Server.Listen)
	}
	if cfg.Storage.Type != "pebble" {
		t.Errorf("Storage.Type = %q, want env override", cfg.Storage.Type)
	}
	if cfg.Storage.DataSourceName != "gallery.db" {
		t.Errorf("DataSourceName = %q", cfg.Storage.DataSourceName)
	}
	if cfg.Likes.RPS != 2 || cfg.Likes.Burst != 3 {
		t.Errorf("Likes = %v/%d, want 2/3", cfg.Likes.RPS, cfg.Likes.Burst)
	}
	if cfg.Canvas.Background != "#ffffff" {
		t.Errorf("Canvas.Background = %q, want default kept", cfg.Canvas.Background)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("LIKE_RPS", "fast")

	if _, err := Load(""); err == nil {
		t.Error("Load() should reject a non-numeric LIKE_RPS")
	}
}

func TestLoad_LimiterAndIdleSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
likes:
  ip_burst: 7
canvas:
  idle_timeout: 5m
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LIKE_IP_RPS", "1.5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Likes.IPRPS != 1.5 || cfg.Likes.IPBurst != 7 {
		t.Errorf("IP limits = %v/%d, want 1.5/7", cfg.Likes.IPRPS, cfg.Likes.IPBurst)
	}
	if cfg.Canvas.IdleTimeout != 5*time.Minute {
		t.Errorf("IdleTimeout = %v, want 5m", cfg.Canvas.IdleTimeout)
	}
}

func TestLoad_InvalidIdleTimeout(t *testing.T) {
	t.Setenv("CANVAS_IDLE_TIMEOUT", "soon")

	if _, err := Load(""); err == nil {
		t.Error("Load() should reject an unparsable CANVAS_IDLE_TIMEOUT")
	}
}
