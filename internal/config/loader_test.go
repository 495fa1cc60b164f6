package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != ":8086" {
		t.Errorf("expected default addr :8086, got %s", cfg.Addr)
	}
	if cfg.RefreshStream != "matches.refresh" {
		t.Errorf("expected default stream, got %s", cfg.RefreshStream)
	}
	if cfg.RefreshCooldown() != 5*time.Minute {
		t.Errorf("expected 5m cooldown, got %s", cfg.RefreshCooldown())
	}
	if cfg.StaleAfter() != 30*time.Minute {
		t.Errorf("expected 30m staleness threshold, got %s", cfg.StaleAfter())
	}
	if cfg.PrematchHorizon() != 48*time.Hour {
		t.Errorf("expected 48h horizon, got %s", cfg.PrematchHorizon())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MATCHFEED_ADDR", ":9099")
	t.Setenv("MATCHFEED_REDIS_URL", "redis://cache:6379")
	t.Setenv("MATCHFEED_STALE_AFTER_MINUTES", "15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != ":9099" {
		t.Errorf("expected env addr, got %s", cfg.Addr)
	}
	if cfg.RedisURL != "redis://cache:6379" {
		t.Errorf("expected env redis url, got %s", cfg.RedisURL)
	}
	if cfg.StaleAfter() != 15*time.Minute {
		t.Errorf("expected 15m staleness threshold, got %s", cfg.StaleAfter())
	}
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("addr: \":7000\"\nrefresh_cooldown_minutes: 10\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("MATCHFEED_CONFIG", path)
	t.Setenv("MATCHFEED_ADDR", ":7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// env beats file, file beats defaults
	if cfg.Addr != ":7001" {
		t.Errorf("expected env to win over file, got %s", cfg.Addr)
	}
	if cfg.RefreshCooldown() != 10*time.Minute {
		t.Errorf("expected file cooldown 10m, got %s", cfg.RefreshCooldown())
	}
}

func TestLoad_RejectsEmptyAddr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \"\"\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("MATCHFEED_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for empty addr")
	}
}

func TestMaxDuration_PerSport(t *testing.T) {
	cfg := New()

	if got := cfg.MaxDuration(1); got != 3*time.Hour {
		t.Errorf("expected 3h for soccer, got %s", got)
	}
	if got := cfg.MaxDuration(99); got != 4*time.Hour {
		t.Errorf("expected 4h default, got %s", got)
	}
}
