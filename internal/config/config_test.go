package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("RESET_DELAY_SEC", "")
	t.Setenv("SWEEP_INTERVAL_SEC", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":3000" {
		t.Fatalf("listen addr %q", cfg.ListenAddr)
	}
	if cfg.ResetDelay != 5*time.Second || cfg.SweepInterval != 5*time.Minute {
		t.Fatalf("timers %v / %v", cfg.ResetDelay, cfg.SweepInterval)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("origins %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("RESET_DELAY_SEC", "2")
	t.Setenv("SWEEP_INTERVAL_SEC", "60")
	t.Setenv("ALLOWED_ORIGINS", "https://example.com, http://localhost:*,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("listen addr %q", cfg.ListenAddr)
	}
	if cfg.ResetDelay != 2*time.Second || cfg.SweepInterval != time.Minute {
		t.Fatalf("timers %v / %v", cfg.ResetDelay, cfg.SweepInterval)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://localhost:*" {
		t.Fatalf("origins %v", cfg.AllowedOrigins)
	}
}

func TestListenAddrBeatsPort(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("LISTEN_ADDR", "127.0.0.1:9999")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9999" {
		t.Fatalf("listen addr %q", cfg.ListenAddr)
	}
}
