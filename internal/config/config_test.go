package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Problems.BaseURL != "http://localhost:8000" {
		t.Fatalf("base url = %q", cfg.Problems.BaseURL)
	}
	if cfg.Problems.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v, want 5s", cfg.Problems.Timeout)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.SQLitePath != "little_toeic.db" {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Tracker.Key != "little_toeic_stats" {
		t.Fatalf("tracker key = %q", cfg.Tracker.Key)
	}
	if cfg.CLI.MaxInvalidAnswers != 3 {
		t.Fatalf("max invalid answers = %d, want 3", cfg.CLI.MaxInvalidAnswers)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PROBLEMS_BASE_URL", "http://problems.test")
	t.Setenv("PROBLEMS_TIMEOUT", "750ms")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("TRACKER_TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Problems.BaseURL != "http://problems.test" {
		t.Fatalf("base url = %q", cfg.Problems.BaseURL)
	}
	if cfg.Problems.Timeout != 750*time.Millisecond {
		t.Fatalf("timeout = %v", cfg.Problems.Timeout)
	}
	if cfg.Store.Driver != "memory" {
		t.Fatalf("driver = %q", cfg.Store.Driver)
	}
	loc, err := cfg.Tracker.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("location = (%v, %v)", loc, err)
	}
}

func TestLoadLegacyFrontendURL(t *testing.T) {
	t.Setenv("VITE_API_URL", "http://legacy.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Problems.BaseURL != "http://legacy.test" {
		t.Fatalf("base url = %q, want legacy url", cfg.Problems.BaseURL)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "floppy")

	_, err := Load()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestTrackerLocationInvalid(t *testing.T) {
	tracker := Tracker{Timezone: "Mars/Olympus"}
	if _, err := tracker.Location(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
