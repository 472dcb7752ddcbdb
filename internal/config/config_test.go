package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BASE_URL", "https://api.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://api.example.com" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("unexpected request timeout %v", cfg.RequestTimeout)
	}
	if cfg.NotifyReads || cfg.LegacyDelete {
		t.Fatalf("expected read notifications and legacy delete to be off by default")
	}
	if cfg.ErrorContext != "data service" {
		t.Fatalf("unexpected error context %q", cfg.ErrorContext)
	}
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero request timeout")
	}
}

func TestBaseURLSourceReadsEnvironmentEachCall(t *testing.T) {
	src := NewBaseURLSource(&Config{BaseURL: "https://loaded.example"})

	t.Setenv("BASE_URL", "https://first.example")
	if got := src.BaseURL(); got != "https://first.example" {
		t.Fatalf("BaseURL = %q", got)
	}

	t.Setenv("BASE_URL", "https://second.example")
	if got := src.BaseURL(); got != "https://second.example" {
		t.Fatalf("BaseURL after change = %q", got)
	}
}

func TestBaseURLSourceFallsBackToConfig(t *testing.T) {
	src := NewBaseURLSource(&Config{BaseURL: "https://loaded.example"})
	if _, set := os.LookupEnv("BASE_URL"); set {
		t.Skip("BASE_URL set in the test environment")
	}
	if got := src.BaseURL(); got != "https://loaded.example" {
		t.Fatalf("BaseURL = %q", got)
	}
}
