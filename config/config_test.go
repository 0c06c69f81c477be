package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultTotal != 5 {
		t.Fatalf("expected default total 5, got %d", cfg.DefaultTotal)
	}
	if cfg.QuotaBackend != BackendMemory {
		t.Fatalf("expected memory backend, got %s", cfg.QuotaBackend)
	}
	if cfg.StoreTimeout != 2*time.Second {
		t.Fatalf("expected 2s timeout, got %s", cfg.StoreTimeout)
	}
	if cfg.ResetSchedule != "" {
		t.Fatalf("reset should be disabled by default, got %q", cfg.ResetSchedule)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GATE_QUOTA_TOTAL", "10")
	t.Setenv("GATE_QUOTA_BACKEND", "redis")
	t.Setenv("GATE_STORE_TIMEOUT", "500ms")
	t.Setenv("GATE_RESET_SCHEDULE", "0 0 * * *")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultTotal != 10 || cfg.QuotaBackend != BackendRedis {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.StoreTimeout != 500*time.Millisecond {
		t.Fatalf("timeout override not applied: %s", cfg.StoreTimeout)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("GATE_QUOTA_TOTAL", "zero")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a bad total")
	}
	t.Setenv("GATE_QUOTA_TOTAL", "5")
	t.Setenv("GATE_QUOTA_BACKEND", "dynamo")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}
