// Package config loads gate settings from the environment, with a local
// .env file honored in development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/open-rails/gatekit/quota"
)

// Backend selects the quota store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
)

// Config is everything the gate consumes at startup.
type Config struct {
	// DefaultTotal is the credit budget per free user.
	DefaultTotal int
	// QuotaBackend is memory (single instance) or redis (shared).
	QuotaBackend Backend

	RedisAddr     string
	RedisPassword string

	PostgresDSN       string
	EntitlementSchema string

	// StoreTimeout bounds every quota store call.
	StoreTimeout time.Duration

	// ResetSchedule is a cron spec for the periodic quota reset; empty
	// disables the sweeper.
	ResetSchedule string
}

// Load reads configuration from the environment. A missing .env is not an
// error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DefaultTotal:      quota.DefaultTotal,
		QuotaBackend:      BackendMemory,
		RedisAddr:         getenv("GATE_REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("GATE_REDIS_PASSWORD"),
		PostgresDSN:       os.Getenv("GATE_POSTGRES_DSN"),
		EntitlementSchema: getenv("GATE_ENTITLEMENT_SCHEMA", "billing"),
		StoreTimeout:      2 * time.Second,
		ResetSchedule:     os.Getenv("GATE_RESET_SCHEDULE"),
	}

	if v := os.Getenv("GATE_QUOTA_TOTAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("config: GATE_QUOTA_TOTAL %q: must be a positive integer", v)
		}
		cfg.DefaultTotal = n
	}
	switch b := Backend(getenv("GATE_QUOTA_BACKEND", string(BackendMemory))); b {
	case BackendMemory, BackendRedis:
		cfg.QuotaBackend = b
	default:
		return Config{}, fmt.Errorf("config: GATE_QUOTA_BACKEND %q: want memory or redis", b)
	}
	if v := os.Getenv("GATE_STORE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("config: GATE_STORE_TIMEOUT %q: want a positive duration", v)
		}
		cfg.StoreTimeout = d
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
