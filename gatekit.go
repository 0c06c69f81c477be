// Package gatekit assembles the enforcement gate from configuration: a quota
// backend (in-process or Redis) behind the instrumentation decorator, the
// entitlement resolver and admin service, the decision engine, and the
// optional reset sweeper.
package gatekit

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/gatekit/clock"
	"github.com/open-rails/gatekit/config"
	"github.com/open-rails/gatekit/enforce"
	"github.com/open-rails/gatekit/entitlement"
	memoryentitlement "github.com/open-rails/gatekit/entitlement/memory"
	pgentitlement "github.com/open-rails/gatekit/entitlement/postgres"
	"github.com/open-rails/gatekit/quota"
	instrumentedquota "github.com/open-rails/gatekit/quota/instrumented"
	memoryquota "github.com/open-rails/gatekit/quota/memory"
	redisquota "github.com/open-rails/gatekit/quota/redis"
	"github.com/open-rails/gatekit/reset"
)

// Deps are the external clients the host application owns.
type Deps struct {
	// Redis is required when the redis quota backend is configured.
	Redis *redis.Client
	// Postgres backs the entitlement record store; nil falls back to the
	// in-memory store (single instance only).
	Postgres *pgxpool.Pool
	Logger   *logrus.Logger
	Clock    clock.Clock
}

// Gate bundles the wired components the boundary layer consumes.
type Gate struct {
	Engine       *enforce.Engine
	Entitlements *entitlement.Service
	QuotaStore   quota.Store
	// Sweeper is nil unless a reset schedule was configured. The host
	// calls Start/Stop around its own lifecycle.
	Sweeper *reset.Sweeper
}

// New wires a Gate from configuration.
func New(cfg config.Config, deps Deps) (*Gate, error) {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.Default()
	}

	var backend quota.Store
	switch cfg.QuotaBackend {
	case config.BackendRedis:
		if deps.Redis == nil {
			return nil, errors.New("gatekit: redis backend configured without a redis client")
		}
		backend = redisquota.New(deps.Redis, "", cfg.DefaultTotal)
	default:
		backend = memoryquota.New(cfg.DefaultTotal)
	}
	store, err := instrumentedquota.New(backend)
	if err != nil {
		return nil, err
	}

	var recs entitlement.Store
	if deps.Postgres != nil {
		recs = pgentitlement.New(deps.Postgres, cfg.EntitlementSchema)
	} else {
		recs = memoryentitlement.New()
	}

	g := &Gate{
		Engine: enforce.NewEngine(enforce.EngineConfig{
			Resolver: entitlement.NewResolver(entitlement.ResolverConfig{Store: recs, Logger: log}),
			Quota:    enforce.NewQuotaService(store, cfg.StoreTimeout, log),
			Clock:    clk,
			Logger:   log,
		}),
		Entitlements: entitlement.NewService(recs, clk, log),
		QuotaStore:   store,
	}
	if cfg.ResetSchedule != "" {
		// The decorator hides the Resetter; sweep the backend directly.
		sw, err := reset.NewSweeper(cfg.ResetSchedule, backend, log)
		if err != nil {
			return nil, err
		}
		g.Sweeper = sw
	}
	return g, nil
}
