package enforce

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/gatekit/clock"
	"github.com/open-rails/gatekit/entitlement"
)

// Engine is the single enforcement entry point, called once per admissible
// request. It is stateless and holds no lock across calls; all mutable state
// lives in the quota store, partitioned by user.
type Engine struct {
	entitlements *entitlement.Resolver
	quota        *QuotaService
	clk          clock.Clock
	log          *logrus.Logger
}

// EngineConfig wires the engine's collaborators.
type EngineConfig struct {
	Resolver *entitlement.Resolver
	Quota    *QuotaService
	Clock    clock.Clock
	Logger   *logrus.Logger
}

// NewEngine builds an engine. A nil clock uses the system clock; a nil logger
// uses the logrus standard logger.
func NewEngine(cfg EngineConfig) *Engine {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Default()
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{entitlements: cfg.Resolver, quota: cfg.Quota, clk: clk, log: log}
}

// Evaluate runs the short-circuiting admission algorithm. Normal denials
// (unauthenticated, premium-required, exhausted) are ordinary return values,
// never errors. The premium path returns before any store interaction, so a
// degraded quota backend cannot touch it.
func (e *Engine) Evaluate(ctx context.Context, req Request) Decision {
	now := req.Now
	if now.IsZero() {
		now = e.clk.Now()
	}

	if req.AnonymousAllowed || req.SkipQuota {
		return e.emit(req.User, Decision{Allowed: true, Reason: ReasonAllowed})
	}
	if req.User == uuid.Nil {
		return e.emit(req.User, Decision{Reason: ReasonUnauthenticated})
	}

	premium := e.entitlements.IsPremium(ctx, req.User, now)
	if req.PremiumOnly && !premium {
		return e.emit(req.User, Decision{Reason: ReasonPremiumRequired})
	}
	if premium {
		return e.emit(req.User, Decision{Allowed: true, Reason: ReasonBypassed, Premium: true})
	}

	res := e.quota.TryConsume(ctx, req.User, 1)
	if !res.Allowed {
		return e.emit(req.User, Decision{Reason: ReasonQuotaExhausted, RemainingAfter: res.Remaining})
	}
	return e.emit(req.User, Decision{
		Allowed:        true,
		Reason:         ReasonAllowed,
		RemainingAfter: res.Remaining,
		QuotaApplied:   true,
	})
}

func (e *Engine) emit(user uuid.UUID, d Decision) Decision {
	e.log.WithFields(logrus.Fields{
		"user_id":   user,
		"reason":    d.Reason,
		"allowed":   d.Allowed,
		"premium":   d.Premium,
		"consumed":  d.QuotaApplied,
		"remaining": d.RemainingAfter,
	}).Debug("enforcement decision")
	return d
}
