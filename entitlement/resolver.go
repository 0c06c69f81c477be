package entitlement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ResolverConfig configures premium resolution.
type ResolverConfig struct {
	Store  Store
	Logger *logrus.Logger
	// GracePeriod extends record expiry checks. Zero means the strict
	// active/trialing comparison; nothing in this module sets it.
	GracePeriod time.Duration
}

// Resolver decides premium/free. Precedence: the authoritative record wins
// when it grants premium; otherwise a premium assertion on the authenticated
// claims wins, so a store outage or a stale record never locks out a paying
// user; otherwise free.
type Resolver struct {
	store Store
	log   *logrus.Logger
	grace time.Duration
}

// NewResolver builds a resolver. A nil logger falls back to the logrus
// standard logger.
func NewResolver(cfg ResolverConfig) *Resolver {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{store: cfg.Store, log: log, grace: cfg.GracePeriod}
}

// IsPremium resolves the user's tier at the given instant. It never returns
// an error: lookup failures degrade to the claim fallback and then to free.
func (r *Resolver) IsPremium(ctx context.Context, user uuid.UUID, now time.Time) bool {
	if r.store != nil {
		rec, err := r.store.Get(ctx, user)
		switch {
		case err == nil:
			if rec.PremiumAt(now.Add(-r.grace)) {
				return true
			}
		case !errors.Is(err, ErrNotFound):
			r.log.WithError(err).WithField("user_id", user).
				Warn("entitlement record lookup failed, falling back to claims")
		}
	}
	if premium, ok := PremiumClaimFromContext(ctx); ok && premium {
		// The claim path bypasses the authoritative record; leave a trail.
		r.log.WithFields(logrus.Fields{
			"user_id": user,
			"source":  "claim",
		}).Info("premium resolved from authenticated claim")
		return true
	}
	return false
}
