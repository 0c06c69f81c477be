// Package enforce evaluates one inbound request against entitlement and
// quota state and returns a Decision for the boundary layer to render.
package enforce

import (
	"time"

	"github.com/google/uuid"
)

// Reason tags why a Decision came out the way it did. Every branch of the
// engine emits a distinct value so dashboards can tell "blocked by design"
// from "blocked by backend degradation".
type Reason string

const (
	ReasonAllowed         Reason = "allowed"
	ReasonBypassed        Reason = "bypassed"
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonPremiumRequired Reason = "premium_required"
	ReasonQuotaExhausted  Reason = "quota_exhausted"
)

// Request is the engine's input, resolved once by the boundary layer. Policy
// flags are plain data so the core never depends on any route-annotation
// mechanism.
type Request struct {
	// User is uuid.Nil for anonymous callers.
	User uuid.UUID

	SkipQuota        bool
	PremiumOnly      bool
	AnonymousAllowed bool

	// Now overrides the engine clock when non-zero.
	Now time.Time
}

// Decision is the pure value produced once per evaluated request. It is never
// persisted.
type Decision struct {
	Allowed        bool
	RemainingAfter int
	Reason         Reason
	Premium        bool
	// QuotaApplied reports whether a credit was actually consumed, so the
	// boundary only exposes remaining-count headers on the free tier.
	QuotaApplied bool
}
