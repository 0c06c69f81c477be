package testkit

import (
	"context"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/open-rails/gatekit/entitlement"
)

// PremiumContext returns a ctx carrying a premium assertion, as the boundary
// layer would set after token verification.
func PremiumContext(ctx context.Context) context.Context {
	return entitlement.WithPremiumClaim(ctx, true)
}

// FreeContext returns a ctx carrying an explicit non-premium assertion.
func FreeContext(ctx context.Context) context.Context {
	return entitlement.WithPremiumClaim(ctx, false)
}

// PremiumClaims builds the map claims of a verified premium token for the
// given user, for driving the gin adapter in tests.
func PremiumClaims(user uuid.UUID) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":     user.String(),
		"premium": true,
	}
}

// OperatorClaims builds map claims carrying the operator role.
func OperatorClaims(user uuid.UUID) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   user.String(),
		"roles": []any{"operator"},
	}
}
