package entitlement

import "context"

type claimKey struct{}

// WithPremiumClaim attaches the premium assertion from an already-verified
// token to ctx. The boundary layer sets this once per request.
func WithPremiumClaim(ctx context.Context, premium bool) context.Context {
	return context.WithValue(ctx, claimKey{}, premium)
}

// PremiumClaimFromContext reads the premium assertion from ctx.
func PremiumClaimFromContext(ctx context.Context) (bool, bool) {
	v, ok := ctx.Value(claimKey{}).(bool)
	return v, ok
}
