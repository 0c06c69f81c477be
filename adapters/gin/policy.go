package gategin

// Policy carries the per-route enforcement flags, resolved once at router
// construction and passed in as plain data.
type Policy struct {
	SkipQuota        bool
	PremiumOnly      bool
	AnonymousAllowed bool
}

// PublicPolicy admits anyone without touching quota.
func PublicPolicy() Policy { return Policy{AnonymousAllowed: true} }

// MeteredPolicy admits authenticated users, consuming free-tier quota.
func MeteredPolicy() Policy { return Policy{} }

// PremiumPolicy admits premium users only.
func PremiumPolicy() Policy { return Policy{PremiumOnly: true} }
