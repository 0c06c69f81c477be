package gategin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/gatekit/enforce"
	"github.com/open-rails/gatekit/entitlement"
)

// Enforcer renders enforcement decisions as HTTP responses.
type Enforcer struct {
	engine *enforce.Engine
	limit  int
}

// NewEnforcer wraps an engine. limit is the advertised free-tier total, used
// only for the X-Quota-Limit response header.
func NewEnforcer(engine *enforce.Engine, limit int) *Enforcer {
	return &Enforcer{engine: engine, limit: limit}
}

// Middleware evaluates the route's policy for every request. Allowed requests
// proceed with the decision stored in the gin context; denials are rendered
// here and abort the chain.
func (e *Enforcer) Middleware(policy Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := enforce.Request{
			SkipQuota:        policy.SkipQuota,
			PremiumOnly:      policy.PremiumOnly,
			AnonymousAllowed: policy.AnonymousAllowed,
		}
		ctx := c.Request.Context()
		if claims, ok := CurrentClaims(c); ok {
			req.User = claims.UserID
			ctx = entitlement.WithPremiumClaim(ctx, claims.Premium)
		}

		d := e.engine.Evaluate(ctx, req)
		c.Set(decisionKey, d)

		switch d.Reason {
		case enforce.ReasonAllowed, enforce.ReasonBypassed:
			if d.QuotaApplied {
				c.Header("X-Quota-Remaining", strconv.Itoa(d.RemainingAfter))
				c.Header("X-Quota-Limit", strconv.Itoa(e.limit))
			}
			c.Next()
		case enforce.ReasonUnauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication_required"})
		case enforce.ReasonPremiumRequired:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "premium_required", "premium": false})
		case enforce.ReasonQuotaExhausted:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "quota_exhausted", "premium": false, "remaining": 0})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "enforcement_failed"})
		}
	}
}
