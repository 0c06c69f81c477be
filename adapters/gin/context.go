package gategin

import (
	"errors"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/open-rails/gatekit/enforce"
)

const (
	claimsKey   = "gate.claims"
	decisionKey = "gate.decision"
)

// RoleOperator gates the administrative grant/revoke surface.
const RoleOperator = "operator"

// Claims is the slice of an already-verified token that enforcement needs.
// This adapter never verifies signatures; the upstream auth middleware does.
type Claims struct {
	UserID  uuid.UUID
	Premium bool
	Roles   []string
}

// HasRole reports whether the claims carry the given role.
func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ClaimsFromToken extracts enforcement claims from a verified JWT. The
// premium assertion is read from a "premium" boolean or an "entitlements"
// list containing "premium".
func ClaimsFromToken(tok *jwt.Token) (Claims, error) {
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("gategin: unsupported claims type")
	}
	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return Claims{}, errors.New("gategin: token has no subject")
	}
	uid, err := uuid.Parse(sub)
	if err != nil {
		return Claims{}, errors.New("gategin: token subject is not a uuid")
	}
	out := Claims{UserID: uid}
	if v, ok := mc["premium"].(bool); ok {
		out.Premium = v
	}
	if list, ok := mc["entitlements"].([]any); ok {
		for _, e := range list {
			if s, ok := e.(string); ok && s == "premium" {
				out.Premium = true
			}
		}
	}
	if list, ok := mc["roles"].([]any); ok {
		for _, r := range list {
			if s, ok := r.(string); ok {
				out.Roles = append(out.Roles, s)
			}
		}
	}
	return out, nil
}

// SetClaims attaches the caller's claims for downstream enforcement. The
// upstream auth adapter calls this once the token is verified.
func SetClaims(c *gin.Context, claims Claims) {
	c.Set(claimsKey, claims)
}

// CurrentClaims returns the caller's claims, if authenticated.
func CurrentClaims(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok && claims.UserID != uuid.Nil
}

// CurrentDecision returns the enforcement decision recorded by the
// middleware, for handlers that want to render remaining counts themselves.
func CurrentDecision(c *gin.Context) (enforce.Decision, bool) {
	v, ok := c.Get(decisionKey)
	if !ok {
		return enforce.Decision{}, false
	}
	d, ok := v.(enforce.Decision)
	return d, ok
}
