package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	gategin "github.com/open-rails/gatekit/adapters/gin"
	"github.com/open-rails/gatekit/entitlement"
)

type grantRequest struct {
	UserID    string    `json:"user_id" binding:"required"`
	Plan      string    `json:"plan" binding:"required"`
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
	Notes     string    `json:"notes"`
}

// HandleAdminGrantPOST issues a manual premium grant. Operator role required.
func HandleAdminGrantPOST(svc *entitlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := gategin.CurrentClaims(c)
		if !ok || !claims.HasRole(gategin.RoleOperator) {
			c.JSON(http.StatusForbidden, gin.H{"error": "operator_required"})
			return
		}
		var req grantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}
		uid, err := uuid.Parse(req.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_user_id"})
			return
		}
		rec, err := svc.Grant(c.Request.Context(), uid, req.Plan, req.ExpiresAt, req.Notes)
		switch {
		case errors.Is(err, entitlement.ErrInvalidRecord):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_grant"})
		case errors.Is(err, entitlement.ErrVersionConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "concurrent_update"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_grant"})
		default:
			c.JSON(http.StatusOK, gin.H{
				"ok":         true,
				"plan":       rec.Plan,
				"expires_at": rec.PeriodEndsAt,
			})
		}
	}
}
