package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	gategin "github.com/open-rails/gatekit/adapters/gin"
	"github.com/open-rails/gatekit/entitlement"
)

// HandleAdminRevokeDELETE returns a user to the free baseline. Operator role
// required.
func HandleAdminRevokeDELETE(svc *entitlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := gategin.CurrentClaims(c)
		if !ok || !claims.HasRole(gategin.RoleOperator) {
			c.JSON(http.StatusForbidden, gin.H{"error": "operator_required"})
			return
		}
		uid, err := uuid.Parse(c.Param("user_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_user_id"})
			return
		}
		_, err = svc.Revoke(c.Request.Context(), uid)
		switch {
		case errors.Is(err, entitlement.ErrVersionConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "concurrent_update"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_revoke"})
		default:
			c.JSON(http.StatusOK, gin.H{"ok": true})
		}
	}
}
