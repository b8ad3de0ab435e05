package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/utils"
)

// KitchenStreamAuth authenticates the kitchen display handshake. Browsers
// cannot set headers on a websocket upgrade, so the staff JWT travels in the
// token query parameter.
func KitchenStreamAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("token")
		if raw == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("token query parameter missing"))
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(raw)
		if err != nil || claims == nil || claims.UserID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
			c.Abort()
			return
		}
		if claims.Role != models.RoleAdmin && claims.Role != models.RoleKitchen {
			utils.RespondError(c, http.StatusForbidden, errors.New("kitchen stream requires kitchen or admin role"))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}
