package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tutorhive/booking-api/internal/models"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
	"github.com/tutorhive/booking-api/pkg/response"
)

// RequireRoles restricts a route to the given roles. The special pseudo-role
// "SELF" additionally allows a user whose ID matches the :id path parameter,
// so a tutor can manage their own slots without the admin role.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		allowSelf := false
		for _, role := range roles {
			if role == "SELF" {
				allowSelf = true
				continue
			}
			if claims.Role == role {
				c.Next()
				return
			}
		}

		if allowSelf {
			if targetID := c.Param("id"); targetID != "" && targetID == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
