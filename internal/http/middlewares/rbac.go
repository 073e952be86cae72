package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/bloghub/internal/auth"
)

// RequireRole gates a route on the caller's role. Must run after
// RequireAuth, which stashes the role on the context.
func (m *AuthMiddleware) RequireRole(required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := RoleFromContext(c)

		err := auth.Authorize(required, role)

		if err == nil {
			c.Next()
			return
		}

		if errors.Is(err, auth.ErrNoIdentity) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": gin.H{
				"code":    "forbidden",
				"message": "Insufficient role",
			},
		})
	}
}
