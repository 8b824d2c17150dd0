// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/izzatfirdaus/motac-rms/internal/models"
	"github.com/izzatfirdaus/motac-rms/internal/utils"
)

// AuthRequired validates the bearer token and stores the caller's identity
// on the context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.UnauthorizedResponse(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.UnauthorizedResponse(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_name", claims.Name)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

// RequireRole allows only callers whose role is in the given set. The admin
// role passes every guard.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles)+1)
	for _, role := range roles {
		allowed[string(role)] = true
	}
	allowed[string(models.UserRoleAdmin)] = true

	return func(c *gin.Context) {
		role, ok := utils.GetUserRoleFromContext(c)
		if !ok || !allowed[role] {
			utils.ForbiddenResponse(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}
