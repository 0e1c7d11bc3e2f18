package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/glowbook/auth-service/internal/domain"
	"github.com/glowbook/auth-service/internal/dto"
	"github.com/glowbook/auth-service/internal/service"
)

// AuthMiddleware validates JWT token and adds user info to context
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "AUTH",
				Message: "Authorization header is required",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "AUTH",
				Message: "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "AUTH",
				Message: "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Set("claims", claims)

		c.Next()
	}
}

// RequireRole enforces that the authenticated user carries one of the given
// roles. It assumes AuthMiddleware has already stored the role claim.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		v, exists := c.Get("role")
		role, ok := v.(domain.Role)
		if !exists || !ok || !allowed[role] {
			c.JSON(http.StatusForbidden, dto.ErrorResponse{
				Error:   "PERMISSION",
				Message: "Insufficient role",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
