package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"plaza/api/internal/config"
	"plaza/api/internal/security"
	"plaza/api/internal/service"
)

// Auth verifies the identity-provider bearer token and resolves the internal
// user, creating the account on first sign-in.
func Auth(cfg *config.AppConfig, users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseIdentityToken(tokenStr, cfg.Security.AuthSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		user, err := users.Resolve(c.Request.Context(), *claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_resolution_failed"})
			return
		}

		c.Set("identity_claims", *claims)
		c.Set("current_user", user)

		c.Next()
	}
}
