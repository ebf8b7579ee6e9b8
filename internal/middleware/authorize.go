package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"plaza/api/internal/security"
)

const roleAdmin = "admin"

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsVal, exists := c.Get("identity_claims")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		claims, ok := claimsVal.(security.IdentityClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_claims"})
			return
		}

		if claims.Role != roleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
