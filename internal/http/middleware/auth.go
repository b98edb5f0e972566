package middleware

import (
	"net/http"
	"strings"

	"telegram_arcade/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminJWT guards admin endpoints with a Bearer token issued by /api/admin/login.
func AdminJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		subject, err := service.ParseAdminJWT(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("admin_subject", subject)
		c.Next()
	}
}
