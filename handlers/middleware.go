package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthRequired validates the Bearer token and stores the caseworker's
// claims on the request context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := parseJWT(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_phone", claims.Phone)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

// SupervisorRequired allows only supervisor accounts through.
func SupervisorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_role") != "supervisor" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Supervisor role required"})
			return
		}
		c.Next()
	}
}
