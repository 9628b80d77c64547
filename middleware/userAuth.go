package middleware

import (
	"net/http"
	"strings"

	"maidbook/utils"

	"github.com/gin-gonic/gin"
)

// OptionalUserAuth sets "userID" from a valid bearer token. Requests without
// an Authorization header continue anonymously; a bad token is rejected.
func OptionalUserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if !strings.HasPrefix(authHeader, "Bearer ") || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Insufficient authorization"})
			return
		}

		userID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Insufficient authorization"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
