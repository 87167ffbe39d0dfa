// middlewares/auth_middleware.go
package middlewares

import (
	"net/http"
	"strings"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/utils"

	"github.com/gin-gonic/gin"
)

const UserIDKey = "userID"

// SessionAuth accepts the greet session token as a Bearer header or, for
// browser websockets that cannot set headers, a "token" query parameter.
func SessionAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "session token required"})
			return
		}

		userID, err := utils.ParseSessionToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
