package middleware

import (
	"net/http"
	"strings"

	"towerhub-api/packages/auth/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

// JWTMiddleware exige un bearer token valide et place l'id utilisateur
// dans le contexte gin.
func JWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

// OptionalJWTMiddleware sets the user when a valid token is present and
// lets anonymous requests through.
func OptionalJWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(c); ok {
			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextUsername, claims.Username)
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func parseBearer(c *gin.Context) (*utils.Claims, bool) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, false
	}
	claims, err := utils.ParseToken(strings.TrimSpace(token))
	if err != nil {
		return nil, false
	}
	return claims, true
}
