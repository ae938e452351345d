package middleware

import (
	"net/http"

	"towerhub-api/packages/auth/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const ContextUserRoles = "user_roles"

// RequireRole middleware pour vérifier qu'un utilisateur a un rôle spécifique
func RequireRole(db *gorm.DB, requiredRole string) gin.HandlerFunc {
	return RequireAnyRole(db, requiredRole)
}

// RequireAnyRole laisse passer les comptes actifs ayant au moins un des
// rôles. A placer après JWTMiddleware.
func RequireAnyRole(db *gorm.DB, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var user models.User
		if err := db.Select("id", "roles", "enabled").First(&user, userID).Error; err != nil || !user.Enabled {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		if !user.HasAnyRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":         "Insufficient permissions",
				"requiredRoles": roles,
			})
			return
		}

		c.Set(ContextUserRoles, user.Roles)
		c.Next()
	}
}
