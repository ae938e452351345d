package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"towerhub-api/packages/auth/models"
	"towerhub-api/packages/core/testutil"

	"github.com/bmizerany/assert"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func rolesRouter(db *gorm.DB, userID uint, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		if userID != 0 {
			c.Set(ContextUserID, userID)
		}
		c.Next()
	}, guard, func(c *gin.Context) {
		roles, _ := c.Get(ContextUserRoles)
		c.JSON(http.StatusOK, gin.H{"roles": roles})
	})
	return r
}

func status(r http.Handler) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w.Code
}

func TestRequireAnyRole(t *testing.T) {
	db := testutil.NewDB(t)
	player := testutil.CreateUser(t, db, "player")
	organizer := testutil.CreateUser(t, db, "organizer", models.RolePlayer, models.RoleOrganizer)
	admin := testutil.CreateUser(t, db, "admin", models.RolePlayer, models.RoleSuperAdmin)

	staff := func(id uint) *gin.Engine {
		return rolesRouter(db, id, RequireAnyRole(db, models.RoleOrganizer, models.RoleSuperAdmin))
	}
	assert.Equal(t, http.StatusForbidden, status(staff(player.ID)))
	assert.Equal(t, http.StatusOK, status(staff(organizer.ID)))
	assert.Equal(t, http.StatusOK, status(staff(admin.ID)))
	assert.Equal(t, http.StatusUnauthorized, status(staff(0)))
	assert.Equal(t, http.StatusUnauthorized, status(staff(9999)))

	assert.Equal(t, nil, db.Model(&models.User{}).Where("id = ?", organizer.ID).Update("enabled", false).Error)
	assert.Equal(t, http.StatusUnauthorized, status(staff(organizer.ID)))
}

func TestRequireRole(t *testing.T) {
	db := testutil.NewDB(t)
	organizer := testutil.CreateUser(t, db, "organizer", models.RolePlayer, models.RoleOrganizer)
	admin := testutil.CreateUser(t, db, "admin", models.RolePlayer, models.RoleSuperAdmin)

	assert.Equal(t, http.StatusForbidden, status(rolesRouter(db, organizer.ID, RequireRole(db, models.RoleSuperAdmin))))
	assert.Equal(t, http.StatusOK, status(rolesRouter(db, admin.ID, RequireRole(db, models.RoleSuperAdmin))))
}
