package auth

import (
	"towerhub-api/packages/auth/handlers"
	"towerhub-api/packages/auth/middleware"
	"towerhub-api/packages/auth/models"
	coreServices "towerhub-api/packages/core/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Module struct {
	Handler *handlers.AuthHandler
	db      *gorm.DB
}

func NewModule(db *gorm.DB, playerService *coreServices.PlayerService) *Module {
	return &Module{
		Handler: handlers.NewAuthHandler(db, playerService),
		db:      db,
	}
}

func (m *Module) SetupRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", m.Handler.Register)
		auth.POST("/login", m.Handler.Login)
		auth.POST("/refresh", m.Handler.RefreshToken)
		auth.POST("/logout", m.Handler.Logout)
		auth.POST("/logout-all", middleware.JWTMiddleware(), m.Handler.LogoutAll)
	}

	users := r.Group("/users", middleware.JWTMiddleware())
	{
		users.GET("/me", m.Handler.Me)
		users.PUT("/me", m.Handler.UpdateMe)
	}

	r.PUT("/profile/password", middleware.JWTMiddleware(), m.Handler.ChangePassword)

	admin := r.Group("/admin/users", middleware.JWTMiddleware(), middleware.RequireRole(m.db, models.RoleSuperAdmin))
	{
		admin.GET("", m.Handler.GetUsers)
		admin.PATCH("/:id", m.Handler.PatchUser)
	}
}
