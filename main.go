package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"towerhub-api/config"
	_ "towerhub-api/docs" // Swagger docs
	"towerhub-api/logger"
	"towerhub-api/packages/auth"
	authServices "towerhub-api/packages/auth/services"
	"towerhub-api/packages/core"
	"towerhub-api/packages/core/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title           TowerHub API
// @version         1.0
// @description     API de la plateforme esport TowerHub : towers, équipes, tournois et classements.

// @contact.name   API Support

// @license.name  MIT
// @license.url   http://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 10 * time.Second

func main() {
	fx.New(
		fx.NopLogger,
		fx.Provide(
			logger.New,
			config.Load,
			config.ConnectDatabase,
			authServices.NewEmailService,
			newCoreModule,
			newAuthModule,
			newRouter,
		),
		fx.Invoke(runServer),
	).Run()
}

func newCoreModule(db *gorm.DB, mailer authServices.EmailService, cfg *config.Config, log zerolog.Logger) *core.Module {
	return core.NewModule(db, mailer, core.Options{RankSnapshotCron: cfg.RankSnapshotCron}, log)
}

func newAuthModule(db *gorm.DB, coreModule *core.Module) *auth.Module {
	return auth.NewModule(db, coreModule.PlayerService)
}

func newRouter(cfg *config.Config, db *gorm.DB, log zerolog.Logger, authModule *auth.Module, coreModule *core.Module) *gin.Engine {
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authModule.SetupRoutes(r)
	coreModule.SetupRoutes(r)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", healthHandler(db))

	return r
}

func runServer(lc fx.Lifecycle, cfg *config.Config, r *gin.Engine, db *gorm.DB, coreModule *core.Module, log zerolog.Logger) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := coreModule.StartScheduler(); err != nil {
				return err
			}
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			coreModule.StopScheduler()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Warn().Err(err).Msg("error closing database connection")
				}
			}
			log.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Message  string `json:"message" example:"Server is running"`
	Database string `json:"database" example:"connected"`
}

// @Summary Health Check
// @Description Check if the server is running and database is connected
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, state := http.StatusOK, "connected"
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("database ping failed")
			status, state = http.StatusServiceUnavailable, "unreachable"
		}
		c.JSON(status, HealthResponse{
			Message:  "Server is running",
			Database: state,
		})
	}
}
