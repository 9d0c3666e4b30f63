package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/skillbridge/marketplace-server-go/internal/features/auth"
	"github.com/skillbridge/marketplace-server-go/internal/features/course"
	"github.com/skillbridge/marketplace-server-go/internal/features/dashboard"
	"github.com/skillbridge/marketplace-server-go/internal/features/enrollment"
	"github.com/skillbridge/marketplace-server-go/internal/features/lesson"
	"github.com/skillbridge/marketplace-server-go/internal/features/user"
	"github.com/skillbridge/marketplace-server-go/internal/middleware"
	"github.com/skillbridge/marketplace-server-go/pkg/bunny"
	"github.com/skillbridge/marketplace-server-go/pkg/cache"
	"github.com/skillbridge/marketplace-server-go/pkg/config"
	"github.com/skillbridge/marketplace-server-go/pkg/health"
	"github.com/skillbridge/marketplace-server-go/pkg/types"
)

// Register wires all feature routes onto the engine.
func Register(engine *gin.Engine, cfg *config.Config, db *gorm.DB, logger *slog.Logger, storageClient *bunny.StorageClient, cacheClient cache.Client) {
	// Health check endpoints (no /api prefix for Kubernetes probes)
	healthHandler := health.NewHandler(db, logger)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/version", healthHandler.Version)

	// Metrics endpoint for Prometheus
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Database stats endpoint (protected in production)
	if !cfg.IsProduction() {
		engine.GET("/debug/db-stats", healthHandler.DBStats)
	}

	api := engine.Group("/api")

	middleware.Initialize(db, cfg.JWTSecret, logger)

	authed := []gin.HandlerFunc{middleware.AuthenticateToken()}
	adminOnly := middleware.RequireRoles(types.RoleAdmin)

	authHandler := auth.NewHandler(db, logger, cfg)
	auth.RegisterRoutes(api, authHandler)

	userHandler := user.NewHandler(db, logger)
	user.RegisterRoutes(api, userHandler, authed, adminOnly)

	courseHandler := course.NewHandler(db, logger, storageClient, cacheClient)
	course.RegisterRoutes(api, courseHandler, authed)

	lessonHandler := lesson.NewHandler(db, logger, storageClient, cacheClient)
	lesson.RegisterRoutes(api, lessonHandler, authed)

	enrollmentHandler := enrollment.NewHandler(db, logger)
	enrollment.RegisterRoutes(api, enrollmentHandler, authed, adminOnly)

	dashboardHandler := dashboard.NewHandler(db, logger)
	dashboard.RegisterRoutes(api, dashboardHandler, authed, adminOnly)
}
