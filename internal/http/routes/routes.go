package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/internal/features/auth"
	"github.com/jobhive/jobhive-server-go/internal/features/course"
	"github.com/jobhive/jobhive-server-go/internal/features/dashboard"
	"github.com/jobhive/jobhive-server-go/internal/features/enrollment"
	"github.com/jobhive/jobhive-server-go/internal/features/job"
	"github.com/jobhive/jobhive-server-go/internal/features/lesson"
	"github.com/jobhive/jobhive-server-go/internal/features/profile"
	"github.com/jobhive/jobhive-server-go/internal/features/quiz"
	"github.com/jobhive/jobhive-server-go/internal/features/quizattempt"
	"github.com/jobhive/jobhive-server-go/internal/features/user"
	"github.com/jobhive/jobhive-server-go/internal/middleware"
	"github.com/jobhive/jobhive-server-go/pkg/cache"
	"github.com/jobhive/jobhive-server-go/pkg/config"
	"github.com/jobhive/jobhive-server-go/pkg/health"
	"github.com/jobhive/jobhive-server-go/pkg/types"
)

// Register wires all feature routes onto the engine.
func Register(engine *gin.Engine, cfg *config.Config, db *gorm.DB, logger *slog.Logger, cacheClient cache.Client) {
	// Health check endpoints (no /api prefix for Kubernetes probes)
	healthHandler := health.NewHandler(db, logger)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/version", healthHandler.Version)

	// Metrics endpoint for Prometheus
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if !cfg.IsProduction() {
		engine.GET("/debug/db-stats", healthHandler.DBStats)
	}

	api := engine.Group("/api")

	middleware.Initialize(db, cfg.JWTSecret, logger)

	authed := middleware.RequireRoles(types.UserTypeAll)
	adminOnly := middleware.RequireRoles(types.UserTypeAdmin)
	employer := middleware.RequireRoles(types.UserTypeEmployee, types.UserTypeAdmin)

	authHandler := auth.NewHandler(db, logger, cfg)
	auth.RegisterRoutes(api, authHandler, authed)

	userHandler := user.NewHandler(db, logger)
	user.RegisterRoutes(api, userHandler, adminOnly)

	profileHandler := profile.NewHandler(db, logger)
	profile.RegisterRoutes(api, profileHandler, authed)

	courseHandler := course.NewHandler(db, logger, cacheClient)
	course.RegisterRoutes(api, courseHandler, authed, adminOnly)

	lessonHandler := lesson.NewHandler(db, logger)
	lesson.RegisterRoutes(api, lessonHandler, authed, adminOnly)

	enrollmentHandler := enrollment.NewHandler(db, logger)
	enrollment.RegisterRoutes(api, enrollmentHandler, authed)

	quizHandler := quiz.NewHandler(db, logger)
	quiz.RegisterRoutes(api, quizHandler, authed, adminOnly)

	attemptHandler := quizattempt.NewHandler(db, logger)
	quizattempt.RegisterRoutes(api, attemptHandler, authed)

	jobHandler := job.NewHandler(db, logger, cacheClient)
	job.RegisterRoutes(api, jobHandler, authed, employer)

	dashboardHandler := dashboard.NewHandler(db, logger)
	dashboard.RegisterRoutes(api, dashboardHandler, authed, adminOnly)
}
