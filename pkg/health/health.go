package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Build information, overridden via -ldflags at release time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Handler serves the liveness, readiness and version endpoints.
type Handler struct {
	db      *gorm.DB
	logger  *slog.Logger
	started time.Time
}

// NewHandler creates a health handler.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger, started: time.Now()}
}

type status struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	UptimeSec int64             `json:"uptimeSeconds"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health is the liveness probe; it answers OK while the process runs.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, status{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   Version,
		UptimeSec: int64(time.Since(h.started).Seconds()),
	})
}

// Ready is the readiness probe; it fails while a dependency is unreachable.
func (h *Handler) Ready(c *gin.Context) {
	checks := map[string]string{
		"database": h.databaseStatus(c.Request.Context()),
	}

	code := http.StatusOK
	overall := "ready"
	for _, state := range checks {
		if state != "ok" {
			code = http.StatusServiceUnavailable
			overall = "not_ready"
			break
		}
	}

	c.JSON(code, status{
		Status:    overall,
		Timestamp: time.Now(),
		Version:   Version,
		UptimeSec: int64(time.Since(h.started).Seconds()),
		Checks:    checks,
	})
}

// Version reports build metadata.
func (h *Handler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    Version,
		"git_commit": GitCommit,
		"build_time": BuildTime,
	})
}

func (h *Handler) databaseStatus(ctx context.Context) string {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	sqlDB, err := h.db.DB()
	if err != nil {
		h.logger.Error("readiness: database instance unavailable", slog.String("error", err.Error()))
		return "unavailable"
	}

	if err := sqlDB.PingContext(pingCtx); err != nil {
		h.logger.Error("readiness: database ping failed", slog.String("error", err.Error()))
		return "unhealthy"
	}
	return "ok"
}

// DBStats exposes connection pool statistics on non-production builds.
func (h *Handler) DBStats(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database instance unavailable"})
		return
	}

	stats := sqlDB.Stats()
	c.JSON(http.StatusOK, gin.H{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_idle_time_closed": stats.MaxIdleTimeClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	})
}
