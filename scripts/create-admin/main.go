package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/jobhive/jobhive-server-go/internal/bootstrap"
	"github.com/jobhive/jobhive-server-go/pkg/config"
	"github.com/jobhive/jobhive-server-go/pkg/database"
	"github.com/jobhive/jobhive-server-go/pkg/logger"
)

// Creates or updates the default admin account. Credentials come from
// JOBHIVE_ADMIN_EMAIL and JOBHIVE_ADMIN_PASSWORD.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	db, err := database.Connect(context.Background(), cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close(db, appLogger)

	if err := bootstrap.EnsureDefaultAdmin(db, appLogger); err != nil {
		appLogger.Error("create admin failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("admin account ready")
}
