package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/jobhive/jobhive-server-go/pkg/config"
	"github.com/jobhive/jobhive-server-go/pkg/database"
	"github.com/jobhive/jobhive-server-go/pkg/database/migrations"
	"github.com/jobhive/jobhive-server-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	// Migrations run explicitly here, never as a side effect of Connect.
	cfg.Database.RunMigrations = false

	db, err := database.Connect(context.Background(), cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close(db, appLogger)

	appLogger.Info("running database migrations")

	if err := database.AutoMigrateAll(db); err != nil {
		appLogger.Error("migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := migrations.Run(db, appLogger); err != nil {
		appLogger.Error("data migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("database migrations completed")
}
