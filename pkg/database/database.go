package database

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/internal/features/course"
	"github.com/jobhive/jobhive-server-go/internal/features/enrollment"
	"github.com/jobhive/jobhive-server-go/internal/features/job"
	"github.com/jobhive/jobhive-server-go/internal/features/lesson"
	"github.com/jobhive/jobhive-server-go/internal/features/profile"
	"github.com/jobhive/jobhive-server-go/internal/features/quiz"
	"github.com/jobhive/jobhive-server-go/internal/features/quizattempt"
	"github.com/jobhive/jobhive-server-go/internal/features/user"
	"github.com/jobhive/jobhive-server-go/pkg/config"
	"github.com/jobhive/jobhive-server-go/pkg/database/migrations"
)

// Connect establishes a GORM connection using the provided configuration with retry logic.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	return ConnectWithRetry(ctx, cfg, log, 5, 1*time.Second)
}

// ConnectWithRetry establishes a GORM connection with configurable retry logic.
// It uses exponential backoff with jitter for retries.
func ConnectWithRetry(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger, maxRetries int, initialBackoff time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(float64(initialBackoff) * math.Pow(2, float64(attempt-1)))
			// Add jitter (up to 25% of backoff time)
			jitter := time.Duration(float64(backoff) * 0.25 * float64(time.Now().UnixNano()%100) / 100.0)
			sleepTime := backoff + jitter

			log.Warn("retrying database connection",
				slog.Int("attempt", attempt),
				slog.Int("max_retries", maxRetries),
				slog.Duration("backoff", sleepTime),
				slog.String("error", err.Error()),
			)

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("connection cancelled: %w", ctx.Err())
			case <-time.After(sleepTime):
			}
		}

		db, err = connectOnce(ctx, cfg, log)
		if err == nil {
			if attempt > 0 {
				log.Info("database connection established after retry", slog.Int("attempts", attempt+1))
			}
			return db, nil
		}

		log.Error("database connection attempt failed",
			slog.Int("attempt", attempt+1),
			slog.Int("max_retries", maxRetries+1),
			slog.String("error", err.Error()),
		)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", maxRetries+1, err)
}

// connectOnce attempts a single database connection without retry logic.
func connectOnce(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	gormLogger := newQueryLogger(log, 200*time.Millisecond)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 gormLogger,
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	reconnectPlugin := NewReconnectPlugin(log)
	if err := db.Use(reconnectPlugin); err != nil {
		return nil, fmt.Errorf("register reconnect plugin: %w", err)
	}

	// Auto-migrate all models only if explicitly enabled
	if cfg.RunMigrations {
		log.Info("running database migrations")
		if err := AutoMigrateAll(db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		if err := migrations.Run(db, log); err != nil {
			return nil, fmt.Errorf("run data migrations: %w", err)
		}
		log.Info("database schema migrated successfully")
	} else {
		log.Info("skipping auto-migration (JOBHIVE_DB_RUN_MIGRATIONS=false)")
	}

	return db, nil
}

// AutoMigrateAll migrates every persisted model. Shared with the migrate script.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&profile.UserProfile{},
		&profile.Experience{},
		&profile.Education{},
		&profile.Skill{},
		&profile.Project{},
		&profile.Language{},
		&profile.Certificate{},
		&job.Company{},
		&job.Job{},
		&course.CourseCategory{},
		&course.Course{},
		&lesson.Lesson{},
		&quiz.QuizCategory{},
		&quiz.Quiz{},
		&quiz.Question{},
		&quiz.Choice{},
		&enrollment.Enrollment{},
		&enrollment.LessonCompletion{},
		&quizattempt.QuizAttempt{},
		&quizattempt.UserAnswer{},
	)
}

// Close gracefully closes the underlying sql.DB connection pool.
func Close(db *gorm.DB, log *slog.Logger) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	log.Info("database connection closed")
	return nil
}
