package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"log/slog"

	"gorm.io/gorm"

	"github.com/jobhive/jobhive-server-go/internal/features/profile"
	"github.com/jobhive/jobhive-server-go/internal/features/user"
	"github.com/jobhive/jobhive-server-go/pkg/types"
)

const (
	defaultAdminEmail    = "admin@jobhive.local"
	defaultAdminPassword = "changeme-admin-1"
	defaultAdminName     = "Site Admin"
)

// EnsureDefaultAdmin creates the default admin account if no admin exists.
// Credentials come from JOBHIVE_ADMIN_EMAIL / JOBHIVE_ADMIN_PASSWORD, with
// development fallbacks.
func EnsureDefaultAdmin(db *gorm.DB, logger *slog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(envOr("JOBHIVE_ADMIN_EMAIL", defaultAdminEmail)))
	password := envOr("JOBHIVE_ADMIN_PASSWORD", defaultAdminPassword)

	var existing user.User
	err := db.Where("LOWER(email) = ?", email).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		created, createErr := user.Create(db, user.CreateInput{
			FullName: defaultAdminName,
			Email:    email,
			Password: password,
			UserType: types.UserTypeAdmin,
		})
		if createErr != nil {
			if isUndefinedTableError(createErr) {
				logger.Warn("default admin skipped - users table missing", slog.String("email", email))
				return nil
			}
			return fmt.Errorf("create admin: %w", createErr)
		}

		if _, err := profile.Ensure(db, created.ID); err != nil {
			return fmt.Errorf("create admin profile: %w", err)
		}

		logger.Info("default admin created", slog.String("email", email))
		return nil

	case err != nil:
		if isUndefinedTableError(err) {
			logger.Warn("default admin skipped - users table missing", slog.String("email", email))
			return nil
		}
		return fmt.Errorf("get admin: %w", err)
	}

	if existing.UserType != types.UserTypeAdmin || !existing.Active {
		if err := db.Model(&existing).Updates(map[string]interface{}{
			"user_type": types.UserTypeAdmin,
			"is_active": true,
		}).Error; err != nil {
			return fmt.Errorf("update admin: %w", err)
		}
		logger.Info("default admin synchronized", slog.String("email", email))
		return nil
	}

	logger.Info("default admin already up to date", slog.String("email", email))
	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func isUndefinedTableError(err error) bool {
	if err == nil {
		return false
	}

	message := err.Error()
	return strings.Contains(message, "relation \"users\" does not exist") ||
		strings.Contains(message, "no such table: users")
}
