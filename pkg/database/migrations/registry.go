package migrations

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"
)

// appliedMigration records a data migration that already ran, so Run stays
// idempotent across restarts.
type appliedMigration struct {
	Name      string    `gorm:"primaryKey;size:255"`
	AppliedAt time.Time `gorm:"not null"`
}

func (appliedMigration) TableName() string { return "data_migrations" }

type migration struct {
	name string
	fn   func(*gorm.DB) error
}

var (
	mu       sync.Mutex
	registry []migration
)

// Register adds a named data migration. Registration order is execution order.
func Register(name string, fn func(*gorm.DB) error) {
	mu.Lock()
	defer mu.Unlock()

	registry = append(registry, migration{name: name, fn: fn})
}

// Run executes every registered migration that has not been applied yet, each
// in its own transaction with its bookkeeping row.
func Run(db *gorm.DB, log *slog.Logger) error {
	mu.Lock()
	pending := make([]migration, len(registry))
	copy(pending, registry)
	mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	if err := db.AutoMigrate(&appliedMigration{}); err != nil {
		return fmt.Errorf("migrate bookkeeping table: %w", err)
	}

	var applied []string
	if err := db.Model(&appliedMigration{}).Pluck("name", &applied).Error; err != nil {
		return fmt.Errorf("load applied migrations: %w", err)
	}

	done := make(map[string]struct{}, len(applied))
	for _, name := range applied {
		done[name] = struct{}{}
	}

	for _, m := range pending {
		if _, ok := done[m.name]; ok {
			continue
		}

		start := time.Now()
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.fn(tx); err != nil {
				return err
			}
			return tx.Create(&appliedMigration{Name: m.name, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %q: %w", m.name, err)
		}

		if log != nil {
			log.Info("data migration applied",
				slog.String("name", m.name),
				slog.Duration("elapsed", time.Since(start)),
			)
		}
	}

	return nil
}
