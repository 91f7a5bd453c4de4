package profile

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// A pooled connection would get its own empty in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&UserProfile{},
		&Experience{},
		&Education{},
		&Skill{},
		&Project{},
		&Language{},
		&Certificate{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

func TestEnsureCreatesProfile(t *testing.T) {
	db := openTestDB(t)
	userID := uuid.New()

	profile, err := Ensure(db, userID)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if profile.ID == uuid.Nil {
		t.Fatalf("Ensure: profile ID not assigned")
	}
	if profile.UserID != userID {
		t.Fatalf("Ensure: user ID = %s, want %s", profile.UserID, userID)
	}
	if !profile.Public {
		t.Fatalf("Ensure: new profile should default to public")
	}
}

func TestEnsureReturnsExistingProfile(t *testing.T) {
	db := openTestDB(t)
	userID := uuid.New()

	first, err := Ensure(db, userID)
	if err != nil {
		t.Fatalf("first Ensure: %v", err)
	}

	second, err := Ensure(db, userID)
	if err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second Ensure: expected same profile, got %s and %s", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&UserProfile{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count profiles: %v", err)
	}
	if count != 1 {
		t.Fatalf("profile rows = %d, want 1", count)
	}
}
