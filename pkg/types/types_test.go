package types

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type widget struct {
	BaseModel

	Name string `gorm:"type:varchar(100);not null"`
}

// The ID column must carry no database-side default so the schema migrates
// on every supported driver; BeforeCreate assigns the key instead.
func TestBaseModelMigratesAndAssignsID(t *testing.T) {
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

	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	w := widget{Name: "sprocket"}
	if err := db.Create(&w).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if w.ID == uuid.Nil {
		t.Fatalf("create: ID not assigned")
	}

	preset := widget{Name: "gear"}
	preset.ID = uuid.New()
	want := preset.ID
	if err := db.Create(&preset).Error; err != nil {
		t.Fatalf("create with preset ID: %v", err)
	}
	if preset.ID != want {
		t.Fatalf("preset ID overwritten: got %s, want %s", preset.ID, want)
	}
}
