package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/activehq/activehq/app/models"
)

// NewTestDB opens an in-memory SQLite database with the full schema. Each
// call gets its own database. The pool is capped at one connection so
// concurrent service calls serialize instead of hitting SQLITE_BUSY.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(
		&models.Gym{},
		&models.User{},
		&models.Member{},
		&models.Plan{},
		&models.Membership{},
		&models.Payment{},
		&models.Attendance{},
		&models.Notification{},
		&models.DemoRequest{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return db
}
