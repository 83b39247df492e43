// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"testing"

	"fitdesk/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// allModels is the list of all GORM models to auto-migrate in tests.
var allModels = []interface{}{
	&models.Role{},
	&models.User{},
	&models.Membership{},
	&models.Subscription{},
	&models.Attendance{},
}

// SetupTestDB creates an in-memory SQLite database with all models migrated
// and the fixed role set seeded.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	SeedRoles(t, db)
	return db
}

// SeedRoles inserts the fixed role rows the application expects, mirroring
// the seed migration.
func SeedRoles(t *testing.T, db *gorm.DB) {
	t.Helper()

	for _, name := range []models.RoleName{models.RoleAdmin, models.RoleClient, models.RoleReceptionist} {
		var count int64
		db.Model(&models.Role{}).Where("name = ?", name).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&models.Role{Name: name}).Error; err != nil {
			t.Fatalf("failed to seed role %s: %v", name, err)
		}
	}
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
