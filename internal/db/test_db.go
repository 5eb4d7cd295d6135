package db

import (
	"fmt"

	appLogger "github.com/automarket/automarket-backend/pkg/logger"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get test database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return db, nil
}

// CleanupTestDB closes the test database.
func CleanupTestDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Warn("Failed to get test DB instance", map[string]interface{}{"error": err.Error()})
		return
	}
	sqlDB.Close()
}

// TruncateAllTables deletes every row, children before parents.
func TruncateAllTables(db *gorm.DB) error {
	models := Models()
	tx := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped()
	for i := len(models) - 1; i >= 0; i-- {
		if err := tx.Delete(models[i]).Error; err != nil {
			return fmt.Errorf("truncate %T: %w", models[i], err)
		}
	}
	return nil
}
