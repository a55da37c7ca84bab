// Package test provides utilities for setting up and running tests
package test

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/celestiaorg/faceswap/internal/db"
	"github.com/celestiaorg/faceswap/internal/db/repos"
)

// NewFileBasedTestDB creates a new file-based SQLite job database for testing.
// It returns the database connection and the path to the temporary directory.
func NewFileBasedTestDB() (*gorm.DB, string, error) {
	tmpDir, err := os.MkdirTemp("", "faceswap_test")
	if err != nil {
		return nil, "", fmt.Errorf("failed to create temporary directory: %w", err)
	}
	database, err := db.New(db.Options{
		SQLitePath: filepath.Join(tmpDir, db.DefaultSQLiteFile),
		LogLevel:   logger.Silent,
	})
	if err != nil {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			fmt.Printf("Warning: failed to remove temporary directory after database error: %v\n", rmErr)
		}
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}
	return database, tmpDir, nil
}

// CleanupTestDB closes the database connection and removes the temporary directory.
func CleanupTestDB(database *gorm.DB, tmpDir string) {
	if err := db.Close(database); err != nil {
		fmt.Printf("Error closing database connection: %v\n", err)
	}
	if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
		fmt.Printf("Error removing temporary directory: %v\n", rmErr)
	}
}

// SetupTestDB configures the test suite with a fresh job database
func SetupTestDB(suite *Suite) {
	dbConn, tmpDir, err := NewFileBasedTestDB()
	suite.Require().NoError(err, "Failed to create file-based database")
	suite.DB = dbConn
	suite.JobRepo = repos.NewJobRepository(dbConn)

	oldCleanup := suite.cleanup
	suite.cleanup = func() {
		if oldCleanup != nil {
			oldCleanup()
		}
		CleanupTestDB(dbConn, tmpDir)
	}
}
