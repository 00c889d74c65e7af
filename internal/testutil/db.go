// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/database"

	"gorm.io/gorm"
)

// NewSQLiteDB returns a migrated in-memory database closed when t ends.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Connect(&config.Config{DBDriver: "sqlite", DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
