package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/aduval/foyer/internal/database"
)

// testDB opens a throwaway database with all migrations applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedHousehold creates a household and returns its id.
func seedHousehold(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	h, err := NewHouseholdStore(db).Create(name)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	return h.ID
}
