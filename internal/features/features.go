// Package features derives feature availability from the applied migration
// version, once at startup. Components receive the resulting Flags value
// instead of probing the schema per call.
package features

import (
	"database/sql"

	"github.com/aduval/foyer/internal/database"
)

// Migration versions that gate optional subsystems.
const (
	budgetMigration    = 2
	assistantMigration = 3
)

// Flags reports which optional subsystems the current schema supports.
type Flags struct {
	Budget    bool
	Assistant bool
}

// Detect reads the applied migration version and populates Flags.
func Detect(db *sql.DB) (Flags, error) {
	v, err := database.Version(db)
	if err != nil {
		return Flags{}, err
	}
	return FromVersion(v), nil
}

// FromVersion maps a migration version to Flags.
func FromVersion(v int64) Flags {
	return Flags{
		Budget:    v >= budgetMigration,
		Assistant: v >= assistantMigration,
	}
}
