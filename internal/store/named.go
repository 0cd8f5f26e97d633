package store

import (
	"database/sql"
	"fmt"

	"github.com/aduval/foyer/internal/model"
)

// NamedStore provides CRUD and name lookup for the simple named entities
// (zones, categories, animals, people), which share one shape and differ
// only by table. The entity name is used in error messages.
type NamedStore struct {
	db     *sql.DB
	table  string
	entity string
}

func NewZoneStore(db *sql.DB) *NamedStore { return &NamedStore{db: db, table: "zones", entity: "zone"} }
func NewCategoryStore(db *sql.DB) *NamedStore {
	return &NamedStore{db: db, table: "categories", entity: "category"}
}
func NewAnimalStore(db *sql.DB) *NamedStore {
	return &NamedStore{db: db, table: "animals", entity: "animal"}
}
func NewPersonStore(db *sql.DB) *NamedStore {
	return &NamedStore{db: db, table: "people", entity: "person"}
}

func scanNamed(scanner interface{ Scan(...any) error }) (*model.NamedEntity, error) {
	var e model.NamedEntity
	err := scanner.Scan(&e.ID, &e.HouseholdID, &e.Name, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const namedCols = `id, household_id, name, created_at, updated_at`

func (s *NamedStore) Create(householdID int64, name string) (*model.NamedEntity, error) {
	result, err := s.db.Exec(
		`INSERT INTO `+s.table+` (household_id, name) VALUES (?, ?)`,
		householdID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", s.entity, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(householdID, id)
}

func (s *NamedStore) GetByID(householdID, id int64) (*model.NamedEntity, error) {
	row := s.db.QueryRow(
		`SELECT `+namedCols+` FROM `+s.table+` WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	e, err := scanNamed(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.entity, err)
	}
	return e, nil
}

func (s *NamedStore) List(householdID int64) ([]model.NamedEntity, error) {
	rows, err := s.db.Query(
		`SELECT `+namedCols+` FROM `+s.table+` WHERE household_id = ? ORDER BY name COLLATE NOCASE ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", s.entity, err)
	}
	defer rows.Close()
	return collectNamed(rows, s.entity)
}

// FindByNameExact returns all case-insensitive exact matches.
func (s *NamedStore) FindByNameExact(householdID int64, name string) ([]model.NamedEntity, error) {
	rows, err := s.db.Query(
		`SELECT `+namedCols+` FROM `+s.table+` WHERE household_id = ? AND name = ? COLLATE NOCASE ORDER BY id ASC`,
		householdID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("find %s by name: %w", s.entity, err)
	}
	defer rows.Close()
	return collectNamed(rows, s.entity)
}

// FindByNameContains returns all case-insensitive substring matches.
func (s *NamedStore) FindByNameContains(householdID int64, name string) ([]model.NamedEntity, error) {
	rows, err := s.db.Query(
		`SELECT `+namedCols+` FROM `+s.table+` WHERE household_id = ? AND name LIKE '%' || ? || '%' COLLATE NOCASE ESCAPE '\' ORDER BY id ASC`,
		householdID, escapeLike(name),
	)
	if err != nil {
		return nil, fmt.Errorf("find %s by partial name: %w", s.entity, err)
	}
	defer rows.Close()
	return collectNamed(rows, s.entity)
}

func (s *NamedStore) Update(householdID, id int64, name string) (*model.NamedEntity, error) {
	_, err := s.db.Exec(
		`UPDATE `+s.table+` SET name = ?, updated_at = datetime('now') WHERE id = ? AND household_id = ?`,
		name, id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", s.entity, err)
	}
	return s.GetByID(householdID, id)
}

func (s *NamedStore) Delete(householdID, id int64) error {
	_, err := s.db.Exec(
		`DELETE FROM `+s.table+` WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.entity, err)
	}
	return nil
}

func collectNamed(rows *sql.Rows, entity string) ([]model.NamedEntity, error) {
	var out []model.NamedEntity
	for rows.Next() {
		e, err := scanNamed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", entity, err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
