package store

import (
	"database/sql"
	"fmt"

	"github.com/aduval/foyer/internal/model"
)

type ProjectStore struct {
	db *sql.DB
}

func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func scanProject(scanner interface{ Scan(...any) error }) (*model.Project, error) {
	var p model.Project
	err := scanner.Scan(&p.ID, &p.HouseholdID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const projectCols = `id, household_id, name, description, created_at, updated_at`

func (s *ProjectStore) Create(householdID int64, name, description string) (*model.Project, error) {
	result, err := s.db.Exec(
		`INSERT INTO projects (household_id, name, description) VALUES (?, ?, ?)`,
		householdID, name, description,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(householdID, id)
}

func (s *ProjectStore) GetByID(householdID, id int64) (*model.Project, error) {
	row := s.db.QueryRow(
		`SELECT `+projectCols+` FROM projects WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *ProjectStore) List(householdID int64) ([]model.Project, error) {
	rows, err := s.db.Query(
		`SELECT `+projectCols+` FROM projects WHERE household_id = ? ORDER BY name COLLATE NOCASE ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	return collectProjects(rows)
}

func (s *ProjectStore) FindByNameExact(householdID int64, name string) ([]model.Project, error) {
	rows, err := s.db.Query(
		`SELECT `+projectCols+` FROM projects WHERE household_id = ? AND name = ? COLLATE NOCASE ORDER BY id ASC`,
		householdID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("find project by name: %w", err)
	}
	defer rows.Close()
	return collectProjects(rows)
}

func (s *ProjectStore) FindByNameContains(householdID int64, name string) ([]model.Project, error) {
	rows, err := s.db.Query(
		`SELECT `+projectCols+` FROM projects WHERE household_id = ? AND name LIKE '%' || ? || '%' COLLATE NOCASE ESCAPE '\' ORDER BY id ASC`,
		householdID, escapeLike(name),
	)
	if err != nil {
		return nil, fmt.Errorf("find project by partial name: %w", err)
	}
	defer rows.Close()
	return collectProjects(rows)
}

func (s *ProjectStore) Update(householdID, id int64, name, description string) (*model.Project, error) {
	_, err := s.db.Exec(
		`UPDATE projects SET name = ?, description = ?, updated_at = datetime('now') WHERE id = ? AND household_id = ?`,
		name, description, id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return s.GetByID(householdID, id)
}

func (s *ProjectStore) Delete(householdID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM projects WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func collectProjects(rows *sql.Rows) ([]model.Project, error) {
	var out []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
