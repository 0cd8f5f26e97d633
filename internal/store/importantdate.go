package store

import (
	"database/sql"
	"fmt"

	"github.com/aduval/foyer/internal/model"
)

type ImportantDateStore struct {
	db *sql.DB
}

func NewImportantDateStore(db *sql.DB) *ImportantDateStore {
	return &ImportantDateStore{db: db}
}

func scanImportantDate(scanner interface{ Scan(...any) error }) (*model.ImportantDate, error) {
	var d model.ImportantDate
	err := scanner.Scan(
		&d.ID, &d.HouseholdID, &d.Title, &d.Type, &d.Date, &d.RecurringYearly,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

const importantDateCols = `id, household_id, title, type, date, recurring_yearly, created_at, updated_at`

func (s *ImportantDateStore) Create(householdID int64, title, dateType, date string, recurringYearly bool) (*model.ImportantDate, error) {
	result, err := s.db.Exec(
		`INSERT INTO important_dates (household_id, title, type, date, recurring_yearly) VALUES (?, ?, ?, ?, ?)`,
		householdID, title, dateType, date, recurringYearly,
	)
	if err != nil {
		return nil, fmt.Errorf("insert important date: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(householdID, id)
}

func (s *ImportantDateStore) GetByID(householdID, id int64) (*model.ImportantDate, error) {
	row := s.db.QueryRow(
		`SELECT `+importantDateCols+` FROM important_dates WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	d, err := scanImportantDate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get important date: %w", err)
	}
	return d, nil
}

func (s *ImportantDateStore) List(householdID int64) ([]model.ImportantDate, error) {
	rows, err := s.db.Query(
		`SELECT `+importantDateCols+` FROM important_dates WHERE household_id = ? ORDER BY date ASC, id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list important dates: %w", err)
	}
	defer rows.Close()
	return collectImportantDates(rows)
}

// ListUpcoming returns dates on or after the given day (YYYY-MM-DD), plus
// yearly-recurring dates whose month-day falls in the window regardless of
// the stored year.
func (s *ImportantDateStore) ListUpcoming(householdID int64, from, to string) ([]model.ImportantDate, error) {
	rows, err := s.db.Query(
		`SELECT `+importantDateCols+` FROM important_dates
		 WHERE household_id = ? AND (
		     (date >= ? AND date <= ?)
		     OR (recurring_yearly = 1 AND strftime('%m-%d', date) BETWEEN strftime('%m-%d', ?) AND strftime('%m-%d', ?))
		 )
		 ORDER BY strftime('%m-%d', date) ASC, id ASC`,
		householdID, from, to, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list upcoming dates: %w", err)
	}
	defer rows.Close()
	return collectImportantDates(rows)
}

func (s *ImportantDateStore) FindByTitleExact(householdID int64, title string) ([]model.ImportantDate, error) {
	rows, err := s.db.Query(
		`SELECT `+importantDateCols+` FROM important_dates WHERE household_id = ? AND title = ? COLLATE NOCASE ORDER BY id ASC`,
		householdID, title,
	)
	if err != nil {
		return nil, fmt.Errorf("find important date by title: %w", err)
	}
	defer rows.Close()
	return collectImportantDates(rows)
}

func (s *ImportantDateStore) FindByTitleContains(householdID int64, title string) ([]model.ImportantDate, error) {
	rows, err := s.db.Query(
		`SELECT `+importantDateCols+` FROM important_dates WHERE household_id = ? AND title LIKE '%' || ? || '%' COLLATE NOCASE ESCAPE '\' ORDER BY id ASC`,
		householdID, escapeLike(title),
	)
	if err != nil {
		return nil, fmt.Errorf("find important date by partial title: %w", err)
	}
	defer rows.Close()
	return collectImportantDates(rows)
}

func (s *ImportantDateStore) Update(householdID, id int64, title, dateType, date string, recurringYearly bool) (*model.ImportantDate, error) {
	_, err := s.db.Exec(
		`UPDATE important_dates SET title = ?, type = ?, date = ?, recurring_yearly = ?, updated_at = datetime('now')
		 WHERE id = ? AND household_id = ?`,
		title, dateType, date, recurringYearly, id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update important date: %w", err)
	}
	return s.GetByID(householdID, id)
}

func (s *ImportantDateStore) Delete(householdID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM important_dates WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete important date: %w", err)
	}
	return nil
}

func collectImportantDates(rows *sql.Rows) ([]model.ImportantDate, error) {
	var out []model.ImportantDate
	for rows.Next() {
		d, err := scanImportantDate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan important date: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
