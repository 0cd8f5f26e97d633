package store

import (
	"database/sql"
	"fmt"

	"github.com/aduval/foyer/internal/model"
)

type EquipmentStore struct {
	db *sql.DB
}

func NewEquipmentStore(db *sql.DB) *EquipmentStore {
	return &EquipmentStore{db: db}
}

func scanEquipment(scanner interface{ Scan(...any) error }) (*model.Equipment, error) {
	var e model.Equipment
	var purchase, install sql.NullString
	var lifespan sql.NullInt64

	err := scanner.Scan(
		&e.ID, &e.HouseholdID, &e.Name, &purchase, &install, &lifespan,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.PurchaseDate = stringPtr(purchase)
	e.InstallDate = stringPtr(install)
	e.LifespanYears = intPtr(lifespan)
	return &e, nil
}

const equipmentCols = `id, household_id, name, purchase_date, install_date, lifespan_years, created_at, updated_at`

func (s *EquipmentStore) Create(householdID int64, name string, purchaseDate, installDate *string, lifespanYears *int) (*model.Equipment, error) {
	result, err := s.db.Exec(
		`INSERT INTO equipment (household_id, name, purchase_date, install_date, lifespan_years) VALUES (?, ?, ?, ?, ?)`,
		householdID, name, nullString(purchaseDate), nullString(installDate), nullInt(lifespanYears),
	)
	if err != nil {
		return nil, fmt.Errorf("insert equipment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(householdID, id)
}

func (s *EquipmentStore) GetByID(householdID, id int64) (*model.Equipment, error) {
	row := s.db.QueryRow(
		`SELECT `+equipmentCols+` FROM equipment WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	e, err := scanEquipment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get equipment: %w", err)
	}
	return e, nil
}

func (s *EquipmentStore) List(householdID int64) ([]model.Equipment, error) {
	rows, err := s.db.Query(
		`SELECT `+equipmentCols+` FROM equipment WHERE household_id = ? ORDER BY name COLLATE NOCASE ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	defer rows.Close()
	return collectEquipment(rows)
}

func (s *EquipmentStore) FindByNameExact(householdID int64, name string) ([]model.Equipment, error) {
	rows, err := s.db.Query(
		`SELECT `+equipmentCols+` FROM equipment WHERE household_id = ? AND name = ? COLLATE NOCASE ORDER BY id ASC`,
		householdID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("find equipment by name: %w", err)
	}
	defer rows.Close()
	return collectEquipment(rows)
}

func (s *EquipmentStore) FindByNameContains(householdID int64, name string) ([]model.Equipment, error) {
	rows, err := s.db.Query(
		`SELECT `+equipmentCols+` FROM equipment WHERE household_id = ? AND name LIKE '%' || ? || '%' COLLATE NOCASE ESCAPE '\' ORDER BY id ASC`,
		householdID, escapeLike(name),
	)
	if err != nil {
		return nil, fmt.Errorf("find equipment by partial name: %w", err)
	}
	defer rows.Close()
	return collectEquipment(rows)
}

func (s *EquipmentStore) Update(householdID, id int64, name string, purchaseDate, installDate *string, lifespanYears *int) (*model.Equipment, error) {
	_, err := s.db.Exec(
		`UPDATE equipment SET name = ?, purchase_date = ?, install_date = ?, lifespan_years = ?, updated_at = datetime('now')
		 WHERE id = ? AND household_id = ?`,
		name, nullString(purchaseDate), nullString(installDate), nullInt(lifespanYears), id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update equipment: %w", err)
	}
	return s.GetByID(householdID, id)
}

func (s *EquipmentStore) Delete(householdID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM equipment WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete equipment: %w", err)
	}
	return nil
}

func collectEquipment(rows *sql.Rows) ([]model.Equipment, error) {
	var out []model.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
