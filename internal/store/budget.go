package store

import (
	"database/sql"
	"fmt"

	"github.com/aduval/foyer/internal/model"
)

type BudgetStore struct {
	db *sql.DB
}

func NewBudgetStore(db *sql.DB) *BudgetStore {
	return &BudgetStore{db: db}
}

// --- Concrete entries ---

func scanBudgetEntry(scanner interface{ Scan(...any) error }) (*model.BudgetEntry, error) {
	var e model.BudgetEntry
	var listID, itemID, recurringID sql.NullInt64

	err := scanner.Scan(
		&e.ID, &e.HouseholdID, &e.Type, &e.Source, &e.Label, &e.AmountCents,
		&e.OccurredOn, &e.Forecast, &listID, &itemID, &recurringID,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.ShoppingListID = int64Ptr(listID)
	e.ShoppingItemID = int64Ptr(itemID)
	e.RecurringID = int64Ptr(recurringID)
	return &e, nil
}

const budgetEntryCols = `id, household_id, type, source, label, amount_cents, occurred_on, forecast, shopping_list_id, shopping_item_id, recurring_id, created_at, updated_at`

// BudgetEntryInput carries the writable fields of a concrete entry.
type BudgetEntryInput struct {
	Type           string
	Source         string
	Label          string
	AmountCents    int64
	OccurredOn     string // YYYY-MM-DD
	Forecast       bool
	ShoppingListID *int64
	ShoppingItemID *int64
	RecurringID    *int64
}

func (s *BudgetStore) CreateEntry(householdID int64, in BudgetEntryInput) (*model.BudgetEntry, error) {
	if in.Source == "" {
		in.Source = model.BudgetSourceManual
	}
	result, err := s.db.Exec(
		`INSERT INTO budget_entries (household_id, type, source, label, amount_cents, occurred_on, forecast, shopping_list_id, shopping_item_id, recurring_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		householdID, in.Type, in.Source, in.Label, in.AmountCents, in.OccurredOn,
		in.Forecast, nullInt64(in.ShoppingListID), nullInt64(in.ShoppingItemID), nullInt64(in.RecurringID),
	)
	if err != nil {
		return nil, fmt.Errorf("insert budget entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetEntryByID(householdID, id)
}

func (s *BudgetStore) GetEntryByID(householdID, id int64) (*model.BudgetEntry, error) {
	row := s.db.QueryRow(
		`SELECT `+budgetEntryCols+` FROM budget_entries WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	e, err := scanBudgetEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget entry: %w", err)
	}
	return e, nil
}

// ListEntriesByMonth returns concrete entries whose occurred_on falls in the
// given YYYY-MM month.
func (s *BudgetStore) ListEntriesByMonth(householdID int64, month string) ([]model.BudgetEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+budgetEntryCols+` FROM budget_entries
		 WHERE household_id = ? AND occurred_on >= ? || '-01' AND occurred_on <= ? || '-31'
		 ORDER BY occurred_on ASC, id ASC`,
		householdID, month, month,
	)
	if err != nil {
		return nil, fmt.Errorf("list budget entries: %w", err)
	}
	defer rows.Close()
	return collectBudgetEntries(rows)
}

func (s *BudgetStore) FindEntriesByLabelExact(householdID int64, label string) ([]model.BudgetEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+budgetEntryCols+` FROM budget_entries WHERE household_id = ? AND label = ? COLLATE NOCASE ORDER BY id ASC`,
		householdID, label,
	)
	if err != nil {
		return nil, fmt.Errorf("find budget entry by label: %w", err)
	}
	defer rows.Close()
	return collectBudgetEntries(rows)
}

func (s *BudgetStore) FindEntriesByLabelContains(householdID int64, label string) ([]model.BudgetEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+budgetEntryCols+` FROM budget_entries WHERE household_id = ? AND label LIKE '%' || ? || '%' COLLATE NOCASE ESCAPE '\' ORDER BY id ASC`,
		householdID, escapeLike(label),
	)
	if err != nil {
		return nil, fmt.Errorf("find budget entry by partial label: %w", err)
	}
	defer rows.Close()
	return collectBudgetEntries(rows)
}

func (s *BudgetStore) UpdateEntry(householdID, id int64, in BudgetEntryInput) (*model.BudgetEntry, error) {
	existing, err := s.GetEntryByID(householdID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if in.Source == "" {
		in.Source = existing.Source
	}
	_, err = s.db.Exec(
		`UPDATE budget_entries SET type = ?, source = ?, label = ?, amount_cents = ?, occurred_on = ?, forecast = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		in.Type, in.Source, in.Label, in.AmountCents, in.OccurredOn, in.Forecast, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update budget entry: %w", err)
	}
	return s.GetEntryByID(householdID, id)
}

func (s *BudgetStore) DeleteEntry(householdID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM budget_entries WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete budget entry: %w", err)
	}
	return nil
}

// --- Recurring entries ---

func scanRecurringEntry(scanner interface{ Scan(...any) error }) (*model.BudgetRecurringEntry, error) {
	var r model.BudgetRecurringEntry
	var day sql.NullInt64
	var end sql.NullString

	err := scanner.Scan(
		&r.ID, &r.HouseholdID, &r.Type, &r.Label, &r.AmountCents,
		&day, &r.StartMonth, &end, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.DayOfMonth = intPtr(day)
	r.EndMonth = stringPtr(end)
	return &r, nil
}

const recurringEntryCols = `id, household_id, type, label, amount_cents, day_of_month, start_month, end_month, created_at, updated_at`

// RecurringEntryInput carries the writable fields of a recurring entry.
type RecurringEntryInput struct {
	Type        string
	Label       string
	AmountCents int64
	DayOfMonth  *int
	StartMonth  string  // YYYY-MM
	EndMonth    *string // YYYY-MM
}

// checkMonthRange rejects an end month earlier than the start month.
// Months are YYYY-MM so string order is chronological order.
func checkMonthRange(start string, end *string) error {
	if end != nil && *end < start {
		return invariantf("end month %s precedes start month %s", *end, start)
	}
	return nil
}

func (s *BudgetStore) CreateRecurring(householdID int64, in RecurringEntryInput) (*model.BudgetRecurringEntry, error) {
	if err := checkMonthRange(in.StartMonth, in.EndMonth); err != nil {
		return nil, err
	}
	result, err := s.db.Exec(
		`INSERT INTO budget_recurring_entries (household_id, type, label, amount_cents, day_of_month, start_month, end_month)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		householdID, in.Type, in.Label, in.AmountCents, nullInt(in.DayOfMonth), in.StartMonth, nullString(in.EndMonth),
	)
	if err != nil {
		return nil, fmt.Errorf("insert recurring entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetRecurringByID(householdID, id)
}

func (s *BudgetStore) GetRecurringByID(householdID, id int64) (*model.BudgetRecurringEntry, error) {
	row := s.db.QueryRow(
		`SELECT `+recurringEntryCols+` FROM budget_recurring_entries WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	r, err := scanRecurringEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recurring entry: %w", err)
	}
	return r, nil
}

func (s *BudgetStore) ListRecurring(householdID int64) ([]model.BudgetRecurringEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+recurringEntryCols+` FROM budget_recurring_entries WHERE household_id = ? ORDER BY label COLLATE NOCASE ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recurring entries: %w", err)
	}
	defer rows.Close()
	return collectRecurringEntries(rows)
}

// ListRecurringActive returns recurring entries in effect for the given
// YYYY-MM month.
func (s *BudgetStore) ListRecurringActive(householdID int64, month string) ([]model.BudgetRecurringEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+recurringEntryCols+` FROM budget_recurring_entries
		 WHERE household_id = ? AND start_month <= ? AND (end_month IS NULL OR end_month >= ?)
		 ORDER BY label COLLATE NOCASE ASC`,
		householdID, month, month,
	)
	if err != nil {
		return nil, fmt.Errorf("list active recurring entries: %w", err)
	}
	defer rows.Close()
	return collectRecurringEntries(rows)
}

func (s *BudgetStore) FindRecurringByLabelExact(householdID int64, label string) ([]model.BudgetRecurringEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+recurringEntryCols+` FROM budget_recurring_entries WHERE household_id = ? AND label = ? COLLATE NOCASE ORDER BY id ASC`,
		householdID, label,
	)
	if err != nil {
		return nil, fmt.Errorf("find recurring entry by label: %w", err)
	}
	defer rows.Close()
	return collectRecurringEntries(rows)
}

func (s *BudgetStore) FindRecurringByLabelContains(householdID int64, label string) ([]model.BudgetRecurringEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+recurringEntryCols+` FROM budget_recurring_entries WHERE household_id = ? AND label LIKE '%' || ? || '%' COLLATE NOCASE ESCAPE '\' ORDER BY id ASC`,
		householdID, escapeLike(label),
	)
	if err != nil {
		return nil, fmt.Errorf("find recurring entry by partial label: %w", err)
	}
	defer rows.Close()
	return collectRecurringEntries(rows)
}

func (s *BudgetStore) UpdateRecurring(householdID, id int64, in RecurringEntryInput) (*model.BudgetRecurringEntry, error) {
	if err := checkMonthRange(in.StartMonth, in.EndMonth); err != nil {
		return nil, err
	}
	_, err := s.db.Exec(
		`UPDATE budget_recurring_entries SET type = ?, label = ?, amount_cents = ?, day_of_month = ?, start_month = ?, end_month = ?, updated_at = datetime('now')
		 WHERE id = ? AND household_id = ?`,
		in.Type, in.Label, in.AmountCents, nullInt(in.DayOfMonth), in.StartMonth, nullString(in.EndMonth), id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update recurring entry: %w", err)
	}
	return s.GetRecurringByID(householdID, id)
}

func (s *BudgetStore) DeleteRecurring(householdID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM budget_recurring_entries WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete recurring entry: %w", err)
	}
	return nil
}

// --- Compound reads ---

// GetMonthly assembles the month view: concrete entries, plus a projection
// for every active recurring entry that has no concrete entry linked to it
// in that month. Projections are not persisted.
func (s *BudgetStore) GetMonthly(householdID int64, month string) (*model.MonthlyBudget, error) {
	entries, err := s.ListEntriesByMonth(householdID, month)
	if err != nil {
		return nil, err
	}
	recurring, err := s.ListRecurringActive(householdID, month)
	if err != nil {
		return nil, err
	}

	materialized := make(map[int64]bool)
	for _, e := range entries {
		if e.RecurringID != nil {
			materialized[*e.RecurringID] = true
		}
	}

	mb := &model.MonthlyBudget{Month: month}
	mb.Entries = entries
	for _, e := range entries {
		switch e.Type {
		case model.BudgetIncome:
			mb.TotalIncomeCents += e.AmountCents
		case model.BudgetExpense:
			mb.TotalExpenseCents += e.AmountCents
		}
	}

	for _, r := range recurring {
		if materialized[r.ID] {
			continue
		}
		day := 1
		if r.DayOfMonth != nil {
			day = *r.DayOfMonth
		}
		rid := r.ID
		p := model.BudgetEntry{
			HouseholdID: householdID,
			Type:        r.Type,
			Source:      model.BudgetSourceRecurring,
			Label:       r.Label,
			AmountCents: r.AmountCents,
			OccurredOn:  fmt.Sprintf("%s-%02d", month, day),
			Forecast:    true,
			RecurringID: &rid,
		}
		mb.Projected = append(mb.Projected, p)
		switch r.Type {
		case model.BudgetIncome:
			mb.TotalIncomeCents += r.AmountCents
		case model.BudgetExpense:
			mb.TotalExpenseCents += r.AmountCents
		}
	}

	return mb, nil
}

// ConvertShoppingItem records a purchased shopping item as an expense and
// marks the item completed in one transaction. Either both writes land or
// neither does.
func (s *BudgetStore) ConvertShoppingItem(householdID, itemID int64, amountCents int64, occurredOn string) (*model.BudgetEntry, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(
		`SELECT i.id, i.list_id, i.name FROM shopping_items i
		 JOIN shopping_lists l ON l.id = i.list_id
		 WHERE i.id = ? AND l.household_id = ?`,
		itemID, householdID,
	)
	var id, listID int64
	var name string
	if err := row.Scan(&id, &listID, &name); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("get shopping item: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO budget_entries (household_id, type, source, label, amount_cents, occurred_on, shopping_list_id, shopping_item_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		householdID, model.BudgetExpense, model.BudgetSourceShoppingList, name, amountCents, occurredOn, listID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}
	entryID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE shopping_items SET completed = 1, updated_at = datetime('now') WHERE id = ?`,
		id,
	); err != nil {
		return nil, fmt.Errorf("mark item completed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetEntryByID(householdID, entryID)
}

func collectBudgetEntries(rows *sql.Rows) ([]model.BudgetEntry, error) {
	var out []model.BudgetEntry
	for rows.Next() {
		e, err := scanBudgetEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget entry: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func collectRecurringEntries(rows *sql.Rows) ([]model.BudgetRecurringEntry, error) {
	var out []model.BudgetRecurringEntry
	for rows.Next() {
		r, err := scanRecurringEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring entry: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}
