package store

import (
	"database/sql"
	"fmt"

	"github.com/aduval/foyer/internal/model"
)

type ShoppingStore struct {
	db *sql.DB
}

func NewShoppingStore(db *sql.DB) *ShoppingStore {
	return &ShoppingStore{db: db}
}

// --- List methods ---

func scanShoppingList(scanner interface{ Scan(...any) error }) (*model.ShoppingList, error) {
	var l model.ShoppingList
	err := scanner.Scan(&l.ID, &l.HouseholdID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const shoppingListCols = `id, household_id, name, created_at, updated_at`

func (s *ShoppingStore) CreateList(householdID int64, name string) (*model.ShoppingList, error) {
	result, err := s.db.Exec(
		`INSERT INTO shopping_lists (household_id, name) VALUES (?, ?)`,
		householdID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert shopping list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetListByID(householdID, id)
}

func (s *ShoppingStore) GetListByID(householdID, id int64) (*model.ShoppingList, error) {
	row := s.db.QueryRow(
		`SELECT `+shoppingListCols+` FROM shopping_lists WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	l, err := scanShoppingList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping list: %w", err)
	}
	return l, nil
}

func (s *ShoppingStore) ListLists(householdID int64) ([]model.ShoppingList, error) {
	rows, err := s.db.Query(
		`SELECT `+shoppingListCols+` FROM shopping_lists WHERE household_id = ? ORDER BY name COLLATE NOCASE ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping lists: %w", err)
	}
	defer rows.Close()
	return collectShoppingLists(rows)
}

func (s *ShoppingStore) FindListsByNameExact(householdID int64, name string) ([]model.ShoppingList, error) {
	rows, err := s.db.Query(
		`SELECT `+shoppingListCols+` FROM shopping_lists WHERE household_id = ? AND name = ? COLLATE NOCASE ORDER BY id ASC`,
		householdID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("find shopping list by name: %w", err)
	}
	defer rows.Close()
	return collectShoppingLists(rows)
}

func (s *ShoppingStore) FindListsByNameContains(householdID int64, name string) ([]model.ShoppingList, error) {
	rows, err := s.db.Query(
		`SELECT `+shoppingListCols+` FROM shopping_lists WHERE household_id = ? AND name LIKE '%' || ? || '%' COLLATE NOCASE ESCAPE '\' ORDER BY id ASC`,
		householdID, escapeLike(name),
	)
	if err != nil {
		return nil, fmt.Errorf("find shopping list by partial name: %w", err)
	}
	defer rows.Close()
	return collectShoppingLists(rows)
}

func (s *ShoppingStore) UpdateList(householdID, id int64, name string) (*model.ShoppingList, error) {
	_, err := s.db.Exec(
		`UPDATE shopping_lists SET name = ?, updated_at = datetime('now') WHERE id = ? AND household_id = ?`,
		name, id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update shopping list: %w", err)
	}
	return s.GetListByID(householdID, id)
}

func (s *ShoppingStore) DeleteList(householdID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_lists WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete shopping list: %w", err)
	}
	return nil
}

// --- Item methods ---
// Items carry no household id of their own; scope is enforced by joining
// through the owning list on every query.

func scanShoppingItem(scanner interface{ Scan(...any) error }) (*model.ShoppingItem, error) {
	var it model.ShoppingItem
	var cost sql.NullInt64
	err := scanner.Scan(&it.ID, &it.ListID, &it.Name, &it.Completed, &cost, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	it.EstimatedCostCents = int64Ptr(cost)
	return &it, nil
}

const shoppingItemCols = `i.id, i.list_id, i.name, i.completed, i.estimated_cost_cents, i.created_at, i.updated_at`

const shoppingItemJoin = ` FROM shopping_items i JOIN shopping_lists l ON l.id = i.list_id `

func (s *ShoppingStore) CreateItem(householdID, listID int64, name string, estimatedCostCents *int64) (*model.ShoppingItem, error) {
	list, err := s.GetListByID(householdID, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, fmt.Errorf("shopping list %d not in household", listID)
	}

	result, err := s.db.Exec(
		`INSERT INTO shopping_items (list_id, name, estimated_cost_cents) VALUES (?, ?, ?)`,
		listID, name, nullInt64(estimatedCostCents),
	)
	if err != nil {
		return nil, fmt.Errorf("insert shopping item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItemByID(householdID, id)
}

func (s *ShoppingStore) GetItemByID(householdID, id int64) (*model.ShoppingItem, error) {
	row := s.db.QueryRow(
		`SELECT `+shoppingItemCols+shoppingItemJoin+`WHERE i.id = ? AND l.household_id = ?`,
		id, householdID,
	)
	it, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping item: %w", err)
	}
	return it, nil
}

func (s *ShoppingStore) ListItems(householdID, listID int64) ([]model.ShoppingItem, error) {
	rows, err := s.db.Query(
		`SELECT `+shoppingItemCols+shoppingItemJoin+`WHERE i.list_id = ? AND l.household_id = ? ORDER BY i.completed ASC, i.name COLLATE NOCASE ASC`,
		listID, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	defer rows.Close()
	return collectShoppingItems(rows)
}

func (s *ShoppingStore) FindItemsByNameExact(householdID int64, name string) ([]model.ShoppingItem, error) {
	rows, err := s.db.Query(
		`SELECT `+shoppingItemCols+shoppingItemJoin+`WHERE l.household_id = ? AND i.name = ? COLLATE NOCASE ORDER BY i.id ASC`,
		householdID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("find shopping item by name: %w", err)
	}
	defer rows.Close()
	return collectShoppingItems(rows)
}

func (s *ShoppingStore) FindItemsByNameContains(householdID int64, name string) ([]model.ShoppingItem, error) {
	rows, err := s.db.Query(
		`SELECT `+shoppingItemCols+shoppingItemJoin+`WHERE l.household_id = ? AND i.name LIKE '%' || ? || '%' COLLATE NOCASE ESCAPE '\' ORDER BY i.id ASC`,
		householdID, escapeLike(name),
	)
	if err != nil {
		return nil, fmt.Errorf("find shopping item by partial name: %w", err)
	}
	defer rows.Close()
	return collectShoppingItems(rows)
}

func (s *ShoppingStore) UpdateItem(householdID, id int64, name string, estimatedCostCents *int64) (*model.ShoppingItem, error) {
	existing, err := s.GetItemByID(householdID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	_, err = s.db.Exec(
		`UPDATE shopping_items SET name = ?, estimated_cost_cents = ?, updated_at = datetime('now') WHERE id = ?`,
		name, nullInt64(estimatedCostCents), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update shopping item: %w", err)
	}
	return s.GetItemByID(householdID, id)
}

// SetItemCompleted toggles the completed flag.
func (s *ShoppingStore) SetItemCompleted(householdID, id int64, completed bool) (*model.ShoppingItem, error) {
	existing, err := s.GetItemByID(householdID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	_, err = s.db.Exec(
		`UPDATE shopping_items SET completed = ?, updated_at = datetime('now') WHERE id = ?`,
		completed, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set item completed: %w", err)
	}
	return s.GetItemByID(householdID, id)
}

func (s *ShoppingStore) DeleteItem(householdID, id int64) error {
	existing, err := s.GetItemByID(householdID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	_, err = s.db.Exec(`DELETE FROM shopping_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping item: %w", err)
	}
	return nil
}

func collectShoppingLists(rows *sql.Rows) ([]model.ShoppingList, error) {
	var out []model.ShoppingList
	for rows.Next() {
		l, err := scanShoppingList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping list: %w", err)
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func collectShoppingItems(rows *sql.Rows) ([]model.ShoppingItem, error) {
	var out []model.ShoppingItem
	for rows.Next() {
		it, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}
