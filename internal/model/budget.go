package model

import "time"

// Budget entry types.
const (
	BudgetIncome  = "INCOME"
	BudgetExpense = "EXPENSE"
)

// Budget entry sources.
const (
	BudgetSourceManual       = "MANUAL"
	BudgetSourceDocument     = "DOCUMENT"
	BudgetSourceShoppingList = "SHOPPING_LIST"
	BudgetSourceRecurring    = "RECURRING"
)

// BudgetEntry is a concrete income or expense. Amounts are integer minor
// currency units (cents).
type BudgetEntry struct {
	ID             int64     `json:"id"`
	HouseholdID    int64     `json:"household_id"`
	Type           string    `json:"type"`
	Source         string    `json:"source"`
	Label          string    `json:"label"`
	AmountCents    int64     `json:"amount_cents"`
	OccurredOn     string    `json:"occurred_on"` // YYYY-MM-DD
	Forecast       bool      `json:"forecast"`
	ShoppingListID *int64    `json:"shopping_list_id"`
	ShoppingItemID *int64    `json:"shopping_item_id"`
	RecurringID    *int64    `json:"recurring_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BudgetRecurringEntry is a monthly income/expense template. EndMonth, when
// set, must not precede StartMonth.
type BudgetRecurringEntry struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Type        string    `json:"type"`
	Label       string    `json:"label"`
	AmountCents int64     `json:"amount_cents"`
	DayOfMonth  *int      `json:"day_of_month"`
	StartMonth  string    `json:"start_month"` // YYYY-MM
	EndMonth    *string   `json:"end_month"`   // YYYY-MM
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MonthlyBudget is the compound monthly read: concrete entries plus
// projections from recurring entries that have no concrete entry yet
// for the month.
type MonthlyBudget struct {
	Month             string        `json:"month"` // YYYY-MM
	Entries           []BudgetEntry `json:"entries"`
	Projected         []BudgetEntry `json:"projected"`
	TotalIncomeCents  int64         `json:"total_income_cents"`
	TotalExpenseCents int64         `json:"total_expense_cents"`
}
