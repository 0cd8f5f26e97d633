package model

import "time"

// NamedEntity is the common shape of the simple household reference entities:
// zones, categories, animals, and people.
type NamedEntity struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Project struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Equipment struct {
	ID            int64     `json:"id"`
	HouseholdID   int64     `json:"household_id"`
	Name          string    `json:"name"`
	PurchaseDate  *string   `json:"purchase_date"` // YYYY-MM-DD
	InstallDate   *string   `json:"install_date"`  // YYYY-MM-DD
	LifespanYears *int      `json:"lifespan_years"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
