package model

import "time"

type ShoppingList struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ShoppingItem struct {
	ID                 int64     `json:"id"`
	ListID             int64     `json:"list_id"`
	Name               string    `json:"name"`
	Completed          bool      `json:"completed"`
	EstimatedCostCents *int64    `json:"estimated_cost_cents"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
