package model

import "time"

type ImportantDate struct {
	ID              int64     `json:"id"`
	HouseholdID     int64     `json:"household_id"`
	Title           string    `json:"title"`
	Type            string    `json:"type"`
	Date            string    `json:"date"` // YYYY-MM-DD
	RecurringYearly bool      `json:"recurring_yearly"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
