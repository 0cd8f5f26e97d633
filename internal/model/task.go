package model

import "time"

// Task statuses.
const (
	TaskStatusTodo       = "TODO"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusDone       = "DONE"
)

// Recurrence units.
const (
	RecurDay   = "DAY"
	RecurWeek  = "WEEK"
	RecurMonth = "MONTH"
	RecurYear  = "YEAR"
)

// Task is a household task. A recurring task is stored as a template row
// (IsTemplate true) plus materialized instance rows pointing back at it via
// ParentID. Templates never show up in day or status queries.
type Task struct {
	ID            int64     `json:"id"`
	HouseholdID   int64     `json:"household_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	DueDate       *string   `json:"due_date"` // YYYY-MM-DD
	ReminderDays  *int      `json:"reminder_days"`
	Status        string    `json:"status"`
	RecurUnit     *string   `json:"recur_unit"`
	RecurInterval *int      `json:"recur_interval"`
	IsTemplate    bool      `json:"is_template"`
	ParentID      *int64    `json:"parent_id"`
	ZoneID        *int64    `json:"zone_id"`
	CategoryID    *int64    `json:"category_id"`
	ProjectID     *int64    `json:"project_id"`
	EquipmentID   *int64    `json:"equipment_id"`
	AnimalID      *int64    `json:"animal_id"`
	PersonID      *int64    `json:"person_id"`
	AssigneeID    *int64    `json:"assignee_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
