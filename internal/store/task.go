package store

import (
	"database/sql"
	"fmt"

	"github.com/aduval/foyer/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

// TaskInput carries the writable task fields. Entity links are already
// resolved to ids by the caller.
type TaskInput struct {
	Title         string
	Description   string
	DueDate       *string
	ReminderDays  *int
	Status        string
	RecurUnit     *string
	RecurInterval *int
	ZoneID        *int64
	CategoryID    *int64
	ProjectID     *int64
	EquipmentID   *int64
	AnimalID      *int64
	PersonID      *int64
	AssigneeID    *int64
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var dueDate, recurUnit sql.NullString
	var reminderDays, recurInterval sql.NullInt64
	var parentID, zoneID, categoryID, projectID, equipmentID, animalID, personID, assigneeID sql.NullInt64

	err := scanner.Scan(
		&t.ID, &t.HouseholdID, &t.Title, &t.Description, &dueDate, &reminderDays,
		&t.Status, &recurUnit, &recurInterval, &t.IsTemplate, &parentID,
		&zoneID, &categoryID, &projectID, &equipmentID, &animalID, &personID, &assigneeID,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.DueDate = stringPtr(dueDate)
	t.ReminderDays = intPtr(reminderDays)
	t.RecurUnit = stringPtr(recurUnit)
	t.RecurInterval = intPtr(recurInterval)
	t.ParentID = int64Ptr(parentID)
	t.ZoneID = int64Ptr(zoneID)
	t.CategoryID = int64Ptr(categoryID)
	t.ProjectID = int64Ptr(projectID)
	t.EquipmentID = int64Ptr(equipmentID)
	t.AnimalID = int64Ptr(animalID)
	t.PersonID = int64Ptr(personID)
	t.AssigneeID = int64Ptr(assigneeID)
	return &t, nil
}

const taskCols = `id, household_id, title, description, due_date, reminder_days, status, recur_unit, recur_interval, is_template, parent_id, zone_id, category_id, project_id, equipment_id, animal_id, person_id, assignee_id, created_at, updated_at`

const insertTaskSQL = `INSERT INTO tasks
	(household_id, title, description, due_date, reminder_days, status, recur_unit, recur_interval, is_template, parent_id,
	 zone_id, category_id, project_id, equipment_id, animal_id, person_id, assignee_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertTask(e execer, householdID int64, in TaskInput, isTemplate bool, parentID *int64) (int64, error) {
	status := in.Status
	if status == "" {
		status = model.TaskStatusTodo
	}
	result, err := e.Exec(insertTaskSQL,
		householdID, in.Title, in.Description, nullString(in.DueDate), nullInt(in.ReminderDays),
		status, nullString(in.RecurUnit), nullInt(in.RecurInterval), isTemplate, nullInt64(parentID),
		nullInt64(in.ZoneID), nullInt64(in.CategoryID), nullInt64(in.ProjectID), nullInt64(in.EquipmentID),
		nullInt64(in.AnimalID), nullInt64(in.PersonID), nullInt64(in.AssigneeID),
	)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Create inserts a plain, non-recurring task.
func (s *TaskStore) Create(householdID int64, in TaskInput) (*model.Task, error) {
	id, err := insertTask(s.db, householdID, in, false, nil)
	if err != nil {
		return nil, err
	}
	return s.GetByID(householdID, id)
}

// CreateRecurring inserts a template row plus its first materialized
// instance, atomically. The template keeps the recurrence fields; the
// instance carries the concrete due date and points back at the template.
// Later instances are materialized by the scheduler.
func (s *TaskStore) CreateRecurring(householdID int64, in TaskInput) (template, instance *model.Task, err error) {
	if in.RecurUnit == nil || in.RecurInterval == nil {
		return nil, nil, invariantf("recurring task needs a recurrence unit and interval")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	templateID, err := insertTask(tx, householdID, in, true, nil)
	if err != nil {
		return nil, nil, err
	}

	instanceIn := in
	instanceIn.RecurUnit = nil
	instanceIn.RecurInterval = nil
	instanceID, err := insertTask(tx, householdID, instanceIn, false, &templateID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit tx: %w", err)
	}

	if template, err = s.GetByID(householdID, templateID); err != nil {
		return nil, nil, err
	}
	if instance, err = s.GetByID(householdID, instanceID); err != nil {
		return nil, nil, err
	}
	return template, instance, nil
}

func (s *TaskStore) GetByID(householdID, id int64) (*model.Task, error) {
	row := s.db.QueryRow(
		`SELECT `+taskCols+` FROM tasks WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListByStatus returns non-template tasks with the given status.
func (s *TaskStore) ListByStatus(householdID int64, status string) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks
		 WHERE household_id = ? AND status = ? AND is_template = 0
		 ORDER BY due_date IS NULL, due_date ASC, title COLLATE NOCASE ASC`,
		householdID, status,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by status: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListByDay returns non-template tasks due on the given day (YYYY-MM-DD).
func (s *TaskStore) ListByDay(householdID int64, day string) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks
		 WHERE household_id = ? AND due_date = ? AND is_template = 0
		 ORDER BY title COLLATE NOCASE ASC`,
		householdID, day,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by day: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListDueReminders returns open non-template tasks whose reminder window
// has opened on the given day: due_date minus reminder_days is on or before
// it, and the due date itself has not passed.
func (s *TaskStore) ListDueReminders(householdID int64, day string) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks
		 WHERE household_id = ? AND is_template = 0 AND status != ?
		   AND due_date IS NOT NULL AND reminder_days IS NOT NULL
		   AND date(due_date, '-' || reminder_days || ' days') <= ?
		   AND due_date >= ?
		 ORDER BY due_date ASC, title COLLATE NOCASE ASC`,
		householdID, model.TaskStatusDone, day, day,
	)
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// List returns every non-template task in the household.
func (s *TaskStore) List(householdID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks
		 WHERE household_id = ? AND is_template = 0
		 ORDER BY due_date IS NULL, due_date ASC, title COLLATE NOCASE ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListTemplates returns every recurring-task template in the household.
func (s *TaskStore) ListTemplates(householdID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE household_id = ? AND is_template = 1 ORDER BY id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list task templates: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// LatestInstance returns the most recently created instance of a template,
// or nil when none exists.
func (s *TaskStore) LatestInstance(householdID, templateID int64) (*model.Task, error) {
	row := s.db.QueryRow(
		`SELECT `+taskCols+` FROM tasks
		 WHERE household_id = ? AND parent_id = ? ORDER BY id DESC LIMIT 1`,
		householdID, templateID,
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest instance: %w", err)
	}
	return t, nil
}

// FindByNameExact matches non-template tasks by title, case-insensitively.
func (s *TaskStore) FindByNameExact(householdID int64, title string) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks
		 WHERE household_id = ? AND is_template = 0 AND title = ? COLLATE NOCASE ORDER BY id ASC`,
		householdID, title,
	)
	if err != nil {
		return nil, fmt.Errorf("find task by title: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// FindByNameContains matches non-template tasks by title substring.
func (s *TaskStore) FindByNameContains(householdID int64, title string) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks
		 WHERE household_id = ? AND is_template = 0 AND title LIKE '%' || ? || '%' COLLATE NOCASE ESCAPE '\' ORDER BY id ASC`,
		householdID, escapeLike(title),
	)
	if err != nil {
		return nil, fmt.Errorf("find task by partial title: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (s *TaskStore) Update(householdID, id int64, in TaskInput) (*model.Task, error) {
	status := in.Status
	if status == "" {
		status = model.TaskStatusTodo
	}
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, due_date = ?, reminder_days = ?, status = ?,
		 zone_id = ?, category_id = ?, project_id = ?, equipment_id = ?, animal_id = ?, person_id = ?, assignee_id = ?,
		 updated_at = datetime('now')
		 WHERE id = ? AND household_id = ?`,
		in.Title, in.Description, nullString(in.DueDate), nullInt(in.ReminderDays), status,
		nullInt64(in.ZoneID), nullInt64(in.CategoryID), nullInt64(in.ProjectID), nullInt64(in.EquipmentID),
		nullInt64(in.AnimalID), nullInt64(in.PersonID), nullInt64(in.AssigneeID),
		id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(householdID, id)
}

// SetStatus updates only the task status.
func (s *TaskStore) SetStatus(householdID, id int64, status string) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, updated_at = datetime('now') WHERE id = ? AND household_id = ?`,
		status, id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("set task status: %w", err)
	}
	return s.GetByID(householdID, id)
}

// CreateInstance materializes one new instance from a template with the
// given due date.
func (s *TaskStore) CreateInstance(householdID int64, template *model.Task, dueDate string) (*model.Task, error) {
	in := TaskInput{
		Title:        template.Title,
		Description:  template.Description,
		DueDate:      &dueDate,
		ReminderDays: template.ReminderDays,
		Status:       model.TaskStatusTodo,
		ZoneID:       template.ZoneID,
		CategoryID:   template.CategoryID,
		ProjectID:    template.ProjectID,
		EquipmentID:  template.EquipmentID,
		AnimalID:     template.AnimalID,
		PersonID:     template.PersonID,
		AssigneeID:   template.AssigneeID,
	}
	id, err := insertTask(s.db, householdID, in, false, &template.ID)
	if err != nil {
		return nil, err
	}
	return s.GetByID(householdID, id)
}

// Delete removes a task. Deleting a template cascades to its instances.
func (s *TaskStore) Delete(householdID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	var out []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}
