package agent

import (
	"context"

	"github.com/aduval/foyer/internal/format"
	"github.com/aduval/foyer/internal/model"
	"github.com/aduval/foyer/internal/store"
)

// taskLinkParams are the entity-reference arguments shared by create_task
// and update_task. Each link accepts either an id or a name; names go
// through the resolver.
func taskLinkParams() map[string]any {
	props := map[string]any{}
	for _, link := range []struct{ key, desc string }{
		{"zone", "Name of the zone the task belongs to (e.g. Jardin, Garage)"},
		{"category", "Name of the task category"},
		{"project", "Name of the project the task belongs to"},
		{"equipment", "Name of the equipment the task concerns"},
		{"animal", "Name of the animal the task concerns"},
		{"person", "Name of the household member the task concerns"},
	} {
		props[link.key] = map[string]any{"type": "string", "description": link.desc}
		props[link.key+"_id"] = map[string]any{"type": "integer", "description": "Id alternative to " + link.key}
	}
	return props
}

// resolveTaskLinks turns link arguments into foreign keys, collecting the
// resolved names for the confirmation payload.
func (r *Registry) resolveTaskLinks(hid int64, args map[string]any, in *store.TaskInput) (map[string]string, error) {
	names := map[string]string{}

	if args["zone"] != nil || args["zone_id"] != nil {
		z, err := r.resolveZone(hid, argInt64Ptr(args, "zone_id"), argString(args, "zone"))
		if err != nil {
			return nil, err
		}
		in.ZoneID, names["zone"] = &z.ID, z.Name
	}
	if args["category"] != nil || args["category_id"] != nil {
		c, err := r.resolveCategory(hid, argInt64Ptr(args, "category_id"), argString(args, "category"))
		if err != nil {
			return nil, err
		}
		in.CategoryID, names["category"] = &c.ID, c.Name
	}
	if args["project"] != nil || args["project_id"] != nil {
		p, err := r.resolveProject(hid, argInt64Ptr(args, "project_id"), argString(args, "project"))
		if err != nil {
			return nil, err
		}
		in.ProjectID, names["project"] = &p.ID, p.Name
	}
	if args["equipment"] != nil || args["equipment_id"] != nil {
		e, err := r.resolveEquipment(hid, argInt64Ptr(args, "equipment_id"), argString(args, "equipment"))
		if err != nil {
			return nil, err
		}
		in.EquipmentID, names["equipment"] = &e.ID, e.Name
	}
	if args["animal"] != nil || args["animal_id"] != nil {
		a, err := r.resolveAnimal(hid, argInt64Ptr(args, "animal_id"), argString(args, "animal"))
		if err != nil {
			return nil, err
		}
		in.AnimalID, names["animal"] = &a.ID, a.Name
	}
	if args["person"] != nil || args["person_id"] != nil {
		p, err := r.resolvePerson(hid, argInt64Ptr(args, "person_id"), argString(args, "person"))
		if err != nil {
			return nil, err
		}
		in.PersonID, names["person"] = &p.ID, p.Name
	}
	return names, nil
}

// taskPayload denormalizes a task for the model: formatted due date plus
// the resolved link names, so no follow-up query is needed to confirm.
func taskPayload(t *model.Task, names map[string]string) map[string]any {
	p := map[string]any{
		"id":     t.ID,
		"title":  t.Title,
		"status": t.Status,
	}
	if t.Description != "" {
		p["description"] = t.Description
	}
	if t.DueDate != nil {
		p["due_date"] = *t.DueDate
		p["due_date_text"] = format.Date(*t.DueDate)
	}
	if t.ReminderDays != nil {
		p["reminder_days"] = *t.ReminderDays
	}
	if t.RecurUnit != nil && t.RecurInterval != nil {
		p["recurrence"] = map[string]any{"unit": *t.RecurUnit, "interval": *t.RecurInterval}
	}
	for k, v := range names {
		p[k] = v
	}
	return p
}

func (r *Registry) registerTaskTools() {
	createProps := map[string]any{
		"title":       map[string]any{"type": "string", "description": "Task title", "maxLength": 200},
		"description": map[string]any{"type": "string", "description": "Optional details"},
		"due_date":    map[string]any{"type": "string", "description": "Due date, YYYY-MM-DD"},
		"reminder_days": map[string]any{
			"type":        "integer",
			"description": "Days before the due date to send a reminder",
		},
		"recur_unit": map[string]any{
			"type":        "string",
			"description": "Repeat unit for a recurring task",
			"enum":        []string{model.RecurDay, model.RecurWeek, model.RecurMonth, model.RecurYear},
		},
		"recur_interval": map[string]any{
			"type":        "integer",
			"description": "Repeat every N units",
		},
	}
	for k, v := range taskLinkParams() {
		createProps[k] = v
	}

	r.register(&Tool{
		Name:        "create_task",
		Description: "Create a household task. Link it to a zone, category, project, equipment, animal or person by name; set recur_unit and recur_interval to make it recurring.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": createProps,
			"required":   []string{"title"},
		},
		Handler: r.handleCreateTask,
	})

	updateProps := map[string]any{
		"id":            map[string]any{"type": "integer", "description": "Task id"},
		"current_title": map[string]any{"type": "string", "description": "Current title, when the id is unknown"},
		"title":         map[string]any{"type": "string", "description": "New title", "maxLength": 200},
		"description":   map[string]any{"type": "string", "description": "New details"},
		"due_date":      map[string]any{"type": "string", "description": "New due date, YYYY-MM-DD"},
		"reminder_days": map[string]any{"type": "integer", "description": "New reminder lead, in days"},
	}
	for k, v := range taskLinkParams() {
		updateProps[k] = v
	}

	r.register(&Tool{
		Name:        "update_task",
		Description: "Update an existing task, found by id or by current_title. Only the provided fields change.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": updateProps,
		},
		Handler: r.handleUpdateTask,
	})

	r.register(&Tool{
		Name:        "set_task_status",
		Description: "Move a task to TODO, IN_PROGRESS or DONE.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":    map[string]any{"type": "integer", "description": "Task id"},
				"title": map[string]any{"type": "string", "description": "Task title, when the id is unknown"},
				"status": map[string]any{
					"type": "string",
					"enum": []string{model.TaskStatusTodo, model.TaskStatusInProgress, model.TaskStatusDone},
				},
			},
			"required": []string{"status"},
		},
		Handler: r.handleSetTaskStatus,
	})

	r.register(&Tool{
		Name:        "delete_task",
		Description: "Delete a task, found by id or title. Deleting a recurring task's template removes its future occurrences too.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":    map[string]any{"type": "integer", "description": "Task id"},
				"title": map[string]any{"type": "string", "description": "Task title, when the id is unknown"},
			},
		},
		Handler: r.handleDeleteTask,
	})

	r.register(&Tool{
		Name:        "list_tasks",
		Description: "List the household's tasks, optionally filtered by status or by due day.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"status": map[string]any{
					"type": "string",
					"enum": []string{model.TaskStatusTodo, model.TaskStatusInProgress, model.TaskStatusDone},
				},
				"day": map[string]any{"type": "string", "description": "Due day, YYYY-MM-DD"},
			},
		},
		Handler: r.handleListTasks,
	})
}

func (r *Registry) handleCreateTask(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
	in := store.TaskInput{
		Title:        argString(args, "title"),
		Description:  argString(args, "description"),
		DueDate:      argStringPtr(args, "due_date"),
		ReminderDays: argIntPtr(args, "reminder_days"),
	}
	names, err := r.resolveTaskLinks(hid, args, &in)
	if err != nil {
		return nil, err
	}

	var task *model.Task
	if unit := argStringPtr(args, "recur_unit"); unit != nil {
		in.RecurUnit = unit
		in.RecurInterval = argIntPtr(args, "recur_interval")
		if in.RecurInterval == nil {
			one := 1
			in.RecurInterval = &one
		}
		if in.DueDate == nil {
			return nil, validationf("create_task", "a recurring task needs a due_date for its first occurrence")
		}
		_, instance, err := r.deps.Tasks.CreateRecurring(hid, in)
		if err != nil {
			return nil, err
		}
		task = instance
	} else {
		task, err = r.deps.Tasks.Create(hid, in)
		if err != nil {
			return nil, err
		}
	}

	r.invalidate(hid, "/tasks")
	r.illustrate(hid, "task", task.ID, task.Title)
	return map[string]any{"task": taskPayload(task, names)}, nil
}

func (r *Registry) handleUpdateTask(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
	task, err := r.resolveTask(hid, argInt64Ptr(args, "id"), argString(args, "current_title"))
	if err != nil {
		return nil, err
	}

	in := store.TaskInput{
		Title:        task.Title,
		Description:  task.Description,
		DueDate:      task.DueDate,
		ReminderDays: task.ReminderDays,
		Status:       task.Status,
		ZoneID:       task.ZoneID,
		CategoryID:   task.CategoryID,
		ProjectID:    task.ProjectID,
		EquipmentID:  task.EquipmentID,
		AnimalID:     task.AnimalID,
		PersonID:     task.PersonID,
		AssigneeID:   task.AssigneeID,
	}
	if v := argStringPtr(args, "title"); v != nil {
		in.Title = *v
	}
	if v := argStringPtr(args, "description"); v != nil {
		in.Description = *v
	}
	if v := argStringPtr(args, "due_date"); v != nil {
		in.DueDate = v
	}
	if v := argIntPtr(args, "reminder_days"); v != nil {
		in.ReminderDays = v
	}
	names, err := r.resolveTaskLinks(hid, args, &in)
	if err != nil {
		return nil, err
	}

	updated, err := r.deps.Tasks.Update(hid, task.ID, in)
	if err != nil {
		return nil, err
	}
	r.invalidate(hid, "/tasks")
	return map[string]any{"task": taskPayload(updated, names)}, nil
}

func (r *Registry) handleSetTaskStatus(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
	task, err := r.resolveTask(hid, argInt64Ptr(args, "id"), argString(args, "title"))
	if err != nil {
		return nil, err
	}
	updated, err := r.deps.Tasks.SetStatus(hid, task.ID, argString(args, "status"))
	if err != nil {
		return nil, err
	}
	r.invalidate(hid, "/tasks")
	return map[string]any{"task": taskPayload(updated, nil)}, nil
}

func (r *Registry) handleDeleteTask(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
	task, err := r.resolveTask(hid, argInt64Ptr(args, "id"), argString(args, "title"))
	if err != nil {
		return nil, err
	}
	if err := r.deps.Tasks.Delete(hid, task.ID); err != nil {
		return nil, err
	}
	r.invalidate(hid, "/tasks")
	return map[string]any{"deleted": task.Title}, nil
}

func (r *Registry) handleListTasks(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
	var (
		tasks []model.Task
		err   error
	)
	switch {
	case args["day"] != nil:
		tasks, err = r.deps.Tasks.ListByDay(hid, argString(args, "day"))
	case args["status"] != nil:
		tasks, err = r.deps.Tasks.ListByStatus(hid, argString(args, "status"))
	default:
		tasks, err = r.deps.Tasks.List(hid)
	}
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(tasks))
	for i := range tasks {
		out = append(out, taskPayload(&tasks[i], nil))
	}
	return map[string]any{"tasks": out, "count": len(out)}, nil
}
