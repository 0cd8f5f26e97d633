package store

import (
	"errors"
	"testing"

	"github.com/aduval/foyer/internal/model"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func TestTaskCRUD(t *testing.T) {
	db := testDB(t)
	hid := seedHousehold(t, db, "Maison")
	tasks := NewTaskStore(db)

	created, err := tasks.Create(hid, TaskInput{
		Title:       "Nettoyer la gouttière",
		Description: "Avant les pluies",
		DueDate:     strp("2025-04-01"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != model.TaskStatusTodo {
		t.Errorf("default status = %s, want TODO", created.Status)
	}
	if created.DueDate == nil || *created.DueDate != "2025-04-01" {
		t.Errorf("due date = %v", created.DueDate)
	}

	got, err := tasks.GetByID(hid, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Title != "Nettoyer la gouttière" {
		t.Fatalf("get returned %+v", got)
	}

	updated, err := tasks.Update(hid, created.ID, TaskInput{
		Title:   "Nettoyer la gouttière",
		DueDate: strp("2025-04-02"),
		Status:  model.TaskStatusInProgress,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.TaskStatusInProgress || *updated.DueDate != "2025-04-02" {
		t.Errorf("update result %+v", updated)
	}

	done, err := tasks.SetStatus(hid, created.ID, model.TaskStatusDone)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if done.Status != model.TaskStatusDone {
		t.Errorf("status = %s", done.Status)
	}

	if err := tasks.Delete(hid, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = tasks.GetByID(hid, created.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("task still present after delete")
	}
}

func TestTaskCrossHouseholdInvisible(t *testing.T) {
	db := testDB(t)
	h1 := seedHousehold(t, db, "Maison")
	h2 := seedHousehold(t, db, "Chalet")
	tasks := NewTaskStore(db)

	created, err := tasks.Create(h1, TaskInput{Title: "Tondre la pelouse"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := tasks.GetByID(h2, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("task visible from another household")
	}

	matches, err := tasks.FindByNameExact(h2, "Tondre la pelouse")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("found %d matches across households", len(matches))
	}

	// Deleting through the wrong household is a no-op.
	if err := tasks.Delete(h2, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = tasks.GetByID(h1, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Error("task deleted through the wrong household")
	}
}

func TestCreateRecurring(t *testing.T) {
	db := testDB(t)
	hid := seedHousehold(t, db, "Maison")
	tasks := NewTaskStore(db)

	template, instance, err := tasks.CreateRecurring(hid, TaskInput{
		Title:         "Sortir les poubelles",
		DueDate:       strp("2025-04-07"),
		RecurUnit:     strp(model.RecurWeek),
		RecurInterval: intp(1),
	})
	if err != nil {
		t.Fatalf("create recurring: %v", err)
	}

	if !template.IsTemplate {
		t.Error("template row not marked as template")
	}
	if template.RecurUnit == nil || *template.RecurUnit != model.RecurWeek {
		t.Errorf("template recur unit = %v", template.RecurUnit)
	}
	if instance.IsTemplate {
		t.Error("instance marked as template")
	}
	if instance.ParentID == nil || *instance.ParentID != template.ID {
		t.Errorf("instance parent = %v, want %d", instance.ParentID, template.ID)
	}
	if instance.RecurUnit != nil {
		t.Error("instance carries recurrence fields")
	}

	// Templates stay out of day and status listings.
	byDay, err := tasks.ListByDay(hid, "2025-04-07")
	if err != nil {
		t.Fatalf("list by day: %v", err)
	}
	if len(byDay) != 1 || byDay[0].ID != instance.ID {
		t.Errorf("day listing = %+v, want only the instance", byDay)
	}
	byStatus, err := tasks.ListByStatus(hid, model.TaskStatusTodo)
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != instance.ID {
		t.Errorf("status listing = %+v, want only the instance", byStatus)
	}

	// But they show up for the scheduler.
	templates, err := tasks.ListTemplates(hid)
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(templates) != 1 || templates[0].ID != template.ID {
		t.Errorf("templates = %+v", templates)
	}

	latest, err := tasks.LatestInstance(hid, template.ID)
	if err != nil {
		t.Fatalf("latest instance: %v", err)
	}
	if latest == nil || latest.ID != instance.ID {
		t.Errorf("latest instance = %+v", latest)
	}

	next, err := tasks.CreateInstance(hid, template, "2025-04-14")
	if err != nil {
		t.Fatalf("create instance: %v", err)
	}
	latest, err = tasks.LatestInstance(hid, template.ID)
	if err != nil {
		t.Fatalf("latest instance: %v", err)
	}
	if latest == nil || latest.ID != next.ID {
		t.Errorf("latest instance after materialization = %+v", latest)
	}
}

func TestCreateRecurringRequiresRecurrence(t *testing.T) {
	db := testDB(t)
	hid := seedHousehold(t, db, "Maison")
	tasks := NewTaskStore(db)

	_, _, err := tasks.CreateRecurring(hid, TaskInput{Title: "Arroser les plantes"})
	if err == nil {
		t.Fatal("expected error without recurrence fields")
	}
	var ie *InvariantError
	if !errors.As(err, &ie) {
		t.Errorf("error type %T, want *InvariantError", err)
	}
}

func TestTaskNameSearchExcludesTemplates(t *testing.T) {
	db := testDB(t)
	hid := seedHousehold(t, db, "Maison")
	tasks := NewTaskStore(db)

	_, _, err := tasks.CreateRecurring(hid, TaskInput{
		Title:         "Nettoyer le filtre",
		DueDate:       strp("2025-05-01"),
		RecurUnit:     strp(model.RecurMonth),
		RecurInterval: intp(1),
	})
	if err != nil {
		t.Fatalf("create recurring: %v", err)
	}

	exact, err := tasks.FindByNameExact(hid, "nettoyer le filtre")
	if err != nil {
		t.Fatalf("find exact: %v", err)
	}
	if len(exact) != 1 || exact[0].IsTemplate {
		t.Errorf("exact matches = %+v, want the single instance", exact)
	}

	partial, err := tasks.FindByNameContains(hid, "filtre")
	if err != nil {
		t.Fatalf("find contains: %v", err)
	}
	if len(partial) != 1 {
		t.Errorf("partial matches = %d, want 1", len(partial))
	}
}

func TestDeleteTemplateRemovesInstances(t *testing.T) {
	db := testDB(t)
	hid := seedHousehold(t, db, "Maison")
	tasks := NewTaskStore(db)

	template, instance, err := tasks.CreateRecurring(hid, TaskInput{
		Title:         "Sortir les poubelles",
		DueDate:       strp("2025-05-01"),
		RecurUnit:     strp(model.RecurWeek),
		RecurInterval: intp(1),
	})
	if err != nil {
		t.Fatalf("create recurring: %v", err)
	}

	if err := tasks.Delete(hid, template.ID); err != nil {
		t.Fatalf("delete template: %v", err)
	}

	// The instance hangs off the template and must go with it.
	got, err := tasks.GetByID(hid, instance.ID)
	if err != nil {
		t.Fatalf("get instance: %v", err)
	}
	if got != nil {
		t.Errorf("instance %d survived template deletion", instance.ID)
	}
}
