package scheduler

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/aduval/foyer/internal/database"
	"github.com/aduval/foyer/internal/model"
	"github.com/aduval/foyer/internal/store"
)

func newTestScheduler(t *testing.T) (*Scheduler, int64) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	households := store.NewHouseholdStore(db)
	h, err := households.Create("Maison")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	s, err := New(Deps{
		Logger:     slog.Default(),
		Households: households,
		Tasks:      store.NewTaskStore(db),
		Budget:     store.NewBudgetStore(db),
		Sessions:   store.NewSessionStore(db),
		MagicLinks: store.NewMagicLinkStore(db),
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return s, h.ID
}

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func TestMaterializeSpawnsNextInstanceWhenOverdue(t *testing.T) {
	s, hid := newTestScheduler(t)

	tpl, first, err := s.deps.Tasks.CreateRecurring(hid, store.TaskInput{
		Title:         "Nettoyer le filtre",
		DueDate:       strp("2025-03-01"),
		RecurUnit:     strp(model.RecurMonth),
		RecurInterval: intp(1),
	})
	if err != nil {
		t.Fatalf("create recurring: %v", err)
	}

	// First instance is overdue and still open.
	if err := s.materializeHouseholdTasks(hid, "2025-03-15"); err != nil {
		t.Fatalf("materialize: %v", err)
	}

	latest, err := s.deps.Tasks.LatestInstance(hid, tpl.ID)
	if err != nil {
		t.Fatalf("latest instance: %v", err)
	}
	if latest.ID == first.ID {
		t.Fatal("no new instance materialized")
	}
	if latest.DueDate == nil || *latest.DueDate != "2025-04-01" {
		t.Errorf("due date = %v, want 2025-04-01", latest.DueDate)
	}
	if latest.Status != model.TaskStatusTodo {
		t.Errorf("status = %s", latest.Status)
	}

	// Second run on the same day: the new instance is open and not yet
	// overdue, so nothing more is spawned.
	if err := s.materializeHouseholdTasks(hid, "2025-03-15"); err != nil {
		t.Fatalf("materialize again: %v", err)
	}
	again, err := s.deps.Tasks.LatestInstance(hid, tpl.ID)
	if err != nil {
		t.Fatalf("latest instance: %v", err)
	}
	if again.ID != latest.ID {
		t.Error("second run spawned a duplicate instance")
	}
}

func TestMaterializeSpawnsNextInstanceWhenDone(t *testing.T) {
	s, hid := newTestScheduler(t)

	tpl, first, err := s.deps.Tasks.CreateRecurring(hid, store.TaskInput{
		Title:         "Arroser les plantes",
		DueDate:       strp("2025-04-10"),
		RecurUnit:     strp(model.RecurWeek),
		RecurInterval: intp(2),
	})
	if err != nil {
		t.Fatalf("create recurring: %v", err)
	}
	if _, err := s.deps.Tasks.SetStatus(hid, first.ID, model.TaskStatusDone); err != nil {
		t.Fatalf("set status: %v", err)
	}

	// Done before its due date: the next instance appears immediately.
	if err := s.materializeHouseholdTasks(hid, "2025-04-08"); err != nil {
		t.Fatalf("materialize: %v", err)
	}

	latest, err := s.deps.Tasks.LatestInstance(hid, tpl.ID)
	if err != nil {
		t.Fatalf("latest instance: %v", err)
	}
	if latest.DueDate == nil || *latest.DueDate != "2025-04-24" {
		t.Errorf("due date = %v, want 2025-04-24", latest.DueDate)
	}
}

func TestMaterializeBudgetForecastsOncePerMonth(t *testing.T) {
	s, hid := newTestScheduler(t)

	day := 5
	rec, err := s.deps.Budget.CreateRecurring(hid, store.RecurringEntryInput{
		Type:        model.BudgetExpense,
		Label:       "Loyer",
		AmountCents: 95000,
		DayOfMonth:  &day,
		StartMonth:  "2025-01",
	})
	if err != nil {
		t.Fatalf("create recurring: %v", err)
	}

	if err := s.materializeHouseholdBudget(hid, "2025-04"); err != nil {
		t.Fatalf("materialize: %v", err)
	}

	entries, err := s.deps.Budget.ListEntriesByMonth(hid, "2025-04")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.OccurredOn != "2025-04-05" || !e.Forecast || e.Source != model.BudgetSourceRecurring {
		t.Errorf("entry = %+v", e)
	}
	if e.RecurringID == nil || *e.RecurringID != rec.ID {
		t.Errorf("recurring link = %v", e.RecurringID)
	}

	// Idempotent: a second run adds nothing.
	if err := s.materializeHouseholdBudget(hid, "2025-04"); err != nil {
		t.Fatalf("materialize again: %v", err)
	}
	entries, err = s.deps.Budget.ListEntriesByMonth(hid, "2025-04")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %d after second run, want 1", len(entries))
	}
}

func TestCleanupRemovesExpiredAuthState(t *testing.T) {
	s, _ := newTestScheduler(t)
	// Nothing expired yet; the sweep must simply not error.
	s.Cleanup()
}
