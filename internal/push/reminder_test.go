package push

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aduval/foyer/internal/database"
	"github.com/aduval/foyer/internal/store"
)

func newTestReminder(t *testing.T) (*Reminder, int64) {
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

	r := NewReminder(
		NewService(Config{VAPIDPublicKey: "pub", VAPIDPrivateKey: "priv"}),
		store.NewPushStore(db),
		store.NewTaskStore(db),
		store.NewImportantDateStore(db),
		households,
		slog.Default(),
	)
	return r, h.ID
}

func TestCollectTaskReminder(t *testing.T) {
	r, hid := newTestReminder(t)

	now := time.Date(2025, 4, 10, 8, 0, 0, 0, time.UTC)
	due := "2025-04-12"
	days := 3
	if _, err := r.tasks.Create(hid, store.TaskInput{Title: "Vidanger la chaudière", DueDate: &due, ReminderDays: &days}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	// Outside the window: reminder opens two days from now.
	farDue := "2025-04-20"
	if _, err := r.tasks.Create(hid, store.TaskInput{Title: "Tailler la haie", DueDate: &farDue, ReminderDays: &days}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	payloads := r.collect(hid, now)
	if len(payloads) != 1 {
		t.Fatalf("payloads = %d, want 1: %+v", len(payloads), payloads)
	}
	if payloads[0].Title != "Rappel de tâche" {
		t.Errorf("title = %q", payloads[0].Title)
	}
	if !strings.Contains(payloads[0].Body, "Vidanger la chaudière") || !strings.Contains(payloads[0].Body, "12 avril 2025") {
		t.Errorf("body = %q", payloads[0].Body)
	}
}

func TestCollectImportantDates(t *testing.T) {
	r, hid := newTestReminder(t)

	now := time.Date(2025, 4, 10, 8, 0, 0, 0, time.UTC)
	if _, err := r.dates.Create(hid, "Anniversaire de Léa", "BIRTHDAY", "1998-04-10", true); err != nil {
		t.Fatalf("create date: %v", err)
	}
	if _, err := r.dates.Create(hid, "Assurance habitation", "RENEWAL", "2025-04-17", false); err != nil {
		t.Fatalf("create date: %v", err)
	}

	payloads := r.collect(hid, now)
	if len(payloads) != 2 {
		t.Fatalf("payloads = %d, want 2: %+v", len(payloads), payloads)
	}
	if !strings.Contains(payloads[0].Body, "C'est aujourd'hui : Anniversaire de Léa") {
		t.Errorf("today body = %q", payloads[0].Body)
	}
	if !strings.Contains(payloads[1].Body, "Dans une semaine : Assurance habitation") {
		t.Errorf("lead body = %q", payloads[1].Body)
	}
}

func TestCollectDoneTasksSkipped(t *testing.T) {
	r, hid := newTestReminder(t)

	now := time.Date(2025, 4, 10, 8, 0, 0, 0, time.UTC)
	due := "2025-04-10"
	days := 1
	task, err := r.tasks.Create(hid, store.TaskInput{Title: "Sortir les poubelles", DueDate: &due, ReminderDays: &days})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := r.tasks.SetStatus(hid, task.ID, "DONE"); err != nil {
		t.Fatalf("set status: %v", err)
	}

	if payloads := r.collect(hid, now); len(payloads) != 0 {
		t.Errorf("payloads = %+v, want none", payloads)
	}
}

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if pub == "" || priv == "" {
		t.Error("empty key material")
	}
}
