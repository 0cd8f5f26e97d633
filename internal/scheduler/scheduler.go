// Package scheduler runs the background jobs: materializing recurring task
// instances and recurring budget entries, sending the daily reminders, and
// sweeping expired sessions and login codes.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aduval/foyer/internal/model"
	"github.com/aduval/foyer/internal/push"
	"github.com/aduval/foyer/internal/recurrence"
	"github.com/aduval/foyer/internal/store"
)

// cleaner is what the rate limiter exposes for the nightly sweep.
type cleaner interface {
	Cleanup()
}

// Deps carries everything the jobs touch. Reminder and RateLimiter may be
// nil when the corresponding subsystem is not configured.
type Deps struct {
	Logger      *slog.Logger
	Households  *store.HouseholdStore
	Tasks       *store.TaskStore
	Budget      *store.BudgetStore
	Sessions    *store.SessionStore
	MagicLinks  *store.MagicLinkStore
	Reminder    *push.Reminder
	RateLimiter cleaner
}

// Scheduler owns the cron runner.
type Scheduler struct {
	deps Deps
	cron *cron.Cron
}

// New builds the scheduler and registers the jobs. Schedules are local time:
// task materialization before the household wakes up, reminders at a civil
// hour, budget materialization just after midnight on the 1st.
func New(deps Deps) (*Scheduler, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Scheduler{deps: deps, cron: cron.New()}

	jobs := []struct {
		spec string
		name string
		run  func()
	}{
		{"0 6 * * *", "materialize recurring tasks", s.MaterializeRecurringTasks},
		{"10 0 1 * *", "materialize recurring budget", s.MaterializeRecurringBudget},
		{"30 3 * * *", "cleanup", s.Cleanup},
	}
	for _, j := range jobs {
		if _, err := s.cron.AddFunc(j.spec, j.run); err != nil {
			return nil, fmt.Errorf("register job %s: %w", j.name, err)
		}
	}
	if deps.Reminder != nil {
		if _, err := s.cron.AddFunc("0 8 * * *", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			deps.Reminder.Run(ctx)
		}); err != nil {
			return nil, fmt.Errorf("register job reminders: %w", err)
		}
	}
	return s, nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// MaterializeRecurringTasks walks every household's recurring templates and
// spawns the next instance once the previous one is done or overdue.
func (s *Scheduler) MaterializeRecurringTasks() {
	households, err := s.deps.Households.List()
	if err != nil {
		s.deps.Logger.Error("materialize tasks: list households", "error", err)
		return
	}
	today := time.Now().Format("2006-01-02")
	for _, h := range households {
		if err := s.materializeHouseholdTasks(h.ID, today); err != nil {
			s.deps.Logger.Error("materialize tasks", "household", h.ID, "error", err)
		}
	}
}

func (s *Scheduler) materializeHouseholdTasks(householdID int64, today string) error {
	templates, err := s.deps.Tasks.ListTemplates(householdID)
	if err != nil {
		return err
	}
	for i := range templates {
		tpl := &templates[i]
		if tpl.RecurUnit == nil || tpl.RecurInterval == nil {
			continue
		}
		latest, err := s.deps.Tasks.LatestInstance(householdID, tpl.ID)
		if err != nil {
			return err
		}
		if latest == nil || latest.DueDate == nil {
			continue
		}
		if latest.Status != model.TaskStatusDone && *latest.DueDate >= today {
			continue
		}
		next, err := recurrence.Next(*latest.DueDate, *tpl.RecurUnit, *tpl.RecurInterval)
		if err != nil {
			s.deps.Logger.Warn("materialize tasks: next date", "template", tpl.ID, "error", err)
			continue
		}
		if _, err := s.deps.Tasks.CreateInstance(householdID, tpl, next); err != nil {
			return err
		}
		s.deps.Logger.Info("recurring task materialized", "household", householdID, "template", tpl.ID, "due", next)
	}
	return nil
}

// MaterializeRecurringBudget writes the month's forecast entries for every
// active recurring budget line that has no concrete entry yet.
func (s *Scheduler) MaterializeRecurringBudget() {
	households, err := s.deps.Households.List()
	if err != nil {
		s.deps.Logger.Error("materialize budget: list households", "error", err)
		return
	}
	month := time.Now().Format("2006-01")
	for _, h := range households {
		if err := s.materializeHouseholdBudget(h.ID, month); err != nil {
			s.deps.Logger.Error("materialize budget", "household", h.ID, "error", err)
		}
	}
}

func (s *Scheduler) materializeHouseholdBudget(householdID int64, month string) error {
	active, err := s.deps.Budget.ListRecurringActive(householdID, month)
	if err != nil {
		return err
	}
	if len(active) == 0 {
		return nil
	}
	entries, err := s.deps.Budget.ListEntriesByMonth(householdID, month)
	if err != nil {
		return err
	}
	materialized := make(map[int64]bool)
	for _, e := range entries {
		if e.RecurringID != nil {
			materialized[*e.RecurringID] = true
		}
	}
	for i := range active {
		rec := &active[i]
		if materialized[rec.ID] {
			continue
		}
		day := 1
		if rec.DayOfMonth != nil {
			day = *rec.DayOfMonth
		}
		recID := rec.ID
		_, err := s.deps.Budget.CreateEntry(householdID, store.BudgetEntryInput{
			Type:        rec.Type,
			Source:      model.BudgetSourceRecurring,
			Label:       rec.Label,
			AmountCents: rec.AmountCents,
			OccurredOn:  fmt.Sprintf("%s-%02d", month, day),
			Forecast:    true,
			RecurringID: &recID,
		})
		if err != nil {
			return err
		}
		s.deps.Logger.Info("recurring budget entry materialized", "household", householdID, "recurring", rec.ID, "month", month)
	}
	return nil
}

// Cleanup sweeps expired sessions, dead login codes, and stale rate-limit
// buckets.
func (s *Scheduler) Cleanup() {
	if n, err := s.deps.Sessions.DeleteExpired(); err != nil {
		s.deps.Logger.Error("cleanup sessions", "error", err)
	} else if n > 0 {
		s.deps.Logger.Info("expired sessions removed", "count", n)
	}
	if n, err := s.deps.MagicLinks.DeleteExpired(); err != nil {
		s.deps.Logger.Error("cleanup magic links", "error", err)
	} else if n > 0 {
		s.deps.Logger.Info("dead login codes removed", "count", n)
	}
	if s.deps.RateLimiter != nil {
		s.deps.RateLimiter.Cleanup()
	}
}
