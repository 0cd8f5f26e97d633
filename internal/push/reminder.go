package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aduval/foyer/internal/format"
	"github.com/aduval/foyer/internal/store"
)

const dateLeadDays = 7

// Reminder scans each household once a day and notifies every subscribed
// browser about tasks entering their reminder window and important dates
// falling today or a week out.
type Reminder struct {
	service    *Service
	push       *store.PushStore
	tasks      *store.TaskStore
	dates      *store.ImportantDateStore
	households *store.HouseholdStore
	logger     *slog.Logger
}

// NewReminder creates a Reminder.
func NewReminder(svc *Service, pushStore *store.PushStore, taskStore *store.TaskStore, dateStore *store.ImportantDateStore, householdStore *store.HouseholdStore, logger *slog.Logger) *Reminder {
	return &Reminder{
		service:    svc,
		push:       pushStore,
		tasks:      taskStore,
		dates:      dateStore,
		households: householdStore,
		logger:     logger,
	}
}

// Run performs one daily pass. The scheduler invokes it once per morning,
// so no sent-log is needed for dedup.
func (r *Reminder) Run(ctx context.Context) {
	households, err := r.households.List()
	if err != nil {
		r.logger.Error("reminder: list households", "error", err)
		return
	}
	now := time.Now()
	for _, h := range households {
		r.runHousehold(ctx, h.ID, now)
	}
}

func (r *Reminder) runHousehold(ctx context.Context, householdID int64, now time.Time) {
	subs, err := r.push.ListByHousehold(householdID)
	if err != nil {
		r.logger.Error("reminder: list subscriptions", "household", householdID, "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payloads := r.collect(householdID, now)
	for _, payload := range payloads {
		for i := range subs {
			if err := r.service.Send(ctx, &subs[i], payload); err != nil {
				if errors.Is(err, ErrExpired) {
					if err := r.push.DeleteByEndpoint(subs[i].Endpoint); err != nil {
						r.logger.Warn("reminder: drop expired subscription", "error", err)
					}
					continue
				}
				r.logger.Warn("reminder: send", "household", householdID, "error", err)
			}
		}
	}
}

func (r *Reminder) collect(householdID int64, now time.Time) []Payload {
	var payloads []Payload
	today := now.Format("2006-01-02")

	tasks, err := r.tasks.ListDueReminders(householdID, today)
	if err != nil {
		r.logger.Error("reminder: list task reminders", "household", householdID, "error", err)
	} else {
		for _, t := range tasks {
			payloads = append(payloads, Payload{
				Title: "Rappel de tâche",
				Body:  fmt.Sprintf("« %s » est à faire le %s", t.Title, format.Date(*t.DueDate)),
				URL:   "/tasks",
				Tag:   fmt.Sprintf("task-%d", t.ID),
			})
		}
	}

	for _, lead := range []int{0, dateLeadDays} {
		day := now.AddDate(0, 0, lead).Format("2006-01-02")
		dates, err := r.dates.ListUpcoming(householdID, day, day)
		if err != nil {
			r.logger.Error("reminder: list important dates", "household", householdID, "error", err)
			continue
		}
		for _, d := range dates {
			body := fmt.Sprintf("C'est aujourd'hui : %s", d.Title)
			if lead > 0 {
				body = fmt.Sprintf("Dans une semaine : %s (%s)", d.Title, format.Date(day))
			}
			payloads = append(payloads, Payload{
				Title: "Date importante",
				Body:  body,
				URL:   "/dates",
				Tag:   fmt.Sprintf("date-%d-%d", d.ID, lead),
			})
		}
	}

	return payloads
}
