package agent

import (
	"context"
	"time"

	"github.com/aduval/foyer/internal/format"
	"github.com/aduval/foyer/internal/model"
)

func (r *Registry) registerDateTools() {
	r.register(&Tool{
		Name:        "add_important_date",
		Description: "Record an important date: a birthday, an anniversary, a renewal, a deadline. Birthdays usually recur yearly.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{"type": "string", "description": "What the date is", "maxLength": 200},
				"type": map[string]any{
					"type": "string",
					"enum": []string{"BIRTHDAY", "ANNIVERSARY", "RENEWAL", "DEADLINE", "OTHER"},
				},
				"date":             map[string]any{"type": "string", "description": "The date, YYYY-MM-DD"},
				"recurring_yearly": map[string]any{"type": "boolean", "description": "True if it comes back every year"},
			},
			"required": []string{"title", "type", "date"},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			d, err := r.deps.Dates.Create(hid, argString(args, "title"), argString(args, "type"),
				argString(args, "date"), argBool(args, "recurring_yearly"))
			if err != nil {
				return nil, err
			}
			r.invalidate(hid, "/dates")
			return map[string]any{"date": importantDatePayload(d)}, nil
		},
	})

	r.register(&Tool{
		Name:        "update_important_date",
		Description: "Update an important date, found by id or by current_title. Only the provided fields change.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":            map[string]any{"type": "integer", "description": "Important date id"},
				"current_title": map[string]any{"type": "string", "description": "Current title, when the id is unknown"},
				"title":         map[string]any{"type": "string", "description": "New title", "maxLength": 200},
				"type": map[string]any{
					"type": "string",
					"enum": []string{"BIRTHDAY", "ANNIVERSARY", "RENEWAL", "DEADLINE", "OTHER"},
				},
				"date":             map[string]any{"type": "string", "description": "New date, YYYY-MM-DD"},
				"recurring_yearly": map[string]any{"type": "boolean", "description": "True if it comes back every year"},
			},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			d, err := r.resolveImportantDate(hid, argInt64Ptr(args, "id"), argString(args, "current_title"))
			if err != nil {
				return nil, err
			}
			title, dateType, date, yearly := d.Title, d.Type, d.Date, d.RecurringYearly
			if v := argStringPtr(args, "title"); v != nil {
				title = *v
			}
			if v := argStringPtr(args, "type"); v != nil {
				dateType = *v
			}
			if v := argStringPtr(args, "date"); v != nil {
				date = *v
			}
			if _, present := args["recurring_yearly"]; present {
				yearly = argBool(args, "recurring_yearly")
			}
			updated, err := r.deps.Dates.Update(hid, d.ID, title, dateType, date, yearly)
			if err != nil {
				return nil, err
			}
			r.invalidate(hid, "/dates")
			return map[string]any{"date": importantDatePayload(updated)}, nil
		},
	})

	r.register(&Tool{
		Name:        "delete_important_date",
		Description: "Delete an important date, found by id or title.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":    map[string]any{"type": "integer", "description": "Important date id"},
				"title": map[string]any{"type": "string", "description": "Title, when the id is unknown"},
			},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			d, err := r.resolveImportantDate(hid, argInt64Ptr(args, "id"), argString(args, "title"))
			if err != nil {
				return nil, err
			}
			if err := r.deps.Dates.Delete(hid, d.ID); err != nil {
				return nil, err
			}
			r.invalidate(hid, "/dates")
			return map[string]any{"deleted": d.Title}, nil
		},
	})

	r.register(&Tool{
		Name:        "list_important_dates",
		Description: "List the household's important dates, optionally only the upcoming ones.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"upcoming_days": map[string]any{
					"type":        "integer",
					"description": "Only dates in the next N days, counting yearly recurrences",
				},
			},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			var (
				dates []model.ImportantDate
				err   error
			)
			if n := argIntPtr(args, "upcoming_days"); n != nil {
				now := time.Now()
				from := now.Format("2006-01-02")
				to := now.AddDate(0, 0, *n).Format("2006-01-02")
				dates, err = r.deps.Dates.ListUpcoming(hid, from, to)
			} else {
				dates, err = r.deps.Dates.List(hid)
			}
			if err != nil {
				return nil, err
			}
			out := make([]map[string]any, 0, len(dates))
			for i := range dates {
				out = append(out, importantDatePayload(&dates[i]))
			}
			return map[string]any{"dates": out, "count": len(out)}, nil
		},
	})
}

func importantDatePayload(d *model.ImportantDate) map[string]any {
	out := map[string]any{
		"id":        d.ID,
		"title":     d.Title,
		"type":      d.Type,
		"date":      d.Date,
		"date_text": format.Date(d.Date),
	}
	if d.RecurringYearly {
		out["recurring_yearly"] = true
	}
	return out
}
