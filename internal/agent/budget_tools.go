package agent

import (
	"context"
	"time"

	"github.com/aduval/foyer/internal/format"
	"github.com/aduval/foyer/internal/model"
	"github.com/aduval/foyer/internal/resolve"
	"github.com/aduval/foyer/internal/store"
)

// Budget tools stay in the catalogue even when the budget feature is off:
// the executor answers such calls with a feature-unavailable message
// rather than an unknown tool, and Definitions hides them from the model.
func (r *Registry) registerBudgetTools() {
	register := func(t *Tool) {
		t.Feature = "budget"
		r.register(t)
	}

	register(&Tool{
		Name:        "add_budget_entry",
		Description: "Record an income or an expense. Amounts are in cents: 12,50 € is 1250.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type": map[string]any{
					"type": "string",
					"enum": []string{model.BudgetIncome, model.BudgetExpense},
				},
				"label":        map[string]any{"type": "string", "description": "What the entry is", "maxLength": 200},
				"amount_cents": map[string]any{"type": "integer", "description": "Amount in cents"},
				"occurred_on":  map[string]any{"type": "string", "description": "Date, YYYY-MM-DD. Defaults to today."},
				"forecast":     map[string]any{"type": "boolean", "description": "True for a planned entry that has not happened yet"},
			},
			"required": []string{"type", "label", "amount_cents"},
		},
		Handler: r.handleAddBudgetEntry,
	})

	register(&Tool{
		Name:        "update_budget_entry",
		Description: "Update a recorded income or expense, found by id or by current label. Only the provided fields change.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":            map[string]any{"type": "integer", "description": "Entry id"},
				"current_label": map[string]any{"type": "string", "description": "Current label, when the id is unknown"},
				"type": map[string]any{
					"type": "string",
					"enum": []string{model.BudgetIncome, model.BudgetExpense},
				},
				"label":        map[string]any{"type": "string", "description": "New label", "maxLength": 200},
				"amount_cents": map[string]any{"type": "integer", "description": "New amount in cents"},
				"occurred_on":  map[string]any{"type": "string", "description": "New date, YYYY-MM-DD"},
				"forecast":     map[string]any{"type": "boolean", "description": "True for a planned entry that has not happened yet"},
			},
		},
		Handler: r.handleUpdateBudgetEntry,
	})

	register(&Tool{
		Name:        "delete_budget_entry",
		Description: "Delete a recorded income or expense, found by id or label.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":    map[string]any{"type": "integer", "description": "Entry id"},
				"label": map[string]any{"type": "string", "description": "Label, when the id is unknown"},
			},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			e, err := r.resolveBudgetEntry(hid, argInt64Ptr(args, "id"), argString(args, "label"))
			if err != nil {
				return nil, err
			}
			if err := r.deps.Budget.DeleteEntry(hid, e.ID); err != nil {
				return nil, err
			}
			r.invalidate(hid, "/budget")
			return map[string]any{"deleted": e.Label}, nil
		},
	})

	register(&Tool{
		Name:        "add_recurring_budget_entry",
		Description: "Create a monthly recurring income or expense (rent, salary, subscription). Months are YYYY-MM; end_month must not precede start_month.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type": map[string]any{
					"type": "string",
					"enum": []string{model.BudgetIncome, model.BudgetExpense},
				},
				"label":        map[string]any{"type": "string", "description": "What the entry is", "maxLength": 200},
				"amount_cents": map[string]any{"type": "integer", "description": "Monthly amount in cents"},
				"day_of_month": map[string]any{"type": "integer", "description": "Day of the month it falls on (1-31)"},
				"start_month":  map[string]any{"type": "string", "description": "First month, YYYY-MM"},
				"end_month":    map[string]any{"type": "string", "description": "Last month, YYYY-MM. Omit for open-ended."},
			},
			"required": []string{"type", "label", "amount_cents", "start_month"},
		},
		Handler: r.handleAddRecurringEntry,
	})

	register(&Tool{
		Name:        "update_recurring_budget_entry",
		Description: "Update a recurring entry, found by id or by current label. Only the provided fields change.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":            map[string]any{"type": "integer", "description": "Recurring entry id"},
				"current_label": map[string]any{"type": "string", "description": "Current label, when the id is unknown"},
				"label":         map[string]any{"type": "string", "description": "New label", "maxLength": 200},
				"amount_cents":  map[string]any{"type": "integer", "description": "New monthly amount in cents"},
				"day_of_month":  map[string]any{"type": "integer", "description": "New day of the month"},
				"start_month":   map[string]any{"type": "string", "description": "New first month, YYYY-MM"},
				"end_month":     map[string]any{"type": "string", "description": "New last month, YYYY-MM"},
			},
		},
		Handler: r.handleUpdateRecurringEntry,
	})

	register(&Tool{
		Name:        "delete_recurring_budget_entry",
		Description: "Delete a recurring entry, found by id or label.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":    map[string]any{"type": "integer", "description": "Recurring entry id"},
				"label": map[string]any{"type": "string", "description": "Label, when the id is unknown"},
			},
		},
		Handler: func(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
			e, err := r.resolveRecurringEntry(hid, argInt64Ptr(args, "id"), argString(args, "label"))
			if err != nil {
				return nil, err
			}
			if err := r.deps.Budget.DeleteRecurring(hid, e.ID); err != nil {
				return nil, err
			}
			r.invalidate(hid, "/budget")
			return map[string]any{"deleted": e.Label}, nil
		},
	})

	register(&Tool{
		Name:        "get_monthly_budget",
		Description: "Get the budget for a month: concrete entries, projected recurring entries, and totals.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"month": map[string]any{"type": "string", "description": "Month, YYYY-MM. Defaults to the current month."},
			},
		},
		Handler: r.handleGetMonthlyBudget,
	})

	register(&Tool{
		Name:        "convert_shopping_item_to_expense",
		Description: "Record a bought shopping item as an expense and mark it completed, in one step. The item is found by id or name.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":           map[string]any{"type": "integer", "description": "Shopping item id"},
				"name":         map[string]any{"type": "string", "description": "Item name, when the id is unknown"},
				"amount_cents": map[string]any{"type": "integer", "description": "Actual price paid, in cents"},
				"occurred_on":  map[string]any{"type": "string", "description": "Purchase date, YYYY-MM-DD. Defaults to today."},
			},
			"required": []string{"amount_cents"},
		},
		Handler: r.handleConvertShoppingItem,
	})
}

func (r *Registry) handleAddBudgetEntry(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
	occurredOn := argString(args, "occurred_on")
	if occurredOn == "" {
		occurredOn = time.Now().Format("2006-01-02")
	}
	entry, err := r.deps.Budget.CreateEntry(hid, store.BudgetEntryInput{
		Type:        argString(args, "type"),
		Label:       argString(args, "label"),
		AmountCents: argInt64(args, "amount_cents"),
		OccurredOn:  occurredOn,
		Forecast:    argBool(args, "forecast"),
	})
	if err != nil {
		return nil, err
	}
	r.invalidate(hid, "/budget")
	return map[string]any{"entry": budgetEntryPayload(entry)}, nil
}

func (r *Registry) handleAddRecurringEntry(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
	entry, err := r.deps.Budget.CreateRecurring(hid, store.RecurringEntryInput{
		Type:        argString(args, "type"),
		Label:       argString(args, "label"),
		AmountCents: argInt64(args, "amount_cents"),
		DayOfMonth:  argIntPtr(args, "day_of_month"),
		StartMonth:  argString(args, "start_month"),
		EndMonth:    argStringPtr(args, "end_month"),
	})
	if err != nil {
		return nil, err
	}
	r.invalidate(hid, "/budget")
	return map[string]any{"recurring_entry": recurringEntryPayload(entry)}, nil
}

func (r *Registry) handleUpdateBudgetEntry(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
	e, err := r.resolveBudgetEntry(hid, argInt64Ptr(args, "id"), argString(args, "current_label"))
	if err != nil {
		return nil, err
	}
	in := store.BudgetEntryInput{
		Type:        e.Type,
		Source:      e.Source,
		Label:       e.Label,
		AmountCents: e.AmountCents,
		OccurredOn:  e.OccurredOn,
		Forecast:    e.Forecast,
	}
	if v := argStringPtr(args, "type"); v != nil {
		in.Type = *v
	}
	if v := argStringPtr(args, "label"); v != nil {
		in.Label = *v
	}
	if _, present := args["amount_cents"]; present {
		in.AmountCents = argInt64(args, "amount_cents")
	}
	if v := argStringPtr(args, "occurred_on"); v != nil {
		in.OccurredOn = *v
	}
	if _, present := args["forecast"]; present {
		in.Forecast = argBool(args, "forecast")
	}
	updated, err := r.deps.Budget.UpdateEntry(hid, e.ID, in)
	if err != nil {
		return nil, err
	}
	r.invalidate(hid, "/budget")
	return map[string]any{"entry": budgetEntryPayload(updated)}, nil
}

func (r *Registry) handleUpdateRecurringEntry(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
	e, err := r.resolveRecurringEntry(hid, argInt64Ptr(args, "id"), argString(args, "current_label"))
	if err != nil {
		return nil, err
	}
	in := store.RecurringEntryInput{
		Type:        e.Type,
		Label:       e.Label,
		AmountCents: e.AmountCents,
		DayOfMonth:  e.DayOfMonth,
		StartMonth:  e.StartMonth,
		EndMonth:    e.EndMonth,
	}
	if v := argStringPtr(args, "label"); v != nil {
		in.Label = *v
	}
	if _, present := args["amount_cents"]; present {
		in.AmountCents = argInt64(args, "amount_cents")
	}
	if v := argIntPtr(args, "day_of_month"); v != nil {
		in.DayOfMonth = v
	}
	if v := argStringPtr(args, "start_month"); v != nil {
		in.StartMonth = *v
	}
	if v := argStringPtr(args, "end_month"); v != nil {
		in.EndMonth = v
	}
	updated, err := r.deps.Budget.UpdateRecurring(hid, e.ID, in)
	if err != nil {
		return nil, err
	}
	r.invalidate(hid, "/budget")
	return map[string]any{"recurring_entry": recurringEntryPayload(updated)}, nil
}

func (r *Registry) handleGetMonthlyBudget(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
	month := argString(args, "month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	mb, err := r.deps.Budget.GetMonthly(hid, month)
	if err != nil {
		return nil, err
	}

	entries := make([]map[string]any, 0, len(mb.Entries))
	for i := range mb.Entries {
		entries = append(entries, budgetEntryPayload(&mb.Entries[i]))
	}
	projected := make([]map[string]any, 0, len(mb.Projected))
	for i := range mb.Projected {
		projected = append(projected, budgetEntryPayload(&mb.Projected[i]))
	}
	return map[string]any{
		"month":              mb.Month,
		"month_text":         format.Month(mb.Month),
		"entries":            entries,
		"projected":          projected,
		"total_income_text":  format.Euros(mb.TotalIncomeCents),
		"total_expense_text": format.Euros(mb.TotalExpenseCents),
		"balance_text":       format.Euros(mb.TotalIncomeCents - mb.TotalExpenseCents),
	}, nil
}

func (r *Registry) handleConvertShoppingItem(ctx context.Context, hid int64, args map[string]any) (map[string]any, error) {
	it, err := r.resolveShoppingItem(hid, argInt64Ptr(args, "id"), argString(args, "name"))
	if err != nil {
		return nil, err
	}
	occurredOn := argString(args, "occurred_on")
	if occurredOn == "" {
		occurredOn = time.Now().Format("2006-01-02")
	}
	entry, err := r.deps.Budget.ConvertShoppingItem(hid, it.ID, argInt64(args, "amount_cents"), occurredOn)
	if err != nil {
		return nil, err
	}
	// The item can vanish between resolution and the conversion tx.
	if entry == nil {
		return nil, &resolve.NotFoundError{Kind: "shopping item", Ref: it.Name}
	}
	r.invalidate(hid, "/budget", "/shopping")
	return map[string]any{"entry": budgetEntryPayload(entry), "item": it.Name}, nil
}

func budgetEntryPayload(e *model.BudgetEntry) map[string]any {
	out := map[string]any{
		"id":          e.ID,
		"type":        e.Type,
		"label":       e.Label,
		"amount_text": format.Euros(e.AmountCents),
		"date":        e.OccurredOn,
		"date_text":   format.Date(e.OccurredOn),
	}
	if e.Forecast {
		out["forecast"] = true
	}
	return out
}

func recurringEntryPayload(e *model.BudgetRecurringEntry) map[string]any {
	out := map[string]any{
		"id":               e.ID,
		"type":             e.Type,
		"label":            e.Label,
		"amount_text":      format.Euros(e.AmountCents),
		"start_month":      e.StartMonth,
		"start_month_text": format.Month(e.StartMonth),
	}
	if e.DayOfMonth != nil {
		out["day_of_month"] = *e.DayOfMonth
	}
	if e.EndMonth != nil {
		out["end_month"] = *e.EndMonth
		out["end_month_text"] = format.Month(*e.EndMonth)
	}
	return out
}
