package store

import (
	"errors"
	"testing"

	"github.com/aduval/foyer/internal/model"
)

func TestRecurringMonthRangeInvariant(t *testing.T) {
	db := testDB(t)
	hid := seedHousehold(t, db, "Maison")
	budget := NewBudgetStore(db)

	_, err := budget.CreateRecurring(hid, RecurringEntryInput{
		Type:        model.BudgetExpense,
		Label:       "Loyer",
		AmountCents: 95000,
		StartMonth:  "2025-06",
		EndMonth:    strp("2025-03"),
	})
	if err == nil {
		t.Fatal("expected error for end month before start month")
	}
	var ie *InvariantError
	if !errors.As(err, &ie) {
		t.Errorf("error type %T, want *InvariantError", err)
	}

	// A valid range is accepted, then the same rule guards updates.
	r, err := budget.CreateRecurring(hid, RecurringEntryInput{
		Type:        model.BudgetExpense,
		Label:       "Loyer",
		AmountCents: 95000,
		StartMonth:  "2025-01",
		EndMonth:    strp("2025-12"),
	})
	if err != nil {
		t.Fatalf("create recurring: %v", err)
	}
	_, err = budget.UpdateRecurring(hid, r.ID, RecurringEntryInput{
		Type:        model.BudgetExpense,
		Label:       "Loyer",
		AmountCents: 95000,
		StartMonth:  "2025-07",
		EndMonth:    strp("2025-02"),
	})
	if !errors.As(err, &ie) {
		t.Errorf("update error type %T, want *InvariantError", err)
	}

	// Open-ended and same-month ranges are fine.
	if _, err := budget.UpdateRecurring(hid, r.ID, RecurringEntryInput{
		Type:        model.BudgetExpense,
		Label:       "Loyer",
		AmountCents: 95000,
		StartMonth:  "2025-07",
	}); err != nil {
		t.Fatalf("open-ended update: %v", err)
	}
	if _, err := budget.UpdateRecurring(hid, r.ID, RecurringEntryInput{
		Type:        model.BudgetExpense,
		Label:       "Loyer",
		AmountCents: 95000,
		StartMonth:  "2025-07",
		EndMonth:    strp("2025-07"),
	}); err != nil {
		t.Fatalf("same-month update: %v", err)
	}
}

func TestGetMonthly(t *testing.T) {
	db := testDB(t)
	hid := seedHousehold(t, db, "Maison")
	budget := NewBudgetStore(db)

	salary, err := budget.CreateRecurring(hid, RecurringEntryInput{
		Type:        model.BudgetIncome,
		Label:       "Salaire",
		AmountCents: 250000,
		DayOfMonth:  intp(28),
		StartMonth:  "2025-01",
	})
	if err != nil {
		t.Fatalf("create recurring income: %v", err)
	}
	_, err = budget.CreateRecurring(hid, RecurringEntryInput{
		Type:        model.BudgetExpense,
		Label:       "Loyer",
		AmountCents: 95000,
		StartMonth:  "2025-01",
		EndMonth:    strp("2025-03"),
	})
	if err != nil {
		t.Fatalf("create recurring expense: %v", err)
	}

	// A concrete entry already materialized for the salary in April.
	sid := salary.ID
	if _, err := budget.CreateEntry(hid, BudgetEntryInput{
		Type:        model.BudgetIncome,
		Source:      model.BudgetSourceRecurring,
		Label:       "Salaire",
		AmountCents: 251200,
		OccurredOn:  "2025-04-28",
		RecurringID: &sid,
	}); err != nil {
		t.Fatalf("create concrete entry: %v", err)
	}
	if _, err := budget.CreateEntry(hid, BudgetEntryInput{
		Type:        model.BudgetExpense,
		Label:       "Courses",
		AmountCents: 8200,
		OccurredOn:  "2025-04-12",
	}); err != nil {
		t.Fatalf("create manual entry: %v", err)
	}

	mb, err := budget.GetMonthly(hid, "2025-04")
	if err != nil {
		t.Fatalf("get monthly: %v", err)
	}

	if len(mb.Entries) != 2 {
		t.Errorf("concrete entries = %d, want 2", len(mb.Entries))
	}
	// The salary is materialized so it must not be projected again, and the
	// rent ended in March so it projects nothing either.
	if len(mb.Projected) != 0 {
		t.Errorf("projected = %+v, want none", mb.Projected)
	}
	if mb.TotalIncomeCents != 251200 {
		t.Errorf("income = %d, want 251200", mb.TotalIncomeCents)
	}
	if mb.TotalExpenseCents != 8200 {
		t.Errorf("expense = %d, want 8200", mb.TotalExpenseCents)
	}

	// March: rent still active, salary not materialized, both projected.
	mb, err = budget.GetMonthly(hid, "2025-03")
	if err != nil {
		t.Fatalf("get monthly: %v", err)
	}
	if len(mb.Entries) != 0 {
		t.Errorf("march concrete entries = %d, want 0", len(mb.Entries))
	}
	if len(mb.Projected) != 2 {
		t.Fatalf("march projected = %d, want 2", len(mb.Projected))
	}
	for _, p := range mb.Projected {
		if !p.Forecast || p.Source != model.BudgetSourceRecurring {
			t.Errorf("projection not marked as forecast recurring: %+v", p)
		}
		if p.RecurringID == nil {
			t.Error("projection missing recurring link")
		}
	}
	if mb.TotalIncomeCents != 250000 || mb.TotalExpenseCents != 95000 {
		t.Errorf("march totals = %d / %d", mb.TotalIncomeCents, mb.TotalExpenseCents)
	}
}

func TestConvertShoppingItem(t *testing.T) {
	db := testDB(t)
	hid := seedHousehold(t, db, "Maison")
	shopping := NewShoppingStore(db)
	budget := NewBudgetStore(db)

	list, err := shopping.CreateList(hid, "Courses")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	item, err := shopping.CreateItem(hid, list.ID, "Perceuse", nil)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	entry, err := budget.ConvertShoppingItem(hid, item.ID, 12999, "2025-04-18")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if entry == nil {
		t.Fatal("convert returned nil entry")
	}
	if entry.Type != model.BudgetExpense || entry.Source != model.BudgetSourceShoppingList {
		t.Errorf("entry type/source = %s/%s", entry.Type, entry.Source)
	}
	if entry.Label != "Perceuse" || entry.AmountCents != 12999 {
		t.Errorf("entry = %+v", entry)
	}
	if entry.ShoppingItemID == nil || *entry.ShoppingItemID != item.ID {
		t.Errorf("entry item link = %v", entry.ShoppingItemID)
	}

	got, err := shopping.GetItemByID(hid, item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if !got.Completed {
		t.Error("item not marked completed after conversion")
	}
}

func TestConvertShoppingItemAtomic(t *testing.T) {
	db := testDB(t)
	h1 := seedHousehold(t, db, "Maison")
	h2 := seedHousehold(t, db, "Chalet")
	shopping := NewShoppingStore(db)
	budget := NewBudgetStore(db)

	list, err := shopping.CreateList(h1, "Courses")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	item, err := shopping.CreateItem(h1, list.ID, "Perceuse", nil)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	// Wrong household: nothing happens anywhere.
	entry, err := budget.ConvertShoppingItem(h2, item.ID, 12999, "2025-04-18")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if entry != nil {
		t.Error("conversion crossed households")
	}
	got, err := shopping.GetItemByID(h1, item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.Completed {
		t.Error("item touched by failed conversion")
	}
	entries, err := budget.ListEntriesByMonth(h1, "2025-04")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries written by failed conversion: %+v", entries)
	}
}

func TestBudgetEntryUpdateAndLabelLookup(t *testing.T) {
	db := testDB(t)
	hid := seedHousehold(t, db, "Maison")
	budget := NewBudgetStore(db)

	created, err := budget.CreateEntry(hid, BudgetEntryInput{
		Type:        model.BudgetExpense,
		Label:       "Courses",
		AmountCents: 5400,
		OccurredOn:  "2025-04-05",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := budget.UpdateEntry(hid, created.ID, BudgetEntryInput{
		Type:        model.BudgetExpense,
		Label:       "Courses Leclerc",
		AmountCents: 6150,
		OccurredOn:  "2025-04-06",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Label != "Courses Leclerc" || updated.AmountCents != 6150 || updated.OccurredOn != "2025-04-06" {
		t.Errorf("updated entry = %+v", updated)
	}
	if updated.Source != model.BudgetSourceManual {
		t.Errorf("source = %s, want preserved MANUAL", updated.Source)
	}

	exact, err := budget.FindEntriesByLabelExact(hid, "courses leclerc")
	if err != nil {
		t.Fatalf("find exact: %v", err)
	}
	if len(exact) != 1 || exact[0].ID != created.ID {
		t.Errorf("exact matches = %+v", exact)
	}

	partial, err := budget.FindEntriesByLabelContains(hid, "leclerc")
	if err != nil {
		t.Fatalf("find contains: %v", err)
	}
	if len(partial) != 1 {
		t.Errorf("partial matches = %d, want 1", len(partial))
	}

	missing, err := budget.UpdateEntry(hid, created.ID+100, BudgetEntryInput{
		Type: model.BudgetExpense, Label: "x", AmountCents: 1, OccurredOn: "2025-04-06",
	})
	if err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if missing != nil {
		t.Errorf("update of missing entry returned %+v", missing)
	}
}
