package handler

import (
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/aduval/foyer/internal/auth"
	"github.com/aduval/foyer/internal/database"
	"github.com/aduval/foyer/internal/model"
	"github.com/aduval/foyer/internal/store"
)

func setupBudgetHandler(t *testing.T) (*BudgetHandler, *sql.DB, int64) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h, err := store.NewHouseholdStore(db).Create("Maison")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBudgetHandler(store.NewBudgetStore(db), nil, logger), db, h.ID
}

func putEntry(t *testing.T, h *BudgetHandler, hid, id int64, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/api/budget/entries/"+strconv.FormatInt(id, 10), strings.NewReader(body))
	req.SetPathValue("id", strconv.FormatInt(id, 10))
	req = req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{HouseholdID: hid}))
	rr := httptest.NewRecorder()
	h.UpdateEntry(rr, req)
	return rr
}

func TestBudgetUpdateEntry(t *testing.T) {
	h, db, hid := setupBudgetHandler(t)
	budget := store.NewBudgetStore(db)

	created, err := budget.CreateEntry(hid, store.BudgetEntryInput{
		Type:        model.BudgetExpense,
		Label:       "Courses",
		AmountCents: 5400,
		OccurredOn:  "2025-04-05",
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	rr := putEntry(t, h, hid, created.ID, `{"amount_cents":6150}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var got model.BudgetEntry
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AmountCents != 6150 {
		t.Errorf("amount = %d, want 6150", got.AmountCents)
	}
	// Unset fields keep their current values.
	if got.Label != "Courses" || got.OccurredOn != "2025-04-05" {
		t.Errorf("entry = %+v", got)
	}
}

func TestBudgetUpdateEntryNotFound(t *testing.T) {
	h, _, hid := setupBudgetHandler(t)

	rr := putEntry(t, h, hid, 999, `{"amount_cents":100}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestBudgetUpdateEntryRejectsBadType(t *testing.T) {
	h, db, hid := setupBudgetHandler(t)
	budget := store.NewBudgetStore(db)

	created, err := budget.CreateEntry(hid, store.BudgetEntryInput{
		Type:        model.BudgetIncome,
		Label:       "Salaire",
		AmountCents: 250000,
		OccurredOn:  "2025-04-28",
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	rr := putEntry(t, h, hid, created.ID, `{"type":"WINDFALL"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}
