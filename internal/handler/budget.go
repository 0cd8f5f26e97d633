package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aduval/foyer/internal/auth"
	"github.com/aduval/foyer/internal/model"
	"github.com/aduval/foyer/internal/store"
	"github.com/aduval/foyer/internal/websocket"
)

type BudgetHandler struct {
	budget *store.BudgetStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewBudgetHandler(bs *store.BudgetStore, hub *websocket.Hub, logger *slog.Logger) *BudgetHandler {
	return &BudgetHandler{budget: bs, hub: hub, logger: logger}
}

func (h *BudgetHandler) broadcast(householdID int64) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, websocket.Invalidation("/budget"))
	}
}

func validEntryType(t string) bool {
	return t == model.BudgetIncome || t == model.BudgetExpense
}

type budgetEntryRequest struct {
	Type        string `json:"type"`
	Label       string `json:"label"`
	AmountCents int64  `json:"amount_cents"`
	OccurredOn  string `json:"occurred_on"`
}

func (h *BudgetHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req budgetEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Label = strings.TrimSpace(req.Label)
	if !validEntryType(req.Type) || req.Label == "" || req.AmountCents <= 0 {
		writeError(w, http.StatusBadRequest, "type, label and a positive amount_cents are required")
		return
	}
	if req.OccurredOn == "" {
		req.OccurredOn = time.Now().Format("2006-01-02")
	}

	entry, err := h.budget.CreateEntry(householdID, store.BudgetEntryInput{
		Type:        req.Type,
		Label:       req.Label,
		AmountCents: req.AmountCents,
		OccurredOn:  req.OccurredOn,
	})
	if err != nil {
		h.logger.Error("create budget entry", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create entry")
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusCreated, entry)
}

func (h *BudgetHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	existing, err := h.budget.GetEntryByID(householdID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get entry")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}

	var req budgetEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	// Unset fields keep their current value.
	if req.Type == "" {
		req.Type = existing.Type
	}
	if strings.TrimSpace(req.Label) == "" {
		req.Label = existing.Label
	}
	if req.AmountCents == 0 {
		req.AmountCents = existing.AmountCents
	}
	if req.OccurredOn == "" {
		req.OccurredOn = existing.OccurredOn
	}
	if !validEntryType(req.Type) {
		writeError(w, http.StatusBadRequest, "invalid type")
		return
	}

	entry, err := h.budget.UpdateEntry(householdID, id, store.BudgetEntryInput{
		Type:        req.Type,
		Source:      existing.Source,
		Label:       strings.TrimSpace(req.Label),
		AmountCents: req.AmountCents,
		OccurredOn:  req.OccurredOn,
		Forecast:    existing.Forecast,
	})
	if err != nil {
		h.logger.Error("update budget entry", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update entry")
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusOK, entry)
}

func (h *BudgetHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.budget.DeleteEntry(householdID, id); err != nil {
		h.logger.Error("delete budget entry", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete entry")
		return
	}
	h.broadcast(householdID)
	w.WriteHeader(http.StatusNoContent)
}

// Monthly handles GET /api/budget/monthly?month=YYYY-MM, the compound read
// merging concrete entries with projections.
func (h *BudgetHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	monthly, err := h.budget.GetMonthly(householdID, month)
	if err != nil {
		h.logger.Error("monthly budget", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute monthly budget")
		return
	}
	writeJSON(w, http.StatusOK, monthly)
}

type recurringEntryRequest struct {
	Type        string  `json:"type"`
	Label       string  `json:"label"`
	AmountCents int64   `json:"amount_cents"`
	DayOfMonth  *int    `json:"day_of_month"`
	StartMonth  string  `json:"start_month"`
	EndMonth    *string `json:"end_month"`
}

func (h *BudgetHandler) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req recurringEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Label = strings.TrimSpace(req.Label)
	if !validEntryType(req.Type) || req.Label == "" || req.AmountCents <= 0 || req.StartMonth == "" {
		writeError(w, http.StatusBadRequest, "type, label, amount_cents and start_month are required")
		return
	}

	rec, err := h.budget.CreateRecurring(householdID, store.RecurringEntryInput{
		Type:        req.Type,
		Label:       req.Label,
		AmountCents: req.AmountCents,
		DayOfMonth:  req.DayOfMonth,
		StartMonth:  req.StartMonth,
		EndMonth:    req.EndMonth,
	})
	if err != nil {
		var ie *store.InvariantError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		h.logger.Error("create recurring entry", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create recurring entry")
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusCreated, rec)
}

func (h *BudgetHandler) ListRecurring(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	recs, err := h.budget.ListRecurring(householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list recurring entries")
		return
	}
	if recs == nil {
		recs = []model.BudgetRecurringEntry{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *BudgetHandler) UpdateRecurring(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	existing, err := h.budget.GetRecurringByID(householdID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get recurring entry")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "recurring entry not found")
		return
	}

	var req recurringEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	// Unset fields keep their current value.
	if req.Type == "" {
		req.Type = existing.Type
	}
	if strings.TrimSpace(req.Label) == "" {
		req.Label = existing.Label
	}
	if req.AmountCents == 0 {
		req.AmountCents = existing.AmountCents
	}
	if req.DayOfMonth == nil {
		req.DayOfMonth = existing.DayOfMonth
	}
	if req.StartMonth == "" {
		req.StartMonth = existing.StartMonth
	}
	if req.EndMonth == nil {
		req.EndMonth = existing.EndMonth
	}
	if !validEntryType(req.Type) {
		writeError(w, http.StatusBadRequest, "invalid type")
		return
	}

	rec, err := h.budget.UpdateRecurring(householdID, id, store.RecurringEntryInput{
		Type:        req.Type,
		Label:       strings.TrimSpace(req.Label),
		AmountCents: req.AmountCents,
		DayOfMonth:  req.DayOfMonth,
		StartMonth:  req.StartMonth,
		EndMonth:    req.EndMonth,
	})
	if err != nil {
		var ie *store.InvariantError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		h.logger.Error("update recurring entry", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update recurring entry")
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusOK, rec)
}

func (h *BudgetHandler) DeleteRecurring(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.budget.DeleteRecurring(householdID, id); err != nil {
		h.logger.Error("delete recurring entry", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recurring entry")
		return
	}
	h.broadcast(householdID)
	w.WriteHeader(http.StatusNoContent)
}

type convertItemRequest struct {
	ItemID      int64  `json:"item_id"`
	AmountCents int64  `json:"amount_cents"`
	OccurredOn  string `json:"occurred_on"`
}

// ConvertShoppingItem handles POST /api/budget/convert-shopping-item: one
// transaction creating the expense and checking off the item.
func (h *BudgetHandler) ConvertShoppingItem(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req convertItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ItemID == 0 || req.AmountCents <= 0 {
		writeError(w, http.StatusBadRequest, "item_id and a positive amount_cents are required")
		return
	}
	if req.OccurredOn == "" {
		req.OccurredOn = time.Now().Format("2006-01-02")
	}

	entry, err := h.budget.ConvertShoppingItem(householdID, req.ItemID, req.AmountCents, req.OccurredOn)
	if err != nil {
		h.logger.Error("convert shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to convert item")
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "shopping item not found")
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusCreated, entry)
}
