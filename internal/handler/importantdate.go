package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aduval/foyer/internal/auth"
	"github.com/aduval/foyer/internal/model"
	"github.com/aduval/foyer/internal/store"
	"github.com/aduval/foyer/internal/websocket"
)

type ImportantDateHandler struct {
	dates  *store.ImportantDateStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewImportantDateHandler(ds *store.ImportantDateStore, hub *websocket.Hub, logger *slog.Logger) *ImportantDateHandler {
	return &ImportantDateHandler{dates: ds, hub: hub, logger: logger}
}

func (h *ImportantDateHandler) broadcast(householdID int64) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, websocket.Invalidation("/dates"))
	}
}

var dateTypes = map[string]bool{
	"BIRTHDAY":    true,
	"ANNIVERSARY": true,
	"RENEWAL":     true,
	"DEADLINE":    true,
	"OTHER":       true,
}

type importantDateRequest struct {
	Title           string `json:"title"`
	Type            string `json:"type"`
	Date            string `json:"date"`
	RecurringYearly bool   `json:"recurring_yearly"`
}

func (r importantDateRequest) validate() string {
	if strings.TrimSpace(r.Title) == "" {
		return "title is required"
	}
	if !dateTypes[r.Type] {
		return "invalid type"
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return "date must be YYYY-MM-DD"
	}
	return ""
}

func (h *ImportantDateHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req importantDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	d, err := h.dates.Create(householdID, strings.TrimSpace(req.Title), req.Type, req.Date, req.RecurringYearly)
	if err != nil {
		h.logger.Error("create important date", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create date")
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusCreated, d)
}

// List handles GET /api/dates, optionally ?upcoming_days=N.
func (h *ImportantDateHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var dates []model.ImportantDate
	var err error
	if days := r.URL.Query().Get("upcoming_days"); days != "" {
		n, convErr := strconv.Atoi(days)
		if convErr != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "upcoming_days must be a non-negative integer")
			return
		}
		from := time.Now().Format("2006-01-02")
		to := time.Now().AddDate(0, 0, n).Format("2006-01-02")
		dates, err = h.dates.ListUpcoming(householdID, from, to)
	} else {
		dates, err = h.dates.List(householdID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list dates")
		return
	}
	if dates == nil {
		dates = []model.ImportantDate{}
	}
	writeJSON(w, http.StatusOK, dates)
}

func (h *ImportantDateHandler) Update(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	existing, err := h.dates.GetByID(householdID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get date")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "date not found")
		return
	}

	var req importantDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	d, err := h.dates.Update(householdID, id, strings.TrimSpace(req.Title), req.Type, req.Date, req.RecurringYearly)
	if err != nil {
		h.logger.Error("update important date", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update date")
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusOK, d)
}

func (h *ImportantDateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.dates.Delete(householdID, id); err != nil {
		h.logger.Error("delete important date", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete date")
		return
	}
	h.broadcast(householdID)
	w.WriteHeader(http.StatusNoContent)
}
