package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aduval/foyer/internal/auth"
	"github.com/aduval/foyer/internal/model"
	"github.com/aduval/foyer/internal/store"
	"github.com/aduval/foyer/internal/websocket"
)

// NamedHandler serves the simple reference entities (zones, categories,
// animals, people), which share one CRUD shape.
type NamedHandler struct {
	store  *store.NamedStore
	kind   string
	path   string
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewNamedHandler(s *store.NamedStore, kind, path string, hub *websocket.Hub, logger *slog.Logger) *NamedHandler {
	return &NamedHandler{store: s, kind: kind, path: path, hub: hub, logger: logger}
}

func (h *NamedHandler) broadcast(householdID int64) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, websocket.Invalidation(h.path))
	}
}

type namedRequest struct {
	Name string `json:"name"`
}

func (h *NamedHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req namedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	entity, err := h.store.Create(householdID, req.Name)
	if err != nil {
		h.logger.Error("create "+h.kind, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create "+h.kind)
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusCreated, entity)
}

func (h *NamedHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	entities, err := h.store.List(householdID)
	if err != nil {
		h.logger.Error("list "+h.kind, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list")
		return
	}
	if entities == nil {
		entities = []model.NamedEntity{}
	}
	writeJSON(w, http.StatusOK, entities)
}

func (h *NamedHandler) Update(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.store.GetByID(householdID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load "+h.kind)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, h.kind+" not found")
		return
	}

	var req namedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	entity, err := h.store.Update(householdID, id, req.Name)
	if err != nil {
		h.logger.Error("update "+h.kind, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update "+h.kind)
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusOK, entity)
}

func (h *NamedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.store.Delete(householdID, id); err != nil {
		h.logger.Error("delete "+h.kind, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete "+h.kind)
		return
	}
	h.broadcast(householdID)
	w.WriteHeader(http.StatusNoContent)
}
