package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aduval/foyer/internal/auth"
	"github.com/aduval/foyer/internal/illustration"
	"github.com/aduval/foyer/internal/model"
	"github.com/aduval/foyer/internal/store"
	"github.com/aduval/foyer/internal/websocket"
)

type EquipmentHandler struct {
	equipment     *store.EquipmentStore
	hub           *websocket.Hub
	illustrations *illustration.Client
	logger        *slog.Logger
}

func NewEquipmentHandler(es *store.EquipmentStore, hub *websocket.Hub, ill *illustration.Client, logger *slog.Logger) *EquipmentHandler {
	return &EquipmentHandler{equipment: es, hub: hub, illustrations: ill, logger: logger}
}

func (h *EquipmentHandler) broadcast(householdID int64) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, websocket.Invalidation("/equipment"))
	}
}

type equipmentRequest struct {
	Name          string  `json:"name"`
	PurchaseDate  *string `json:"purchase_date"`
	InstallDate   *string `json:"install_date"`
	LifespanYears *int    `json:"lifespan_years"`
}

func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req equipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	eq, err := h.equipment.Create(householdID, req.Name, req.PurchaseDate, req.InstallDate, req.LifespanYears)
	if err != nil {
		h.logger.Error("create equipment", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create equipment")
		return
	}
	h.broadcast(householdID)
	if h.illustrations != nil {
		h.illustrations.Enqueue(householdID, "equipment", eq.ID, eq.Name)
	}
	writeJSON(w, http.StatusCreated, eq)
}

func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	items, err := h.equipment.List(householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list equipment")
		return
	}
	if items == nil {
		items = []model.Equipment{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	existing, err := h.equipment.GetByID(householdID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get equipment")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "equipment not found")
		return
	}

	var req equipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	eq, err := h.equipment.Update(householdID, id, req.Name, req.PurchaseDate, req.InstallDate, req.LifespanYears)
	if err != nil {
		h.logger.Error("update equipment", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update equipment")
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusOK, eq)
}

func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.equipment.Delete(householdID, id); err != nil {
		h.logger.Error("delete equipment", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete equipment")
		return
	}
	h.broadcast(householdID)
	w.WriteHeader(http.StatusNoContent)
}
