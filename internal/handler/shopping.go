package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aduval/foyer/internal/auth"
	"github.com/aduval/foyer/internal/model"
	"github.com/aduval/foyer/internal/store"
	"github.com/aduval/foyer/internal/websocket"
)

type ShoppingHandler struct {
	shopping *store.ShoppingStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewShoppingHandler(ss *store.ShoppingStore, hub *websocket.Hub, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{shopping: ss, hub: hub, logger: logger}
}

func (h *ShoppingHandler) broadcast(householdID int64) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, websocket.Invalidation("/shopping"))
	}
}

func parseListIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("list_id"), 10, 64)
}

type shoppingListRequest struct {
	Name string `json:"name"`
}

func (h *ShoppingHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req shoppingListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	list, err := h.shopping.CreateList(householdID, req.Name)
	if err != nil {
		h.logger.Error("create shopping list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create list")
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusCreated, list)
}

func (h *ShoppingHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	lists, err := h.shopping.ListLists(householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list shopping lists")
		return
	}
	if lists == nil {
		lists = []model.ShoppingList{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *ShoppingHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	existing, err := h.shopping.GetListByID(householdID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get list")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}

	var req shoppingListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	list, err := h.shopping.UpdateList(householdID, id, req.Name)
	if err != nil {
		h.logger.Error("update shopping list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update list")
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusOK, list)
}

func (h *ShoppingHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.shopping.DeleteList(householdID, id); err != nil {
		h.logger.Error("delete shopping list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete list")
		return
	}
	h.broadcast(householdID)
	w.WriteHeader(http.StatusNoContent)
}

type shoppingItemRequest struct {
	Name               string `json:"name"`
	EstimatedCostCents *int64 `json:"estimated_cost_cents"`
}

func (h *ShoppingHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	listID, err := parseListIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list id")
		return
	}

	var req shoppingItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	list, err := h.shopping.GetListByID(householdID, listID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get list")
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}

	item, err := h.shopping.CreateItem(householdID, listID, req.Name, req.EstimatedCostCents)
	if err != nil {
		h.logger.Error("create shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusCreated, item)
}

func (h *ShoppingHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	listID, err := parseListIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid list id")
		return
	}
	items, err := h.shopping.ListItems(householdID, listID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.ShoppingItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ShoppingHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	existing, err := h.shopping.GetItemByID(householdID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	var req shoppingItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = existing.Name
	}
	if req.EstimatedCostCents == nil {
		req.EstimatedCostCents = existing.EstimatedCostCents
	}

	item, err := h.shopping.UpdateItem(householdID, id, req.Name, req.EstimatedCostCents)
	if err != nil {
		h.logger.Error("update shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusOK, item)
}

type checkItemRequest struct {
	Completed *bool `json:"completed"`
}

func (h *ShoppingHandler) CheckItem(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req checkItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	item, err := h.shopping.SetItemCompleted(householdID, id, completed)
	if err != nil {
		h.logger.Error("check shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusOK, item)
}

func (h *ShoppingHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.shopping.DeleteItem(householdID, id); err != nil {
		h.logger.Error("delete shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	h.broadcast(householdID)
	w.WriteHeader(http.StatusNoContent)
}
