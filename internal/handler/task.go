package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aduval/foyer/internal/auth"
	"github.com/aduval/foyer/internal/illustration"
	"github.com/aduval/foyer/internal/model"
	"github.com/aduval/foyer/internal/store"
	"github.com/aduval/foyer/internal/websocket"
)

type TaskHandler struct {
	tasks         *store.TaskStore
	hub           *websocket.Hub
	illustrations *illustration.Client
	logger        *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, hub *websocket.Hub, ill *illustration.Client, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: ts, hub: hub, illustrations: ill, logger: logger}
}

func (h *TaskHandler) broadcast(householdID int64) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, websocket.Invalidation("/tasks"))
	}
}

type taskRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	DueDate       *string `json:"due_date"`
	ReminderDays  *int    `json:"reminder_days"`
	Status        string  `json:"status"`
	RecurUnit     *string `json:"recur_unit"`
	RecurInterval *int    `json:"recur_interval"`
	ZoneID        *int64  `json:"zone_id"`
	CategoryID    *int64  `json:"category_id"`
	ProjectID     *int64  `json:"project_id"`
	EquipmentID   *int64  `json:"equipment_id"`
	AnimalID      *int64  `json:"animal_id"`
	PersonID      *int64  `json:"person_id"`
	AssigneeID    *int64  `json:"assignee_id"`
}

func (r taskRequest) input() store.TaskInput {
	return store.TaskInput{
		Title:         r.Title,
		Description:   r.Description,
		DueDate:       r.DueDate,
		ReminderDays:  r.ReminderDays,
		Status:        r.Status,
		RecurUnit:     r.RecurUnit,
		RecurInterval: r.RecurInterval,
		ZoneID:        r.ZoneID,
		CategoryID:    r.CategoryID,
		ProjectID:     r.ProjectID,
		EquipmentID:   r.EquipmentID,
		AnimalID:      r.AnimalID,
		PersonID:      r.PersonID,
		AssigneeID:    r.AssigneeID,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	var task *model.Task
	var err error
	if req.RecurUnit != nil {
		if req.DueDate == nil {
			writeError(w, http.StatusBadRequest, "a recurring task needs a due_date")
			return
		}
		_, task, err = h.tasks.CreateRecurring(householdID, req.input())
	} else {
		task, err = h.tasks.Create(householdID, req.input())
	}
	if err != nil {
		var ie *store.InvariantError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.broadcast(householdID)
	if h.illustrations != nil {
		h.illustrations.Enqueue(householdID, "task", task.ID, task.Title)
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var tasks []model.Task
	var err error
	switch {
	case r.URL.Query().Get("day") != "":
		tasks, err = h.tasks.ListByDay(householdID, r.URL.Query().Get("day"))
	case r.URL.Query().Get("status") != "":
		tasks, err = h.tasks.ListByStatus(householdID, r.URL.Query().Get("status"))
	default:
		tasks, err = h.tasks.List(householdID)
	}
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	task, err := h.tasks.GetByID(householdID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	existing, err := h.tasks.GetByID(householdID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	task, err := h.tasks.Update(householdID, id, req.input())
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusOK, task)
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

func (h *TaskHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req taskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	switch req.Status {
	case model.TaskStatusTodo, model.TaskStatusInProgress, model.TaskStatusDone:
	default:
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	existing, err := h.tasks.GetByID(householdID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	task, err := h.tasks.SetStatus(householdID, id, req.Status)
	if err != nil {
		h.logger.Error("set task status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.tasks.Delete(householdID, id); err != nil {
		h.logger.Error("delete task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}
	h.broadcast(householdID)
	w.WriteHeader(http.StatusNoContent)
}
