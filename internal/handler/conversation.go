package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/aduval/foyer/internal/agent"
	"github.com/aduval/foyer/internal/auth"
	"github.com/aduval/foyer/internal/blob"
	"github.com/aduval/foyer/internal/model"
	"github.com/aduval/foyer/internal/store"
	"github.com/aduval/foyer/internal/websocket"
)

const maxAttachmentBytes = 256 * 1024

type ConversationHandler struct {
	convs     *store.ConversationStore
	assistant *agent.Assistant
	blobs     *blob.Store
	hub       *websocket.Hub
	markdown  goldmark.Markdown
	logger    *slog.Logger
}

func NewConversationHandler(cs *store.ConversationStore, assistant *agent.Assistant, blobs *blob.Store, hub *websocket.Hub, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{
		convs:     cs,
		assistant: assistant,
		blobs:     blobs,
		hub:       hub,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:    logger,
	}
}

func (h *ConversationHandler) broadcast(householdID int64) {
	if h.hub != nil {
		h.hub.Broadcast(householdID, websocket.Invalidation("/assistant"))
	}
}

type conversationRequest struct {
	Title string `json:"title"`
}

func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	var req conversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Nouvelle conversation"
	}

	conv, err := h.convs.Create(householdID, title)
	if err != nil {
		h.logger.Error("create conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create conversation")
		return
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusCreated, conv)
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	convs, err := h.convs.List(householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	if convs == nil {
		convs = []model.Conversation{}
	}
	writeJSON(w, http.StatusOK, convs)
}

func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.convs.Delete(householdID, id); err != nil {
		h.logger.Error("delete conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete conversation")
		return
	}
	h.broadcast(householdID)
	w.WriteHeader(http.StatusNoContent)
}

// messageView is a ConversationMessage plus the rendered HTML for assistant
// replies and the attachments of user messages.
type messageView struct {
	model.ConversationMessage
	HTML        string                         `json:"html,omitempty"`
	Attachments []model.ConversationAttachment `json:"attachments"`
}

// Messages handles GET /api/conversations/{id}/messages. Assistant replies
// are stored as markdown; the rendered HTML ships alongside the raw content.
func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	conv, err := h.convs.GetByID(householdID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get conversation")
		return
	}
	if conv == nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	msgs, err := h.convs.ListMessages(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		v := messageView{ConversationMessage: m, Attachments: []model.ConversationAttachment{}}
		if m.Role == model.RoleAssistant {
			var buf bytes.Buffer
			if err := h.markdown.Convert([]byte(m.Content), &buf); err != nil {
				h.logger.Warn("render message", "message_id", m.ID, "error", err)
			} else {
				v.HTML = buf.String()
			}
		}
		atts, err := h.convs.ListAttachments(m.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list attachments")
			return
		}
		if atts != nil {
			v.Attachments = atts
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

type sendAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type sendMessageRequest struct {
	Content     string           `json:"content"`
	Attachments []sendAttachment `json:"attachments"`
}

type sendMessageResponse struct {
	Reply string `json:"reply"`
	HTML  string `json:"html"`
}

// Send handles POST /api/conversations/{id}/messages: one full assistant
// turn, synchronous. Attachments are small text files (receipts, notes)
// whose content rides along with the prompt.
func (h *ConversationHandler) Send(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	conv, err := h.convs.GetByID(householdID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get conversation")
		return
	}
	if conv == nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	attachments := make([]agent.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		if a.Filename == "" || a.Content == "" {
			writeError(w, http.StatusBadRequest, "attachments need a filename and content")
			return
		}
		if len(a.Content) > maxAttachmentBytes {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("attachment %q exceeds %d bytes", a.Filename, maxAttachmentBytes))
			return
		}
		attachments = append(attachments, agent.Attachment{Filename: a.Filename, Content: a.Content})
	}

	reply, err := h.assistant.Turn(r.Context(), householdID, id, req.Content, attachments)
	if err != nil {
		h.logger.Error("assistant turn", "conversation_id", id, "error", err)
		writeError(w, http.StatusBadGateway, "assistant is unavailable")
		return
	}

	if len(attachments) > 0 {
		h.storeAttachments(r, householdID, id, req.Attachments)
	}

	var buf bytes.Buffer
	resp := sendMessageResponse{Reply: reply}
	if err := h.markdown.Convert([]byte(reply), &buf); err == nil {
		resp.HTML = buf.String()
	}
	h.broadcast(householdID)
	writeJSON(w, http.StatusOK, resp)
}

// storeAttachments archives turn attachments in blob storage and links them
// to the user message the turn just persisted. Archival is best effort: the
// turn already succeeded, so failures are logged, not surfaced.
func (h *ConversationHandler) storeAttachments(r *http.Request, householdID, conversationID int64, atts []sendAttachment) {
	msgs, err := h.convs.ListMessages(conversationID)
	if err != nil {
		h.logger.Warn("list messages for attachments", "error", err)
		return
	}
	var userMsgID int64
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleUser {
			userMsgID = msgs[i].ID
			break
		}
	}
	if userMsgID == 0 {
		return
	}

	for _, a := range atts {
		key := fmt.Sprintf("attachments/%d/%s-%s", householdID, uuid.NewString(), a.Filename)
		if h.blobs != nil && h.blobs.Configured() {
			err := h.blobs.Put(r.Context(), key, "text/plain; charset=utf-8", strings.NewReader(a.Content), int64(len(a.Content)))
			if err != nil {
				h.logger.Warn("store attachment blob", "key", key, "error", err)
				continue
			}
		}
		if _, err := h.convs.AddAttachment(userMsgID, key, a.Filename, "text/plain; charset=utf-8", int64(len(a.Content))); err != nil {
			h.logger.Warn("record attachment", "key", key, "error", err)
		}
	}
}
