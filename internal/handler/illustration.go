package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/aduval/foyer/internal/auth"
	"github.com/aduval/foyer/internal/blob"
	"github.com/aduval/foyer/internal/illustration"
)

type IllustrationHandler struct {
	blobs  *blob.Store
	logger *slog.Logger
}

func NewIllustrationHandler(blobs *blob.Store, logger *slog.Logger) *IllustrationHandler {
	return &IllustrationHandler{blobs: blobs, logger: logger}
}

// Get streams a generated entity illustration. Generation is asynchronous,
// so a 404 just means the image is not ready (or was never produced).
func (h *IllustrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	kind := r.PathValue("kind")
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	key := illustration.Key(householdID, kind, id)
	rc, contentType, err := h.blobs.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "illustration not available")
		return
	}
	defer rc.Close()

	if contentType == "" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("stream illustration", "key", key, "error", err)
	}
}
