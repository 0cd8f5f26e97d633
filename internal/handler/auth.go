package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aduval/foyer/internal/auth"
	"github.com/aduval/foyer/internal/email"
	"github.com/aduval/foyer/internal/middleware"
	"github.com/aduval/foyer/internal/store"
)

// AuthHandler implements the magic-code login flow: request a code by
// email, verify it, get a session cookie.
type AuthHandler struct {
	users      *store.UserStore
	households *store.HouseholdStore
	sessions   *store.SessionStore
	magicLinks *store.MagicLinkStore
	mailer     *email.Client
	logger     *slog.Logger
}

func NewAuthHandler(us *store.UserStore, hs *store.HouseholdStore, ss *store.SessionStore, ms *store.MagicLinkStore, mailer *email.Client, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:      us,
		households: hs,
		sessions:   ss,
		magicLinks: ms,
		mailer:     mailer,
		logger:     logger,
	}
}

type registerRequest struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	HouseholdName string `json:"household_name"`
}

// Register handles POST /api/auth/register: creates the user and their
// household, then emails a login code.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.HouseholdName = strings.TrimSpace(req.HouseholdName)
	if req.Email == "" || req.Name == "" || req.HouseholdName == "" {
		writeError(w, http.StatusBadRequest, "email, name and household_name are required")
		return
	}

	existing, err := h.users.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("register: get user", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "an account already exists for this email")
		return
	}

	user, err := h.users.Create(req.Email, req.Name)
	if err != nil {
		h.logger.Error("register: create user", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	household, err := h.households.Create(req.HouseholdName)
	if err != nil {
		h.logger.Error("register: create household", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if _, err := h.households.AddMember(household.ID, user.ID, auth.RoleAdmin); err != nil {
		h.logger.Error("register: add member", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	if err := h.sendCode(req.Email, "register", ""); err != nil {
		h.logger.Error("register: send code", "error", err)
		writeError(w, http.StatusInternalServerError, "could not send the login code")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "code sent"})
}

type loginRequest struct {
	Email string `json:"email"`
}

// Login handles POST /api/auth/login: emails a fresh code. Unknown
// addresses get the same answer as known ones.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("login: get user", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user != nil {
		if err := h.sendCode(req.Email, "login", ""); err != nil {
			h.logger.Error("login: send code", "error", err)
			writeError(w, http.StatusInternalServerError, "could not send the login code")
			return
		}
	}
	// Same response either way, no account probing.
	writeJSON(w, http.StatusOK, map[string]string{"status": "code sent"})
}

func (h *AuthHandler) sendCode(emailAddr, purpose, householdName string) error {
	code, _, err := h.magicLinks.Create(emailAddr, purpose, nil)
	if err != nil {
		return err
	}
	if !h.mailer.Configured() {
		// Self-hosted without email: the code lands in the server log.
		h.logger.Info("login code (email not configured)", "email", emailAddr, "code", code)
		return nil
	}
	return h.mailer.SendLoginCode(emailAddr, code, purpose, householdName)
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Verify handles POST /api/auth/verify: checks the code and opens a
// session scoped to one of the user's households.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "email and code are required")
		return
	}

	link, err := h.magicLinks.Verify(req.Email, req.Code)
	if err != nil {
		h.logger.Error("verify: check code", "error", err)
		writeError(w, http.StatusInternalServerError, "verification failed")
		return
	}
	if link == nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired code")
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil || user == nil {
		h.logger.Error("verify: get user", "error", err)
		writeError(w, http.StatusUnauthorized, "invalid or expired code")
		return
	}

	households, err := h.households.ListForUser(user.ID)
	if err != nil {
		h.logger.Error("verify: list households", "error", err)
		writeError(w, http.StatusInternalServerError, "verification failed")
		return
	}
	if len(households) == 0 {
		writeError(w, http.StatusForbidden, "no household membership")
		return
	}
	householdID := households[0].ID
	if link.HouseholdID != nil {
		householdID = *link.HouseholdID
	}

	sess, err := h.sessions.Create(user.ID, householdID)
	if err != nil {
		h.logger.Error("verify: create session", "error", err)
		writeError(w, http.StatusInternalServerError, "verification failed")
		return
	}

	http.SetCookie(w, sessionCookie(sess.Token, sess.ExpiresAt))
	writeJSON(w, http.StatusOK, map[string]any{
		"user":         user,
		"household_id": householdID,
	})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(cookie.Value); err != nil {
			h.logger.Warn("logout: delete session", "error", err)
		}
	}
	http.SetCookie(w, sessionCookie("", time.Unix(0, 0)))
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	user, err := h.users.GetByID(ac.UserID)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	households, err := h.households.ListForUser(ac.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load households")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":         user,
		"household_id": ac.HouseholdID,
		"role":         ac.Role,
		"households":   households,
	})
}

type switchRequest struct {
	HouseholdID int64 `json:"household_id"`
}

// SwitchHousehold handles POST /api/households/switch.
func (h *AuthHandler) SwitchHousehold(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req switchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	member, err := h.households.GetMember(req.HouseholdID, ac.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "switch failed")
		return
	}
	if member == nil {
		writeError(w, http.StatusForbidden, "not a member of this household")
		return
	}
	if err := h.sessions.SwitchHousehold(ac.SessionID, req.HouseholdID); err != nil {
		writeError(w, http.StatusInternalServerError, "switch failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"household_id": req.HouseholdID})
}

func sessionCookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
