package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/aduval/foyer/internal/database"
	"github.com/aduval/foyer/internal/email"
	"github.com/aduval/foyer/internal/middleware"
	"github.com/aduval/foyer/internal/store"
)

type authTestEnv struct {
	handler    *AuthHandler
	users      *store.UserStore
	households *store.HouseholdStore
	magicLinks *store.MagicLinkStore
}

func setupAuthHandler(t *testing.T) authTestEnv {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := store.NewUserStore(db)
	hs := store.NewHouseholdStore(db)
	ss := store.NewSessionStore(db)
	ms := store.NewMagicLinkStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// Unconfigured mailer: codes go to the log, not the wire.
	mailer := email.NewClient("", "")

	return authTestEnv{
		handler:    NewAuthHandler(us, hs, ss, ms, mailer, logger),
		users:      us,
		households: hs,
		magicLinks: ms,
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestRegisterCreatesUserAndHousehold(t *testing.T) {
	env := setupAuthHandler(t)

	rec := postJSON(t, env.handler.Register, "/api/auth/register", map[string]string{
		"email":          "Alice@Example.com",
		"name":           "Alice",
		"household_name": "Maison Dupont",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	user, err := env.users.GetByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user == nil {
		t.Fatal("expected user to exist (email lowercased)")
	}
	households, err := env.households.ListForUser(user.ID)
	if err != nil {
		t.Fatalf("list households: %v", err)
	}
	if len(households) != 1 || households[0].Name != "Maison Dupont" {
		t.Fatalf("households = %+v, want one named Maison Dupont", households)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := setupAuthHandler(t)

	body := map[string]string{"email": "bob@example.com", "name": "Bob", "household_name": "Chalet"}
	if rec := postJSON(t, env.handler.Register, "/api/auth/register", body); rec.Code != http.StatusCreated {
		t.Fatalf("first register: status = %d", rec.Code)
	}
	if rec := postJSON(t, env.handler.Register, "/api/auth/register", body); rec.Code != http.StatusConflict {
		t.Errorf("second register: status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestLoginUnknownEmailDoesNotProbe(t *testing.T) {
	env := setupAuthHandler(t)

	rec := postJSON(t, env.handler.Login, "/api/auth/login", map[string]string{"email": "nobody@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "code sent" {
		t.Errorf("status = %q, want %q", resp["status"], "code sent")
	}
}

func TestVerifyOpensSession(t *testing.T) {
	env := setupAuthHandler(t)

	rec := postJSON(t, env.handler.Register, "/api/auth/register", map[string]string{
		"email": "carol@example.com", "name": "Carol", "household_name": "Maison",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d", rec.Code)
	}

	code, _, err := env.magicLinks.Create("carol@example.com", "login", nil)
	if err != nil {
		t.Fatalf("create magic link: %v", err)
	}

	rec = postJSON(t, env.handler.Verify, "/api/auth/verify", map[string]string{
		"email": "carol@example.com", "code": code,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: status = %d: %s", rec.Code, rec.Body.String())
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatal("expected a session cookie")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	var resp struct {
		HouseholdID int64 `json:"household_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.HouseholdID == 0 {
		t.Error("expected a household_id in the response")
	}
}

func TestVerifyWrongCode(t *testing.T) {
	env := setupAuthHandler(t)

	rec := postJSON(t, env.handler.Register, "/api/auth/register", map[string]string{
		"email": "dave@example.com", "name": "Dave", "household_name": "Maison",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d", rec.Code)
	}

	rec = postJSON(t, env.handler.Verify, "/api/auth/verify", map[string]string{
		"email": "dave@example.com", "code": "000000",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestVerifyCodeIsSingleUse(t *testing.T) {
	env := setupAuthHandler(t)

	if rec := postJSON(t, env.handler.Register, "/api/auth/register", map[string]string{
		"email": "eve@example.com", "name": "Eve", "household_name": "Maison",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d", rec.Code)
	}

	code, _, err := env.magicLinks.Create("eve@example.com", "login", nil)
	if err != nil {
		t.Fatalf("create magic link: %v", err)
	}

	body := map[string]string{"email": "eve@example.com", "code": code}
	if rec := postJSON(t, env.handler.Verify, "/api/auth/verify", body); rec.Code != http.StatusOK {
		t.Fatalf("first verify: status = %d", rec.Code)
	}
	if rec := postJSON(t, env.handler.Verify, "/api/auth/verify", body); rec.Code != http.StatusUnauthorized {
		t.Errorf("second verify: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
