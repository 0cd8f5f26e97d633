package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/aduval/foyer/internal/agent"
	"github.com/aduval/foyer/internal/blob"
	"github.com/aduval/foyer/internal/email"
	"github.com/aduval/foyer/internal/features"
	"github.com/aduval/foyer/internal/handler"
	"github.com/aduval/foyer/internal/illustration"
	"github.com/aduval/foyer/internal/llm"
	"github.com/aduval/foyer/internal/middleware"
	"github.com/aduval/foyer/internal/push"
	"github.com/aduval/foyer/internal/store"
	ws "github.com/aduval/foyer/internal/websocket"
)

// Config carries the externally constructed services the server wires
// together. Any of them may be nil/unconfigured; the affected routes are
// simply not registered.
type Config struct {
	LLM           llm.Client
	LLMModel      string
	Mailer        *email.Client
	Blobs         *blob.Store
	Illustrations *illustration.Client
	Push          *push.Service
	Flags         features.Flags
}

type Server struct {
	db    *sql.DB
	hub   *ws.Hub
	flags features.Flags

	taskH     *handler.TaskHandler
	zoneH     *handler.NamedHandler
	categoryH *handler.NamedHandler
	animalH   *handler.NamedHandler
	personH   *handler.NamedHandler
	projectH  *handler.ProjectHandler
	equipH    *handler.EquipmentHandler
	shoppingH *handler.ShoppingHandler
	budgetH   *handler.BudgetHandler
	dateH     *handler.ImportantDateHandler
	convH     *handler.ConversationHandler
	authH     *handler.AuthHandler
	pushH     *handler.PushHandler
	illH      *handler.IllustrationHandler

	assistant *agent.Assistant
	reminder  *push.Reminder

	sessionStore   *store.SessionStore
	magicLinkStore *store.MagicLinkStore
	householdStore *store.HouseholdStore
	taskStore      *store.TaskStore
	budgetStore    *store.BudgetStore
	rateLimiter    *middleware.RateLimiter
	logger         *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	taskStore := store.NewTaskStore(db)
	zoneStore := store.NewZoneStore(db)
	categoryStore := store.NewCategoryStore(db)
	animalStore := store.NewAnimalStore(db)
	personStore := store.NewPersonStore(db)
	projectStore := store.NewProjectStore(db)
	equipmentStore := store.NewEquipmentStore(db)
	shoppingStore := store.NewShoppingStore(db)
	budgetStore := store.NewBudgetStore(db)
	dateStore := store.NewImportantDateStore(db)
	convStore := store.NewConversationStore(db)
	pushStore := store.NewPushStore(db)

	// Auth stores
	userStore := store.NewUserStore(db)
	householdStore := store.NewHouseholdStore(db)
	sessionStore := store.NewSessionStore(db)
	magicLinkStore := store.NewMagicLinkStore(db)

	var illustrate func(householdID int64, kind string, id int64, name string)
	if cfg.Illustrations != nil {
		illustrate = cfg.Illustrations.Enqueue
	}
	registry := agent.NewRegistry(agent.Deps{
		Logger:     logger.With("component", "agent"),
		Features:   cfg.Flags,
		Tasks:      taskStore,
		Zones:      zoneStore,
		Categories: categoryStore,
		Animals:    animalStore,
		People:     personStore,
		Projects:   projectStore,
		Equipment:  equipmentStore,
		Shopping:   shoppingStore,
		Budget:     budgetStore,
		Dates:      dateStore,
		Invalidate: func(householdID int64, paths ...string) {
			hub.Broadcast(householdID, ws.Invalidation(paths...))
		},
		Illustrate: illustrate,
	})

	var assistant *agent.Assistant
	if cfg.Flags.Assistant && cfg.LLM != nil {
		assistant = agent.NewAssistant(logger, cfg.LLM, cfg.LLMModel, registry, convStore)
	}

	var reminder *push.Reminder
	var pushH *handler.PushHandler
	if cfg.Push != nil {
		reminder = push.NewReminder(cfg.Push, pushStore, taskStore, dateStore, householdStore, logger.With("component", "push"))
		pushH = handler.NewPushHandler(pushStore, cfg.Push, logger.With("component", "push_handler"))
	}

	var convH *handler.ConversationHandler
	if assistant != nil {
		convH = handler.NewConversationHandler(convStore, assistant, cfg.Blobs, hub, logger.With("component", "conversation"))
	}

	var illH *handler.IllustrationHandler
	if cfg.Blobs != nil && cfg.Blobs.Configured() {
		illH = handler.NewIllustrationHandler(cfg.Blobs, logger.With("component", "illustration"))
	}

	return &Server{
		db:    db,
		hub:   hub,
		flags: cfg.Flags,

		taskH:     handler.NewTaskHandler(taskStore, hub, cfg.Illustrations, logger.With("component", "task")),
		zoneH:     handler.NewNamedHandler(zoneStore, "zone", "/zones", hub, logger.With("component", "zone")),
		categoryH: handler.NewNamedHandler(categoryStore, "category", "/categories", hub, logger.With("component", "category")),
		animalH:   handler.NewNamedHandler(animalStore, "animal", "/animals", hub, logger.With("component", "animal")),
		personH:   handler.NewNamedHandler(personStore, "person", "/people", hub, logger.With("component", "person")),
		projectH:  handler.NewProjectHandler(projectStore, hub, cfg.Illustrations, logger.With("component", "project")),
		equipH:    handler.NewEquipmentHandler(equipmentStore, hub, cfg.Illustrations, logger.With("component", "equipment")),
		shoppingH: handler.NewShoppingHandler(shoppingStore, hub, logger.With("component", "shopping")),
		budgetH:   handler.NewBudgetHandler(budgetStore, hub, logger.With("component", "budget")),
		dateH:     handler.NewImportantDateHandler(dateStore, hub, logger.With("component", "date")),
		convH:     convH,
		authH:     handler.NewAuthHandler(userStore, householdStore, sessionStore, magicLinkStore, cfg.Mailer, logger.With("component", "auth")),
		pushH:     pushH,
		illH:      illH,

		assistant: assistant,
		reminder:  reminder,

		sessionStore:   sessionStore,
		magicLinkStore: magicLinkStore,
		householdStore: householdStore,
		taskStore:      taskStore,
		budgetStore:    budgetStore,
		rateLimiter:    middleware.NewRateLimiter(),
		logger:         logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// MagicLinkStore returns the magic link store for cleanup tasks.
func (s *Server) MagicLinkStore() *store.MagicLinkStore {
	return s.magicLinkStore
}

// HouseholdStore returns the household store for background jobs.
func (s *Server) HouseholdStore() *store.HouseholdStore {
	return s.householdStore
}

// TaskStore returns the task store for background jobs.
func (s *Server) TaskStore() *store.TaskStore {
	return s.taskStore
}

// BudgetStore returns the budget store for background jobs.
func (s *Server) BudgetStore() *store.BudgetStore {
	return s.budgetStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Reminder returns the push reminder job, nil when push is not configured.
func (s *Server) Reminder() *push.Reminder {
	return s.reminder
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/auth/verify", s.rateLimitedHandler(s.authH.Verify))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.householdStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Session routes
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)
	mux.HandleFunc("POST /api/auth/switch-household", s.authH.SwitchHousehold)

	// Task API routes
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("PUT /api/tasks/{id}/status", s.taskH.SetStatus)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)

	// Catalogue routes: zones, categories, animals, people
	registerNamed := func(path string, h *handler.NamedHandler) {
		mux.HandleFunc("POST /api"+path, h.Create)
		mux.HandleFunc("GET /api"+path, h.List)
		mux.HandleFunc("PUT /api"+path+"/{id}", h.Update)
		mux.HandleFunc("DELETE /api"+path+"/{id}", h.Delete)
	}
	registerNamed("/zones", s.zoneH)
	registerNamed("/categories", s.categoryH)
	registerNamed("/animals", s.animalH)
	registerNamed("/people", s.personH)

	// Project API routes
	mux.HandleFunc("POST /api/projects", s.projectH.Create)
	mux.HandleFunc("GET /api/projects", s.projectH.List)
	mux.HandleFunc("PUT /api/projects/{id}", s.projectH.Update)
	mux.HandleFunc("DELETE /api/projects/{id}", s.projectH.Delete)

	// Equipment API routes
	mux.HandleFunc("POST /api/equipment", s.equipH.Create)
	mux.HandleFunc("GET /api/equipment", s.equipH.List)
	mux.HandleFunc("PUT /api/equipment/{id}", s.equipH.Update)
	mux.HandleFunc("DELETE /api/equipment/{id}", s.equipH.Delete)

	// Shopping API routes
	mux.HandleFunc("POST /api/shopping-lists", s.shoppingH.CreateList)
	mux.HandleFunc("GET /api/shopping-lists", s.shoppingH.ListLists)
	mux.HandleFunc("PUT /api/shopping-lists/{id}", s.shoppingH.UpdateList)
	mux.HandleFunc("DELETE /api/shopping-lists/{id}", s.shoppingH.DeleteList)
	mux.HandleFunc("POST /api/shopping-lists/{list_id}/items", s.shoppingH.CreateItem)
	mux.HandleFunc("GET /api/shopping-lists/{list_id}/items", s.shoppingH.ListItems)
	mux.HandleFunc("PUT /api/shopping-items/{id}", s.shoppingH.UpdateItem)
	mux.HandleFunc("POST /api/shopping-items/{id}/check", s.shoppingH.CheckItem)
	mux.HandleFunc("DELETE /api/shopping-items/{id}", s.shoppingH.DeleteItem)

	// Important date API routes
	mux.HandleFunc("POST /api/dates", s.dateH.Create)
	mux.HandleFunc("GET /api/dates", s.dateH.List)
	mux.HandleFunc("PUT /api/dates/{id}", s.dateH.Update)
	mux.HandleFunc("DELETE /api/dates/{id}", s.dateH.Delete)

	// Budget API routes
	if s.flags.Budget {
		mux.HandleFunc("POST /api/budget/entries", s.budgetH.CreateEntry)
		mux.HandleFunc("PUT /api/budget/entries/{id}", s.budgetH.UpdateEntry)
		mux.HandleFunc("DELETE /api/budget/entries/{id}", s.budgetH.DeleteEntry)
		mux.HandleFunc("GET /api/budget/monthly", s.budgetH.Monthly)
		mux.HandleFunc("POST /api/budget/recurring", s.budgetH.CreateRecurring)
		mux.HandleFunc("GET /api/budget/recurring", s.budgetH.ListRecurring)
		mux.HandleFunc("PUT /api/budget/recurring/{id}", s.budgetH.UpdateRecurring)
		mux.HandleFunc("DELETE /api/budget/recurring/{id}", s.budgetH.DeleteRecurring)
		mux.HandleFunc("POST /api/budget/convert-shopping-item", s.budgetH.ConvertShoppingItem)
	}

	// Conversation API routes
	if s.convH != nil {
		mux.HandleFunc("POST /api/conversations", s.convH.Create)
		mux.HandleFunc("GET /api/conversations", s.convH.List)
		mux.HandleFunc("DELETE /api/conversations/{id}", s.convH.Delete)
		mux.HandleFunc("GET /api/conversations/{id}/messages", s.convH.Messages)
		mux.HandleFunc("POST /api/conversations/{id}/messages", s.rateLimitedHandler(s.convH.Send))
	}

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	}

	// Illustration API routes
	if s.illH != nil {
		mux.HandleFunc("GET /api/illustrations/{kind}/{id}", s.illH.Get)
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handle(s.hub, s.logger.With("component", "websocket")))
}
