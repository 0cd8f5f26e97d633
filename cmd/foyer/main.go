package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aduval/foyer/internal/blob"
	"github.com/aduval/foyer/internal/database"
	"github.com/aduval/foyer/internal/email"
	"github.com/aduval/foyer/internal/features"
	"github.com/aduval/foyer/internal/illustration"
	"github.com/aduval/foyer/internal/llm"
	"github.com/aduval/foyer/internal/logging"
	"github.com/aduval/foyer/internal/push"
	"github.com/aduval/foyer/internal/scheduler"
	"github.com/aduval/foyer/internal/server"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := logging.Setup(env("FOYER_LOG_LEVEL", "info"))

	port := env("FOYER_PORT", "8080")
	dbPath := env("FOYER_DB_PATH", "foyer.db")

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	flags, err := features.Detect(db)
	if err != nil {
		logger.Error("detect features", "error", err)
		os.Exit(1)
	}
	logger.Info("features detected", "budget", flags.Budget, "assistant", flags.Assistant)

	// LLM provider, selected by FOYER_LLM_PROVIDER (anthropic | openai).
	var llmClient llm.Client
	modelName := env("FOYER_LLM_MODEL", "claude-sonnet-4-5")
	switch env("FOYER_LLM_PROVIDER", "anthropic") {
	case "anthropic":
		if key := os.Getenv("FOYER_ANTHROPIC_API_KEY"); key != "" {
			llmClient = llm.NewAnthropicClient(key, logger)
		}
	case "openai":
		if key := os.Getenv("FOYER_OPENAI_API_KEY"); key != "" {
			llmClient = llm.NewOpenAIClient(env("FOYER_OPENAI_BASE_URL", "https://api.openai.com/v1"), key, logger)
		}
	default:
		logger.Warn("unknown LLM provider, assistant disabled", "provider", os.Getenv("FOYER_LLM_PROVIDER"))
	}
	if llmClient == nil {
		logger.Info("no LLM API key configured, assistant disabled")
	}

	blobs := blob.New(blob.Config{
		Endpoint:  os.Getenv("FOYER_S3_ENDPOINT"),
		Bucket:    os.Getenv("FOYER_S3_BUCKET"),
		Region:    env("FOYER_S3_REGION", "auto"),
		AccessKey: os.Getenv("FOYER_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("FOYER_S3_SECRET_KEY"),
	})

	illustrations := illustration.NewClient(
		os.Getenv("FOYER_ILLUSTRATION_URL"),
		os.Getenv("FOYER_ILLUSTRATION_KEY"),
		blobs,
		logger,
	)

	var mailer *email.Client
	if token := os.Getenv("FOYER_POSTMARK_TOKEN"); token != "" {
		mailer = email.NewClient(token, env("FOYER_POSTMARK_FROM", "noreply@foyer.app"))
	} else {
		mailer = email.NewClient("", "")
		logger.Info("no Postmark token configured, login codes logged instead of emailed")
	}

	var pushSvc *push.Service
	if pub, priv := os.Getenv("FOYER_VAPID_PUBLIC_KEY"), os.Getenv("FOYER_VAPID_PRIVATE_KEY"); pub != "" && priv != "" {
		pushSvc = push.NewService(push.Config{
			VAPIDPublicKey:  pub,
			VAPIDPrivateKey: priv,
			Subscriber:      os.Getenv("FOYER_VAPID_SUBSCRIBER"),
		})
	}

	srv := server.New(db, server.Config{
		LLM:           llmClient,
		LLMModel:      modelName,
		Mailer:        mailer,
		Blobs:         blobs,
		Illustrations: illustrations,
		Push:          pushSvc,
		Flags:         flags,
	}, logger)

	sched, err := scheduler.New(scheduler.Deps{
		Logger:      logger,
		Households:  srv.HouseholdStore(),
		Tasks:       srv.TaskStore(),
		Budget:      srv.BudgetStore(),
		Sessions:    srv.SessionStore(),
		MagicLinks:  srv.MagicLinkStore(),
		Reminder:    srv.Reminder(),
		RateLimiter: srv.RateLimiter(),
	})
	if err != nil {
		logger.Error("init scheduler", "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second, // assistant turns are slow
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("foyer listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
