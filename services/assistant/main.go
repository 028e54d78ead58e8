package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agriguru/agriguru-backend/pkg/auth"
	"github.com/agriguru/agriguru-backend/pkg/cache"
	"github.com/agriguru/agriguru-backend/pkg/config"
	"github.com/agriguru/agriguru-backend/pkg/logger"
	mw "github.com/agriguru/agriguru-backend/pkg/middleware"
	"github.com/agriguru/agriguru-backend/services/assistant/internal/diagnosis"
	"github.com/agriguru/agriguru-backend/services/assistant/internal/handlers"
	"github.com/agriguru/agriguru-backend/services/assistant/internal/llm"
	"github.com/agriguru/agriguru-backend/services/assistant/internal/repository"
	"github.com/agriguru/agriguru-backend/services/assistant/internal/service"
	"github.com/agriguru/agriguru-backend/services/assistant/internal/weather"
	"github.com/go-chi/chi/v5"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	redisClient, err := cache.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	weatherClient := weather.NewClient(cfg.Weather.APIKey, cfg.Weather.BaseURL, cfg.Weather.Timeout)
	adviser := llm.NewClient(cfg.Assistant.LLMAPIKey, cfg.Assistant.LLMBaseURL, cfg.Assistant.LLMModel)
	if !adviser.Enabled() {
		logger.Warn("No LLM configured, answering from the built-in knowledge base")
	}
	diagnosisClient := diagnosis.NewClient(cfg.Assistant.DiagnosisURL)

	historyRepo := repository.NewHistoryRepository(redisClient)
	assistantService := service.NewAssistantService(weatherClient, adviser, diagnosisClient, historyRepo, cfg)
	h := handlers.New(assistantService)
	sessions := auth.NewRedisSessionStore(redisClient)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("assistant"))
	r.Use(mw.Logging)
	r.Use(mw.CORS(cfg.Server.CORSOrigins))
	r.Use(mw.Health)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireSession(cfg.Auth.JWTSecret, sessions))
		r.Post("/chat", h.Chat)
		r.Get("/history", h.History)
		r.Delete("/history", h.ClearHistory)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down assistant service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Assistant service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting assistant service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Assistant service error", "error", err)
		os.Exit(1)
	}
}
