package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agriguru/agriguru-backend/pkg/config"
	"github.com/agriguru/agriguru-backend/pkg/events"
	"github.com/agriguru/agriguru-backend/pkg/logger"
	mw "github.com/agriguru/agriguru-backend/pkg/middleware"
	"github.com/agriguru/agriguru-backend/services/diagnosis/internal/classifier"
	"github.com/agriguru/agriguru-backend/services/diagnosis/internal/handlers"
	"github.com/agriguru/agriguru-backend/services/diagnosis/internal/service"
	"github.com/go-chi/chi/v5"
)

func main() {
	cfg := config.Load()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	var model classifier.Classifier
	if cfg.Classifier.ModelURL != "" {
		model = classifier.NewRemoteClassifier(cfg.Classifier.ModelURL, cfg.Classifier.Timeout)
		logger.Info("Using remote model server", "url", cfg.Classifier.ModelURL)
	} else {
		logger.Warn("No model server configured, running in simulation mode")
	}

	diagnosisService := service.NewDiagnosisService(model, eventBus)
	h := handlers.New(diagnosisService)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("diagnosis"))
	r.Use(mw.Logging)
	r.Use(mw.CORS(cfg.Server.CORSOrigins))
	r.Use(mw.Health)

	r.Post("/analyze", h.Analyze)

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

		logger.Info("Shutting down diagnosis service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Diagnosis service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting diagnosis service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Diagnosis service error", "error", err)
		os.Exit(1)
	}
}
