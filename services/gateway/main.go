package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agriguru/agriguru-backend/pkg/config"
	"github.com/agriguru/agriguru-backend/pkg/logger"
	mw "github.com/agriguru/agriguru-backend/pkg/middleware"
	"github.com/agriguru/agriguru-backend/services/gateway/internal/handlers"
	"github.com/agriguru/agriguru-backend/services/gateway/internal/proxy"
	"github.com/go-chi/chi/v5"
)

func main() {
	cfg := config.Load()

	h := handlers.New(
		proxy.NewServiceProxy(cfg.Gateway.AuthURL),
		proxy.NewServiceProxy(cfg.Gateway.AdvisoryURL),
		proxy.NewServiceProxy(cfg.Gateway.DiagnosisURL),
		proxy.NewServiceProxy(cfg.Gateway.AssistantURL),
		proxy.NewServiceProxy(cfg.Gateway.MarketURL),
	)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("gateway"))
	r.Use(mw.Logging)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(r.Context(), "Panic recovered", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	})
	r.Use(mw.CORS(cfg.Server.CORSOrigins))
	r.Use(mw.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Handle("/auth/*", h.Auth())
		r.Handle("/advisory/*", h.Advisory())
		r.Handle("/diagnosis/*", h.Diagnosis())
		r.Handle("/assistant/*", h.Assistant())
		r.Handle("/market/*", h.Market())
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

		logger.Info("Shutting down gateway...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Gateway shutdown error", "error", err)
		}
	}()

	logger.Info("Starting gateway", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Gateway error", "error", err)
		os.Exit(1)
	}
}
