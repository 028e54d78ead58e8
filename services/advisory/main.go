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
	"github.com/agriguru/agriguru-backend/pkg/database"
	"github.com/agriguru/agriguru-backend/pkg/logger"
	mw "github.com/agriguru/agriguru-backend/pkg/middleware"
	"github.com/agriguru/agriguru-backend/services/advisory/internal/handlers"
	"github.com/agriguru/agriguru-backend/services/advisory/internal/repository"
	"github.com/agriguru/agriguru-backend/services/advisory/internal/service"
	"github.com/go-chi/chi/v5"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	officerRepo := repository.NewOfficerRepository(pool)
	officerService := service.NewOfficerService(officerRepo)
	h := handlers.New(officerService)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("advisory"))
	r.Use(mw.Logging)
	r.Use(mw.CORS(cfg.Server.CORSOrigins))
	r.Use(mw.Health)

	r.Route("/officers", func(r chi.Router) {
		r.Get("/", h.ListOfficers)
		r.Get("/nearby", h.NearbyOfficers)
		r.Get("/{id}", h.GetOfficer)

		// Directory management needs a live session.
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireSession(cfg.Auth.JWTSecret, auth.NewRedisSessionStore(redisClient)))
			r.Post("/", h.CreateOfficer)
			r.Put("/{id}", h.UpdateOfficer)
			r.Delete("/{id}", h.DeleteOfficer)
		})
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

		logger.Info("Shutting down advisory service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Advisory service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting advisory service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Advisory service error", "error", err)
		os.Exit(1)
	}
}
