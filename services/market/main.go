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
	"github.com/agriguru/agriguru-backend/services/market/internal/dataset"
	"github.com/agriguru/agriguru-backend/services/market/internal/handlers"
	"github.com/agriguru/agriguru-backend/services/market/internal/service"
	"github.com/go-chi/chi/v5"
)

func main() {
	cfg := config.Load()

	data, err := dataset.Load()
	if err != nil {
		logger.Error("Failed to load crop dataset", "error", err)
		os.Exit(1)
	}
	logger.Info("Crop dataset loaded", "crops", len(data.Crops), "records", data.Info.TotalRecords)

	marketService := service.NewMarketService(data)
	h := handlers.New(marketService)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("market"))
	r.Use(mw.Logging)
	r.Use(mw.CORS(cfg.Server.CORSOrigins))
	r.Use(mw.Health)

	r.Get("/dataset-info", h.DatasetInfo)
	r.Get("/crop-yields/{crop}", h.CropYields)
	r.Get("/sample-data", h.SampleData)
	r.Post("/predict-yield", h.PredictYield)

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

		logger.Info("Shutting down market service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Market service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting market service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Market service error", "error", err)
		os.Exit(1)
	}
}
