package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agriguru/agriguru-backend/pkg/cache"
	"github.com/agriguru/agriguru-backend/pkg/config"
	"github.com/agriguru/agriguru-backend/pkg/database"
	"github.com/agriguru/agriguru-backend/pkg/events"
	"github.com/agriguru/agriguru-backend/pkg/logger"
	mw "github.com/agriguru/agriguru-backend/pkg/middleware"
	"github.com/agriguru/agriguru-backend/services/auth/internal/handlers"
	"github.com/agriguru/agriguru-backend/services/auth/internal/mailer"
	"github.com/agriguru/agriguru-backend/services/auth/internal/repository"
	"github.com/agriguru/agriguru-backend/services/auth/internal/service"
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

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	otpRepo := repository.NewOTPRepository(pool)
	sessionRepo := repository.NewSessionRepository(redisClient)
	ticketRepo := repository.NewTicketRepository(redisClient)
	rateLimitRepo := repository.NewRateLimitRepository(redisClient)

	// Services
	mailService := buildMailer(cfg)
	otpService := service.NewOTPService(otpRepo, userRepo, mailService, eventBus, cfg)
	accountService := service.NewAccountService(userRepo, sessionRepo, ticketRepo, otpService, eventBus, cfg)

	h := handlers.New(otpService, accountService, rateLimitRepo, cfg)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("auth"))
	r.Use(mw.Logging)
	r.Use(mw.CORS(cfg.Server.CORSOrigins))
	r.Use(mw.Health)

	r.Route("/", func(r chi.Router) {
		// OTP flow
		r.With(h.SendRateLimit).Post("/otp/send", h.SendOTP)
		r.Post("/otp/verify", h.VerifyOTP)

		// Account lifecycle
		r.Post("/signup", h.Signup)
		r.Post("/signup-with-otp", h.SignupWithOTP)
		r.Post("/login", h.Login)
		r.Post("/reset-password", h.ResetPassword)

		// Session-bound routes
		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)
			r.Post("/logout", h.Logout)
			r.Get("/check-auth", h.CheckAuth)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
			r.Post("/change-password", h.ChangePassword)
		})
	})

	// Hourly sweep of dead ledger rows. Correctness never depends on it;
	// expiry is enforced at consume time.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := otpRepo.DeleteExpired(context.Background()); err != nil {
				logger.Warn("otp sweep failed", "error", err)
			} else if n > 0 {
				logger.Debug("otp sweep removed rows", "count", n)
			}
		}
	}()

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

		logger.Info("Shutting down auth service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Auth service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting auth service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Auth service error", "error", err)
		os.Exit(1)
	}
}

// buildMailer picks the transport for OTP email: log-only in dev,
// MailerSend when an API key is present, plain SMTP otherwise.
func buildMailer(cfg *config.Config) mailer.Service {
	if cfg.Email.DevMode {
		return mailer.NewDevMailer()
	}
	if cfg.Email.MailerSendKey != "" {
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.SMTPFromName, cfg.Email.SMTPFrom)
	}
	return mailer.NewSMTPMailer(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPFrom,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPass,
		cfg.Email.SMTPUseTLS,
	)
}
