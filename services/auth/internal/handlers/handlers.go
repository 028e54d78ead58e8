package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/agriguru/agriguru-backend/pkg/auth"
	"github.com/agriguru/agriguru-backend/pkg/config"
	"github.com/agriguru/agriguru-backend/pkg/logger"
	"github.com/agriguru/agriguru-backend/pkg/response"
	"github.com/agriguru/agriguru-backend/services/auth/internal/domain"
	"github.com/agriguru/agriguru-backend/services/auth/internal/repository"
	"github.com/agriguru/agriguru-backend/services/auth/internal/service"
)

// SessionCookie is the browser-facing carrier of the session token.
// API clients may send the same token as a Bearer header instead.
const SessionCookie = auth.SessionCookie

type contextKey string

const claimsKey contextKey = "claims"

type Handlers struct {
	otpService     service.OTPService
	accountService service.AccountService
	rateLimitRepo  repository.RateLimitRepository
	config         *config.Config
}

func New(
	otpService service.OTPService,
	accountService service.AccountService,
	rateLimitRepo repository.RateLimitRepository,
	config *config.Config,
) *Handlers {
	return &Handlers{
		otpService:     otpService,
		accountService: accountService,
		rateLimitRepo:  rateLimitRepo,
		config:         config,
	}
}

// RequireSession authenticates a request: the JWT must parse and the
// session it names must still exist in the store. Logout deletes the
// session, so a stolen token dies with it.
func (h *Handlers) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.TokenFromRequest(r)
		if token == "" {
			response.Unauthorized(w, "Authentication required")
			return
		}

		claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		_, ok, err := h.accountService.CheckSession(r.Context(), claims.SessionID)
		if err != nil {
			logger.ErrorContext(r.Context(), "session lookup failed", "error", err)
			response.StorageError(w, "Unable to verify session")
			return
		}
		if !ok {
			response.Unauthorized(w, "Session expired or revoked")
			return
		}

		ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
		ctx = context.WithValue(ctx, claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SendRateLimit caps OTP issuance per client and per target address.
func (h *Handlers) SendRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "otp_send:" + getClientIP(r)

		allowed, err := h.rateLimitRepo.Allow(r.Context(), key, 10, time.Minute)
		if err != nil {
			logger.WarnContext(r.Context(), "rate limit check failed", "error", err)
		} else if !allowed {
			response.RateLimit(w, "Too many requests. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.Auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !h.config.Email.DevMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// writeServiceError maps domain sentinels onto the shared error
// taxonomy. Anything unrecognized is reported as a storage problem
// without leaking internal error text.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNoSuchAccount):
		response.NotFound(w, "No account found for this email")
	case errors.Is(err, domain.ErrAlreadyRegistered):
		response.Conflict(w, "An account with this email already exists")
	case errors.Is(err, domain.ErrInvalidOTP):
		response.AuthFailed(w, "Invalid or expired verification code")
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.AuthFailed(w, "Invalid email or password")
	case errors.Is(err, domain.ErrAccountInactive):
		response.Forbidden(w, "This account is deactivated")
	case errors.Is(err, domain.ErrNotAuthenticated):
		response.Unauthorized(w, "Authentication required")
	case errors.Is(err, domain.ErrDeliveryFailed):
		response.DeliveryFailed(w, "Could not deliver the verification email")
	case strings.HasPrefix(err.Error(), "validation failed: "):
		response.BadRequest(w, strings.TrimPrefix(err.Error(), "validation failed: "))
	default:
		logger.ErrorContext(r.Context(), "request failed", "error", err)
		response.StorageError(w, "Something went wrong. Please try again.")
	}
}
