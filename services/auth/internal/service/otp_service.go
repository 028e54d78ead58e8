package service

import (
	"context"
	"fmt"
	"time"

	"github.com/agriguru/agriguru-backend/pkg/config"
	"github.com/agriguru/agriguru-backend/pkg/events"
	"github.com/agriguru/agriguru-backend/pkg/logger"
	"github.com/agriguru/agriguru-backend/services/auth/internal/domain"
	"github.com/agriguru/agriguru-backend/services/auth/internal/mailer"
	"github.com/agriguru/agriguru-backend/services/auth/internal/repository"
)

// OTPService issues and verifies one-time codes. Issuing replaces any
// prior live code for the same (email, purpose); verifying consumes the
// code so it can never be accepted twice.
type OTPService interface {
	Issue(ctx context.Context, req *domain.SendOTPRequest) (*IssueResult, error)
	Verify(ctx context.Context, req *domain.VerifyOTPRequest) (bool, error)
}

type IssueResult struct {
	OTPID     int64
	Email     string
	ExpiresIn time.Duration
}

type otpService struct {
	otpRepo  repository.OTPRepository
	userRepo repository.UserRepository
	mailer   mailer.Service
	eventBus events.Publisher
	config   *config.Config
}

func NewOTPService(
	otpRepo repository.OTPRepository,
	userRepo repository.UserRepository,
	mailer mailer.Service,
	eventBus events.Publisher,
	config *config.Config,
) OTPService {
	return &otpService{
		otpRepo:  otpRepo,
		userRepo: userRepo,
		mailer:   mailer,
		eventBus: eventBus,
		config:   config,
	}
}

func (s *otpService) Issue(ctx context.Context, req *domain.SendOTPRequest) (*IssueResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Purpose-specific policy: a login or reset code needs an account to
	// act on; a signup code must not collide with an existing one.
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	switch req.Purpose {
	case domain.PurposeLogin, domain.PurposeReset:
		if user == nil {
			return nil, domain.ErrNoSuchAccount
		}
		if !user.IsActive {
			return nil, domain.ErrAccountInactive
		}
	case domain.PurposeSignup:
		if user != nil {
			return nil, domain.ErrAlreadyRegistered
		}
	}

	code, err := domain.GenerateCode()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.config.Auth.OTPTTL)

	// Atomic replace: any earlier code for this (email, purpose) dies
	// the moment the new one exists.
	otpID, err := s.otpRepo.Replace(ctx, req.Email, req.Purpose, domain.HashCode(code), expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store otp: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.OTPIssued, events.OTPIssuedEvent{
		Email:     req.Email,
		Purpose:   string(req.Purpose),
		ExpiresAt: expiresAt,
		IssuedAt:  time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "failed to publish otp.issued", "error", err)
	}

	result := &IssueResult{
		OTPID:     otpID,
		Email:     req.Email,
		ExpiresIn: s.config.Auth.OTPTTL,
	}

	// The code is stored either way; a transport failure is reported
	// distinctly so the caller can retry issuance (which invalidates the
	// undelivered code) instead of guessing at the system state.
	if err := s.mailer.SendOTPEmail(req.Email, code, string(req.Purpose), s.config.Auth.OTPTTL); err != nil {
		logger.ErrorContext(ctx, "otp email delivery failed", "error", err, "email", req.Email, "purpose", req.Purpose)
		return result, domain.ErrDeliveryFailed
	}

	return result, nil
}

func (s *otpService) Verify(ctx context.Context, req *domain.VerifyOTPRequest) (bool, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return false, fmt.Errorf("validation failed: %w", err)
	}

	consumed, err := s.otpRepo.Consume(ctx, req.Email, req.Purpose, domain.HashCode(req.OTP), s.config.Auth.OTPMaxAttempts)
	if err != nil {
		return false, fmt.Errorf("failed to verify otp: %w", err)
	}
	if !consumed {
		// Internal logs may say more; the caller only ever sees one
		// generic failure for wrong, expired, and replayed codes alike.
		logger.InfoContext(ctx, "otp verification failed", "email", req.Email, "purpose", req.Purpose)
		if err := s.otpRepo.RecordFailedAttempt(ctx, req.Email, req.Purpose); err != nil {
			logger.WarnContext(ctx, "failed to record otp attempt", "error", err)
		}
		return false, nil
	}

	return true, nil
}
