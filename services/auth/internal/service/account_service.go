package service

import (
	"context"
	"fmt"
	"time"

	"github.com/agriguru/agriguru-backend/pkg/auth"
	"github.com/agriguru/agriguru-backend/pkg/config"
	"github.com/agriguru/agriguru-backend/pkg/events"
	"github.com/agriguru/agriguru-backend/pkg/logger"
	"github.com/agriguru/agriguru-backend/services/auth/internal/domain"
	"github.com/agriguru/agriguru-backend/services/auth/internal/repository"
	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
)

type AccountService interface {
	Signup(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error)
	SignupWithOTP(ctx context.Context, req *domain.SignupWithOTPRequest) (*domain.LoginResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	CompleteOTPLogin(ctx context.Context, req *domain.VerifyOTPRequest) (*domain.LoginResponse, error)
	GrantVerification(ctx context.Context, purpose domain.Purpose, email string) error
	ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error
	Logout(ctx context.Context, sessionID string) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, req *domain.UpdateProfileRequest) (*domain.User, error)
	ChangePassword(ctx context.Context, id int64, req *domain.ChangePasswordRequest) error
	CheckSession(ctx context.Context, sessionID string) (int64, bool, error)
}

type accountService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	ticketRepo  repository.TicketRepository
	otpService  OTPService
	eventBus    events.Publisher
	config      *config.Config
}

func NewAccountService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	ticketRepo repository.TicketRepository,
	otpService OTPService,
	eventBus events.Publisher,
	config *config.Config,
) AccountService {
	return &accountService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		ticketRepo:  ticketRepo,
		otpService:  otpService,
		eventBus:    eventBus,
		config:      config,
	}
}

func (s *accountService) Signup(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrAlreadyRegistered
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, req, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
		UserID:    user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "failed to publish user.registered", "error", err, "user_id", user.ID)
	}

	return user, nil
}

// SignupWithOTP completes an OTP-gated registration. The email must hold
// a signup verification: either an inline code, or the ticket left by a
// prior successful /otp/verify call.
func (s *accountService) SignupWithOTP(ctx context.Context, req *domain.SignupWithOTPRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	verified, err := s.redeemVerification(ctx, domain.PurposeSignup, req.Email, req.OTP)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, domain.ErrInvalidOTP
	}

	user, err := s.Signup(ctx, &req.CreateUserRequest)
	if err != nil {
		return nil, err
	}

	return s.establishSession(ctx, user)
}

func (s *accountService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, domain.ErrInvalidCredentials
	}

	return s.establishSession(ctx, user)
}

// CompleteOTPLogin is the login-purpose terminal of the OTP state
// machine: a consumed code yields a session and a last_login touch.
func (s *accountService) CompleteOTPLogin(ctx context.Context, req *domain.VerifyOTPRequest) (*domain.LoginResponse, error) {
	ok, err := s.otpService.Verify(ctx, req)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidOTP
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// The issuance policy checked registration, but the account may
		// have been removed inside the OTP window.
		return nil, domain.ErrNoSuchAccount
	}

	return s.establishSession(ctx, user)
}

// GrantVerification leaves the one-shot ticket that lets the follow-up
// request (signup-with-otp, reset-password) complete after the code was
// consumed by /otp/verify.
func (s *accountService) GrantVerification(ctx context.Context, purpose domain.Purpose, email string) error {
	return s.ticketRepo.Grant(ctx, purpose, email, s.config.Auth.OTPTTL)
}

func (s *accountService) ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error {
	req.Normalize()
	if !domain.IsValidEmail(req.Email) {
		return fmt.Errorf("validation failed: invalid email format")
	}
	if err := domain.CheckPasswordStrength(req.NewPassword); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	verified, err := s.ticketRepo.Redeem(ctx, domain.PurposeReset, req.Email)
	if err != nil {
		return fmt.Errorf("failed to redeem reset verification: %w", err)
	}
	if !verified {
		return domain.ErrInvalidOTP
	}

	passwordHash, err := argon2id.CreateHash(req.NewPassword, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.userRepo.UpdatePasswordByEmail(ctx, req.Email, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if userID == 0 {
		return domain.ErrNoSuchAccount
	}

	if err := s.eventBus.Publish(ctx, events.PasswordReset, events.PasswordResetEvent{
		UserID:  userID,
		Email:   req.Email,
		ResetAt: time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "failed to publish user.password_reset", "error", err, "user_id", userID)
	}

	return nil
}

func (s *accountService) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Delete(ctx, sessionID)
}

func (s *accountService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, id int64, req *domain.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.userRepo.UpdateProfile(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *accountService) ChangePassword(ctx context.Context, id int64, req *domain.ChangePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" {
		return fmt.Errorf("validation failed: old and new passwords are required")
	}
	if err := domain.CheckPasswordStrength(req.NewPassword); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return domain.ErrNoSuchAccount
	}

	valid, err := argon2id.ComparePasswordAndHash(req.OldPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return domain.ErrInvalidCredentials
	}

	passwordHash, err := argon2id.CreateHash(req.NewPassword, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, id, passwordHash)
}

func (s *accountService) CheckSession(ctx context.Context, sessionID string) (int64, bool, error) {
	return s.sessionRepo.Lookup(ctx, sessionID)
}

func (s *accountService) establishSession(ctx context.Context, user *domain.User) (*domain.LoginResponse, error) {
	sessionID := uuid.NewString()

	if err := s.sessionRepo.Create(ctx, sessionID, user.ID, s.config.Auth.SessionTTL); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := auth.NewSessionToken(user.ID, user.Email, sessionID, s.config.Auth.JWTSecret, s.config.Auth.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		logger.WarnContext(ctx, "failed to update last_login", "error", err, "user_id", user.ID)
	}

	if err := s.eventBus.Publish(ctx, events.UserLoggedIn, events.UserLoggedInEvent{
		UserID:   user.ID,
		Email:    user.Email,
		LoggedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "failed to publish user.logged_in", "error", err, "user_id", user.ID)
	}

	return &domain.LoginResponse{
		SessionToken: token,
		ExpiresIn:    int64(s.config.Auth.SessionTTL.Seconds()),
		User:         user.ToUserInfo(),
	}, nil
}

// redeemVerification accepts either an inline code or a previously
// granted ticket for the purpose.
func (s *accountService) redeemVerification(ctx context.Context, purpose domain.Purpose, email, code string) (bool, error) {
	if code != "" {
		return s.otpService.Verify(ctx, &domain.VerifyOTPRequest{Email: email, OTP: code, Purpose: purpose})
	}

	ok, err := s.ticketRepo.Redeem(ctx, purpose, email)
	if err != nil {
		return false, fmt.Errorf("failed to redeem verification: %w", err)
	}
	return ok, nil
}
