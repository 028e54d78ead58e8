package domain

import "errors"

// Sentinel errors let handlers map service failures onto the HTTP error
// taxonomy without string matching.
var (
	ErrNoSuchAccount      = errors.New("no account registered for this email")
	ErrAlreadyRegistered  = errors.New("an account already exists for this email")
	ErrInvalidOTP         = errors.New("invalid or expired verification code")
	ErrDeliveryFailed     = errors.New("could not deliver the verification code")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrNotAuthenticated   = errors.New("not authenticated")
)
