package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

// Purpose scopes an OTP to the action it authorizes. A code issued for
// one purpose is never valid for another.
type Purpose string

const (
	PurposeLogin  Purpose = "login"
	PurposeSignup Purpose = "signup"
	PurposeReset  Purpose = "reset"
)

const CodeLength = 6

var validPurposes = map[Purpose]bool{
	PurposeLogin:  true,
	PurposeSignup: true,
	PurposeReset:  true,
}

func (p Purpose) Valid() bool {
	return validPurposes[p]
}

// OTPCode is one row of the OTP ledger. The raw code is never stored;
// CodeHash is its sha256 digest, which keeps the consume step a single
// conditional UPDATE matching on equality.
type OTPCode struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	CodeHash   string     `json:"-"`
	Purpose    Purpose    `json:"purpose"`
	Attempts   int        `json:"attempts"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (o *OTPCode) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}

func (o *OTPCode) IsConsumed() bool {
	return o.ConsumedAt != nil
}

type SendOTPRequest struct {
	Email   string  `json:"email"`
	Purpose Purpose `json:"purpose"`
}

type VerifyOTPRequest struct {
	Email   string  `json:"email"`
	OTP     string  `json:"otp"`
	Purpose Purpose `json:"purpose"`
}

type SignupWithOTPRequest struct {
	CreateUserRequest
	OTP string `json:"otp"`
}

var codeRegex = regexp.MustCompile(`^\d{6}$`)

func (r *SendOTPRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

func (r *SendOTPRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !IsValidEmail(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	if !r.Purpose.Valid() {
		return fmt.Errorf("invalid purpose")
	}
	return nil
}

func (r *VerifyOTPRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.OTP = strings.TrimSpace(r.OTP)
}

func (r *VerifyOTPRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !IsValidEmail(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	if !codeRegex.MatchString(r.OTP) {
		return fmt.Errorf("otp must be %d digits", CodeLength)
	}
	if !r.Purpose.Valid() {
		return fmt.Errorf("invalid purpose")
	}
	return nil
}

func (r *SignupWithOTPRequest) Normalize() {
	r.CreateUserRequest.Normalize()
	r.OTP = strings.TrimSpace(r.OTP)
}

// Validate allows an empty OTP: the caller may instead hold a
// verification ticket from an earlier /otp/verify call.
func (r *SignupWithOTPRequest) Validate() error {
	if err := r.CreateUserRequest.Validate(); err != nil {
		return err
	}
	if r.OTP != "" && !codeRegex.MatchString(r.OTP) {
		return fmt.Errorf("otp must be %d digits", CodeLength)
	}
	return nil
}

// GenerateCode produces a fixed-length numeric one-time code from a
// cryptographically secure source. Unpredictability is a security
// property of the code, so math/rand is not acceptable here.
func GenerateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < CodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n), nil
}

// HashCode is the stored form of a code.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
