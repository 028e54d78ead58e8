package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	Phone        string     `json:"phone"`
	IsActive     bool       `json:"is_active"`
	Profile      Profile    `json:"profile"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Profile carries the free-form farming context attached to every account.
type Profile struct {
	FarmLocation       string   `json:"farm_location"`
	FarmSize           string   `json:"farm_size"`
	Crops              []string `json:"crops"`
	LanguagePreference string   `json:"language_preference"`
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	SessionToken string    `json:"session_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         *UserInfo `json:"user"`
}

// UserInfo is the client-safe projection of a user record. The password
// hash never leaves the service.
type UserInfo struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Phone     string     `json:"phone"`
	Profile   Profile    `json:"profile"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

type UpdateProfileRequest struct {
	FarmLocation       *string  `json:"farm_location,omitempty"`
	FarmSize           *string  `json:"farm_size,omitempty"`
	Crops              []string `json:"crops,omitempty"`
	LanguagePreference *string  `json:"language_preference,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckPasswordStrength enforces the account password policy: at least 8
// characters with an uppercase letter, a lowercase letter, and a digit.
// A single composite message is returned for any failure.
func CheckPasswordStrength(password string) error {
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if len(password) < 8 || !hasUpper || !hasLower || !hasDigit {
		return fmt.Errorf("password must be at least 8 characters with uppercase, lowercase, and number")
	}
	return nil
}

func (r *CreateUserRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r *CreateUserRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !IsValidEmail(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	if r.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if err := CheckPasswordStrength(r.Password); err != nil {
		return err
	}
	return nil
}

func (r *LoginRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return fmt.Errorf("email and password are required")
	}
	if !IsValidEmail(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

func (r *ResetPasswordRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

// DefaultProfile is the profile a fresh signup starts with.
func DefaultProfile() Profile {
	return Profile{
		Crops:              []string{},
		LanguagePreference: "en",
	}
}

func (u *User) ToUserInfo() *UserInfo {
	return &UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Profile:   u.Profile,
		LastLogin: u.LastLogin,
	}
}
