package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agriguru/agriguru-backend/pkg/auth"
	"github.com/agriguru/agriguru-backend/pkg/config"
	"github.com/agriguru/agriguru-backend/services/auth/internal/domain"
	"github.com/agriguru/agriguru-backend/services/auth/internal/handlers"
	"github.com/agriguru/agriguru-backend/services/auth/internal/service"
)

// ---------- Mocks ----------

type mockOTPService struct {
	issueResult *service.IssueResult
	issueErr    error
	verifyOK    bool
	verifyErr   error
	lastIssue   *domain.SendOTPRequest
	lastVerify  *domain.VerifyOTPRequest
}

func (m *mockOTPService) Issue(_ context.Context, req *domain.SendOTPRequest) (*service.IssueResult, error) {
	m.lastIssue = req
	return m.issueResult, m.issueErr
}

func (m *mockOTPService) Verify(_ context.Context, req *domain.VerifyOTPRequest) (bool, error) {
	m.lastVerify = req
	return m.verifyOK, m.verifyErr
}

type mockAccountService struct {
	loginResp    *domain.LoginResponse
	loginErr     error
	signupUser   *domain.User
	signupErr    error
	sessionLive  bool
	grantErr     error
	grants       []string
	loggedOut    []string
	resetErr     error
	changeErr    error
	profileUser  *domain.User
	updatedUser  *domain.User
}

func (m *mockAccountService) Signup(_ context.Context, _ *domain.CreateUserRequest) (*domain.User, error) {
	return m.signupUser, m.signupErr
}

func (m *mockAccountService) SignupWithOTP(_ context.Context, _ *domain.SignupWithOTPRequest) (*domain.LoginResponse, error) {
	return m.loginResp, m.loginErr
}

func (m *mockAccountService) Login(_ context.Context, _ *domain.LoginRequest) (*domain.LoginResponse, error) {
	return m.loginResp, m.loginErr
}

func (m *mockAccountService) CompleteOTPLogin(_ context.Context, _ *domain.VerifyOTPRequest) (*domain.LoginResponse, error) {
	return m.loginResp, m.loginErr
}

func (m *mockAccountService) GrantVerification(_ context.Context, purpose domain.Purpose, email string) error {
	m.grants = append(m.grants, string(purpose)+":"+email)
	return m.grantErr
}

func (m *mockAccountService) ResetPassword(_ context.Context, _ *domain.ResetPasswordRequest) error {
	return m.resetErr
}

func (m *mockAccountService) Logout(_ context.Context, sessionID string) error {
	m.loggedOut = append(m.loggedOut, sessionID)
	return nil
}

func (m *mockAccountService) GetUser(_ context.Context, _ int64) (*domain.User, error) {
	return m.profileUser, nil
}

func (m *mockAccountService) UpdateProfile(_ context.Context, _ int64, _ *domain.UpdateProfileRequest) (*domain.User, error) {
	return m.updatedUser, nil
}

func (m *mockAccountService) ChangePassword(_ context.Context, _ int64, _ *domain.ChangePasswordRequest) error {
	return m.changeErr
}

func (m *mockAccountService) CheckSession(_ context.Context, _ string) (int64, bool, error) {
	return 1, m.sessionLive, nil
}

type mockRateLimiter struct {
	allowed bool
	calls   int
}

func (m *mockRateLimiter) Allow(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	m.calls++
	return m.allowed, nil
}

// ---------- Fixtures ----------

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-key-for-signing",
			SessionTTL:     time.Hour,
			OTPTTL:         10 * time.Minute,
			OTPMaxAttempts: 5,
		},
		Email: config.EmailConfig{DevMode: true},
	}
}

func setup(otps *mockOTPService, accounts *mockAccountService, limiter *mockRateLimiter) *chi.Mux {
	cfg := testConfig()
	h := handlers.New(otps, accounts, limiter, cfg)

	r := chi.NewRouter()
	r.With(h.SendRateLimit).Post("/otp/send", h.SendOTP)
	r.Post("/otp/verify", h.VerifyOTP)
	r.Post("/signup", h.Signup)
	r.Post("/signup-with-otp", h.SignupWithOTP)
	r.Post("/login", h.Login)
	r.Post("/reset-password", h.ResetPassword)
	r.Group(func(r chi.Router) {
		r.Use(h.RequireSession)
		r.Post("/logout", h.Logout)
		r.Get("/check-auth", h.CheckAuth)
		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

// ---------- OTP endpoints ----------

func TestSendOTPSuccess(t *testing.T) {
	otps := &mockOTPService{issueResult: &service.IssueResult{OTPID: 1, Email: "farmer@example.com", ExpiresIn: 10 * time.Minute}}
	router := setup(otps, &mockAccountService{}, &mockRateLimiter{allowed: true})

	rec := doJSON(t, router, http.MethodPost, "/otp/send",
		map[string]string{"email": "farmer@example.com", "purpose": "login"}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["email"] != "farmer@example.com" {
		t.Errorf("unexpected email: %v", body["email"])
	}
	if body["expires_in_seconds"] != float64(600) {
		t.Errorf("unexpected expiry: %v", body["expires_in_seconds"])
	}
}

func TestSendOTPDeliveryFailure(t *testing.T) {
	otps := &mockOTPService{
		issueResult: &service.IssueResult{OTPID: 1, Email: "farmer@example.com", ExpiresIn: 10 * time.Minute},
		issueErr:    domain.ErrDeliveryFailed,
	}
	router := setup(otps, &mockAccountService{}, &mockRateLimiter{allowed: true})

	rec := doJSON(t, router, http.MethodPost, "/otp/send",
		map[string]string{"email": "farmer@example.com", "purpose": "login"}, nil)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if decodeBody(t, rec)["code"] != "DELIVERY_FAILED" {
		t.Error("expected DELIVERY_FAILED code")
	}
}

func TestSendOTPUnknownAccount(t *testing.T) {
	otps := &mockOTPService{issueErr: domain.ErrNoSuchAccount}
	router := setup(otps, &mockAccountService{}, &mockRateLimiter{allowed: true})

	rec := doJSON(t, router, http.MethodPost, "/otp/send",
		map[string]string{"email": "nobody@example.com", "purpose": "login"}, nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSendOTPRateLimited(t *testing.T) {
	router := setup(&mockOTPService{}, &mockAccountService{}, &mockRateLimiter{allowed: false})

	rec := doJSON(t, router, http.MethodPost, "/otp/send",
		map[string]string{"email": "farmer@example.com", "purpose": "login"}, nil)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestVerifyOTPLoginReturnsSession(t *testing.T) {
	accounts := &mockAccountService{
		loginResp: &domain.LoginResponse{SessionToken: "token-abc", ExpiresIn: 3600, User: &domain.UserInfo{ID: 1, Email: "farmer@example.com"}},
	}
	router := setup(&mockOTPService{}, accounts, &mockRateLimiter{allowed: true})

	rec := doJSON(t, router, http.MethodPost, "/otp/verify",
		map[string]string{"email": "farmer@example.com", "otp": "123456", "purpose": "login"}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["session_token"] != "token-abc" {
		t.Error("login verify should carry the session token")
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == handlers.SessionCookie && c.Value == "token-abc" {
			found = true
		}
	}
	if !found {
		t.Error("session cookie should be set")
	}
}

func TestVerifyOTPSignupGrantsVerification(t *testing.T) {
	otps := &mockOTPService{verifyOK: true}
	accounts := &mockAccountService{}
	router := setup(otps, accounts, &mockRateLimiter{allowed: true})

	rec := doJSON(t, router, http.MethodPost, "/otp/verify",
		map[string]string{"email": "new@example.com", "otp": "123456", "purpose": "signup"}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["verified"] != true {
		t.Error("expected verified=true")
	}
	if len(accounts.grants) != 1 || accounts.grants[0] != "signup:new@example.com" {
		t.Errorf("expected one signup grant, got %v", accounts.grants)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	otps := &mockOTPService{verifyOK: false}
	router := setup(otps, &mockAccountService{}, &mockRateLimiter{allowed: true})

	rec := doJSON(t, router, http.MethodPost, "/otp/verify",
		map[string]string{"email": "new@example.com", "otp": "000000", "purpose": "signup"}, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if decodeBody(t, rec)["code"] != "AUTH_FAILED" {
		t.Error("expected AUTH_FAILED code")
	}
}

// ---------- Account endpoints ----------

func TestSignupConflict(t *testing.T) {
	accounts := &mockAccountService{signupErr: domain.ErrAlreadyRegistered}
	router := setup(&mockOTPService{}, accounts, &mockRateLimiter{allowed: true})

	rec := doJSON(t, router, http.MethodPost, "/signup",
		map[string]string{"email": "farmer@example.com", "password": "Abc12345", "full_name": "Asha"}, nil)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if decodeBody(t, rec)["code"] != "CONFLICT" {
		t.Error("expected CONFLICT code")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	accounts := &mockAccountService{loginErr: domain.ErrInvalidCredentials}
	router := setup(&mockOTPService{}, accounts, &mockRateLimiter{allowed: true})

	rec := doJSON(t, router, http.MethodPost, "/login",
		map[string]string{"email": "farmer@example.com", "password": "Wrong1234"}, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestInvalidJSONRejected(t *testing.T) {
	router := setup(&mockOTPService{}, &mockAccountService{}, &mockRateLimiter{allowed: true})

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// ---------- Session middleware ----------

func sessionToken(t *testing.T) string {
	t.Helper()
	token, err := auth.NewSessionToken(1, "farmer@example.com", "session-1", "test-secret-key-for-signing", time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestRequireSessionMissingToken(t *testing.T) {
	router := setup(&mockOTPService{}, &mockAccountService{sessionLive: true}, &mockRateLimiter{allowed: true})

	rec := doJSON(t, router, http.MethodGet, "/check-auth", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireSessionRevoked(t *testing.T) {
	router := setup(&mockOTPService{}, &mockAccountService{sessionLive: false}, &mockRateLimiter{allowed: true})

	rec := doJSON(t, router, http.MethodGet, "/check-auth", nil,
		map[string]string{"Authorization": "Bearer " + sessionToken(t)})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked session, got %d", rec.Code)
	}
}

func TestCheckAuthWithLiveSession(t *testing.T) {
	router := setup(&mockOTPService{}, &mockAccountService{sessionLive: true}, &mockRateLimiter{allowed: true})

	rec := doJSON(t, router, http.MethodGet, "/check-auth", nil,
		map[string]string{"Authorization": "Bearer " + sessionToken(t)})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["authenticated"] != true || body["email"] != "farmer@example.com" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	accounts := &mockAccountService{sessionLive: true}
	router := setup(&mockOTPService{}, accounts, &mockRateLimiter{allowed: true})

	rec := doJSON(t, router, http.MethodPost, "/logout", nil,
		map[string]string{"Authorization": "Bearer " + sessionToken(t)})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(accounts.loggedOut) != 1 || accounts.loggedOut[0] != "session-1" {
		t.Errorf("expected session-1 deleted, got %v", accounts.loggedOut)
	}
}

func TestUpdateProfileAccountGone(t *testing.T) {
	// Session still live, user row already deleted: the update finds
	// nothing to return.
	accounts := &mockAccountService{sessionLive: true, updatedUser: nil}
	router := setup(&mockOTPService{}, accounts, &mockRateLimiter{allowed: true})

	rec := doJSON(t, router, http.MethodPut, "/profile",
		map[string]string{"district": "Nashik"},
		map[string]string{"Authorization": "Bearer " + sessionToken(t)})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["code"] != "NOT_FOUND" {
		t.Errorf("unexpected error body: %v", body)
	}
}
