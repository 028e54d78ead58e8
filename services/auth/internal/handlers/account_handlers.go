package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/agriguru/agriguru-backend/pkg/logger"
	"github.com/agriguru/agriguru-backend/pkg/response"
	"github.com/agriguru/agriguru-backend/services/auth/internal/domain"
)

// Signup creates an account from email and password alone.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	user, err := h.accountService.Signup(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Account created successfully",
		"user":    user.ToUserInfo(),
	})
}

// SignupWithOTP creates an account gated on email verification and logs
// the new user straight in.
func (h *Handlers) SignupWithOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupWithOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	resp, err := h.accountService.SignupWithOTP(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setSessionCookie(w, resp.SessionToken)
	response.WriteJSON(w, http.StatusCreated, resp)
}

// Login authenticates with email and password.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	resp, err := h.accountService.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setSessionCookie(w, resp.SessionToken)
	response.WriteJSON(w, http.StatusOK, resp)
}

// Logout revokes the current session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.accountService.Logout(r.Context(), claims.SessionID); err != nil {
		logger.ErrorContext(r.Context(), "logout failed", "error", err)
		response.StorageError(w, "Could not end the session")
		return
	}

	h.clearSessionCookie(w)
	response.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// GetProfile returns the authenticated user's account and farm profile.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	user, err := h.accountService.GetUser(r.Context(), claims.Sub)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if user == nil {
		response.NotFound(w, "Account no longer exists")
		return
	}

	response.WriteJSON(w, http.StatusOK, user.ToUserInfo())
}

// UpdateProfile applies a partial update to the farm profile. Absent
// fields keep their current values.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	user, err := h.accountService.UpdateProfile(r.Context(), claims.Sub, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if user == nil {
		response.NotFound(w, "Account no longer exists")
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated",
		"user":    user.ToUserInfo(),
	})
}

// ChangePassword rotates the password for a logged-in user who can
// present the current one.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req domain.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if err := h.accountService.ChangePassword(r.Context(), claims.Sub, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Password changed successfully",
	})
}

// ResetPassword sets a new password after a reset-purpose OTP was
// verified for the email.
func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if err := h.accountService.ResetPassword(r.Context(), &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset successfully",
	})
}

// CheckAuth reports whether the request carries a live session.
func (h *Handlers) CheckAuth(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user_id":       claims.Sub,
		"email":         claims.Email,
	})
}
