package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agriguru/agriguru-backend/pkg/logger"
	"github.com/agriguru/agriguru-backend/pkg/response"
	"github.com/agriguru/agriguru-backend/services/auth/internal/domain"
)

// SendOTP issues a fresh code for (email, purpose) and emails it. Any
// earlier unconsumed code for the pair stops working at that moment.
func (h *Handlers) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	result, err := h.otpService.Issue(r.Context(), &req)
	if err != nil && !errors.Is(err, domain.ErrDeliveryFailed) {
		writeServiceError(w, r, err)
		return
	}
	if errors.Is(err, domain.ErrDeliveryFailed) {
		// The code exists but never reached the user. Resending is safe
		// and replaces it.
		response.DeliveryFailed(w, "Could not deliver the verification email. Please request a new code.")
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":            "Verification code sent",
		"email":              result.Email,
		"expires_in_seconds": int64(result.ExpiresIn.Seconds()),
	})
}

// VerifyOTP checks and consumes a code. What success yields depends on
// the purpose: a login code establishes a session right away, while
// signup and reset codes leave a short-lived verification the follow-up
// request redeems.
func (h *Handlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if req.Purpose == domain.PurposeLogin {
		resp, err := h.accountService.CompleteOTPLogin(r.Context(), &req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		h.setSessionCookie(w, resp.SessionToken)
		response.WriteJSON(w, http.StatusOK, resp)
		return
	}

	ok, err := h.otpService.Verify(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !ok {
		response.AuthFailed(w, "Invalid or expired verification code")
		return
	}

	if err := h.accountService.GrantVerification(r.Context(), req.Purpose, req.Email); err != nil {
		logger.ErrorContext(r.Context(), "failed to grant verification", "error", err)
		response.StorageError(w, "Verification could not be recorded. Please request a new code.")
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"verified": true,
		"email":    req.Email,
		"purpose":  req.Purpose,
	})
}
