package mailer

import (
	"time"

	"github.com/agriguru/agriguru-backend/pkg/logger"
)

// DevMailer logs codes instead of sending mail. Default in development so
// the flow is testable without an SMTP server or provider key.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendOTPEmail(toEmail, code, purpose string, expiresIn time.Duration) error {
	logger.Info("[DEV MAIL] OTP email",
		"to", toEmail,
		"purpose", purpose,
		"code", code,
		"expires_in", expiresIn.String(),
	)
	return nil
}
