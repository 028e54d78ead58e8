package mailer

import "time"

type Service interface {
	SendOTPEmail(toEmail, code, purpose string, expiresIn time.Duration) error
}

func subjectFor(purpose string) string {
	switch purpose {
	case "signup":
		return "Confirm your AgriGuru registration"
	case "reset":
		return "Reset your AgriGuru password"
	default:
		return "Your AgriGuru login code"
	}
}
