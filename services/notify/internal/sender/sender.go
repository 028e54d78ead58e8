package sender

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/agriguru/agriguru-backend/pkg/logger"
)

// Sender delivers a rendered notification to a single recipient.
type Sender interface {
	Send(toEmail, subject, text, html string) error
}

// DevSender logs notifications instead of sending them. Default in
// development so event flows are testable without an SMTP server.
type DevSender struct{}

func NewDevSender() *DevSender {
	return &DevSender{}
}

func (d *DevSender) Send(toEmail, subject, text, _ string) error {
	logger.Info("[DEV MAIL] notification",
		"to", toEmail,
		"subject", subject,
		"body", text,
	)
	return nil
}

type SMTPSender struct {
	Host string
	Port int
	From string
	User string
	Pass string
}

func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{
		Host: strings.TrimSpace(host),
		Port: port,
		From: strings.TrimSpace(from),
		User: strings.TrimSpace(user),
		Pass: strings.TrimSpace(pass),
	}
}

func (s *SMTPSender) Send(toEmail, subject, text, html string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return fmt.Errorf("empty recipient email")
	}

	var buf bytes.Buffer
	boundary := "mixed-boundary"

	fmt.Fprintf(&buf, "From: %s\r\n", s.From)
	fmt.Fprintf(&buf, "To: %s\r\n", toEmail)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", text)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/html; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", html)

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)

	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}

	return smtp.SendMail(addr, auth, s.From, []string{toEmail}, buf.Bytes())
}
