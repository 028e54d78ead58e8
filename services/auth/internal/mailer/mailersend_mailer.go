package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendOTPEmail(toEmail, code, purpose string, expiresIn time.Duration) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	minutes := int(expiresIn.Minutes())
	subject := subjectFor(purpose)
	html := fmt.Sprintf(`
		<h2>AgriGuru verification</h2>
		<p>Your verification code is: <strong style="font-size: 24px; color: #2E7D32;">%s</strong></p>
		<p>It expires in %d minutes.</p>
		<p>If you did not request this code, you can safely ignore this email.</p>
	`, code, minutes)
	text := fmt.Sprintf("Your AgriGuru verification code is: %s\n\nIt expires in %d minutes.", code, minutes)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetText(text)
	msg.SetHTML(html)

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
