package consumer

import (
	"encoding/json"
	"fmt"

	"github.com/agriguru/agriguru-backend/pkg/events"
	"github.com/agriguru/agriguru-backend/pkg/logger"
	"github.com/agriguru/agriguru-backend/services/notify/internal/sender"
	"github.com/agriguru/agriguru-backend/services/notify/internal/templates"
)

// queueGroup spreads event delivery across notify replicas so each
// notification is sent once.
const queueGroup = "notify-workers"

type Consumer struct {
	bus    events.Subscriber
	sender sender.Sender
}

func New(bus events.Subscriber, s sender.Sender) *Consumer {
	return &Consumer{bus: bus, sender: s}
}

// Start registers the queue subscriptions. It returns once the
// subscriptions are in place; delivery happens on the bus's goroutines.
func (c *Consumer) Start() error {
	subs := map[string]func(*events.Message){
		events.UserRegistered: c.HandleUserRegistered,
		events.PasswordReset:  c.HandlePasswordReset,
		events.NotifySend:     c.HandleNotifySend,
	}

	for subject, handler := range subs {
		if err := c.bus.QueueSubscribe(subject, queueGroup, handler); err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		logger.Info("Subscribed", "subject", subject, "queue", queueGroup)
	}
	return nil
}

func (c *Consumer) HandleUserRegistered(msg *events.Message) {
	var evt events.UserRegisteredEvent
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		logger.Error("Malformed user.registered event", "error", err)
		return
	}

	c.deliver(evt.Email, templates.Welcome(evt.FullName))
}

func (c *Consumer) HandlePasswordReset(msg *events.Message) {
	var evt events.PasswordResetEvent
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		logger.Error("Malformed user.password_reset event", "error", err)
		return
	}

	c.deliver(evt.Email, templates.PasswordChanged())
}

func (c *Consumer) HandleNotifySend(msg *events.Message) {
	var evt events.NotificationEvent
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		logger.Error("Malformed notify.send event", "error", err)
		return
	}
	if evt.Recipient == "" {
		logger.Error("notify.send event without recipient", "subject_line", evt.Subject)
		return
	}

	c.deliver(evt.Recipient, templates.Generic(evt.Subject, evt.Template, evt.Data))
}

func (c *Consumer) deliver(toEmail string, r templates.Rendered) {
	if err := c.sender.Send(toEmail, r.Subject, r.Text, r.HTML); err != nil {
		// Fire and forget: notifications are best-effort, account state
		// never depends on them.
		logger.Error("Notification delivery failed", "to", toEmail, "subject_line", r.Subject, "error", err)
		return
	}
	logger.Info("Notification sent", "to", toEmail, "subject_line", r.Subject)
}
