package templates

import (
	"fmt"
	"sort"
	"strings"
)

// Rendered holds one notification ready for delivery.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

func Welcome(fullName string) Rendered {
	name := strings.TrimSpace(fullName)
	if name == "" {
		name = "there"
	}
	return Rendered{
		Subject: "Welcome to AgriGuru",
		Text: fmt.Sprintf("Hi %s,\n\nYour AgriGuru account is ready. Log in to get crop diagnosis, market insights and advisory support.\n\nThe AgriGuru team", name),
		HTML: fmt.Sprintf(`
			<h2>Welcome to AgriGuru</h2>
			<p>Hi %s,</p>
			<p>Your AgriGuru account is ready. Log in to get crop diagnosis, market insights and advisory support.</p>
			<p>The AgriGuru team</p>
		`, name),
	}
}

func PasswordChanged() Rendered {
	return Rendered{
		Subject: "Your AgriGuru password was changed",
		Text:    "Your AgriGuru password was just changed.\n\nIf this was you, no action is needed. If not, reset your password immediately.",
		HTML: `
			<h2>Password changed</h2>
			<p>Your AgriGuru password was just changed.</p>
			<p>If this was you, no action is needed. If not, reset your password immediately.</p>
		`,
	}
}

// Generic renders an ad-hoc notification from a template name and its
// data map. Unknown template names fall back to a plain key/value body
// so a notification is never silently dropped.
func Generic(subject, template string, data map[string]interface{}) Rendered {
	if subject == "" {
		subject = "AgriGuru notification"
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var text, html strings.Builder
	if template != "" {
		fmt.Fprintf(&text, "%s\n\n", template)
		fmt.Fprintf(&html, "<p>%s</p>", template)
	}
	for _, k := range keys {
		fmt.Fprintf(&text, "%s: %v\n", k, data[k])
		fmt.Fprintf(&html, "<p><strong>%s:</strong> %v</p>", k, data[k])
	}

	return Rendered{
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
	}
}
