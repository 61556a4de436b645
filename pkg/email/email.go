package email

import (
	"context"
	"time"
)

// Notifier delivers one already-rendered HTML email.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) (*SendResult, error)
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	Provider  string `json:"provider"`
	MessageID string `json:"message_id"`
}

// EmailConfig holds email service configuration
type EmailConfig struct {
	Provider  string        // brevo, resend or ses
	APIKey    string        // Brevo or Resend API key
	BaseURL   string        // Brevo endpoint, overridable for tests
	Region    string        // AWS region for SES
	FromEmail string        // sender address
	FromName  string        // sender display name
	AppURL    string        // link target used in templates
	Timeout   time.Duration // HTTP request timeout
}

func (c *EmailConfig) from() string {
	if c.FromName == "" {
		return c.FromEmail
	}
	return c.FromName + " <" + c.FromEmail + ">"
}
