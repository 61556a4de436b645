package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/scholaco/tracker/internal/domain"
)

// ResendNotifier sends through the Resend API.
type ResendNotifier struct {
	client *resend.Client
	config *EmailConfig
}

func NewResendNotifier(config *EmailConfig) (*ResendNotifier, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}
	if config.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}

	return &ResendNotifier{
		client: resend.NewClient(config.APIKey),
		config: config,
	}, nil
}

func (n *ResendNotifier) Send(ctx context.Context, to, subject, htmlBody string) (*SendResult, error) {
	sent, err := n.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.config.from(),
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: resend: %v", domain.ErrTransport, err)
	}

	return &SendResult{Provider: "resend", MessageID: sent.Id}, nil
}
