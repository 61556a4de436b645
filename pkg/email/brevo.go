package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/scholaco/tracker/internal/domain"
)

const DefaultBrevoURL = "https://api.brevo.com/v3/smtp/email"

// BrevoNotifier sends through Brevo's transactional SMTP API.
type BrevoNotifier struct {
	client *http.Client
	config *EmailConfig
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

type brevoResponse struct {
	MessageID string `json:"messageId"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
}

func NewBrevoNotifier(config *EmailConfig) (*BrevoNotifier, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("brevo API key is required")
	}
	if config.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBrevoURL
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &BrevoNotifier{
		client: &http.Client{Timeout: timeout},
		config: config,
	}, nil
}

func (n *BrevoNotifier) Send(ctx context.Context, to, subject, htmlBody string) (*SendResult, error) {
	payload, err := json.Marshal(brevoRequest{
		Sender:      brevoContact{Email: n.config.FromEmail, Name: n.config.FromName},
		To:          []brevoContact{{Email: to}},
		Subject:     subject,
		HTMLContent: htmlBody,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", n.config.APIKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: brevo request: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read brevo response: %v", domain.ErrTransport, err)
	}

	var parsed brevoResponse
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if err := json.Unmarshal(body, &parsed); err != nil || parsed.Message == "" {
			return nil, fmt.Errorf("%w: brevo returned status %d: %s", domain.ErrTransport, resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("%w: brevo %s: %s", domain.ErrTransport, parsed.Code, parsed.Message)
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parse brevo response: %v", domain.ErrTransport, err)
	}

	return &SendResult{Provider: "brevo", MessageID: parsed.MessageID}, nil
}
