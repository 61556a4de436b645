package email

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var emailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "scholaco_emails_total",
	Help: "Transactional emails by template and outcome.",
}, []string{"template", "outcome"})

// Mailer renders the canned templates and hands them to a Notifier.
type Mailer struct {
	notifier Notifier
	appURL   string
	logger   *zap.Logger
}

func NewMailer(notifier Notifier, appURL string, logger *zap.Logger) *Mailer {
	return &Mailer{notifier: notifier, appURL: appURL, logger: logger}
}

// NewNotifier picks the provider named in config.
func NewNotifier(ctx context.Context, config *EmailConfig) (Notifier, error) {
	switch config.Provider {
	case "", "brevo":
		return NewBrevoNotifier(config)
	case "resend":
		return NewResendNotifier(config)
	case "ses":
		return NewSESNotifier(ctx, config)
	default:
		return nil, fmt.Errorf("unknown email provider %q", config.Provider)
	}
}

func (m *Mailer) send(ctx context.Context, template, to string, msg Message) (*SendResult, error) {
	res, err := m.notifier.Send(ctx, to, msg.Subject, msg.HTML)
	if err != nil {
		emailsTotal.WithLabelValues(template, "failed").Inc()
		m.logger.Warn("email send failed",
			zap.String("template", template),
			zap.String("to", to),
			zap.Error(err))
		return nil, err
	}

	emailsTotal.WithLabelValues(template, "sent").Inc()
	m.logger.Info("email sent",
		zap.String("template", template),
		zap.String("to", to),
		zap.String("provider", res.Provider),
		zap.String("message_id", res.MessageID))
	return res, nil
}

func (m *Mailer) SendWelcome(ctx context.Context, to, name string) (*SendResult, error) {
	return m.send(ctx, "welcome", to, WelcomeEmail(name, m.appURL))
}

func (m *Mailer) SendDeadlineReminder(ctx context.Context, to, appName, organization string, deadline time.Time, daysLeft int) (*SendResult, error) {
	return m.send(ctx, "deadline_reminder", to, DeadlineReminderEmail(appName, organization, deadline, daysLeft, m.appURL))
}

func (m *Mailer) SendApplicationSubmitted(ctx context.Context, to, appName string) (*SendResult, error) {
	return m.send(ctx, "application_submitted", to, ApplicationSubmittedEmail(appName, m.appURL))
}
