// Package adapters holds thin clients for external collaborators.
package adapters

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/vantage-service/vantage_service/internal/infrastructure/config"
)

// EmailNotifier sends notification emails through SendGrid. Delivery is
// best-effort everywhere it is used; callers treat failures as soft.
type EmailNotifier struct {
	client *sendgrid.Client
	cfg    config.EmailConfig
	logger *zap.Logger
}

// NewEmailNotifier creates an EmailNotifier, or nil when email is disabled.
// A nil notifier is a valid collaborator: sends become soft no-op failures.
func NewEmailNotifier(cfg config.EmailConfig, logger *zap.Logger) *EmailNotifier {
	if !cfg.Enabled || cfg.APIKey == "" {
		return nil
	}
	return &EmailNotifier{
		client: sendgrid.NewSendClient(cfg.APIKey),
		cfg:    cfg,
		logger: logger,
	}
}

// Send dispatches a plain-text notification email.
func (n *EmailNotifier) Send(ctx context.Context, toEmail, subject, body string) error {
	from := mail.NewEmail(n.cfg.FromName, n.cfg.FromEmail)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, body)

	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("send email: provider status %d", resp.StatusCode)
	}

	n.logger.Debug("notification email sent", zap.String("subject", subject))
	return nil
}
