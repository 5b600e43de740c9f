package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"github.com/hopebridge/donation-management/internal"
)

// Sender dispatches one HTML email to one recipient. Both the
// confirmation notifier and the campaign dispatcher depend on this
// interface so tests can swap in a recording fake.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// ResendMailer sends transactional email through the Resend API.
type ResendMailer struct {
	client      *resend.Client
	fromAddress string
	fromName    string
	logger      *slog.Logger
}

func NewResendMailer(cfg internal.MailerConfig, logger *slog.Logger) *ResendMailer {
	return &ResendMailer{
		client:      resend.NewClient(cfg.APIKey),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		logger:      logger,
	}
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", m.fromName, m.fromAddress),
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		m.logger.Error("mail send failed", "to", to, "subject", subject, "error", err)
		return fmt.Errorf("mail send to %s failed: %w", to, err)
	}

	m.logger.Info("mail sent", "to", to, "subject", subject, "message_id", sent.Id)
	return nil
}
