package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/hopebridge/donation-management/internal/mailer"
)

const confirmationSubject = "Thank you for your donation"

// Template values come from the reconciled donation record, not from
// arbitrary user input at send time.
const confirmationTemplate = `
<p>Dear {{.DonorName}},</p>

<p>
	Thank you for your generous donation of {{.Amount}}. Your support
	helps us keep our programs running.
</p>

{{if .TransactionReference}}
<p>Your payment reference: <strong>{{.TransactionReference}}</strong></p>
{{end}}

<p>
	A receipt has been recorded against this email address
	({{.Email}}). If you have any questions, just reply to this message.
</p>

<p>With gratitude,<br>The HopeBridge Foundation team</p>
`

type confirmationData struct {
	DonorName            string
	Email                string
	Amount               string
	TransactionReference string
}

// ConfirmationNotifier renders and sends the donation confirmation
// email. Callers treat a send failure as best-effort: it is logged and
// never rolls back the reconciliation that triggered it.
type ConfirmationNotifier struct {
	sender mailer.Sender
	tmpl   *template.Template
	logger *slog.Logger
}

func NewConfirmationNotifier(sender mailer.Sender, logger *slog.Logger) *ConfirmationNotifier {
	return &ConfirmationNotifier{
		sender: sender,
		tmpl:   template.Must(template.New("donation_confirmation").Parse(confirmationTemplate)),
		logger: logger,
	}
}

func (n *ConfirmationNotifier) SendConfirmation(ctx context.Context, donorName, email string, amount decimal.Decimal, transactionReference string) error {
	data := confirmationData{
		DonorName:            donorName,
		Email:                email,
		Amount:               amount.StringFixed(2),
		TransactionReference: transactionReference,
	}

	var body bytes.Buffer
	if err := n.tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render confirmation template: %w", err)
	}

	if err := n.sender.Send(ctx, email, confirmationSubject, body.String()); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	n.logger.Info("confirmation email sent",
		"email", email,
		"amount", data.Amount,
		"transaction_reference", transactionReference)

	return nil
}
