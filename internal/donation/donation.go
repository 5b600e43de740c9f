package donation

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	datamodel "github.com/hopebridge/donation-management/internal/core/datamodel/donation"
)

// Gateway status the hosted checkout reports for a successful charge.
// Anything else is stored lower-cased verbatim, without enumeration.
const GatewayStatusPaid = "PAID"

const defaultPaymentMethod = "card"

// MapGatewayStatus translates the gateway's status code into the local
// payment status. PAID maps to completed; unknown statuses pass through
// lower-cased so the record keeps whatever the gateway said.
func MapGatewayStatus(gatewayStatus string) string {
	if gatewayStatus == GatewayStatusPaid {
		return datamodel.StatusCompleted
	}
	return strings.ToLower(gatewayStatus)
}

// Repository is the persistence boundary for donation records.
type Repository interface {
	Create(d *datamodel.Donation) error
	GetByID(id int64) (*datamodel.Donation, error)
	GetByTransactionReference(reference string) (*datamodel.Donation, error)
	// GetLatestPendingByEmail returns the most recently created pending
	// donation for the email, plus how many pending candidates existed.
	GetLatestPendingByEmail(email string) (*datamodel.Donation, int64, error)
	// UpdateReconciliation applies the webhook outcome. The update is
	// conditional: a donation already in completed status is terminal and
	// the write is skipped. Returns the number of rows updated.
	UpdateReconciliation(id int64, status, paymentMethod string, transactionReference *string) (int64, error)
	ListDonorEmails() ([]string, error)
}

// Checkout is the initiation side of the payment gateway.
type Checkout interface {
	InitiateCheckout(ctx context.Context, amount decimal.Decimal, customerName, customerEmail, reference, description string) (checkoutURL string, err error)
}

// ServiceAPI is what the HTTP handlers need from the donation service.
type ServiceAPI interface {
	CreateDonation(ctx context.Context, req *CreateDonationRequest) (*CreateDonationResponse, error)
	Reconcile(ctx context.Context, event *GatewayEvent) (*ReconcileResult, error)
	GetDonation(id int64) (*datamodel.Donation, error)
}
