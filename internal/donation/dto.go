package donation

import (
	"github.com/shopspring/decimal"

	errors "github.com/hopebridge/donation-management/internal"
	"github.com/hopebridge/donation-management/internal/core/common/validation"
	datamodel "github.com/hopebridge/donation-management/internal/core/datamodel/donation"
)

// CreateDonationRequest is the public donation form payload.
type CreateDonationRequest struct {
	DonorName string          `json:"donorName"`
	Email     string          `json:"email"`
	Phone     *string         `json:"phone,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Frequency string          `json:"frequency,omitempty"`
}

func (r *CreateDonationRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("donorName", r.DonorName).Required().MaxLength(200)
	validator.Field("email", r.Email).Required().Email()
	validator.Field("amount", r.Amount).Required().Positive(errors.ErrCodeInvalidAmount)
	validator.Field("frequency", r.Frequency).OneOf(datamodel.FrequencyOneTime)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// CreateDonationResponse carries the redirect target for the hosted
// checkout page.
type CreateDonationResponse struct {
	Success          bool   `json:"success"`
	DonationID       int64  `json:"donationId"`
	PaymentReference string `json:"paymentReference"`
	CheckoutURL      string `json:"checkoutUrl"`
}

// GatewayEvent is the inbound webhook payload. Additional gateway
// fields are ignored on decode.
type GatewayEvent struct {
	TransactionReference string          `json:"transactionReference"`
	PaymentStatus        string          `json:"paymentStatus"`
	AmountPaid           string          `json:"amountPaid"`
	PaymentMethod        string          `json:"paymentMethod"`
	Customer             GatewayCustomer `json:"customer"`
}

type GatewayCustomer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ReconcileResult reports what reconciliation did, mostly for logging
// and tests.
type ReconcileResult struct {
	DonationID       int64
	Status           string
	MatchedByEmail   bool
	ReplaySuppressed bool
}
