package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeDonationCompleted = "donation.completed"
	EventTypeDonationFailed    = "donation.failed"
)

type DonationCompletedEvent struct {
	BaseEvent
	DonationID           int64           `json:"donation_id"`
	DonorName            string          `json:"donor_name"`
	DonorEmail           string          `json:"donor_email"`
	AmountPaid           decimal.Decimal `json:"amount_paid"`
	TransactionReference string          `json:"transaction_reference"`
	PaymentMethod        string          `json:"payment_method"`
}

func NewDonationCompletedEvent(donationID int64, donorName, donorEmail string, amountPaid decimal.Decimal, transactionReference, paymentMethod string) *DonationCompletedEvent {
	return &DonationCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDonationCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"donation_id":           donationID,
				"donor_name":            donorName,
				"donor_email":           donorEmail,
				"amount_paid":           amountPaid.String(),
				"transaction_reference": transactionReference,
				"payment_method":        paymentMethod,
			},
		},
		DonationID:           donationID,
		DonorName:            donorName,
		DonorEmail:           donorEmail,
		AmountPaid:           amountPaid,
		TransactionReference: transactionReference,
		PaymentMethod:        paymentMethod,
	}
}

type DonationFailedEvent struct {
	BaseEvent
	DonationID           int64  `json:"donation_id"`
	DonorEmail           string `json:"donor_email"`
	GatewayStatus        string `json:"gateway_status"`
	TransactionReference string `json:"transaction_reference"`
}

func NewDonationFailedEvent(donationID int64, donorEmail, gatewayStatus, transactionReference string) *DonationFailedEvent {
	return &DonationFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDonationFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"donation_id":           donationID,
				"donor_email":           donorEmail,
				"gateway_status":        gatewayStatus,
				"transaction_reference": transactionReference,
			},
		},
		DonationID:           donationID,
		DonorEmail:           donorEmail,
		GatewayStatus:        gatewayStatus,
		TransactionReference: transactionReference,
	}
}
