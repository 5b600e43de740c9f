package donation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	errors "github.com/hopebridge/donation-management/internal"
	datamodel "github.com/hopebridge/donation-management/internal/core/datamodel/donation"
	"github.com/hopebridge/donation-management/internal/core/events"
)

type Service struct {
	repository Repository
	checkout   Checkout
	eventBus   *events.EventBus
	logger     *slog.Logger
}

func NewService(repository Repository, checkout Checkout, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		checkout:   checkout,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// CreateDonation persists a pending donation and asks the gateway for a
// hosted checkout session. The payment reference is minted here and
// stored before the redirect, so the webhook can match on it directly
// instead of relying on the email fallback.
func (s *Service) CreateDonation(ctx context.Context, req *CreateDonationRequest) (*CreateDonationResponse, error) {
	if err := req.Validate(); err != nil {
		s.logger.Error("donation request validation failed", "error", err)
		return nil, err
	}

	frequency := req.Frequency
	if frequency == "" {
		frequency = datamodel.FrequencyOneTime
	}

	reference := fmt.Sprintf("DON-%s", uuid.NewString())

	record := &datamodel.Donation{
		DonorName:            req.DonorName,
		Email:                req.Email,
		Phone:                req.Phone,
		Amount:               req.Amount,
		Frequency:            frequency,
		PaymentStatus:        datamodel.StatusPending,
		TransactionReference: &reference,
	}

	if err := s.repository.Create(record); err != nil {
		s.logger.Error("failed to create donation record", "error", err, "email", req.Email)
		return nil, errors.NewInternalError("failed to create donation record", err)
	}

	s.logger.Info("donation record created",
		"donation_id", record.ID,
		"reference", reference,
		"amount", req.Amount)

	checkoutURL, err := s.checkout.InitiateCheckout(ctx, req.Amount, req.DonorName, req.Email, reference,
		fmt.Sprintf("Donation to HopeBridge Foundation (%s)", frequency))
	if err != nil {
		// The pending record stays behind; the donor sees a retryable
		// failure and a fresh attempt creates a fresh record.
		s.logger.Error("checkout initiation failed",
			"error", err,
			"donation_id", record.ID,
			"reference", reference)
		return nil, err
	}

	return &CreateDonationResponse{
		Success:          true,
		DonationID:       record.ID,
		PaymentReference: reference,
		CheckoutURL:      checkoutURL,
	}, nil
}

// Reconcile applies a gateway webhook event to exactly one donation.
//
// Matching order: transaction reference first, then the most recent
// pending donation for the customer email. The email fallback exists
// for records created before references were persisted up front; it is
// ambiguous when one donor has several concurrent pending donations, so
// that case is logged at WARN.
func (s *Service) Reconcile(ctx context.Context, event *GatewayEvent) (*ReconcileResult, error) {
	record, matchedByEmail, err := s.matchDonation(event)
	if err != nil {
		return nil, err
	}

	status := MapGatewayStatus(event.PaymentStatus)
	method := event.PaymentMethod
	if method == "" {
		method = defaultPaymentMethod
	}

	var backfillReference *string
	if matchedByEmail {
		ref := event.TransactionReference
		backfillReference = &ref
	}

	rowsUpdated, err := s.repository.UpdateReconciliation(record.ID, status, method, backfillReference)
	if err != nil {
		s.logger.Error("failed to update donation status",
			"error", err,
			"donation_id", record.ID,
			"reference", event.TransactionReference)
		return nil, errors.NewInternalError("failed to update donation", err)
	}

	result := &ReconcileResult{
		DonationID:     record.ID,
		Status:         status,
		MatchedByEmail: matchedByEmail,
	}

	if rowsUpdated == 0 {
		// The record is already completed; a replayed or out-of-order
		// webhook must not regress it. Reported as success so the gateway
		// stops redelivering.
		s.logger.Warn("reconciliation skipped, donation already completed",
			"donation_id", record.ID,
			"reference", event.TransactionReference,
			"incoming_status", status)
		result.ReplaySuppressed = true
		return result, nil
	}

	s.logger.Info("donation reconciled",
		"donation_id", record.ID,
		"reference", event.TransactionReference,
		"old_status", record.PaymentStatus,
		"new_status", status,
		"matched_by_email", matchedByEmail)

	switch status {
	case datamodel.StatusCompleted:
		s.publishCompleted(ctx, record, event)
	case datamodel.StatusFailed:
		s.eventBus.Publish(ctx, events.NewDonationFailedEvent(
			record.ID, record.Email, event.PaymentStatus, event.TransactionReference))
	}

	return result, nil
}

func (s *Service) GetDonation(id int64) (*datamodel.Donation, error) {
	record, err := s.repository.GetByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrDonationNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *Service) matchDonation(event *GatewayEvent) (*datamodel.Donation, bool, error) {
	record, err := s.repository.GetByTransactionReference(event.TransactionReference)
	if err == nil {
		return record, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, errors.NewInternalError("donation lookup failed", err)
	}

	if event.Customer.Email == "" {
		return nil, false, errors.ErrDonationNotFound
	}

	record, pendingCount, err := s.repository.GetLatestPendingByEmail(event.Customer.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, errors.ErrDonationNotFound
		}
		return nil, false, errors.NewInternalError("donation lookup failed", err)
	}

	if pendingCount > 1 {
		// Genuinely ambiguous: several concurrent pending donations share
		// this email. Newest wins, matching historical behavior.
		s.logger.Warn("ambiguous email fallback match",
			"email", event.Customer.Email,
			"pending_candidates", pendingCount,
			"chosen_donation_id", record.ID,
			"reference", event.TransactionReference)
	}

	return record, true, nil
}

// publishCompleted hands the confirmation send to the event bus. The
// synchronous publish means the notifier runs exactly once per
// reconciliation, but its handler swallows send errors, so a failed
// email never fails the webhook.
func (s *Service) publishCompleted(ctx context.Context, record *datamodel.Donation, event *GatewayEvent) {
	amountPaid, err := decimal.NewFromString(event.AmountPaid)
	if err != nil {
		s.logger.Warn("unparseable amountPaid in webhook, using recorded amount",
			"amount_paid", event.AmountPaid,
			"donation_id", record.ID)
		amountPaid = record.Amount
	}

	donorName := event.Customer.Name
	if donorName == "" {
		donorName = record.DonorName
	}

	completed := events.NewDonationCompletedEvent(
		record.ID,
		donorName,
		record.Email,
		amountPaid,
		event.TransactionReference,
		event.PaymentMethod,
	)

	if err := s.eventBus.PublishSync(ctx, completed); err != nil {
		s.logger.Error("donation completed event handler failed", "error", err, "donation_id", record.ID)
	}
}
