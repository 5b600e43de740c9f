package donation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hopebridge/donation-management/internal/core/events"
	"github.com/hopebridge/donation-management/internal/notification"
)

// EventHandler bridges donation events to the confirmation notifier.
type EventHandler struct {
	notifier *notification.ConfirmationNotifier
	logger   *slog.Logger
}

func NewEventHandler(notifier *notification.ConfirmationNotifier, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// HandleDonationCompleted sends the confirmation email. The send is
// best-effort: a failure is logged and swallowed, because the monetary
// state change already happened and must not be reported as failed over
// a notification problem.
func (h *EventHandler) HandleDonationCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(*events.DonationCompletedEvent)
	if !ok {
		h.logger.Error("invalid event type for donation completed handler", "event_type", event.EventType())
		return fmt.Errorf("expected DonationCompletedEvent, got %T", event)
	}

	err := h.notifier.SendConfirmation(ctx,
		completed.DonorName,
		completed.DonorEmail,
		completed.AmountPaid,
		completed.TransactionReference)
	if err != nil {
		h.logger.Error("confirmation email failed, donation remains completed",
			"error", err,
			"donation_id", completed.DonationID,
			"donor_email", completed.DonorEmail,
			"event_id", completed.EventID())
		return nil
	}

	h.logger.Info("confirmation email dispatched",
		"donation_id", completed.DonationID,
		"donor_email", completed.DonorEmail,
		"event_id", completed.EventID())

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeDonationCompleted, h.HandleDonationCompleted)

	h.logger.Info("donation event handlers registered",
		"handlers", []string{events.EventTypeDonationCompleted})
}
