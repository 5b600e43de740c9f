package donation_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/hopebridge/donation-management/internal/core/events"
	"github.com/hopebridge/donation-management/internal/donation"
	"github.com/hopebridge/donation-management/internal/notification"
)

// RecordingSender implements mailer.Sender for event handler tests
type RecordingSender struct {
	callCount  int
	lastTo     string
	shouldFail bool
}

func (m *RecordingSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.callCount++
	m.lastTo = to
	if m.shouldFail {
		return errors.New("provider outage")
	}
	return nil
}

var _ = Describe("Donation Event Handler", func() {
	var (
		sender  *RecordingSender
		handler *donation.EventHandler
	)

	BeforeEach(func() {
		sender = &RecordingSender{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		notifier := notification.NewConfirmationNotifier(sender, logger)
		handler = donation.NewEventHandler(notifier, logger)
	})

	Describe("HandleDonationCompleted", func() {
		It("should send the confirmation to the donor", func() {
			event := events.NewDonationCompletedEvent(1, "Jane Donor", "jane@mail.com", decimal.NewFromInt(25), "DON-abc", "card")

			err := handler.HandleDonationCompleted(context.Background(), event)
			Expect(err).NotTo(HaveOccurred())
			Expect(sender.callCount).To(Equal(1))
			Expect(sender.lastTo).To(Equal("jane@mail.com"))
		})

		It("should swallow a send failure so the reconciliation stands", func() {
			sender.shouldFail = true
			event := events.NewDonationCompletedEvent(1, "Jane Donor", "jane@mail.com", decimal.NewFromInt(25), "DON-abc", "card")

			err := handler.HandleDonationCompleted(context.Background(), event)
			Expect(err).NotTo(HaveOccurred())
			Expect(sender.callCount).To(Equal(1))
		})

		It("should reject an event of the wrong type", func() {
			event := events.NewDonationFailedEvent(1, "jane@mail.com", "FAILED", "DON-abc")

			err := handler.HandleDonationCompleted(context.Background(), event)
			Expect(err).To(HaveOccurred())
			Expect(sender.callCount).To(Equal(0))
		})
	})
})
