package donation_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/hopebridge/donation-management/internal"
	datamodel "github.com/hopebridge/donation-management/internal/core/datamodel/donation"
	"github.com/hopebridge/donation-management/internal/donation"
	"github.com/hopebridge/donation-management/internal/transport"
)

// MockService implements donation.ServiceAPI for handler tests
type MockService struct {
	reconcileResult *donation.ReconcileResult
	reconcileErr    error
	lastEvent       *donation.GatewayEvent
}

func (m *MockService) CreateDonation(ctx context.Context, req *donation.CreateDonationRequest) (*donation.CreateDonationResponse, error) {
	return nil, errors.New("not implemented")
}

func (m *MockService) Reconcile(ctx context.Context, event *donation.GatewayEvent) (*donation.ReconcileResult, error) {
	m.lastEvent = event
	return m.reconcileResult, m.reconcileErr
}

func (m *MockService) GetDonation(id int64) (*datamodel.Donation, error) {
	return nil, errors.New("not implemented")
}

var _ = Describe("Webhook Handler", func() {
	var (
		mockService *MockService
		handler     *donation.WebhookHandler
		recorder    *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		mockService = &MockService{
			reconcileResult: &donation.ReconcileResult{DonationID: 1, Status: "completed"},
		}
		handler = donation.NewWebhookHandler(transport.NewBaseHandler(logger), mockService, logger)
		recorder = httptest.NewRecorder()
	})

	post := func(body string) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		handler.HandleGatewayWebhook(recorder, req)
	}

	Context("when the payload is valid and matches a donation", func() {
		It("should respond 200 with success true", func() {
			post(`{"transactionReference":"DON-abc","paymentStatus":"PAID","amountPaid":"25.00","customer":{"email":"jane@mail.com"}}`)

			Expect(recorder.Code).To(Equal(http.StatusOK))

			var resp map[string]interface{}
			Expect(json.Unmarshal(recorder.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["success"]).To(BeTrue())
		})

		It("should pass the decoded event to the service", func() {
			post(`{"transactionReference":"DON-abc","paymentStatus":"EXPIRED","customer":{"email":"jane@mail.com","name":"Jane"}}`)

			Expect(mockService.lastEvent.TransactionReference).To(Equal("DON-abc"))
			Expect(mockService.lastEvent.PaymentStatus).To(Equal("EXPIRED"))
			Expect(mockService.lastEvent.Customer.Name).To(Equal("Jane"))
		})

		It("should respond 200 for a suppressed replay", func() {
			mockService.reconcileResult = &donation.ReconcileResult{DonationID: 1, Status: "completed", ReplaySuppressed: true}
			post(`{"transactionReference":"DON-abc","paymentStatus":"PAID"}`)

			Expect(recorder.Code).To(Equal(http.StatusOK))
		})
	})

	Context("when the payload is malformed", func() {
		It("should respond 400 for invalid JSON", func() {
			post(`{not json`)
			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})

		It("should respond 400 when the transaction reference is missing", func() {
			post(`{"paymentStatus":"PAID","customer":{"email":"jane@mail.com"}}`)
			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(mockService.lastEvent).To(BeNil())
		})
	})

	Context("when no donation matches", func() {
		BeforeEach(func() {
			mockService.reconcileResult = nil
			mockService.reconcileErr = apperrors.ErrDonationNotFound
		})

		It("should respond 404 with the canonical error message", func() {
			post(`{"transactionReference":"DON-unknown","paymentStatus":"PAID","customer":{"email":"ghost@mail.com"}}`)

			Expect(recorder.Code).To(Equal(http.StatusNotFound))

			var resp map[string]string
			Expect(json.Unmarshal(recorder.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["error"]).To(Equal("Donation not found"))
		})
	})

	Context("when reconciliation fails internally", func() {
		BeforeEach(func() {
			mockService.reconcileResult = nil
			mockService.reconcileErr = apperrors.NewInternalError("failed to update donation", errors.New("connection refused"))
		})

		It("should respond 500", func() {
			post(`{"transactionReference":"DON-abc","paymentStatus":"PAID"}`)
			Expect(recorder.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
