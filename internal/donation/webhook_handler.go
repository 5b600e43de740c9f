package donation

import (
	"encoding/json"
	"log/slog"
	"net/http"

	errors "github.com/hopebridge/donation-management/internal"
	"github.com/hopebridge/donation-management/internal/transport"
)

// WebhookHandler receives asynchronous payment notifications from the
// gateway and reconciles them against donation records. The gateway
// retries non-2xx responses, so every failure here is explicit; the
// handler never fails silently.
type WebhookHandler struct {
	*transport.BaseHandler
	donationService ServiceAPI
	logger          *slog.Logger
}

func NewWebhookHandler(baseHandler *transport.BaseHandler, donationService ServiceAPI, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:     baseHandler,
		donationService: donationService,
		logger:          logger,
	}
}

type webhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *WebhookHandler) HandleGatewayWebhook(w http.ResponseWriter, r *http.Request) {
	var event GatewayEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.logger.Error("invalid gateway webhook payload", "error", err)
		h.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.logger.Info("received gateway webhook",
		"transaction_reference", event.TransactionReference,
		"payment_status", event.PaymentStatus,
		"customer_email", event.Customer.Email,
		"amount_paid", event.AmountPaid)

	if event.TransactionReference == "" {
		h.logger.Error("gateway webhook missing transaction reference")
		h.WriteErrorResponse(w, http.StatusBadRequest, errors.ErrMissingReference.Message)
		return
	}

	result, err := h.donationService.Reconcile(r.Context(), &event)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok && appErr.StatusCode == http.StatusNotFound {
			h.logger.Warn("no donation matched webhook",
				"transaction_reference", event.TransactionReference,
				"customer_email", event.Customer.Email)
			h.WriteErrorResponse(w, http.StatusNotFound, "Donation not found")
			return
		}

		h.logger.Error("failed to reconcile gateway webhook",
			"error", err,
			"transaction_reference", event.TransactionReference,
			"payment_status", event.PaymentStatus)
		h.WriteErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("gateway webhook processed",
		"donation_id", result.DonationID,
		"status", result.Status,
		"matched_by_email", result.MatchedByEmail,
		"replay_suppressed", result.ReplaySuppressed)

	h.WriteJSON(w, http.StatusOK, webhookResponse{
		Success: true,
		Message: "webhook processed successfully",
	})
}

func (h *WebhookHandler) WriteErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	h.WriteJSON(w, statusCode, map[string]string{"error": message})
}
