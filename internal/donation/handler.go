package donation

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	errors "github.com/hopebridge/donation-management/internal"
	"github.com/hopebridge/donation-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	DonationService ServiceAPI
	Logger          *slog.Logger
}

func NewHandler(baseHandler *transport.BaseHandler, donationService ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler:     baseHandler,
		DonationService: donationService,
		Logger:          logger,
	}
}

// CreateDonation handles POST /api/v1/donations: creates the pending
// record and returns the hosted checkout redirect URL.
func (h *Handler) CreateDonation(w http.ResponseWriter, r *http.Request) {
	var req CreateDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("CreateDonation: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	resp, err := h.DonationService.CreateDonation(r.Context(), &req)
	if err != nil {
		h.Logger.Error("CreateDonation: service error", "error", err, "email", req.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateDonation: checkout initiated",
		"donation_id", resp.DonationID,
		"reference", resp.PaymentReference)

	h.WriteJSON(w, http.StatusCreated, resp)
}

// GetDonation handles GET /api/v1/donations/{id}.
func (h *Handler) GetDonation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleError(w, errors.NewValidationError("invalid donation ID", errors.ErrCodeValidationFailed))
		return
	}

	record, err := h.DonationService.GetDonation(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}
