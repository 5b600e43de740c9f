package campaign

import (
	"encoding/json"
	"log/slog"
	"net/http"

	errors "github.com/hopebridge/donation-management/internal"
	"github.com/hopebridge/donation-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
	Logger  *slog.Logger
}

func NewHandler(baseHandler *transport.BaseHandler, service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Logger:      logger,
	}
}

// SendCampaign handles POST /api/v1/admin/campaigns.
func (h *Handler) SendCampaign(w http.ResponseWriter, r *http.Request) {
	var req SendCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("SendCampaign: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	result, err := h.Service.SendCampaign(r.Context(), &req)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok && appErr.Code == errors.ErrCodeNoRecipients {
			h.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"message": "No recipients found",
			})
			return
		}
		h.Logger.Error("SendCampaign: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("SendCampaign: campaign dispatched",
		"subject", req.Subject,
		"total_recipients", result.TotalRecipients,
		"success_count", result.SuccessCount,
		"fail_count", result.FailCount)

	h.WriteJSON(w, http.StatusOK, result)
}
