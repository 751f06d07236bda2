package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ruudy-sib/payhook/internal/domain"
	"github.com/ruudy-sib/payhook/internal/domain/entity"
	"github.com/ruudy-sib/payhook/internal/port/primary"
)

// WebhookHandler handles POST /webhook requests from the payment gateway.
type WebhookHandler struct {
	service primary.NotificationService
	logger  *zap.Logger
}

// NewWebhookHandler creates a handler for gateway notifications.
func NewWebhookHandler(service primary.NotificationService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  logger.Named("webhook-handler"),
	}
}

// ServeHTTP decodes the notification and reports the processing outcome.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, raw, err := readNotification(w, r)
	if err != nil {
		h.logger.Warn("unreadable notification body",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Any("headers", r.Header),
			zap.ByteString("body", raw),
			zap.Error(err),
		)
		respondJSON(w, http.StatusBadRequest, WebhookResponse{
			Success: false,
			Message: "invalid request body",
			Code:    "INVALID_BODY",
		})
		return
	}

	result, err := h.service.HandleNotification(r.Context(), n)
	if err != nil {
		status, resp := errorResponse(err)
		h.logFailure(r, raw, status, err)
		respondJSON(w, status, resp)
		return
	}

	resp := WebhookResponse{
		Success:       true,
		Outcome:       string(result.Outcome),
		BasketID:      result.BasketID,
		RecordKey:     result.RecordKey,
		TransactionID: result.TransactionRef,
		StatusCode:    result.StatusCode,
		Deferred:      result.Deferred,
	}
	switch result.Outcome {
	case entity.OutcomePaymentFailed:
		// The gateway expects an acknowledgment regardless of payment outcome.
		resp.Message = "payment failure recorded"
	case entity.OutcomeUpdatedFallback:
		resp.Message = "payment recorded via fallback lookup"
	default:
		resp.Message = "payment recorded"
	}

	h.logger.Info("notification processed",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("basket_id", result.BasketID),
		zap.String("outcome", string(result.Outcome)),
		zap.Bool("deferred", result.Deferred),
	)

	respondJSON(w, http.StatusOK, resp)
}

func (h *WebhookHandler) logFailure(r *http.Request, raw []byte, status int, err error) {
	fields := []zap.Field{
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Int("status", status),
		zap.Any("headers", r.Header),
		zap.ByteString("body", raw),
		zap.Error(err),
	}

	var mismatch *domain.SignatureMismatchError
	if errors.As(err, &mismatch) {
		fields = append(fields,
			zap.String("computed_hash", mismatch.Computed),
			zap.String("received_hash", mismatch.Supplied),
		)
	}

	if domain.IsClientError(err) || errors.Is(err, domain.ErrRecordNotFound) {
		h.logger.Warn("notification rejected", fields...)
		return
	}
	h.logger.Error("notification processing failed", fields...)
}

// errorResponse maps a processing error to its HTTP status and payload.
func errorResponse(err error) (int, WebhookResponse) {
	var mismatch *domain.SignatureMismatchError

	switch {
	case errors.As(err, &mismatch):
		return http.StatusBadRequest, WebhookResponse{
			Message:      "invalid validation hash",
			Code:         "INVALID_SIGNATURE",
			ComputedHash: mismatch.Computed,
			ReceivedHash: mismatch.Supplied,
		}
	case errors.Is(err, domain.ErrMissingField):
		return http.StatusBadRequest, WebhookResponse{Message: err.Error(), Code: "MISSING_FIELD"}
	case errors.Is(err, domain.ErrInvalidIdentifier):
		return http.StatusBadRequest, WebhookResponse{Message: err.Error(), Code: "INVALID_IDENTIFIER"}
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusInternalServerError, WebhookResponse{Message: err.Error(), Code: "CONFIGURATION_ERROR"}
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound, WebhookResponse{Message: err.Error(), Code: "NOT_FOUND"}
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusInternalServerError, WebhookResponse{Message: err.Error(), Code: "STORE_ERROR"}
	default:
		return http.StatusInternalServerError, WebhookResponse{Message: "internal server error", Code: "INTERNAL_ERROR"}
	}
}
