package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ruudy-sib/payhook/internal/port/primary"
)

// RedirectHandler sends the browser back to the client application after
// checkout.
type RedirectHandler struct {
	service primary.NotificationService
	logger  *zap.Logger
}

// NewRedirectHandler creates the success and failure redirect handler.
func NewRedirectHandler(service primary.NotificationService, logger *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		service: service,
		logger:  logger.Named("redirect-handler"),
	}
}

// Success handles GET /payment/success.
func (h *RedirectHandler) Success(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := h.service.SuccessRedirect(q.Get("basket_id"), q.Get("transaction_id"))

	h.logger.Debug("redirecting to success deep link", zap.String("location", target))
	http.Redirect(w, r, target, http.StatusFound)
}

// Failure handles GET /payment/failure.
func (h *RedirectHandler) Failure(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := h.service.FailureRedirect(q.Get("basket_id"), q.Get("err_code"), q.Get("err_msg"))

	h.logger.Debug("redirecting to failure deep link", zap.String("location", target))
	http.Redirect(w, r, target, http.StatusFound)
}
