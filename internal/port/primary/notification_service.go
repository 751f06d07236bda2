package primary

import (
	"context"

	"github.com/ruudy-sib/payhook/internal/domain/entity"
)

// NotificationService defines the primary port for payment notifications
// exposed to driving adapters (HTTP handlers, CLI, etc.).
type NotificationService interface {
	// HandleNotification verifies a gateway notification and applies it to
	// the matching record.
	HandleNotification(ctx context.Context, n entity.Notification) (entity.NotificationResult, error)

	// SuccessRedirect builds the client deep link for a completed payment.
	SuccessRedirect(basketID, transactionID string) string

	// FailureRedirect builds the client deep link for a failed payment.
	FailureRedirect(basketID, errCode, errMsg string) string
}
