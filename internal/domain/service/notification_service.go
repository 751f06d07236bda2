package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ruudy-sib/payhook/internal/domain"
	"github.com/ruudy-sib/payhook/internal/domain/entity"
	"github.com/ruudy-sib/payhook/internal/domain/valueobject"
	"github.com/ruudy-sib/payhook/internal/port/secondary"
)

// eventPublishTimeout bounds a single payment event delivery.
const eventPublishTimeout = 5 * time.Second

// GatewayCredentials are the per-merchant values used to verify notifications.
type GatewayCredentials struct {
	SecuredKey string
	MerchantID string
}

// NotificationService verifies gateway notifications and reconciles them
// against the record store.
type NotificationService struct {
	reconciler     *Reconciler
	publisher      secondary.EventPublisher
	creds          GatewayCredentials
	deepLinkScheme string
	logger         *zap.Logger

	publishTimeout time.Duration
	inflight       sync.WaitGroup
}

// NewNotificationService creates a NotificationService with its dependencies injected.
func NewNotificationService(
	reconciler *Reconciler,
	publisher secondary.EventPublisher,
	creds GatewayCredentials,
	deepLinkScheme string,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		reconciler:     reconciler,
		publisher:      publisher,
		creds:          creds,
		deepLinkScheme: deepLinkScheme,
		logger:         logger.Named("notification-service"),
		publishTimeout: eventPublishTimeout,
	}
}

// HandleNotification verifies n and applies it to the matching record.
// The store is not consulted unless the validation hash matches.
func (s *NotificationService) HandleNotification(ctx context.Context, n entity.Notification) (entity.NotificationResult, error) {
	basketID, ok := n.Lookup(entity.FieldBasketID)
	if !ok {
		return entity.NotificationResult{}, fmt.Errorf("%w: %s", domain.ErrMissingField, entity.FieldBasketID.Name)
	}
	supplied, ok := n.Lookup(entity.FieldValidationHash)
	if !ok {
		return entity.NotificationResult{}, fmt.Errorf("%w: %s", domain.ErrMissingField, entity.FieldValidationHash.Name)
	}
	statusCode := n.Value(entity.FieldStatusCode, domain.DefaultStatusCode)
	transactionID := n.Value(entity.FieldTransactionID, "")
	contact := n.Value(entity.FieldEmailAddress, "")

	if s.creds.SecuredKey == "" || s.creds.MerchantID == "" {
		return entity.NotificationResult{}, fmt.Errorf("%w: secured key or merchant id is not set", domain.ErrConfiguration)
	}

	computed := ComputeDigest(basketID, statusCode, s.creds.SecuredKey, s.creds.MerchantID)
	if !digestsEqual(computed, supplied) {
		return entity.NotificationResult{}, &domain.SignatureMismatchError{Computed: computed, Supplied: supplied}
	}

	key, err := valueobject.ParseRecordKey(basketID)
	if err != nil {
		return entity.NotificationResult{}, err
	}

	res, err := s.reconciler.Reconcile(ctx, entity.ReconcileRequest{
		RecordKey:      key.String(),
		StatusCode:     statusCode,
		TransactionRef: transactionID,
		ContactAddress: contact,
		BasketID:       basketID,
	})
	if err != nil {
		return entity.NotificationResult{}, err
	}

	result := entity.NotificationResult{
		Outcome:        res.Outcome,
		BasketID:       basketID,
		RecordKey:      key.String(),
		StatusCode:     statusCode,
		TransactionRef: transactionID,
		Deferred:       res.Deferred,
	}
	s.publish(ctx, result)

	return result, nil
}

// WaitForEvents blocks until every payment event started by
// HandleNotification has been delivered or has timed out.
func (s *NotificationService) WaitForEvents() {
	s.inflight.Wait()
}

// SuccessRedirect builds the client deep link for a completed payment.
func (s *NotificationService) SuccessRedirect(basketID, transactionID string) string {
	return BuildSuccessRedirect(s.deepLinkScheme, basketID, transactionID)
}

// FailureRedirect builds the client deep link for a failed payment.
func (s *NotificationService) FailureRedirect(basketID, errCode, errMsg string) string {
	return BuildFailureRedirect(s.deepLinkScheme, basketID, errCode, errMsg)
}

func (s *NotificationService) publish(ctx context.Context, result entity.NotificationResult) {
	if s.publisher == nil {
		return
	}

	eventType := entity.PaymentEventReconciled
	if result.Outcome == entity.OutcomePaymentFailed {
		eventType = entity.PaymentEventFailed
	}

	event := entity.PaymentEvent{
		Type:           eventType,
		RecordKey:      result.RecordKey,
		BasketID:       result.BasketID,
		StatusCode:     result.StatusCode,
		TransactionRef: result.TransactionRef,
		Outcome:        result.Outcome,
		OccurredAt:     time.Now().UTC(),
	}

	// Delivery runs after the response; the gateway ack never waits on a sink.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()

		if err := s.publisher.Publish(pubCtx, event); err != nil {
			s.logger.Error("failed to publish payment event",
				zap.Error(err),
				zap.String("event_type", string(eventType)),
				zap.String("record_key", result.RecordKey),
			)
		}
	}()
}
