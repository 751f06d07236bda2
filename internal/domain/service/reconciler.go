package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ruudy-sib/payhook/internal/domain"
	"github.com/ruudy-sib/payhook/internal/domain/entity"
	"github.com/ruudy-sib/payhook/internal/port/secondary"
)

// ReconcilerOptions tunes the fallback search and the recorded payment data.
type ReconcilerOptions struct {
	// FallbackFields are queried in order when the primary lookup misses.
	FallbackFields []string
	// PaymentMethod is written to every settled record.
	PaymentMethod string
	// AsyncFallbackWrites hands fallback writes to the write queue instead
	// of waiting for them.
	AsyncFallbackWrites bool
}

// Reconciler locates the record named by a notification and marks it paid.
type Reconciler struct {
	store  secondary.RecordStore
	queue  secondary.WriteQueue
	opts   ReconcilerOptions
	now    func() time.Time
	logger *zap.Logger
}

// NewReconciler creates a Reconciler with its dependencies injected.
// queue may be nil, in which case every write is synchronous.
func NewReconciler(
	store secondary.RecordStore,
	queue secondary.WriteQueue,
	opts ReconcilerOptions,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		store:  store,
		queue:  queue,
		opts:   opts,
		now:    time.Now,
		logger: logger.Named("reconciler"),
	}
}

// Reconcile applies a gateway status to the record identified by req.RecordKey.
//
// Non-success status codes are acknowledged without touching the store.
// Otherwise the record is looked up directly; on a miss the configured
// fallback fields are queried and finally every partition is scanned. The
// first match wins. A store failure is reported as domain.ErrStoreUnavailable
// and a miss everywhere as domain.ErrRecordNotFound.
func (r *Reconciler) Reconcile(ctx context.Context, req entity.ReconcileRequest) (entity.ReconcileResult, error) {
	logger := r.logger.With(
		zap.String("record_key", req.RecordKey),
		zap.String("status_code", req.StatusCode),
	)

	if !domain.IsSuccessStatus(req.StatusCode) {
		logger.Info("payment failed at gateway, record left unchanged")
		return entity.ReconcileResult{
			Outcome:   entity.OutcomePaymentFailed,
			RecordKey: req.RecordKey,
		}, nil
	}

	update := r.buildUpdate(req)

	rec, err := r.store.Get(ctx, entity.Lookup{Key: req.RecordKey, ContactAddress: req.ContactAddress})
	switch {
	case err == nil:
		r.warnIfPaid(logger, rec)
		if err := r.store.Update(ctx, rec.Ref, update); err != nil {
			return entity.ReconcileResult{}, storeError("updating record", err)
		}
		logger.Info("record updated via primary lookup", zap.String("path", rec.Ref.Path))
		return entity.ReconcileResult{
			Outcome:   entity.OutcomeUpdatedPrimary,
			RecordKey: req.RecordKey,
			Ref:       rec.Ref,
		}, nil
	case errors.Is(err, domain.ErrRecordNotFound):
		logger.Info("record not found via primary lookup, starting fallback search")
	default:
		return entity.ReconcileResult{}, storeError("primary lookup", err)
	}

	rec, err = r.fallbackSearch(ctx, req.RecordKey, logger)
	if err != nil {
		return entity.ReconcileResult{}, err
	}
	r.warnIfPaid(logger, rec)

	deferred, err := r.applyFallback(ctx, rec.Ref, update, logger)
	if err != nil {
		return entity.ReconcileResult{}, err
	}

	logger.Info("record updated via fallback search",
		zap.String("path", rec.Ref.Path),
		zap.Bool("deferred", deferred),
	)

	return entity.ReconcileResult{
		Outcome:   entity.OutcomeUpdatedFallback,
		RecordKey: req.RecordKey,
		Ref:       rec.Ref,
		Deferred:  deferred,
	}, nil
}

func (r *Reconciler) fallbackSearch(ctx context.Context, key string, logger *zap.Logger) (*entity.Record, error) {
	for _, field := range r.opts.FallbackFields {
		rec, err := r.store.QueryByField(ctx, field, key)
		if err == nil {
			logger.Debug("fallback match by field", zap.String("field", field))
			return rec, nil
		}
		if !errors.Is(err, domain.ErrRecordNotFound) {
			return nil, storeError(fmt.Sprintf("querying field %q", field), err)
		}
	}

	matches, err := r.store.ScanAll(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, storeError("scanning partitions", err)
	}
	if len(matches) == 0 {
		logger.Warn("no record matches key in any partition")
		return nil, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, key)
	}
	if len(matches) > 1 {
		// Store iteration order decides which one wins.
		logger.Warn("multiple records match key, using first",
			zap.Int("matches", len(matches)),
			zap.String("path", matches[0].Ref.Path),
		)
	}
	return matches[0], nil
}

// applyFallback writes the update for a fallback match. In async mode the
// write is queued and the caller does not wait for it to become durable.
func (r *Reconciler) applyFallback(ctx context.Context, ref entity.RecordRef, update entity.PaymentUpdate, logger *zap.Logger) (bool, error) {
	if r.opts.AsyncFallbackWrites && r.queue != nil {
		err := r.queue.Enqueue(ref, update)
		if err == nil {
			return true, nil
		}
		logger.Warn("write queue rejected fallback update, writing synchronously", zap.Error(err))
	}

	if err := r.store.Update(ctx, ref, update); err != nil {
		return false, storeError("updating record", err)
	}
	return false, nil
}

func (r *Reconciler) buildUpdate(req entity.ReconcileRequest) entity.PaymentUpdate {
	txn := req.TransactionRef
	if txn == "" {
		txn = domain.TransactionRefUnavailable
	}
	return entity.PaymentUpdate{
		Status:         entity.RecordStatusPaid,
		TransactionRef: txn,
		PaidAt:         r.now().UTC(),
		PaymentMethod:  r.opts.PaymentMethod,
		BasketID:       req.BasketID,
	}
}

func (r *Reconciler) warnIfPaid(logger *zap.Logger, rec *entity.Record) {
	if rec.IsPaid() {
		logger.Warn("record already paid, overwriting payment details",
			zap.String("previous_transaction", rec.TransactionRef),
		)
	}
}

// storeError keeps domain.ErrRecordNotFound intact and classifies
// everything else as a transient store failure.
func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
