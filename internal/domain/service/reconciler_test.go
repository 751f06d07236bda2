package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ruudy-sib/payhook/internal/domain"
	"github.com/ruudy-sib/payhook/internal/domain/entity"
)

var fixedNow = time.Date(2025, 11, 24, 10, 30, 0, 0, time.UTC)

func newTestReconciler(store *mockStore, queue *mockQueue, async bool) *Reconciler {
	opts := ReconcilerOptions{
		FallbackFields:      []string{"challanId", "challan_id"},
		PaymentMethod:       "payfast",
		AsyncFallbackWrites: async,
	}
	var r *Reconciler
	if queue == nil {
		r = NewReconciler(store, nil, opts, zap.NewNop())
	} else {
		r = NewReconciler(store, queue, opts, zap.NewNop())
	}
	r.now = func() time.Time { return fixedNow }
	return r
}

func TestReconciler_Reconcile_primaryHit(t *testing.T) {
	store := &mockStore{
		getFunc: func(_ context.Context, lookup entity.Lookup) (*entity.Record, error) {
			if lookup.Key == "CH-001" {
				return testRecord("CH-001"), nil
			}
			return nil, domain.ErrRecordNotFound
		},
	}
	r := newTestReconciler(store, &mockQueue{}, true)

	res, err := r.Reconcile(context.Background(), entity.ReconcileRequest{
		RecordKey:      "CH-001",
		StatusCode:     "000",
		TransactionRef: "TXN1",
		BasketID:       "CHALLAN-CH-001-1764448963246",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != entity.OutcomeUpdatedPrimary {
		t.Fatalf("expected %s, got %s", entity.OutcomeUpdatedPrimary, res.Outcome)
	}
	if res.Deferred {
		t.Fatal("primary writes must not be deferred")
	}
	if len(store.updateCalls) != 1 {
		t.Fatalf("expected 1 update, got %d", len(store.updateCalls))
	}

	upd := store.updateCalls[0].Update
	if upd.Status != entity.RecordStatusPaid {
		t.Fatalf("expected status paid, got %s", upd.Status)
	}
	if upd.TransactionRef != "TXN1" {
		t.Fatalf("expected transaction TXN1, got %s", upd.TransactionRef)
	}
	if !upd.PaidAt.Equal(fixedNow) {
		t.Fatalf("expected paid at %v, got %v", fixedNow, upd.PaidAt)
	}
	if upd.PaymentMethod != "payfast" {
		t.Fatalf("expected payment method payfast, got %s", upd.PaymentMethod)
	}
	if upd.BasketID != "CHALLAN-CH-001-1764448963246" {
		t.Fatalf("unexpected basket id %s", upd.BasketID)
	}
	if len(store.queryCalls) != 0 || len(store.scanCalls) != 0 {
		t.Fatal("fallback must not run after a primary hit")
	}
}

func TestReconciler_Reconcile_missingTransactionUsesSentinel(t *testing.T) {
	store := &mockStore{
		getFunc: func(_ context.Context, _ entity.Lookup) (*entity.Record, error) {
			return testRecord("CH-001"), nil
		},
	}
	r := newTestReconciler(store, nil, false)

	if _, err := r.Reconcile(context.Background(), entity.ReconcileRequest{RecordKey: "CH-001", StatusCode: "00"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.updateCalls[0].Update.TransactionRef; got != domain.TransactionRefUnavailable {
		t.Fatalf("expected %q, got %q", domain.TransactionRefUnavailable, got)
	}
}

func TestReconciler_Reconcile_contactAddressReachesPrimaryLookup(t *testing.T) {
	store := &mockStore{}
	r := newTestReconciler(store, nil, false)

	_, _ = r.Reconcile(context.Background(), entity.ReconcileRequest{
		RecordKey:      "CH-001",
		StatusCode:     "000",
		ContactAddress: "user@example.com",
	})
	if len(store.getCalls) != 1 || store.getCalls[0].ContactAddress != "user@example.com" {
		t.Fatalf("unexpected primary lookups: %+v", store.getCalls)
	}
}

func TestReconciler_Reconcile_paymentFailed(t *testing.T) {
	for _, code := range []string{"500", "001", "", "0"} {
		t.Run(code, func(t *testing.T) {
			store := &mockStore{
				getFunc: func(_ context.Context, _ entity.Lookup) (*entity.Record, error) {
					return testRecord("CH-001"), nil
				},
			}
			r := newTestReconciler(store, &mockQueue{}, true)

			res, err := r.Reconcile(context.Background(), entity.ReconcileRequest{RecordKey: "CH-001", StatusCode: code})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Outcome != entity.OutcomePaymentFailed {
				t.Fatalf("expected %s, got %s", entity.OutcomePaymentFailed, res.Outcome)
			}
			if store.totalCalls() != 0 {
				t.Fatalf("expected no store calls, got %d", store.totalCalls())
			}
		})
	}
}

func TestReconciler_Reconcile_notFoundAnywhere(t *testing.T) {
	store := &mockStore{}
	queue := &mockQueue{}
	r := newTestReconciler(store, queue, true)

	_, err := r.Reconcile(context.Background(), entity.ReconcileRequest{RecordKey: "CH-404", StatusCode: "000"})
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if len(store.updateCalls) != 0 || len(queue.queued) != 0 {
		t.Fatal("expected no mutation")
	}
	if len(store.queryCalls) != 2 {
		t.Fatalf("expected every fallback field to be queried, got %v", store.queryCalls)
	}
	if len(store.scanCalls) != 1 {
		t.Fatalf("expected 1 partition scan, got %d", len(store.scanCalls))
	}
}

func TestReconciler_Reconcile_fallbackByField(t *testing.T) {
	store := &mockStore{
		queryFunc: func(_ context.Context, field, value string) (*entity.Record, error) {
			if field == "challan_id" && value == "CH-002" {
				return testRecord("CH-002"), nil
			}
			return nil, domain.ErrRecordNotFound
		},
	}
	queue := &mockQueue{}
	r := newTestReconciler(store, queue, true)

	res, err := r.Reconcile(context.Background(), entity.ReconcileRequest{RecordKey: "CH-002", StatusCode: "000", TransactionRef: "T2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != entity.OutcomeUpdatedFallback {
		t.Fatalf("expected %s, got %s", entity.OutcomeUpdatedFallback, res.Outcome)
	}
	if !res.Deferred {
		t.Fatal("expected async fallback write to be deferred")
	}
	if len(queue.queued) != 1 || queue.queued[0].Update.TransactionRef != "T2" {
		t.Fatalf("expected queued update with T2, got %+v", queue.queued)
	}
	if len(store.updateCalls) != 0 {
		t.Fatal("async fallback must not write synchronously")
	}
	if len(store.scanCalls) != 0 {
		t.Fatal("scan must not run after a field match")
	}
}

func TestReconciler_Reconcile_fallbackScanSync(t *testing.T) {
	first := testRecord("CH-003")
	second := testRecord("CH-003")
	second.Ref.Partition = "other@example,com"

	store := &mockStore{
		scanFunc: func(_ context.Context, _ string) ([]*entity.Record, error) {
			return []*entity.Record{first, second}, nil
		},
	}
	r := newTestReconciler(store, &mockQueue{}, false)

	res, err := r.Reconcile(context.Background(), entity.ReconcileRequest{RecordKey: "CH-003", StatusCode: "000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != entity.OutcomeUpdatedFallback || res.Deferred {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(store.updateCalls) != 1 {
		t.Fatalf("expected 1 synchronous update, got %d", len(store.updateCalls))
	}
	if store.updateCalls[0].Ref != first.Ref {
		t.Fatalf("expected first match to be updated, got %+v", store.updateCalls[0].Ref)
	}
}

func TestReconciler_Reconcile_queueFullWritesSynchronously(t *testing.T) {
	store := &mockStore{
		scanFunc: func(_ context.Context, _ string) ([]*entity.Record, error) {
			return []*entity.Record{testRecord("CH-004")}, nil
		},
	}
	r := newTestReconciler(store, &mockQueue{err: domain.ErrQueueFull}, true)

	res, err := r.Reconcile(context.Background(), entity.ReconcileRequest{RecordKey: "CH-004", StatusCode: "000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Deferred {
		t.Fatal("expected synchronous write when queue is full")
	}
	if len(store.updateCalls) != 1 {
		t.Fatalf("expected 1 update, got %d", len(store.updateCalls))
	}
}

func TestReconciler_Reconcile_storeErrors(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name  string
		store *mockStore
	}{
		{
			name: "primary lookup fails",
			store: &mockStore{
				getFunc: func(_ context.Context, _ entity.Lookup) (*entity.Record, error) { return nil, boom },
			},
		},
		{
			name: "primary update fails",
			store: &mockStore{
				getFunc: func(_ context.Context, _ entity.Lookup) (*entity.Record, error) {
					return testRecord("CH-001"), nil
				},
				updateErr: boom,
			},
		},
		{
			name: "field query fails",
			store: &mockStore{
				queryFunc: func(_ context.Context, _, _ string) (*entity.Record, error) { return nil, boom },
			},
		},
		{
			name: "scan fails",
			store: &mockStore{
				scanFunc: func(_ context.Context, _ string) ([]*entity.Record, error) { return nil, boom },
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReconciler(tt.store, nil, false)
			_, err := r.Reconcile(context.Background(), entity.ReconcileRequest{RecordKey: "CH-001", StatusCode: "000"})
			if !errors.Is(err, domain.ErrStoreUnavailable) {
				t.Fatalf("expected ErrStoreUnavailable, got %v", err)
			}
			if errors.Is(err, domain.ErrRecordNotFound) {
				t.Fatal("transient errors must not look like not found")
			}
		})
	}
}
