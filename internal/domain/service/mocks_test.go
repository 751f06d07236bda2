package service

import (
	"context"
	"sync"

	"github.com/ruudy-sib/payhook/internal/domain"
	"github.com/ruudy-sib/payhook/internal/domain/entity"
)

// mockStore implements secondary.RecordStore for testing.
type mockStore struct {
	getFunc   func(ctx context.Context, lookup entity.Lookup) (*entity.Record, error)
	queryFunc func(ctx context.Context, field, value string) (*entity.Record, error)
	scanFunc  func(ctx context.Context, key string) ([]*entity.Record, error)
	updateErr error

	getCalls    []entity.Lookup
	queryCalls  []string
	scanCalls   []string
	updateCalls []updateCall
}

type updateCall struct {
	Ref    entity.RecordRef
	Update entity.PaymentUpdate
}

func (m *mockStore) Name() string { return "mock" }

func (m *mockStore) Get(ctx context.Context, lookup entity.Lookup) (*entity.Record, error) {
	m.getCalls = append(m.getCalls, lookup)
	if m.getFunc != nil {
		return m.getFunc(ctx, lookup)
	}
	return nil, domain.ErrRecordNotFound
}

func (m *mockStore) QueryByField(ctx context.Context, field, value string) (*entity.Record, error) {
	m.queryCalls = append(m.queryCalls, field)
	if m.queryFunc != nil {
		return m.queryFunc(ctx, field, value)
	}
	return nil, domain.ErrRecordNotFound
}

func (m *mockStore) ScanAll(ctx context.Context, key string) ([]*entity.Record, error) {
	m.scanCalls = append(m.scanCalls, key)
	if m.scanFunc != nil {
		return m.scanFunc(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) Update(_ context.Context, ref entity.RecordRef, update entity.PaymentUpdate) error {
	m.updateCalls = append(m.updateCalls, updateCall{Ref: ref, Update: update})
	return m.updateErr
}

// totalCalls counts every store access.
func (m *mockStore) totalCalls() int {
	return len(m.getCalls) + len(m.queryCalls) + len(m.scanCalls) + len(m.updateCalls)
}

// mockQueue implements secondary.WriteQueue for testing.
type mockQueue struct {
	err    error
	queued []updateCall
}

func (m *mockQueue) Enqueue(ref entity.RecordRef, update entity.PaymentUpdate) error {
	if m.err != nil {
		return m.err
	}
	m.queued = append(m.queued, updateCall{Ref: ref, Update: update})
	return nil
}

// mockPublisher implements secondary.EventPublisher for testing.
// A non-nil block holds Publish until it is closed or ctx ends.
type mockPublisher struct {
	mu     sync.Mutex
	err    error
	block  chan struct{}
	events []entity.PaymentEvent
}

func (m *mockPublisher) Publish(ctx context.Context, event entity.PaymentEvent) error {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

// testRecord returns a standard unpaid record fixture.
func testRecord(key string) *entity.Record {
	return &entity.Record{
		Ref: entity.RecordRef{
			Partition: "user@example,com",
			Key:       key,
			Path:      "challans/user@example,com/" + key,
		},
		Key:    key,
		Status: entity.RecordStatusUnpaid,
	}
}
