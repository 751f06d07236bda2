package http

import (
	"context"
	"sync"

	"github.com/ruudy-sib/payhook/internal/domain"
	"github.com/ruudy-sib/payhook/internal/domain/entity"
	"github.com/ruudy-sib/payhook/internal/port/primary"
	"github.com/ruudy-sib/payhook/internal/port/secondary"
)

// mockNotificationService implements primary.NotificationService for testing.
type mockNotificationService struct {
	result   entity.NotificationResult
	err      error
	received []entity.Notification
}

func (m *mockNotificationService) HandleNotification(_ context.Context, n entity.Notification) (entity.NotificationResult, error) {
	m.received = append(m.received, n)
	return m.result, m.err
}

func (m *mockNotificationService) SuccessRedirect(basketID, transactionID string) string {
	return "app://payment/success?basket_id=" + basketID + "&transaction_id=" + transactionID
}

func (m *mockNotificationService) FailureRedirect(basketID, errCode, errMsg string) string {
	return "app://payment/failure?basket_id=" + basketID + "&err_code=" + errCode + "&err_msg=" + errMsg
}

var _ primary.NotificationService = (*mockNotificationService)(nil)

// countingStore implements secondary.RecordStore over an in-memory map and
// counts every call.
type countingStore struct {
	mu      sync.Mutex
	records map[string]*entity.Record
	calls   int
	updates []entity.PaymentUpdate
}

func (s *countingStore) Name() string { return "memory" }

func (s *countingStore) Get(_ context.Context, lookup entity.Lookup) (*entity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if rec, ok := s.records[lookup.Key]; ok {
		return rec, nil
	}
	return nil, domain.ErrRecordNotFound
}

func (s *countingStore) QueryByField(_ context.Context, _, _ string) (*entity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return nil, domain.ErrRecordNotFound
}

func (s *countingStore) ScanAll(_ context.Context, _ string) ([]*entity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return nil, nil
}

func (s *countingStore) Update(_ context.Context, ref entity.RecordRef, update entity.PaymentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if _, ok := s.records[ref.Key]; !ok {
		return domain.ErrRecordNotFound
	}
	s.updates = append(s.updates, update)
	return nil
}

func (s *countingStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var _ secondary.RecordStore = (*countingStore)(nil)

// mockHealthCheck is a test double for health checks.
type mockHealthCheck struct {
	name string
	err  error
}

func (m mockHealthCheck) Name() string {
	return m.name
}

func (m mockHealthCheck) Check(_ context.Context) error {
	return m.err
}

// Compile-time interface assertion
var _ secondary.HealthChecker = mockHealthCheck{}

// toHealthCheckers converts mocks to a slice of the interface.
func toHealthCheckers(mocks []mockHealthCheck) []secondary.HealthChecker {
	if len(mocks) == 0 {
		return nil
	}
	result := make([]secondary.HealthChecker, len(mocks))
	for i, m := range mocks {
		result[i] = m
	}
	return result
}
