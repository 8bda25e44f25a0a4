package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/pos-gateway/internal/domain/shared"
)

// InMemoryIdempotencyStore implements IdempotencyStore using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	records   map[string]*shared.IdempotencyRecord
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store
// It starts a background goroutine to clean up expired records
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		records:  make(map[string]*shared.IdempotencyRecord),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Begin atomically inserts a pending record. The map write under the
// mutex is the check-and-set: concurrent duplicates observe the existing
// record and lose the race. Failed records are reclaimable, a retry with
// the same request ID takes the key over and re-executes.
func (s *InMemoryIdempotencyStore) Begin(ctx context.Context, record shared.IdempotencyRecord) (*shared.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[record.RequestID]
	if ok && !existing.Expired(time.Now()) && existing.Status != shared.IdempotencyFailed {
		copied := *existing
		return &copied, false, nil
	}

	record.Status = shared.IdempotencyPending
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	stored := record
	s.records[record.RequestID] = &stored
	copied := stored
	return &copied, true, nil
}

// Get returns the record for requestID, or shared.ErrNotFound.
func (s *InMemoryIdempotencyStore) Get(ctx context.Context, requestID string) (*shared.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[requestID]
	if !ok || record.Expired(time.Now()) {
		return nil, shared.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

// Complete marks the record completed with its result snapshot.
func (s *InMemoryIdempotencyStore) Complete(ctx context.Context, requestID string, snapshot []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[requestID]
	if !ok {
		return shared.ErrNotFound
	}
	record.Status = shared.IdempotencyCompleted
	record.ResultSnapshot = snapshot
	record.ErrorCode = ""
	return nil
}

// Fail marks the record failed so the same request ID may be retried.
func (s *InMemoryIdempotencyStore) Fail(ctx context.Context, requestID string, errorCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[requestID]
	if !ok {
		return shared.ErrNotFound
	}
	record.Status = shared.IdempotencyFailed
	record.ErrorCode = errorCode
	record.ResultSnapshot = nil
	return nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired records
func (s *InMemoryIdempotencyStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired records from the store
func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for requestID, record := range s.records {
		if record.Expired(now) {
			delete(s.records, requestID)
		}
	}
}

// Size returns the number of records in the store (for testing/monitoring)
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Ensure InMemoryIdempotencyStore implements IdempotencyStore
var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
