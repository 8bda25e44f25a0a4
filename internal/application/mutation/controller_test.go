package mutation

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/erp/pos-gateway/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T) *Controller {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	return NewController(store, time.Hour, nil)
}

func TestController_ExecutesOnceAndReplays(t *testing.T) {
	ctrl := newController(t)
	var calls int32

	req := Request{
		UserID:          "cashier@example.com",
		Endpoint:        "invoice.submit",
		ClientRequestID: "req-001",
		Payload:         []byte(`{"customer":"CUST-001","total":"42.50"}`),
	}
	handler := func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return map[string]string{"invoice_id": "SINV-0001"}, nil
	}

	first, err := ctrl.Execute(context.Background(), req, handler)
	require.NoError(t, err)
	assert.False(t, first.Replayed)
	assert.JSONEq(t, `{"invoice_id":"SINV-0001"}`, string(first.Snapshot))

	second, err := ctrl.Execute(context.Background(), req, handler)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.JSONEq(t, string(first.Snapshot), string(second.Snapshot))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestController_DerivedIDIgnoresKeyOrder(t *testing.T) {
	ctrl := newController(t)
	var calls int32
	handler := func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return "ok", nil
	}

	a := Request{
		UserID:   "cashier@example.com",
		Endpoint: "customer.upsert",
		Payload:  []byte(`{"name":"Asha","mobile":"555-0100"}`),
	}
	b := a
	b.Payload = []byte(`{"mobile":"555-0100","name":"Asha"}`)

	first, err := ctrl.Execute(context.Background(), a, handler)
	require.NoError(t, err)
	second, err := ctrl.Execute(context.Background(), b, handler)
	require.NoError(t, err)

	assert.Equal(t, first.RequestID, second.RequestID)
	assert.True(t, second.Replayed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestController_DerivedIDIsUserScoped(t *testing.T) {
	ctrl := newController(t)
	var calls int32
	handler := func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return "ok", nil
	}

	req := Request{UserID: "a@example.com", Endpoint: "shift.open", Payload: []byte(`{"profile":"Downtown"}`)}
	other := req
	other.UserID = "b@example.com"

	_, err := ctrl.Execute(context.Background(), req, handler)
	require.NoError(t, err)
	outcome, err := ctrl.Execute(context.Background(), other, handler)
	require.NoError(t, err)

	assert.False(t, outcome.Replayed)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestController_ReusedIDWithDifferentPayload(t *testing.T) {
	ctrl := newController(t)
	handler := func(context.Context) (any, error) { return "ok", nil }

	req := Request{
		UserID:          "cashier@example.com",
		Endpoint:        "payment.submit",
		ClientRequestID: "req-002",
		Payload:         []byte(`{"amount":"10"}`),
	}
	_, err := ctrl.Execute(context.Background(), req, handler)
	require.NoError(t, err)

	req.Payload = []byte(`{"amount":"99"}`)
	_, err = ctrl.Execute(context.Background(), req, handler)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
}

func TestController_PendingDuplicateConflicts(t *testing.T) {
	ctrl := newController(t)
	release := make(chan struct{})
	started := make(chan struct{})

	req := Request{
		UserID:          "cashier@example.com",
		Endpoint:        "invoice.submit",
		ClientRequestID: "req-003",
		Payload:         []byte(`{"total":"5"}`),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := ctrl.Execute(context.Background(), req, func(context.Context) (any, error) {
			close(started)
			<-release
			return "ok", nil
		})
		assert.NoError(t, err)
	}()

	<-started
	_, err := ctrl.Execute(context.Background(), req, func(context.Context) (any, error) {
		t.Fatal("duplicate must not execute")
		return nil, nil
	})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)

	close(release)
	wg.Wait()
}

func TestController_FailedAttemptCanRetry(t *testing.T) {
	ctrl := newController(t)
	var calls int32

	req := Request{
		UserID:          "cashier@example.com",
		Endpoint:        "invoice.submit",
		ClientRequestID: "req-004",
		Payload:         []byte(`{"total":"7"}`),
	}

	_, err := ctrl.Execute(context.Background(), req, func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return nil, shared.ErrDependencyUnavailable
	})
	assert.ErrorIs(t, err, shared.ErrDependencyUnavailable)

	outcome, err := ctrl.Execute(context.Background(), req, func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.False(t, outcome.Replayed)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestController_RejectsMalformedPayload(t *testing.T) {
	ctrl := newController(t)

	_, err := ctrl.Execute(context.Background(), Request{
		UserID:   "cashier@example.com",
		Endpoint: "invoice.submit",
		Payload:  []byte(`{"total":`),
	}, func(context.Context) (any, error) { return "ok", nil })

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
}
