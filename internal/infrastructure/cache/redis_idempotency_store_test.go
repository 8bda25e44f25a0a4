package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisIdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisIdempotencyStoreWithClient(client, "mutation:idempotency:")
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_BeginWinsOnce(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	record, won, err := store.Begin(ctx, pendingRecord("req-1"))
	require.NoError(t, err)
	assert.True(t, won)
	assert.Equal(t, shared.IdempotencyPending, record.Status)

	existing, won, err := store.Begin(ctx, pendingRecord("req-1"))
	require.NoError(t, err)
	assert.False(t, won)
	assert.Equal(t, shared.IdempotencyPending, existing.Status)
	assert.Equal(t, "invoice.create", existing.Endpoint)
}

func TestRedisStore_CompleteAndReplay(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	_, _, err := store.Begin(ctx, pendingRecord("req-1"))
	require.NoError(t, err)

	require.NoError(t, store.Complete(ctx, "req-1", []byte(`{"name":"SINV-001"}`)))

	record, err := store.Get(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, shared.IdempotencyCompleted, record.Status)
	assert.JSONEq(t, `{"name":"SINV-001"}`, string(record.ResultSnapshot))
}

func TestRedisStore_FailKeepsRecord(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	_, _, err := store.Begin(ctx, pendingRecord("req-1"))
	require.NoError(t, err)
	require.NoError(t, store.Fail(ctx, "req-1", "DEPENDENCY_UNAVAILABLE"))

	record, err := store.Get(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, shared.IdempotencyFailed, record.Status)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", record.ErrorCode)
}

func TestRedisStore_FailedRecordAllowsRetry(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	_, _, err := store.Begin(ctx, pendingRecord("req-1"))
	require.NoError(t, err)
	require.NoError(t, store.Fail(ctx, "req-1", "DEPENDENCY_UNAVAILABLE"))

	reclaimed, won, err := store.Begin(ctx, pendingRecord("req-1"))
	require.NoError(t, err)
	assert.True(t, won)
	assert.Equal(t, shared.IdempotencyPending, reclaimed.Status)
	assert.Empty(t, reclaimed.ErrorCode)

	// The retry now owns the key; a duplicate conflicts as usual.
	existing, won, err := store.Begin(ctx, pendingRecord("req-1"))
	require.NoError(t, err)
	assert.False(t, won)
	assert.Equal(t, shared.IdempotencyPending, existing.Status)
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := newRedisStore(t)

	_, err := store.Get(context.Background(), "req-404")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRedisStore_ExpiredRecordAllowsNewAttempt(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	record := pendingRecord("req-1")
	record.ExpiresAt = time.Now().Add(time.Minute)
	_, won, err := store.Begin(ctx, record)
	require.NoError(t, err)
	require.True(t, won)

	mr.FastForward(2 * time.Minute)

	_, won, err = store.Begin(ctx, pendingRecord("req-1"))
	require.NoError(t, err)
	assert.True(t, won)
}

func TestRedisStore_CompleteAfterExpiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	record := pendingRecord("req-1")
	record.ExpiresAt = time.Now().Add(time.Minute)
	_, _, err := store.Begin(ctx, record)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	err = store.Complete(ctx, "req-1", []byte(`{}`))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRedisStore_RejectsPastExpiry(t *testing.T) {
	store, _ := newRedisStore(t)

	record := pendingRecord("req-1")
	record.ExpiresAt = time.Now().Add(-time.Minute)
	_, _, err := store.Begin(context.Background(), record)
	assert.Error(t, err)
}
