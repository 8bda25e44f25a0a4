package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// RedisIdempotencyStore implements IdempotencyStore using Redis
// This is suitable for distributed deployments where multiple instances
// need to share idempotency state
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisIdempotencyStore creates a new Redis-based idempotency store
func NewRedisIdempotencyStore(cfg RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: "mutation:idempotency:",
	}, nil
}

// NewRedisIdempotencyStoreWithClient creates a store with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = "mutation:idempotency:"
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// takeoverScript swaps a failed record for a fresh pending one only if
// the stored value is still the exact bytes the caller observed, so two
// concurrent retries cannot both reclaim the key.
var takeoverScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
	return 1
end
return 0
`)

// Begin atomically inserts a pending record using SETNX; the record TTL
// doubles as the retention expiry, so an expired key is simply absent.
// A stored failed record is reclaimed with a compare-and-set takeover, a
// retry with the same request ID re-executes. Any other existing record
// is returned instead.
func (s *RedisIdempotencyStore) Begin(ctx context.Context, record shared.IdempotencyRecord) (*shared.IdempotencyRecord, bool, error) {
	key := s.keyPrefix + record.RequestID

	record.Status = shared.IdempotencyPending
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return nil, false, fmt.Errorf("idempotency record already expired: %s", record.RequestID)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal idempotency record: %w", err)
	}

	created, err := s.client.SetNX(ctx, key, payload, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin idempotency record: %w", err)
	}
	if created {
		copied := record
		return &copied, true, nil
	}

	observed, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		// The key expired between SETNX and GET; treat as a lost race
		// and let the caller retry.
		return nil, false, shared.ErrConflict
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read idempotency record: %w", err)
	}

	var existing shared.IdempotencyRecord
	if err := json.Unmarshal(observed, &existing); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal idempotency record: %w", err)
	}
	if existing.Status != shared.IdempotencyFailed {
		return &existing, false, nil
	}

	took, err := takeoverScript.Run(ctx, s.client, []string{key}, observed, payload, ttl.Milliseconds()).Int()
	if err != nil {
		return nil, false, fmt.Errorf("failed to reclaim failed idempotency record: %w", err)
	}
	if took == 1 {
		copied := record
		return &copied, true, nil
	}

	// Another retry reclaimed the key first; surface whatever it stored.
	current, err := s.Get(ctx, record.RequestID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, false, shared.ErrConflict
		}
		return nil, false, err
	}
	return current, false, nil
}

// Get returns the record for requestID, or shared.ErrNotFound.
func (s *RedisIdempotencyStore) Get(ctx context.Context, requestID string) (*shared.IdempotencyRecord, error) {
	key := s.keyPrefix + requestID

	payload, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read idempotency record: %w", err)
	}

	var record shared.IdempotencyRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal idempotency record: %w", err)
	}
	return &record, nil
}

// Complete marks the record completed, preserving the key's TTL.
func (s *RedisIdempotencyStore) Complete(ctx context.Context, requestID string, snapshot []byte) error {
	return s.update(ctx, requestID, func(record *shared.IdempotencyRecord) {
		record.Status = shared.IdempotencyCompleted
		record.ResultSnapshot = snapshot
		record.ErrorCode = ""
	})
}

// Fail marks the record failed, preserving the key's TTL.
func (s *RedisIdempotencyStore) Fail(ctx context.Context, requestID string, errorCode string) error {
	return s.update(ctx, requestID, func(record *shared.IdempotencyRecord) {
		record.Status = shared.IdempotencyFailed
		record.ErrorCode = errorCode
		record.ResultSnapshot = nil
	})
}

func (s *RedisIdempotencyStore) update(ctx context.Context, requestID string, mutate func(*shared.IdempotencyRecord)) error {
	key := s.keyPrefix + requestID

	record, err := s.Get(ctx, requestID)
	if err != nil {
		return err
	}
	mutate(record)

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal idempotency record: %w", err)
	}
	// SET XX with KEEPTTL: never recreates an expired key and preserves
	// the retention TTL. Only the pending owner transitions a record.
	ok, err := s.client.SetXX(ctx, key, payload, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to update idempotency record: %w", err)
	}
	if !ok {
		return shared.ErrNotFound
	}
	return nil
}

// Close closes the Redis client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisIdempotencyStore) GetClient() *redis.Client {
	return s.client
}

// Ensure RedisIdempotencyStore implements IdempotencyStore
var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
