package shared

import (
	"context"
	"time"
)

// IdempotencyStatus is the lifecycle state of one logical mutation attempt.
type IdempotencyStatus string

const (
	IdempotencyPending   IdempotencyStatus = "pending"
	IdempotencyCompleted IdempotencyStatus = "completed"
	IdempotencyFailed    IdempotencyStatus = "failed"
)

// IdempotencyRecord tracks the outcome of a deduplicated mutation.
// ResultSnapshot holds the serialized response data of a completed attempt
// and is replayed verbatim on retry.
type IdempotencyRecord struct {
	RequestID          string            `json:"request_id"`
	Endpoint           string            `json:"endpoint"`
	PayloadFingerprint string            `json:"payload_fingerprint"`
	Status             IdempotencyStatus `json:"status"`
	ResultSnapshot     []byte            `json:"result_snapshot,omitempty"`
	ErrorCode          string            `json:"error_code,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	ExpiresAt          time.Time         `json:"expires_at"`
}

// Expired reports whether the record is past its retention window.
func (r *IdempotencyRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// IdempotencyStore persists idempotency records shared across workers.
//
// Begin is the mutual-exclusion point: it must atomically create a pending
// record for the request ID and return (record, true) when the caller won
// the race, or (existing, false) when a live record already exists. Expired
// records are treated as absent.
type IdempotencyStore interface {
	// Begin atomically transitions absent -> pending.
	Begin(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, bool, error)

	// Get returns the record for requestID, or ErrNotFound.
	Get(ctx context.Context, requestID string) (*IdempotencyRecord, error)

	// Complete stores the result snapshot and marks the record completed.
	Complete(ctx context.Context, requestID string, snapshot []byte) error

	// Fail marks the record failed so the same requestID may be retried.
	Fail(ctx context.Context, requestID string, errorCode string) error

	// Close releases store resources.
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// Retention is how long a record is kept. A completed record may only
	// be dropped once the client retry window has certainly elapsed.
	Retention time.Duration
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		Retention: 48 * time.Hour,
	}
}
