package mutation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/erp/pos-gateway/internal/domain/shared"
	"go.uber.org/zap"
)

// Request describes one deduplicated mutation attempt.
type Request struct {
	// UserID namespaces derived request IDs so two users sending the
	// same payload never collide.
	UserID string
	// Endpoint is the logical operation name, e.g. "invoice.submit".
	Endpoint string
	// ClientRequestID is the caller-supplied dedup key. When empty the
	// controller derives one from the user and the canonical payload.
	ClientRequestID string
	// Payload is the raw request body used for fingerprinting.
	Payload []byte
}

// Outcome is the result of one Execute call. Snapshot always holds the
// serialized response, whether freshly produced or replayed.
type Outcome struct {
	RequestID string
	Replayed  bool
	Snapshot  json.RawMessage
}

// Handler produces the mutation's response value. It runs at most once
// per request ID.
type Handler func(ctx context.Context) (any, error)

// Controller wraps document mutations with exactly-once semantics. The
// first attempt for a request ID executes; concurrent duplicates conflict;
// later duplicates replay the stored snapshot.
type Controller struct {
	store     shared.IdempotencyStore
	retention time.Duration
	logger    *zap.Logger
}

// NewController creates a new Controller
func NewController(store shared.IdempotencyStore, retention time.Duration, logger *zap.Logger) *Controller {
	if retention <= 0 {
		retention = shared.DefaultIdempotencyConfig().Retention
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:     store,
		retention: retention,
		logger:    logger,
	}
}

// Execute runs the handler under the request's idempotency key.
//
// Outcomes by stored state:
//   - absent or expired: the handler runs, its response is snapshotted
//   - pending: a concurrent attempt holds the key, the call conflicts
//   - completed, same fingerprint: the stored snapshot is replayed
//   - completed, different fingerprint: the key was reused for a new
//     payload, which is a client error
//   - failed: the handler runs again
func (c *Controller) Execute(ctx context.Context, req Request, handler Handler) (*Outcome, error) {
	requestID, fingerprint, err := c.identify(req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := shared.IdempotencyRecord{
		RequestID:          requestID,
		Endpoint:           req.Endpoint,
		PayloadFingerprint: fingerprint,
		Status:             shared.IdempotencyPending,
		CreatedAt:          now,
		ExpiresAt:          now.Add(c.retention),
	}

	existing, won, err := c.store.Begin(ctx, record)
	if err != nil {
		return nil, shared.ErrDependencyUnavailable
	}
	if !won {
		return c.resolveDuplicate(existing, fingerprint)
	}

	result, err := handler(ctx)
	if err != nil {
		if failErr := c.store.Fail(ctx, requestID, errorCode(err)); failErr != nil {
			c.logger.Error("failed to release idempotency key",
				zap.String("request_id", requestID), zap.Error(failErr))
		}
		return nil, err
	}

	snapshot, err := json.Marshal(result)
	if err != nil {
		if failErr := c.store.Fail(ctx, requestID, "SNAPSHOT_ENCODING"); failErr != nil {
			c.logger.Error("failed to release idempotency key",
				zap.String("request_id", requestID), zap.Error(failErr))
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "failed to encode mutation result")
	}
	if err := c.store.Complete(ctx, requestID, snapshot); err != nil {
		// The mutation itself succeeded; a retry will re-run it, which
		// the document engine cannot distinguish from a new request.
		c.logger.Error("mutation succeeded but snapshot storage failed",
			zap.String("request_id", requestID), zap.Error(err))
		return nil, shared.ErrDependencyUnavailable
	}

	return &Outcome{RequestID: requestID, Snapshot: snapshot}, nil
}

func (c *Controller) resolveDuplicate(existing *shared.IdempotencyRecord, fingerprint string) (*Outcome, error) {
	switch existing.Status {
	case shared.IdempotencyPending:
		return nil, shared.NewDomainError("CONFLICT", "a request with this ID is already in flight")
	case shared.IdempotencyCompleted:
		if existing.PayloadFingerprint != fingerprint {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "request ID was already used with a different payload")
		}
		return &Outcome{
			RequestID: existing.RequestID,
			Replayed:  true,
			Snapshot:  existing.ResultSnapshot,
		}, nil
	default:
		return nil, shared.NewDomainError("CONFLICT", "request is in an unexpected state, retry later")
	}
}

// identify resolves the request ID and payload fingerprint. Without a
// client-supplied ID both derive from the same canonical payload, so
// byte-order differences in JSON keys do not defeat deduplication.
func (c *Controller) identify(req Request) (string, string, error) {
	canonical, err := canonicalJSON(req.Payload)
	if err != nil {
		return "", "", shared.NewDomainError("VALIDATION_ERROR", "request body is not valid JSON")
	}

	sum := sha256.Sum256(append([]byte(req.Endpoint+"\x00"), canonical...))
	fingerprint := hex.EncodeToString(sum[:])

	requestID := req.ClientRequestID
	if requestID == "" {
		derived := sha256.Sum256(append([]byte(req.UserID+"\x00"+req.Endpoint+"\x00"), canonical...))
		requestID = req.UserID + ":" + hex.EncodeToString(derived[:])
	}
	return requestID, fingerprint, nil
}

// canonicalJSON re-encodes the payload with object keys sorted at every
// nesting level. Empty payloads canonicalize to null.
func canonicalJSON(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return []byte("null"), nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return json.Marshal(value)
}

func errorCode(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL_ERROR"
}
