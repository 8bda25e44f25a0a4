package activity

import (
	"context"
	"time"

	"github.com/erp/pos-gateway/internal/domain/activity"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxFeedLimit caps one activity feed page.
const MaxFeedLimit = 200

// DefaultFeedLimit applies when the caller requests no limit.
const DefaultFeedLimit = 50

// Service records and serves the cashier activity feed.
type Service struct {
	repo   activity.Repository
	logger *zap.Logger
}

// NewService creates a new Service
func NewService(repo activity.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Record writes one feed entry. Best effort: a failed write is logged
// and never propagated, so the mutation it describes is unaffected.
func (s *Service) Record(ctx context.Context, entry activity.Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}
	if err := s.repo.Record(ctx, &entry); err != nil {
		s.logger.Warn("activity entry dropped",
			zap.String("action", entry.Action),
			zap.String("subject", entry.Subject),
			zap.Error(err))
	}
}

// FeedPage is one page of the activity feed, newest first.
type FeedPage struct {
	Entries []activity.Entry `json:"entries"`
	Total   int64            `json:"total"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
	HasMore bool             `json:"has_more"`
}

// Feed returns one page of entries matching the filter. The limit is
// clamped to MaxFeedLimit.
func (s *Service) Feed(ctx context.Context, f activity.Filter) (*FeedPage, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultFeedLimit
	}
	if f.Limit > MaxFeedLimit {
		f.Limit = MaxFeedLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	entries, total, err := s.repo.Find(ctx, f)
	if err != nil {
		return nil, shared.ErrDependencyUnavailable
	}
	return &FeedPage{
		Entries: entries,
		Total:   total,
		Offset:  f.Offset,
		Limit:   f.Limit,
		HasMore: int64(f.Offset+len(entries)) < total,
	}, nil
}
