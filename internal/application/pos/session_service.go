package pos

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/pos-gateway/internal/domain/activity"
	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActivityRecorder is the best-effort feed sink the POS services log to.
type ActivityRecorder interface {
	Record(ctx context.Context, entry activity.Entry)
}

// OpenShiftRequest opens or resumes a POS session.
type OpenShiftRequest struct {
	Profile         string
	PostingDate     time.Time
	OpeningBalances []pos.OpeningBalance
}

// ShiftResult is the session returned to the client. Reused marks that
// an already-open shift was returned instead of a new one.
type ShiftResult struct {
	Shift  *pos.Shift `json:"shift"`
	Reused bool       `json:"reused"`
}

// SessionService opens and closes POS shifts.
type SessionService struct {
	shifts   pos.ShiftRepository
	profiles pos.ProfileRepository
	engine   pos.DocumentEngine
	activity ActivityRecorder
	logger   *zap.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(shifts pos.ShiftRepository, profiles pos.ProfileRepository, engine pos.DocumentEngine, recorder ActivityRecorder, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		shifts:   shifts,
		profiles: profiles,
		engine:   engine,
		activity: recorder,
		logger:   logger,
	}
}

// Open returns the user's open shift for the profile when one exists,
// otherwise opens a new one. Opening is therefore safe to retry: the
// second call resumes rather than double-opens.
func (s *SessionService) Open(ctx context.Context, userID string, req OpenShiftRequest) (*ShiftResult, error) {
	profile, err := s.resolveProfile(ctx, userID, req.Profile)
	if err != nil {
		return nil, err
	}
	if profile.Disabled {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "POS profile is disabled")
	}

	existing, err := s.shifts.FindOpen(ctx, userID, profile.Name)
	if err == nil {
		return &ShiftResult{Shift: existing, Reused: true}, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	postingDate := req.PostingDate
	if postingDate.IsZero() {
		postingDate = time.Now().UTC()
	}
	shift := &pos.Shift{
		ID:              newDocID("SHIFT"),
		UserID:          userID,
		Profile:         profile.Name,
		Company:         profile.Company,
		Status:          pos.ShiftOpen,
		PostingDate:     postingDate,
		OpeningBalances: req.OpeningBalances,
		OpenedAt:        time.Now().UTC(),
	}
	if err := s.engine.OpenShift(ctx, shift); err != nil {
		return nil, err
	}

	s.record(ctx, userID, profile, activity.ActionShiftOpened, shift.ID)
	s.logger.Info("shift opened",
		zap.String("shift_id", shift.ID),
		zap.String("user_id", userID),
		zap.String("profile", profile.Name))
	return &ShiftResult{Shift: shift}, nil
}

// CloseShiftRequest closes a POS session with declared balances.
type CloseShiftRequest struct {
	ShiftID         string
	ClosingBalances []pos.OpeningBalance
}

// Close closes the user's shift. Closing someone else's shift is denied,
// closing an already-closed shift conflicts.
func (s *SessionService) Close(ctx context.Context, userID string, req CloseShiftRequest) (*pos.Shift, error) {
	if req.ShiftID == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "shift_id is required")
	}
	shift, err := s.shifts.FindByID(ctx, req.ShiftID)
	if err != nil {
		return nil, err
	}
	if shift.UserID != userID {
		return nil, shared.NewDomainError("ACCESS_DENIED", "shift belongs to another user")
	}
	if !shift.IsOpen() {
		return nil, shared.NewDomainError("CONFLICT", "shift is already closed")
	}

	shift.Close(req.ClosingBalances, time.Now().UTC())
	if err := s.engine.CloseShift(ctx, shift); err != nil {
		return nil, err
	}

	if profile, perr := s.profiles.FindByName(ctx, shift.Profile); perr == nil {
		s.record(ctx, userID, profile, activity.ActionShiftClosed, shift.ID)
	}
	s.logger.Info("shift closed",
		zap.String("shift_id", shift.ID),
		zap.String("user_id", userID))
	return shift, nil
}

// Current returns the user's open shift for the profile, or for any
// profile when none is named.
func (s *SessionService) Current(ctx context.Context, userID, profile string) (*pos.Shift, error) {
	if profile != "" {
		return s.shifts.FindOpen(ctx, userID, profile)
	}
	return s.shifts.FindAnyOpen(ctx, userID)
}

// resolveProfile picks the profile a session runs under: the named one,
// else the user's default assignment, else the sole accessible profile.
func (s *SessionService) resolveProfile(ctx context.Context, userID, name string) (*pos.Profile, error) {
	if name = strings.TrimSpace(name); name != "" {
		return s.profiles.FindByName(ctx, name)
	}
	profile, err := s.profiles.FindDefault(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	accessible, err := s.profiles.FindAccessible(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(accessible) == 1 {
		return &accessible[0], nil
	}
	return nil, shared.NewDomainError("VALIDATION_ERROR", "profile is required when no default assignment exists")
}

func (s *SessionService) record(ctx context.Context, userID string, profile *pos.Profile, action, subject string) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, activity.Entry{
		UserID:    userID,
		Action:    action,
		Subject:   subject,
		Company:   profile.Company,
		Profile:   profile.Name,
		Warehouse: profile.Warehouse,
		Territory: profile.Territory,
		Route:     profile.Route,
	})
}

// newDocID mints a document name with the given series prefix.
func newDocID(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}
