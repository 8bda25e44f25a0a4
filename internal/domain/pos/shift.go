package pos

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ShiftStatus is the lifecycle state of a POS session.
type ShiftStatus string

const (
	ShiftOpen   ShiftStatus = "open"
	ShiftClosed ShiftStatus = "closed"
)

// OpeningBalance is one declared cash amount per payment mode at shift
// open or close.
type OpeningBalance struct {
	ModeOfPayment string          `json:"mode_of_payment"`
	Amount        decimal.Decimal `json:"amount"`
}

// Shift is one POS session, bounded by an open and a close event and
// scoped to a single user/profile pair. A user holds at most one open
// shift per profile; another user's open shift is invisible to them.
type Shift struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	Profile         string           `json:"profile"`
	Company         string           `json:"company"`
	Status          ShiftStatus      `json:"status"`
	PostingDate     time.Time        `json:"posting_date"`
	OpeningBalances []OpeningBalance `json:"opening_balances"`
	ClosingBalances []OpeningBalance `json:"closing_balances,omitempty"`
	OpenedAt        time.Time        `json:"opened_at"`
	ClosedAt        *time.Time       `json:"closed_at,omitempty"`
}

// IsOpen reports whether the shift is still accepting documents.
func (s *Shift) IsOpen() bool {
	return s.Status == ShiftOpen
}

// Close transitions the shift to closed with the declared balances.
func (s *Shift) Close(balances []OpeningBalance, at time.Time) {
	s.Status = ShiftClosed
	s.ClosingBalances = balances
	s.ClosedAt = &at
}

// ShiftRepository persists POS sessions.
type ShiftRepository interface {
	FindByID(ctx context.Context, id string) (*Shift, error)
	// FindOpen returns the user's open shift for the profile, or
	// shared.ErrNotFound. Scoped strictly to the user: another user's
	// open shift is never returned.
	FindOpen(ctx context.Context, userID, profile string) (*Shift, error)
	// FindAnyOpen returns the user's open shift for any profile.
	FindAnyOpen(ctx context.Context, userID string) (*Shift, error)
	Save(ctx context.Context, shift *Shift) error
}
