package activity

import (
	"context"
	"time"
)

// Entry is one cashier activity log row. Recording is best effort: a
// failed write never breaks the mutation it describes.
type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Action     string    `json:"action"`
	Subject    string    `json:"subject"`
	Company    string    `json:"company,omitempty"`
	Profile    string    `json:"profile,omitempty"`
	Warehouse  string    `json:"warehouse,omitempty"`
	Territory  string    `json:"territory,omitempty"`
	Route      string    `json:"route,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Recorded actions.
const (
	ActionShiftOpened    = "shift_opened"
	ActionShiftClosed    = "shift_closed"
	ActionInvoiceCreated = "invoice_created"
	ActionInvoiceCancelled = "invoice_cancelled"
	ActionPaymentPosted  = "payment_posted"
	ActionCustomerSaved  = "customer_saved"
)

// Filter scopes a paginated activity query. Newest entries first.
type Filter struct {
	Company   string
	Profile   string
	Warehouse string
	Territory string
	Route     string
	Since     time.Time
	Offset    int
	Limit     int
}

// Repository persists activity entries.
type Repository interface {
	Record(ctx context.Context, entry *Entry) error
	Find(ctx context.Context, f Filter) ([]Entry, int64, error)
}
