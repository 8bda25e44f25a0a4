package pos

import (
	"context"
	"time"

	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStatus mirrors the record store's document workflow states.
type InvoiceStatus string

const (
	InvoiceDraft      InvoiceStatus = "Draft"
	InvoiceUnpaid     InvoiceStatus = "Unpaid"
	InvoicePartlyPaid InvoiceStatus = "Partly Paid"
	InvoiceOverdue    InvoiceStatus = "Overdue"
	InvoicePaid       InvoiceStatus = "Paid"
	InvoiceReturn     InvoiceStatus = "Return"
	InvoiceCancelled  InvoiceStatus = "Cancelled"
)

// OpenInvoiceStatuses are the states bootstrap treats as still actionable.
var OpenInvoiceStatuses = []InvoiceStatus{InvoiceDraft, InvoiceUnpaid, InvoicePartlyPaid, InvoiceOverdue}

// InvoiceItem is one line of a sales invoice.
type InvoiceItem struct {
	ItemCode  string          `json:"item_code"`
	Qty       decimal.Decimal `json:"qty"`
	Rate      decimal.Decimal `json:"rate"`
	Warehouse string          `json:"warehouse,omitempty"`
}

// InvoicePayment is one tendered payment row on an invoice.
type InvoicePayment struct {
	ModeOfPayment string          `json:"mode_of_payment"`
	Amount        decimal.Decimal `json:"amount"`
}

// SalesInvoice is a POS sale. Profile may be empty: documents created
// outside the POS carry no profile tag and are still visible to every
// terminal in the same company (the widening rule in delta queries).
type SalesInvoice struct {
	ID            string           `json:"id"`
	Company       string           `json:"company"`
	Profile       string           `json:"profile,omitempty"`
	Customer      string           `json:"customer"`
	Status        InvoiceStatus    `json:"status"`
	IsReturn      bool             `json:"is_return"`
	ReturnAgainst string           `json:"return_against,omitempty"`
	PostingDate   time.Time        `json:"posting_date"`
	Items         []InvoiceItem    `json:"items"`
	Payments      []InvoicePayment `json:"payments"`
	GrandTotal    decimal.Decimal  `json:"grand_total"`
	Outstanding   decimal.Decimal  `json:"outstanding"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Validate enforces the creation invariants before the document engine is
// invoked.
func (inv *SalesInvoice) Validate() error {
	if inv.Company == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "company is required")
	}
	if inv.Customer == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "customer is required")
	}
	if len(inv.Items) == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "at least one item is required")
	}
	for _, item := range inv.Items {
		if item.ItemCode == "" {
			return shared.NewDomainError("VALIDATION_ERROR", "item_code is required on every line")
		}
		if item.Qty.IsZero() {
			return shared.NewDomainError("VALIDATION_ERROR", "qty cannot be zero")
		}
		if item.Qty.IsNegative() && !inv.IsReturn {
			return shared.NewDomainError("VALIDATION_ERROR", "negative qty is only allowed on returns")
		}
	}
	return nil
}

// PaymentType distinguishes the payment entry flavors the record store
// knows.
type PaymentType string

const (
	PaymentReceive          PaymentType = "Receive"
	PaymentPay              PaymentType = "Pay"
	PaymentInternalTransfer PaymentType = "Internal Transfer"
)

// PaymentReference allocates part of an outgoing payment against a
// purchase document.
type PaymentReference struct {
	ReferenceDoctype string          `json:"reference_doctype"`
	ReferenceName    string          `json:"reference_name"`
	AllocatedAmount  decimal.Decimal `json:"allocated_amount"`
}

// PaymentEntry is a posted payment. Customer payments carry Customer and
// an optional reference invoice; outgoing payments carry Party/PartyType
// and purchase references; internal transfers move Amount between
// PaidFrom and PaidTo.
type PaymentEntry struct {
	ID               string             `json:"id"`
	PaymentType      PaymentType        `json:"payment_type"`
	Company          string             `json:"company"`
	Profile          string             `json:"profile,omitempty"`
	Customer         string             `json:"customer,omitempty"`
	PartyType        string             `json:"party_type,omitempty"`
	Party            string             `json:"party,omitempty"`
	PaidFrom         string             `json:"paid_from,omitempty"`
	PaidTo           string             `json:"paid_to,omitempty"`
	PostingDate      time.Time          `json:"posting_date"`
	ModeOfPayment    string             `json:"mode_of_payment"`
	Amount           decimal.Decimal    `json:"amount"`
	ReceivedAmount   decimal.Decimal    `json:"received_amount"`
	ReferenceInvoice string             `json:"reference_invoice,omitempty"`
	References       []PaymentReference `json:"references,omitempty"`
	Status           string             `json:"status"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// DeltaFilter scopes a paginated delta query. Since is the client-held
// watermark; zero means bootstrap (no lower bound). Profile filtering
// applies the widening rule: match the profile or carry no profile tag,
// always within Company.
type DeltaFilter struct {
	Company string
	Profile string
	Since   time.Time
	Offset  int
	Limit   int
}

// InvoiceRepository persists and pages sales invoices.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id string) (*SalesInvoice, error)
	Save(ctx context.Context, invoice *SalesInvoice) error
	// FindDelta pages invoices modified since the watermark under the
	// widening rule.
	FindDelta(ctx context.Context, f DeltaFilter) ([]SalesInvoice, int64, error)
	// FindBootstrap pages open invoices within openDays plus paid ones
	// within paidDays.
	FindBootstrap(ctx context.Context, f DeltaFilter, openDays, paidDays int) ([]SalesInvoice, int64, error)
}

// PaymentRepository persists and pages payment entries.
type PaymentRepository interface {
	FindByID(ctx context.Context, id string) (*PaymentEntry, error)
	Save(ctx context.Context, entry *PaymentEntry) error
	FindDelta(ctx context.Context, f DeltaFilter) ([]PaymentEntry, int64, error)
}
