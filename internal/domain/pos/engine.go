package pos

import "context"

// DocumentEngine is the record store's document-mutation primitive. Each
// call is transactional per document on the engine's side; callers are
// responsible for never invoking it twice for one logical request. An
// unreachable engine surfaces as shared.ErrDependencyUnavailable.
type DocumentEngine interface {
	OpenShift(ctx context.Context, shift *Shift) error
	CloseShift(ctx context.Context, shift *Shift) error
	SubmitInvoice(ctx context.Context, invoice *SalesInvoice) error
	CancelInvoice(ctx context.Context, invoiceID string) (*SalesInvoice, error)
	SubmitPayment(ctx context.Context, entry *PaymentEntry) error
}
