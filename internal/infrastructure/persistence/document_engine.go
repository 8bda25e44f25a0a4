package persistence

import (
	"context"
	"database/sql/driver"
	"errors"

	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/erp/pos-gateway/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormDocumentEngine implements pos.DocumentEngine against the record
// store's tables. Each operation runs in one transaction; callers own
// idempotency and never invoke an operation twice for one logical
// request.
type GormDocumentEngine struct {
	db *gorm.DB
}

// NewGormDocumentEngine creates a new GormDocumentEngine
func NewGormDocumentEngine(db *gorm.DB) *GormDocumentEngine {
	return &GormDocumentEngine{db: db}
}

// OpenShift persists a newly opened shift.
func (e *GormDocumentEngine) OpenShift(ctx context.Context, shift *pos.Shift) error {
	var model models.ShiftModel
	model.FromDomain(shift)
	if err := e.db.WithContext(ctx).Create(&model).Error; err != nil {
		return engineError(err)
	}
	return nil
}

// CloseShift persists the closed state of a shift.
func (e *GormDocumentEngine) CloseShift(ctx context.Context, shift *pos.Shift) error {
	var model models.ShiftModel
	model.FromDomain(shift)
	if err := e.db.WithContext(ctx).Save(&model).Error; err != nil {
		return engineError(err)
	}
	return nil
}

// SubmitInvoice persists the invoice and posts its stock effect: each
// line decrements the bin for its warehouse. Totals are derived from the
// lines when the caller left them zero.
func (e *GormDocumentEngine) SubmitInvoice(ctx context.Context, invoice *pos.SalesInvoice) error {
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if invoice.GrandTotal.IsZero() {
			total := decimal.Zero
			for _, item := range invoice.Items {
				total = total.Add(item.Qty.Mul(item.Rate))
			}
			invoice.GrandTotal = total
		}

		paid := decimal.Zero
		for _, payment := range invoice.Payments {
			paid = paid.Add(payment.Amount)
		}
		invoice.Outstanding = invoice.GrandTotal.Sub(paid)

		switch {
		case invoice.IsReturn:
			invoice.Status = pos.InvoiceReturn
		case invoice.Outstanding.LessThanOrEqual(decimal.Zero):
			invoice.Status = pos.InvoicePaid
		default:
			invoice.Status = pos.InvoiceUnpaid
		}

		var model models.SalesInvoiceModel
		model.FromDomain(invoice)
		if err := tx.Save(&model).Error; err != nil {
			return err
		}

		for _, item := range invoice.Items {
			if item.Warehouse == "" {
				continue
			}
			if err := tx.Model(&models.BinModel{}).
				Where("item_code = ? AND warehouse = ?", item.ItemCode, item.Warehouse).
				UpdateColumn("actual_qty", gorm.Expr("actual_qty - ?", item.Qty)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return engineError(err)
	}
	return nil
}

// CancelInvoice transitions the invoice to cancelled and reverses its
// stock effect. Cancelling an already cancelled invoice is a conflict.
func (e *GormDocumentEngine) CancelInvoice(ctx context.Context, invoiceID string) (*pos.SalesInvoice, error) {
	var cancelled *pos.SalesInvoice
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.SalesInvoiceModel
		if err := tx.First(&model, "id = ?", invoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		invoice := model.ToDomain()
		if invoice.Status == pos.InvoiceCancelled {
			return shared.NewDomainError("CONFLICT", "invoice is already cancelled")
		}

		invoice.Status = pos.InvoiceCancelled
		invoice.Outstanding = decimal.Zero
		model.FromDomain(invoice)
		if err := tx.Save(&model).Error; err != nil {
			return err
		}

		for _, item := range invoice.Items {
			if item.Warehouse == "" {
				continue
			}
			if err := tx.Model(&models.BinModel{}).
				Where("item_code = ? AND warehouse = ?", item.ItemCode, item.Warehouse).
				UpdateColumn("actual_qty", gorm.Expr("actual_qty + ?", item.Qty)).Error; err != nil {
				return err
			}
		}
		cancelled = invoice
		return nil
	})
	if err != nil {
		return nil, engineError(err)
	}
	return cancelled, nil
}

// SubmitPayment persists the payment and settles it against its
// reference invoice when one is named.
func (e *GormDocumentEngine) SubmitPayment(ctx context.Context, entry *pos.PaymentEntry) error {
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if entry.Status == "" {
			entry.Status = "Submitted"
		}
		var model models.PaymentEntryModel
		model.FromDomain(entry)
		if err := tx.Save(&model).Error; err != nil {
			return err
		}

		if entry.ReferenceInvoice == "" {
			return nil
		}

		var invoiceModel models.SalesInvoiceModel
		if err := tx.First(&invoiceModel, "id = ?", entry.ReferenceInvoice).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NewDomainError("VALIDATION_ERROR", "referenced invoice does not exist")
			}
			return err
		}
		invoice := invoiceModel.ToDomain()
		invoice.Outstanding = invoice.Outstanding.Sub(entry.Amount)
		switch {
		case invoice.Outstanding.LessThanOrEqual(decimal.Zero):
			invoice.Outstanding = decimal.Zero
			invoice.Status = pos.InvoicePaid
		default:
			invoice.Status = pos.InvoicePartlyPaid
		}
		invoiceModel.FromDomain(invoice)
		return tx.Save(&invoiceModel).Error
	})
	if err != nil {
		return engineError(err)
	}
	return nil
}

// engineError surfaces infrastructure failures as a dependency outage so
// callers mark the attempt retryable instead of failing the document.
// Domain errors pass through untouched.
func engineError(err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, gorm.ErrInvalidDB) {
		return shared.ErrDependencyUnavailable
	}
	return err
}
