package pos

import (
	"context"
	"testing"

	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func invoiceFixture() (*InvoiceService, *MockDocumentEngine, *MockInvoiceRepository, *MockShiftRepository, *MockProfileRepository) {
	engine := new(MockDocumentEngine)
	invoices := new(MockInvoiceRepository)
	shifts := new(MockShiftRepository)
	profiles := new(MockProfileRepository)
	svc := NewInvoiceService(engine, invoices, shifts, profiles, nil, nil)
	return svc, engine, invoices, shifts, profiles
}

func openShift() *pos.Shift {
	return &pos.Shift{
		ID:      "SHIFT-1",
		UserID:  "cashier@example.com",
		Profile: "Downtown",
		Company: "Acme Retail",
		Status:  pos.ShiftOpen,
	}
}

func TestInvoiceService_SubmitInheritsProfileScope(t *testing.T) {
	svc, engine, _, shifts, profiles := invoiceFixture()

	shifts.On("FindAnyOpen", mock.Anything, "cashier@example.com").Return(openShift(), nil)
	profiles.On("FindByName", mock.Anything, "Downtown").Return(downtownProfile(), nil)

	var submitted *pos.SalesInvoice
	engine.On("SubmitInvoice", mock.Anything, mock.AnythingOfType("*pos.SalesInvoice")).
		Run(func(args mock.Arguments) { submitted = args.Get(1).(*pos.SalesInvoice) }).
		Return(nil)

	invoice, err := svc.Submit(context.Background(), "cashier@example.com", SubmitInvoiceRequest{
		Customer: "CUST-001",
		Items: []pos.InvoiceItem{
			{ItemCode: "SKU-1", Qty: decimal.NewFromInt(2), Rate: decimal.NewFromInt(5)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Retail", submitted.Company)
	assert.Equal(t, "Downtown", submitted.Profile)
	// Lines without a warehouse inherit the profile's.
	assert.Equal(t, "Downtown - Store", submitted.Items[0].Warehouse)
	assert.NotEmpty(t, invoice.ID)
}

func TestInvoiceService_SubmitRequiresOpenShift(t *testing.T) {
	svc, engine, _, shifts, _ := invoiceFixture()

	shifts.On("FindAnyOpen", mock.Anything, "cashier@example.com").Return(nil, shared.ErrNotFound)

	_, err := svc.Submit(context.Background(), "cashier@example.com", SubmitInvoiceRequest{
		Customer: "CUST-001",
		Items:    []pos.InvoiceItem{{ItemCode: "SKU-1", Qty: decimal.NewFromInt(1), Rate: decimal.NewFromInt(5)}},
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PRECONDITION_FAILED", domainErr.Code)
	engine.AssertNotCalled(t, "SubmitInvoice", mock.Anything, mock.Anything)
}

func TestInvoiceService_SubmitValidatesLines(t *testing.T) {
	svc, engine, _, shifts, profiles := invoiceFixture()

	shifts.On("FindAnyOpen", mock.Anything, "cashier@example.com").Return(openShift(), nil)
	profiles.On("FindByName", mock.Anything, "Downtown").Return(downtownProfile(), nil)

	_, err := svc.Submit(context.Background(), "cashier@example.com", SubmitInvoiceRequest{
		Customer: "CUST-001",
		Items:    []pos.InvoiceItem{{ItemCode: "SKU-1", Qty: decimal.NewFromInt(-1), Rate: decimal.NewFromInt(5)}},
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	engine.AssertNotCalled(t, "SubmitInvoice", mock.Anything, mock.Anything)
}

func TestInvoiceService_ReturnMustReferenceKnownInvoice(t *testing.T) {
	svc, _, invoices, shifts, profiles := invoiceFixture()

	shifts.On("FindAnyOpen", mock.Anything, "cashier@example.com").Return(openShift(), nil)
	profiles.On("FindByName", mock.Anything, "Downtown").Return(downtownProfile(), nil)
	invoices.On("FindByID", mock.Anything, "SINV-MISSING").Return(nil, shared.ErrNotFound)

	_, err := svc.Submit(context.Background(), "cashier@example.com", SubmitInvoiceRequest{
		Customer:      "CUST-001",
		IsReturn:      true,
		ReturnAgainst: "SINV-MISSING",
		Items:         []pos.InvoiceItem{{ItemCode: "SKU-1", Qty: decimal.NewFromInt(-1), Rate: decimal.NewFromInt(5)}},
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
}

func TestInvoiceService_Cancel(t *testing.T) {
	svc, engine, _, _, profiles := invoiceFixture()

	cancelled := &pos.SalesInvoice{ID: "SINV-1", Profile: "Downtown", Status: pos.InvoiceCancelled}
	engine.On("CancelInvoice", mock.Anything, "SINV-1").Return(cancelled, nil)
	profiles.On("FindByName", mock.Anything, "Downtown").Return(downtownProfile(), nil)

	invoice, err := svc.Cancel(context.Background(), "cashier@example.com", "SINV-1")
	require.NoError(t, err)
	assert.Equal(t, pos.InvoiceCancelled, invoice.Status)

	_, err = svc.Cancel(context.Background(), "cashier@example.com", "")
	assert.Error(t, err)
}
