package pos

import (
	"context"

	"github.com/erp/pos-gateway/internal/domain/activity"
	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/stretchr/testify/mock"
)

// MockShiftRepository is a mock implementation of pos.ShiftRepository
type MockShiftRepository struct {
	mock.Mock
}

func (m *MockShiftRepository) FindByID(ctx context.Context, id string) (*pos.Shift, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Shift), args.Error(1)
}

func (m *MockShiftRepository) FindOpen(ctx context.Context, userID, profile string) (*pos.Shift, error) {
	args := m.Called(ctx, userID, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Shift), args.Error(1)
}

func (m *MockShiftRepository) FindAnyOpen(ctx context.Context, userID string) (*pos.Shift, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Shift), args.Error(1)
}

func (m *MockShiftRepository) Save(ctx context.Context, shift *pos.Shift) error {
	args := m.Called(ctx, shift)
	return args.Error(0)
}

// MockProfileRepository is a mock implementation of pos.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByName(ctx context.Context, name string) (*pos.Profile, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindAccessible(ctx context.Context, userID string) ([]pos.Profile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]pos.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindDefault(ctx context.Context, userID string) (*pos.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindFirstEnabled(ctx context.Context) (*pos.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Profile), args.Error(1)
}

// MockDocumentEngine is a mock implementation of pos.DocumentEngine
type MockDocumentEngine struct {
	mock.Mock
}

func (m *MockDocumentEngine) OpenShift(ctx context.Context, shift *pos.Shift) error {
	args := m.Called(ctx, shift)
	return args.Error(0)
}

func (m *MockDocumentEngine) CloseShift(ctx context.Context, shift *pos.Shift) error {
	args := m.Called(ctx, shift)
	return args.Error(0)
}

func (m *MockDocumentEngine) SubmitInvoice(ctx context.Context, invoice *pos.SalesInvoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockDocumentEngine) CancelInvoice(ctx context.Context, invoiceID string) (*pos.SalesInvoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.SalesInvoice), args.Error(1)
}

func (m *MockDocumentEngine) SubmitPayment(ctx context.Context, entry *pos.PaymentEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of pos.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id string) (*pos.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByMobile(ctx context.Context, mobile string) (*pos.Customer, error) {
	args := m.Called(ctx, mobile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByName(ctx context.Context, name string) (*pos.Customer, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *pos.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) FindDelta(ctx context.Context, f pos.CustomerFilter) ([]pos.Customer, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]pos.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerRepository) HasRouteAttribute(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of pos.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id string) (*pos.SalesInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.SalesInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *pos.SalesInvoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindDelta(ctx context.Context, f pos.DeltaFilter) ([]pos.SalesInvoice, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]pos.SalesInvoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) FindBootstrap(ctx context.Context, f pos.DeltaFilter, openDays, paidDays int) ([]pos.SalesInvoice, int64, error) {
	args := m.Called(ctx, f, openDays, paidDays)
	return args.Get(0).([]pos.SalesInvoice), args.Get(1).(int64), args.Error(2)
}

// MockPaymentRepository is a mock implementation of pos.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id string) (*pos.PaymentEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.PaymentEntry), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, entry *pos.PaymentEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindDelta(ctx context.Context, f pos.DeltaFilter) ([]pos.PaymentEntry, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]pos.PaymentEntry), args.Get(1).(int64), args.Error(2)
}

// recordedActivity captures best-effort feed entries in tests.
type recordedActivity struct {
	entries []activity.Entry
}

func (r *recordedActivity) Record(_ context.Context, entry activity.Entry) {
	r.entries = append(r.entries, entry)
}
