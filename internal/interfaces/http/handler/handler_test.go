package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/erp/pos-gateway/internal/application/mutation"
	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/erp/pos-gateway/internal/infrastructure/auth"
	"github.com/erp/pos-gateway/internal/infrastructure/cache"
	"github.com/erp/pos-gateway/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testUser = "cashier@store.test"

// testAuth injects claims the way JWTAuth would, without minting tokens.
func testAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.JWTClaimsKey, &auth.Claims{
				UserID:  userID,
				Company: "Acme Retail",
				Roles:   []string{"POS User"},
			})
		}
		c.Next()
	}
}

func newTestRouter(userID string, registrars ...interface {
	RegisterRoutes(rg *gin.RouterGroup)
}) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID(), testAuth(userID))
	group := engine.Group("/api/v1")
	for _, r := range registrars {
		r.RegisterRoutes(group)
	}
	return engine
}

func newMutationController(t *testing.T) *mutation.Controller {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	return mutation.NewController(store, 0, nil)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

// --- in-memory repositories ---

type fakeShiftRepo struct {
	shifts map[string]*pos.Shift
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{shifts: map[string]*pos.Shift{}}
}

func (r *fakeShiftRepo) FindByID(_ context.Context, id string) (*pos.Shift, error) {
	if shift, ok := r.shifts[id]; ok {
		return shift, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeShiftRepo) FindOpen(_ context.Context, userID, profile string) (*pos.Shift, error) {
	for _, shift := range r.shifts {
		if shift.UserID == userID && shift.Profile == profile && shift.IsOpen() {
			return shift, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeShiftRepo) FindAnyOpen(_ context.Context, userID string) (*pos.Shift, error) {
	for _, shift := range r.shifts {
		if shift.UserID == userID && shift.IsOpen() {
			return shift, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeShiftRepo) Save(_ context.Context, shift *pos.Shift) error {
	r.shifts[shift.ID] = shift
	return nil
}

type fakeProfileRepo struct {
	profiles []pos.Profile
}

func (r *fakeProfileRepo) FindByName(_ context.Context, name string) (*pos.Profile, error) {
	for i := range r.profiles {
		if r.profiles[i].Name == name {
			return &r.profiles[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProfileRepo) FindAccessible(_ context.Context, _ string) ([]pos.Profile, error) {
	return r.profiles, nil
}

func (r *fakeProfileRepo) FindDefault(_ context.Context, _ string) (*pos.Profile, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeProfileRepo) FindFirstEnabled(_ context.Context) (*pos.Profile, error) {
	for i := range r.profiles {
		if !r.profiles[i].Disabled {
			return &r.profiles[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

// fakeEngine stands in for the gorm document engine. The engine is the
// persistence path for shifts, so it writes through to the shift repo
// when one is attached.
type fakeEngine struct {
	shifts    *fakeShiftRepo
	submitted []*pos.SalesInvoice
	cancelled []string
}

func (e *fakeEngine) OpenShift(ctx context.Context, shift *pos.Shift) error {
	if e.shifts != nil {
		return e.shifts.Save(ctx, shift)
	}
	return nil
}

func (e *fakeEngine) CloseShift(ctx context.Context, shift *pos.Shift) error {
	if e.shifts != nil {
		return e.shifts.Save(ctx, shift)
	}
	return nil
}

func (e *fakeEngine) SubmitInvoice(_ context.Context, invoice *pos.SalesInvoice) error {
	e.submitted = append(e.submitted, invoice)
	return nil
}

func (e *fakeEngine) CancelInvoice(_ context.Context, invoiceID string) (*pos.SalesInvoice, error) {
	e.cancelled = append(e.cancelled, invoiceID)
	return &pos.SalesInvoice{ID: invoiceID, Status: pos.InvoiceCancelled}, nil
}

func (e *fakeEngine) SubmitPayment(_ context.Context, _ *pos.PaymentEntry) error { return nil }

type fakeInvoiceRepo struct {
	invoices map[string]*pos.SalesInvoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[string]*pos.SalesInvoice{}}
}

func (r *fakeInvoiceRepo) FindByID(_ context.Context, id string) (*pos.SalesInvoice, error) {
	if invoice, ok := r.invoices[id]; ok {
		return invoice, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeInvoiceRepo) Save(_ context.Context, invoice *pos.SalesInvoice) error {
	r.invoices[invoice.ID] = invoice
	return nil
}

func (r *fakeInvoiceRepo) FindDelta(_ context.Context, _ pos.DeltaFilter) ([]pos.SalesInvoice, int64, error) {
	return nil, 0, nil
}

func (r *fakeInvoiceRepo) FindBootstrap(_ context.Context, _ pos.DeltaFilter, _, _ int) ([]pos.SalesInvoice, int64, error) {
	return nil, 0, nil
}
