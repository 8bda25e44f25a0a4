package pos

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/pos-gateway/internal/domain/activity"
	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UpsertCustomerRequest creates or updates a customer. ID, Mobile and
// Name drive resolution in that order; empty fields leave the stored
// values untouched.
type UpsertCustomerRequest struct {
	ID            string
	Name          string
	Mobile        string
	CustomerGroup string
	Territory     string
	Route         string
	CreditLimit   *decimal.Decimal
}

// CustomerResult is the upsert outcome. Created distinguishes a fresh
// record from an update of an existing one.
type CustomerResult struct {
	Customer *pos.Customer `json:"customer"`
	Created  bool          `json:"created"`
}

// CustomerService maintains POS customers.
type CustomerService struct {
	customers pos.CustomerRepository
	activity  ActivityRecorder
	logger    *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customers pos.CustomerRepository, recorder ActivityRecorder, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customers: customers,
		activity:  recorder,
		logger:    logger,
	}
}

// Upsert resolves the target customer by ID, then mobile, then exact
// name, and merges the request into it. No match creates a new record.
// An explicit ID that matches nothing is an error rather than a create,
// so a stale client cannot silently fork a customer.
func (s *CustomerService) Upsert(ctx context.Context, userID string, req UpsertCustomerRequest) (*CustomerResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Mobile = strings.TrimSpace(req.Mobile)

	existing, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	created := existing == nil
	if created {
		if req.Name == "" {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "name is required for a new customer")
		}
		existing = &pos.Customer{ID: newDocID("CUST"), Name: req.Name}
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Mobile != "" {
		existing.Mobile = req.Mobile
	}
	if req.CustomerGroup != "" {
		existing.CustomerGroup = req.CustomerGroup
	}
	if req.Territory != "" {
		existing.Territory = req.Territory
	}
	if req.Route != "" {
		existing.Route = req.Route
	}
	if req.CreditLimit != nil {
		if req.CreditLimit.IsNegative() {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "credit_limit cannot be negative")
		}
		existing.CreditLimit = *req.CreditLimit
	}

	if err := s.customers.Save(ctx, existing); err != nil {
		return nil, err
	}

	if s.activity != nil {
		s.activity.Record(ctx, activity.Entry{
			UserID:    userID,
			Action:    activity.ActionCustomerSaved,
			Subject:   existing.ID,
			Territory: existing.Territory,
			Route:     existing.Route,
		})
	}
	s.logger.Info("customer saved",
		zap.String("customer_id", existing.ID),
		zap.Bool("created", created))
	return &CustomerResult{Customer: existing, Created: created}, nil
}

// Get returns one customer by ID.
func (s *CustomerService) Get(ctx context.Context, customerID string) (*pos.Customer, error) {
	return s.customers.FindByID(ctx, customerID)
}

func (s *CustomerService) resolve(ctx context.Context, req UpsertCustomerRequest) (*pos.Customer, error) {
	if req.ID != "" {
		customer, err := s.customers.FindByID(ctx, req.ID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("VALIDATION_ERROR", "customer id does not exist")
			}
			return nil, err
		}
		return customer, nil
	}
	if req.Mobile != "" {
		customer, err := s.customers.FindByMobile(ctx, req.Mobile)
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}
	if req.Name != "" {
		customer, err := s.customers.FindByName(ctx, req.Name)
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}
	return nil, nil
}
