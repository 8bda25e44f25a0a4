package models

import (
	"encoding/json"
	"time"

	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/shopspring/decimal"
)

// ShiftModel is the persistence model for a POS session.
type ShiftModel struct {
	ID              string `gorm:"type:varchar(140);primaryKey"`
	UserID          string `gorm:"type:varchar(140);not null;index:idx_shift_user_status"`
	Profile         string `gorm:"type:varchar(140);not null;index"`
	Company         string `gorm:"type:varchar(140);not null"`
	Status          string `gorm:"type:varchar(20);not null;index:idx_shift_user_status"`
	PostingDate     time.Time
	OpeningBalances string `gorm:"type:text"`
	ClosingBalances string `gorm:"type:text"`
	OpenedAt        time.Time
	ClosedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (ShiftModel) TableName() string {
	return "pos_shifts"
}

// ToDomain converts the persistence model to a domain Shift.
func (m *ShiftModel) ToDomain() *pos.Shift {
	return &pos.Shift{
		ID:              m.ID,
		UserID:          m.UserID,
		Profile:         m.Profile,
		Company:         m.Company,
		Status:          pos.ShiftStatus(m.Status),
		PostingDate:     m.PostingDate,
		OpeningBalances: decodeBalances(m.OpeningBalances),
		ClosingBalances: decodeBalances(m.ClosingBalances),
		OpenedAt:        m.OpenedAt,
		ClosedAt:        m.ClosedAt,
	}
}

// FromDomain populates the persistence model from a domain Shift.
func (m *ShiftModel) FromDomain(s *pos.Shift) {
	m.ID = s.ID
	m.UserID = s.UserID
	m.Profile = s.Profile
	m.Company = s.Company
	m.Status = string(s.Status)
	m.PostingDate = s.PostingDate
	m.OpeningBalances = encodeJSON(s.OpeningBalances)
	m.ClosingBalances = encodeJSON(s.ClosingBalances)
	m.OpenedAt = s.OpenedAt
	m.ClosedAt = s.ClosedAt
}

// ProfileModel is the persistence model for a POS profile.
type ProfileModel struct {
	Name           string `gorm:"type:varchar(140);primaryKey"`
	Company        string `gorm:"type:varchar(140);not null;index"`
	Warehouse      string `gorm:"type:varchar(140);not null"`
	PriceList      string `gorm:"type:varchar(140)"`
	Currency       string `gorm:"type:varchar(10)"`
	Territory      string `gorm:"type:varchar(140)"`
	Route          string `gorm:"type:varchar(140)"`
	Disabled       bool   `gorm:"not null;default:false"`
	PaymentMethods string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (ProfileModel) TableName() string {
	return "pos_profiles"
}

// ToDomain converts the persistence model to a domain Profile.
func (m *ProfileModel) ToDomain() *pos.Profile {
	var methods []pos.PaymentMethod
	if m.PaymentMethods != "" {
		_ = json.Unmarshal([]byte(m.PaymentMethods), &methods)
	}
	return &pos.Profile{
		Name:           m.Name,
		Company:        m.Company,
		Warehouse:      m.Warehouse,
		PriceList:      m.PriceList,
		Currency:       m.Currency,
		Territory:      m.Territory,
		Route:          m.Route,
		Disabled:       m.Disabled,
		PaymentMethods: methods,
	}
}

// FromDomain populates the persistence model from a domain Profile.
func (m *ProfileModel) FromDomain(p *pos.Profile) {
	m.Name = p.Name
	m.Company = p.Company
	m.Warehouse = p.Warehouse
	m.PriceList = p.PriceList
	m.Currency = p.Currency
	m.Territory = p.Territory
	m.Route = p.Route
	m.Disabled = p.Disabled
	m.PaymentMethods = encodeJSON(p.PaymentMethods)
}

// ProfileUserModel assigns a user to a profile. Default marks the
// profile the session endpoint picks when the client names none.
type ProfileUserModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Profile   string `gorm:"type:varchar(140);not null;uniqueIndex:idx_profile_user,priority:1"`
	UserID    string `gorm:"type:varchar(140);not null;uniqueIndex:idx_profile_user,priority:2;index"`
	Default   bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (ProfileUserModel) TableName() string {
	return "pos_profile_users"
}

// CustomerModel is the persistence model for a POS customer.
type CustomerModel struct {
	ID            string          `gorm:"type:varchar(140);primaryKey"`
	Name          string          `gorm:"type:varchar(200);not null;index"`
	Mobile        string          `gorm:"type:varchar(50);index"`
	CustomerGroup string          `gorm:"type:varchar(140)"`
	Territory     string          `gorm:"type:varchar(140);index"`
	Route         string          `gorm:"type:varchar(140);index"`
	CreditLimit   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Outstanding   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Disabled      bool            `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer.
func (m *CustomerModel) ToDomain() *pos.Customer {
	return &pos.Customer{
		ID:            m.ID,
		Name:          m.Name,
		Mobile:        m.Mobile,
		CustomerGroup: m.CustomerGroup,
		Territory:     m.Territory,
		Route:         m.Route,
		CreditLimit:   m.CreditLimit,
		Outstanding:   m.Outstanding,
		Disabled:      m.Disabled,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Customer.
func (m *CustomerModel) FromDomain(c *pos.Customer) {
	m.ID = c.ID
	m.Name = c.Name
	m.Mobile = c.Mobile
	m.CustomerGroup = c.CustomerGroup
	m.Territory = c.Territory
	m.Route = c.Route
	m.CreditLimit = c.CreditLimit
	m.Outstanding = c.Outstanding
	m.Disabled = c.Disabled
}

// SalesInvoiceModel is the persistence model for a sales invoice. Profile
// may be empty for documents created outside the POS; delta queries widen
// to include those rows within the same company.
type SalesInvoiceModel struct {
	ID            string          `gorm:"type:varchar(140);primaryKey"`
	Company       string          `gorm:"type:varchar(140);not null;index:idx_invoice_scope,priority:1"`
	Profile       string          `gorm:"type:varchar(140);index:idx_invoice_scope,priority:2"`
	Customer      string          `gorm:"type:varchar(140);not null;index"`
	Status        string          `gorm:"type:varchar(20);not null;index"`
	IsReturn      bool            `gorm:"not null;default:false"`
	ReturnAgainst string          `gorm:"type:varchar(140)"`
	PostingDate   time.Time       `gorm:"index"`
	Items         string          `gorm:"type:text"`
	Payments      string          `gorm:"type:text"`
	GrandTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Outstanding   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (SalesInvoiceModel) TableName() string {
	return "sales_invoices"
}

// ToDomain converts the persistence model to a domain SalesInvoice.
func (m *SalesInvoiceModel) ToDomain() *pos.SalesInvoice {
	var items []pos.InvoiceItem
	var payments []pos.InvoicePayment
	if m.Items != "" {
		_ = json.Unmarshal([]byte(m.Items), &items)
	}
	if m.Payments != "" {
		_ = json.Unmarshal([]byte(m.Payments), &payments)
	}
	return &pos.SalesInvoice{
		ID:            m.ID,
		Company:       m.Company,
		Profile:       m.Profile,
		Customer:      m.Customer,
		Status:        pos.InvoiceStatus(m.Status),
		IsReturn:      m.IsReturn,
		ReturnAgainst: m.ReturnAgainst,
		PostingDate:   m.PostingDate,
		Items:         items,
		Payments:      payments,
		GrandTotal:    m.GrandTotal,
		Outstanding:   m.Outstanding,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain SalesInvoice.
func (m *SalesInvoiceModel) FromDomain(inv *pos.SalesInvoice) {
	m.ID = inv.ID
	m.Company = inv.Company
	m.Profile = inv.Profile
	m.Customer = inv.Customer
	m.Status = string(inv.Status)
	m.IsReturn = inv.IsReturn
	m.ReturnAgainst = inv.ReturnAgainst
	m.PostingDate = inv.PostingDate
	m.Items = encodeJSON(inv.Items)
	m.Payments = encodeJSON(inv.Payments)
	m.GrandTotal = inv.GrandTotal
	m.Outstanding = inv.Outstanding
}

// PaymentEntryModel is the persistence model for a posted payment.
type PaymentEntryModel struct {
	ID               string `gorm:"type:varchar(140);primaryKey"`
	PaymentType      string `gorm:"type:varchar(30);not null"`
	Company          string `gorm:"type:varchar(140);not null;index:idx_payment_scope,priority:1"`
	Profile          string `gorm:"type:varchar(140);index:idx_payment_scope,priority:2"`
	Customer         string `gorm:"type:varchar(140);index"`
	PartyType        string `gorm:"type:varchar(60)"`
	Party            string `gorm:"type:varchar(140);index"`
	PaidFrom         string `gorm:"type:varchar(140)"`
	PaidTo           string `gorm:"type:varchar(140)"`
	PostingDate      time.Time
	ModeOfPayment    string          `gorm:"type:varchar(140)"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReceivedAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReferenceInvoice string          `gorm:"type:varchar(140);index"`
	References       string          `gorm:"type:text"`
	Status           string          `gorm:"type:varchar(20)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (PaymentEntryModel) TableName() string {
	return "payment_entries"
}

// ToDomain converts the persistence model to a domain PaymentEntry.
func (m *PaymentEntryModel) ToDomain() *pos.PaymentEntry {
	paymentType := pos.PaymentType(m.PaymentType)
	if paymentType == "" {
		paymentType = pos.PaymentReceive
	}
	return &pos.PaymentEntry{
		ID:               m.ID,
		PaymentType:      paymentType,
		Company:          m.Company,
		Profile:          m.Profile,
		Customer:         m.Customer,
		PartyType:        m.PartyType,
		Party:            m.Party,
		PaidFrom:         m.PaidFrom,
		PaidTo:           m.PaidTo,
		PostingDate:      m.PostingDate,
		ModeOfPayment:    m.ModeOfPayment,
		Amount:           m.Amount,
		ReceivedAmount:   m.ReceivedAmount,
		ReferenceInvoice: m.ReferenceInvoice,
		References:       decodeReferences(m.References),
		Status:           m.Status,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain PaymentEntry.
func (m *PaymentEntryModel) FromDomain(e *pos.PaymentEntry) {
	m.ID = e.ID
	m.PaymentType = string(e.PaymentType)
	m.Company = e.Company
	m.Profile = e.Profile
	m.Customer = e.Customer
	m.PartyType = e.PartyType
	m.Party = e.Party
	m.PaidFrom = e.PaidFrom
	m.PaidTo = e.PaidTo
	m.PostingDate = e.PostingDate
	m.ModeOfPayment = e.ModeOfPayment
	m.Amount = e.Amount
	m.ReceivedAmount = e.ReceivedAmount
	m.ReferenceInvoice = e.ReferenceInvoice
	if len(e.References) > 0 {
		m.References = encodeJSON(e.References)
	} else {
		m.References = ""
	}
	m.Status = e.Status
}

func encodeJSON(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func decodeReferences(raw string) []pos.PaymentReference {
	if raw == "" {
		return nil
	}
	var references []pos.PaymentReference
	if err := json.Unmarshal([]byte(raw), &references); err != nil {
		return nil
	}
	return references
}

func decodeBalances(raw string) []pos.OpeningBalance {
	if raw == "" {
		return nil
	}
	var balances []pos.OpeningBalance
	if err := json.Unmarshal([]byte(raw), &balances); err != nil {
		return nil
	}
	return balances
}
