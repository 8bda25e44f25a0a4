package models

import (
	"time"

	"github.com/erp/pos-gateway/internal/domain/activity"
)

// ActivityEntryModel is one cashier activity log row.
type ActivityEntryModel struct {
	ID         string    `gorm:"type:varchar(140);primaryKey"`
	UserID     string    `gorm:"type:varchar(140);not null;index"`
	Action     string    `gorm:"type:varchar(50);not null;index"`
	Subject    string    `gorm:"type:varchar(200)"`
	Company    string    `gorm:"type:varchar(140);index"`
	Profile    string    `gorm:"type:varchar(140);index"`
	Warehouse  string    `gorm:"type:varchar(140)"`
	Territory  string    `gorm:"type:varchar(140)"`
	Route      string    `gorm:"type:varchar(140)"`
	OccurredAt time.Time `gorm:"not null;index"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (ActivityEntryModel) TableName() string {
	return "pos_activity_entries"
}

// ToDomain converts the persistence model to a domain Entry.
func (m *ActivityEntryModel) ToDomain() activity.Entry {
	return activity.Entry{
		ID:         m.ID,
		UserID:     m.UserID,
		Action:     m.Action,
		Subject:    m.Subject,
		Company:    m.Company,
		Profile:    m.Profile,
		Warehouse:  m.Warehouse,
		Territory:  m.Territory,
		Route:      m.Route,
		OccurredAt: m.OccurredAt,
	}
}

// FromDomain populates the persistence model from a domain Entry.
func (m *ActivityEntryModel) FromDomain(e *activity.Entry) {
	m.ID = e.ID
	m.UserID = e.UserID
	m.Action = e.Action
	m.Subject = e.Subject
	m.Company = e.Company
	m.Profile = e.Profile
	m.Warehouse = e.Warehouse
	m.Territory = e.Territory
	m.Route = e.Route
	m.OccurredAt = e.OccurredAt
}
