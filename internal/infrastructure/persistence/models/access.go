package models

import (
	"encoding/json"
	"time"

	"github.com/erp/pos-gateway/internal/domain/access"
)

// AccessPolicyModel is the persistence model for the single access policy
// row. ID is fixed to 1; Version increments on every save so cache layers
// can detect changes.
// Boolean columns carry no schema defaults: GORM omits zero values on
// Create, and a column default of true would flip a freshly saved
// api_enabled=false back to open.
type AccessPolicyModel struct {
	ID                    uint    `gorm:"primaryKey"`
	Version               int64   `gorm:"not null"`
	APIEnabled            bool    `gorm:"not null"`
	AllowDiscovery        bool    `gorm:"not null"`
	AllowedRoles          string  `gorm:"type:text"`
	AllowedUsers          string  `gorm:"type:text"`
	LegacyRoleCSV         string  `gorm:"type:text"`
	DefaultSyncPageSize   int     `gorm:"not null;default:0"`
	BootstrapInvoiceDays  int     `gorm:"not null;default:0"`
	RecentPaidInvoiceDays int     `gorm:"not null;default:0"`
	EnableInventoryAlerts bool    `gorm:"not null"`
	AlertDefaultLimit     int     `gorm:"not null;default:0"`
	AlertCriticalRatio    float64 `gorm:"not null;default:0"`
	AlertLowRatio         float64 `gorm:"not null;default:0"`
	IdempotencyRetentionS int64   `gorm:"not null;default:0"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TableName returns the table name for GORM
func (AccessPolicyModel) TableName() string {
	return "access_policies"
}

// ToDomain converts the persistence model to a domain AccessPolicy.
func (m *AccessPolicyModel) ToDomain() *access.AccessPolicy {
	policy := &access.AccessPolicy{
		Version:               m.Version,
		APIEnabled:            m.APIEnabled,
		AllowDiscovery:        m.AllowDiscovery,
		AllowedRoles:          decodeStringSlice(m.AllowedRoles),
		AllowedUsers:          decodeStringSlice(m.AllowedUsers),
		LegacyRoleCSV:         m.LegacyRoleCSV,
		DefaultSyncPageSize:   m.DefaultSyncPageSize,
		BootstrapInvoiceDays:  m.BootstrapInvoiceDays,
		RecentPaidInvoiceDays: m.RecentPaidInvoiceDays,
		EnableInventoryAlerts: m.EnableInventoryAlerts,
		AlertDefaultLimit:     m.AlertDefaultLimit,
		AlertCriticalRatio:    m.AlertCriticalRatio,
		AlertLowRatio:         m.AlertLowRatio,
		IdempotencyRetention:  time.Duration(m.IdempotencyRetentionS) * time.Second,
		UpdatedAt:             m.UpdatedAt,
	}
	return policy
}

// FromDomain populates the persistence model from a domain AccessPolicy.
func (m *AccessPolicyModel) FromDomain(p *access.AccessPolicy) {
	m.Version = p.Version
	m.APIEnabled = p.APIEnabled
	m.AllowDiscovery = p.AllowDiscovery
	m.AllowedRoles = encodeStringSlice(p.AllowedRoles)
	m.AllowedUsers = encodeStringSlice(p.AllowedUsers)
	m.LegacyRoleCSV = p.LegacyRoleCSV
	m.DefaultSyncPageSize = p.DefaultSyncPageSize
	m.BootstrapInvoiceDays = p.BootstrapInvoiceDays
	m.RecentPaidInvoiceDays = p.RecentPaidInvoiceDays
	m.EnableInventoryAlerts = p.EnableInventoryAlerts
	m.AlertDefaultLimit = p.AlertDefaultLimit
	m.AlertCriticalRatio = p.AlertCriticalRatio
	m.AlertLowRatio = p.AlertLowRatio
	m.IdempotencyRetentionS = int64(p.IdempotencyRetention / time.Second)
}

// PermissionGrantModel is one materialized permission grant. The
// (doc_type, role, permission_level, owner_only) tuple is unique.
type PermissionGrantModel struct {
	ID              uint   `gorm:"primaryKey;autoIncrement"`
	DocType         string `gorm:"type:varchar(100);not null;uniqueIndex:idx_grant_key,priority:1"`
	Role            string `gorm:"type:varchar(100);not null;uniqueIndex:idx_grant_key,priority:2"`
	PermissionLevel uint   `gorm:"not null;default:0;uniqueIndex:idx_grant_key,priority:3"`
	OwnerOnly       bool   `gorm:"not null;default:false;uniqueIndex:idx_grant_key,priority:4"`
	Rights          string `gorm:"type:text;not null"`
	Managed         bool   `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (PermissionGrantModel) TableName() string {
	return "permission_grants"
}

// ToDomain converts the persistence model to a domain PermissionGrant.
// Unknown right names stored by an external tool are dropped rather than
// failing the whole read.
func (m *PermissionGrantModel) ToDomain() access.PermissionGrant {
	rights := access.RightSet{}
	for _, name := range decodeStringSlice(m.Rights) {
		if right, err := access.ParseRight(name); err == nil {
			rights.Add(right)
		}
	}
	return access.PermissionGrant{
		Key: access.GrantKey{
			DocumentType:    m.DocType,
			Role:            m.Role,
			PermissionLevel: m.PermissionLevel,
			OwnerOnly:       m.OwnerOnly,
		},
		Rights:    rights,
		Managed:   m.Managed,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain PermissionGrant.
func (m *PermissionGrantModel) FromDomain(g access.PermissionGrant) {
	m.DocType = g.Key.DocumentType
	m.Role = g.Key.Role
	m.PermissionLevel = g.Key.PermissionLevel
	m.OwnerOnly = g.Key.OwnerOnly
	m.Rights = encodeStringSlice(g.Rights.Strings())
	m.Managed = g.Managed
}

// RoleModel is one role known to the identity subsystem.
type RoleModel struct {
	Name      string `gorm:"type:varchar(100);primaryKey"`
	Disabled  bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (RoleModel) TableName() string {
	return "roles"
}

// UserRoleModel binds a user to a role.
type UserRoleModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"type:varchar(140);not null;uniqueIndex:idx_user_role,priority:1"`
	Role      string `gorm:"type:varchar(100);not null;uniqueIndex:idx_user_role,priority:2"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (UserRoleModel) TableName() string {
	return "user_roles"
}

func encodeStringSlice(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeStringSlice(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	if len(values) == 0 {
		return nil
	}
	return values
}
