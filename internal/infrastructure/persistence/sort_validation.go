package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ActivitySortFields contains allowed sort fields for activity entries
var ActivitySortFields = map[string]bool{
	"id":          true,
	"occurred_at": true,
	"action":      true,
	"user_id":     true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":         true,
	"name":       true,
	"mobile":     true,
	"territory":  true,
	"route":      true,
	"updated_at": true,
}

// InvoiceSortFields contains allowed sort fields for sales invoices
var InvoiceSortFields = map[string]bool{
	"id":           true,
	"posting_date": true,
	"customer":     true,
	"status":       true,
	"grand_total":  true,
	"updated_at":   true,
}
