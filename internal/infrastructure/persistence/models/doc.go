// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - access.go: access policy, permission grants, roles and role bindings
// - pos.go: shifts, profiles, customers, invoices and payments
// - inventory.go: item master, prices, bins and stock alert rules
// - reference.go: companies, exchange rates and lookup tables
// - activity.go: cashier activity log
package models
