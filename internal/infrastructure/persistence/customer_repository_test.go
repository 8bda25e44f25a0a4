package persistence

import (
	"context"
	"testing"

	"github.com/erp/pos-gateway/internal/domain/pos"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCustomer(t *testing.T, repo *GormCustomerRepository, c pos.Customer) {
	t.Helper()
	require.NoError(t, repo.Save(context.Background(), &c))
}

func TestGormCustomerRepository_LookupOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	seedCustomer(t, repo, pos.Customer{ID: "CUST-001", Name: "Ravi Stores", Mobile: "9900011122"})

	byID, err := repo.FindByID(ctx, "CUST-001")
	require.NoError(t, err)
	assert.Equal(t, "Ravi Stores", byID.Name)

	byMobile, err := repo.FindByMobile(ctx, "9900011122")
	require.NoError(t, err)
	assert.Equal(t, "CUST-001", byMobile.ID)

	byName, err := repo.FindByName(ctx, "Ravi Stores")
	require.NoError(t, err)
	assert.Equal(t, "CUST-001", byName.ID)

	_, err = repo.FindByMobile(ctx, "")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByID(ctx, "CUST-404")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormCustomerRepository_RouteWinsOverTerritory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	seedCustomer(t, repo, pos.Customer{ID: "CUST-001", Name: "On Route", Route: "Route A", Territory: "North"})
	seedCustomer(t, repo, pos.Customer{ID: "CUST-002", Name: "Off Route", Route: "Route B", Territory: "North"})
	seedCustomer(t, repo, pos.Customer{ID: "CUST-003", Name: "No Route", Territory: "North"})

	customers, total, err := repo.FindDelta(ctx, pos.CustomerFilter{
		Route:     "Route A",
		Territory: "North",
		Limit:     50,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "CUST-001", customers[0].ID)

	// Without a route the territory filter applies.
	customers, total, err = repo.FindDelta(ctx, pos.CustomerFilter{Territory: "North", Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, customers, 3)
}

func TestGormCustomerRepository_HasRouteAttribute(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	has, err := repo.HasRouteAttribute(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	seedCustomer(t, repo, pos.Customer{ID: "CUST-001", Name: "No Route", Territory: "North"})
	has, err = repo.HasRouteAttribute(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	seedCustomer(t, repo, pos.Customer{ID: "CUST-002", Name: "Routed", Route: "Route A"})
	has, err = repo.HasRouteAttribute(ctx)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestGormCustomerRepository_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	seedCustomer(t, repo, pos.Customer{ID: "CUST-001", Name: "Ravi Stores", Mobile: "9900011122"})
	seedCustomer(t, repo, pos.Customer{ID: "CUST-002", Name: "Anand Traders", Mobile: "8800022233"})

	byName, total, err := repo.FindDelta(ctx, pos.CustomerFilter{Search: "Ravi", Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "CUST-001", byName[0].ID)

	byMobile, total, err := repo.FindDelta(ctx, pos.CustomerFilter{Search: "88000", Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "CUST-002", byMobile[0].ID)
}
