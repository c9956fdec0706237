package parties

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/importops-backend/pkg/enums"
)

func setupPartiesDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE suppliers (id TEXT PRIMARY KEY, name TEXT NOT NULL, currency TEXT NOT NULL DEFAULT 'USD', balance TEXT NOT NULL DEFAULT '0', created_at DATETIME, updated_at DATETIME)`,
		`CREATE TABLE logistics_companies (id TEXT PRIMARY KEY, name TEXT NOT NULL, currency TEXT NOT NULL DEFAULT 'USD', balance TEXT NOT NULL DEFAULT '0', created_at DATETIME, updated_at DATETIME)`,
	} {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func TestRepositoryGetAndUpdateBalance(t *testing.T) {
	conn := setupPartiesDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	supplierID := uuid.New()
	logisticsID := uuid.New()
	require.NoError(t, conn.Exec(`INSERT INTO suppliers (id, name, currency, balance) VALUES (?, ?, ?, ?)`, supplierID.String(), "Canton Textiles", "CNY", "120.5").Error)
	require.NoError(t, conn.Exec(`INSERT INTO logistics_companies (id, name, currency, balance) VALUES (?, ?, ?, ?)`, logisticsID.String(), "Blue Freight", "EUR", "0").Error)

	require.NoError(t, repo.Lock(ctx, enums.EntityModelSupplier, supplierID))

	supplier, err := repo.Get(ctx, enums.EntityModelSupplier, supplierID)
	require.NoError(t, err)
	assert.Equal(t, "Canton Textiles", supplier.Name)
	assert.True(t, supplier.StoredBalance.Equal(decimal.RequireFromString("120.5")))

	require.NoError(t, repo.UpdateBalance(ctx, enums.EntityModelLogisticsCompany, logisticsID, decimal.NewFromInt(75)))
	logistics, err := repo.Get(ctx, enums.EntityModelLogisticsCompany, logisticsID)
	require.NoError(t, err)
	assert.True(t, logistics.StoredBalance.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, enums.EntityModelLogisticsCompany, logistics.Model)
}

func TestRepositoryNotFound(t *testing.T) {
	conn := setupPartiesDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	_, err := repo.Get(ctx, enums.EntityModelSupplier, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.UpdateBalance(ctx, enums.EntityModelSupplier, uuid.New(), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Lock(ctx, enums.EntityModelLogisticsCompany, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Get(ctx, enums.EntityModel("customer"), uuid.New())
	assert.Error(t, err)
}
