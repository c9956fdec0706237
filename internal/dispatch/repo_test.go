package dispatch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	"github.com/angelmondragon/importops-backend/pkg/pagination"
)

func openRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	return conn
}

func seedOrders(t *testing.T, repo Repository, supplierID uuid.UUID, statuses ...enums.DispatchOrderStatus) []models.DispatchOrder {
	t.Helper()
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	orders := make([]models.DispatchOrder, 0, len(statuses))
	for i, status := range statuses {
		order := models.DispatchOrder{
			ID:         uuid.New(),
			Status:     status,
			SupplierID: supplierID,
			TotalBoxes: i + 1,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(context.Background(), &order))
		orders = append(orders, order)
	}
	return orders
}

func TestRepositoryCreateAssignsOrderNumbers(t *testing.T) {
	repo := NewRepository(openRepoDB(t))
	orders := seedOrders(t, repo, uuid.New(), enums.DispatchOrderStatusPending, enums.DispatchOrderStatusPending)

	assert.Equal(t, int64(1), orders[0].OrderNumber)
	assert.Equal(t, int64(2), orders[1].OrderNumber)
}

func TestRepositoryListPagesNewestFirst(t *testing.T) {
	repo := NewRepository(openRepoDB(t))
	supplierID := uuid.New()
	orders := seedOrders(t, repo, supplierID,
		enums.DispatchOrderStatusPending,
		enums.DispatchOrderStatusConfirmed,
		enums.DispatchOrderStatusPendingApproval,
	)

	first, err := repo.List(context.Background(), pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	assert.Equal(t, orders[2].ID, first.Orders[0].ID)
	assert.Equal(t, orders[1].ID, first.Orders[1].ID)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.List(context.Background(), pagination.Params{Limit: 2, Cursor: first.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Equal(t, orders[0].ID, second.Orders[0].ID)
	assert.Empty(t, second.NextCursor)
}

func TestRepositoryListFilters(t *testing.T) {
	repo := NewRepository(openRepoDB(t))
	supplierID := uuid.New()
	seedOrders(t, repo, supplierID, enums.DispatchOrderStatusPending, enums.DispatchOrderStatusConfirmed)
	seedOrders(t, repo, uuid.New(), enums.DispatchOrderStatusConfirmed)

	confirmed := enums.DispatchOrderStatusConfirmed
	list, err := repo.List(context.Background(), pagination.Params{}, ListFilters{Status: &confirmed})
	require.NoError(t, err)
	assert.Len(t, list.Orders, 2)

	list, err = repo.List(context.Background(), pagination.Params{}, ListFilters{Status: &confirmed, SupplierID: &supplierID})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, supplierID, list.Orders[0].SupplierID)
	assert.Equal(t, enums.DispatchOrderStatusConfirmed, list.Orders[0].Status)
}

func TestRepositoryListRejectsMalformedCursor(t *testing.T) {
	repo := NewRepository(openRepoDB(t))
	_, err := repo.List(context.Background(), pagination.Params{Cursor: "%%%"}, ListFilters{})
	require.Error(t, err)
}
