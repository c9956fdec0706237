package dispatch

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/importops-backend/internal/payments"
	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/outbox"
	"github.com/angelmondragon/importops-backend/pkg/pagination"
)

// Repository persists dispatch orders, their items and their returns.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.DispatchOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DispatchOrder, error)
	// FindByIDForUpdate locks the order row on databases that support it.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.DispatchOrder, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	UpdateOrder(ctx context.Context, order *models.DispatchOrder) error
	ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.DispatchOrderItem) error
	InsertReturns(ctx context.Context, returns []models.DispatchOrderReturn) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// LedgerWriter appends supplier ledger entries within the caller's transaction.
type LedgerWriter interface {
	AppendTx(ctx context.Context, tx *gorm.DB, entry *models.LedgerEntry) (decimal.Decimal, error)
}

// PaymentDistributor pays a party in ordered cash and bank sub-submissions.
type PaymentDistributor interface {
	Distribute(ctx context.Context, instruction payments.Instruction) (*payments.DistributionResult, error)
}
