package parties

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/enums"
)

// ErrNotFound is returned when no party matches the lookup.
var ErrNotFound = errors.New("party not found")

// Party is the common view of a supplier or logistics company.
type Party struct {
	ID            uuid.UUID         `json:"id"`
	Model         enums.EntityModel `json:"entityModel"`
	Name          string            `json:"name"`
	Currency      string            `json:"currency"`
	StoredBalance decimal.Decimal   `json:"storedBalance"`
}

// Repository reads supplier and logistics company master data.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, model enums.EntityModel, id uuid.UUID) (*Party, error)
	UpdateBalance(ctx context.Context, model enums.EntityModel, id uuid.UUID, balance decimal.Decimal) error
	Lock(ctx context.Context, model enums.EntityModel, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context, model enums.EntityModel, id uuid.UUID) (*Party, error) {
	switch model {
	case enums.EntityModelSupplier:
		var row models.Supplier
		if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
			return nil, notFound(err)
		}
		return &Party{ID: row.ID, Model: model, Name: row.Name, Currency: row.Currency, StoredBalance: row.Balance}, nil
	case enums.EntityModelLogisticsCompany:
		var row models.LogisticsCompany
		if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
			return nil, notFound(err)
		}
		return &Party{ID: row.ID, Model: model, Name: row.Name, Currency: row.Currency, StoredBalance: row.Balance}, nil
	default:
		return nil, fmt.Errorf("unsupported entity model %q", model)
	}
}

func (r *repository) UpdateBalance(ctx context.Context, model enums.EntityModel, id uuid.UUID, balance decimal.Decimal) error {
	var target any
	switch model {
	case enums.EntityModelSupplier:
		target = &models.Supplier{}
	case enums.EntityModelLogisticsCompany:
		target = &models.LogisticsCompany{}
	default:
		return fmt.Errorf("unsupported entity model %q", model)
	}
	res := r.db.WithContext(ctx).Model(target).Where("id = ?", id).Update("balance", balance)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Lock takes a row lock on the party for the rest of the transaction so ledger
// appends for one party run one at a time.
func (r *repository) Lock(ctx context.Context, model enums.EntityModel, id uuid.UUID) error {
	var target any
	switch model {
	case enums.EntityModelSupplier:
		target = &models.Supplier{}
	case enums.EntityModelLogisticsCompany:
		target = &models.LogisticsCompany{}
	default:
		return fmt.Errorf("unsupported entity model %q", model)
	}
	db := r.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := db.Select("id").Where("id = ?", id).First(target).Error; err != nil {
		return notFound(err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
