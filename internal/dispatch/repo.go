package dispatch

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a dispatch order repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.DispatchOrder) error {
	db := r.db.WithContext(ctx)
	if order.OrderNumber == 0 {
		var next int64
		if err := db.Model(&models.DispatchOrder{}).
			Select("COALESCE(MAX(order_number), 0) + 1").
			Scan(&next).Error; err != nil {
			return err
		}
		order.OrderNumber = next
	}
	return db.Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DispatchOrder, error) {
	return r.find(r.db.WithContext(ctx), id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.DispatchOrder, error) {
	db := r.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.find(db, id)
}

// List pages orders newest first, keyed on (created_at, id).
func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.DispatchOrder{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filters.SupplierID)
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.DispatchOrder
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	rows, next := pagination.Trim(rows, limit, func(row models.DispatchOrder) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})
	list := &OrderList{Orders: make([]OrderSummary, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		list.Orders = append(list.Orders, OrderSummary{
			ID:                    row.ID,
			OrderNumber:           row.OrderNumber,
			Status:                row.Status,
			SupplierID:            row.SupplierID,
			LogisticsCompanyID:    row.LogisticsCompanyID,
			DispatchDate:          row.DispatchDate,
			TotalBoxes:            row.TotalBoxes,
			IsTotalBoxesConfirmed: row.IsTotalBoxesConfirmed,
			ConfirmedAt:           row.ConfirmedAt,
			CreatedAt:             row.CreatedAt,
		})
	}
	return list, nil
}

func (r *repository) find(db *gorm.DB, id uuid.UUID) (*models.DispatchOrder, error) {
	var order models.DispatchOrder
	err := db.
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Preload("Returns", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("returned_at ASC").Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrder(ctx context.Context, order *models.DispatchOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(order).Error
}

func (r *repository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.DispatchOrderItem) error {
	db := r.db.WithContext(ctx)
	keep := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.ID != uuid.Nil {
			keep = append(keep, item.ID)
		}
	}
	stale := db.Where("dispatch_order_id = ?", orderID)
	if len(keep) > 0 {
		stale = stale.Where("id NOT IN ?", keep)
	}
	if err := stale.Delete(&models.DispatchOrderItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].DispatchOrderID = orderID
		if err := db.Save(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) InsertReturns(ctx context.Context, returns []models.DispatchOrderReturn) error {
	if len(returns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&returns).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("dispatch_order_id = ?", id).Delete(&models.DispatchOrderReturn{}).Error; err != nil {
		return err
	}
	if err := db.Where("dispatch_order_id = ?", id).Delete(&models.DispatchOrderItem{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&models.DispatchOrder{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
