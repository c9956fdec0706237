package outbox

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/enums"
)

const (
	defaultDLQLimit = 50
	maxDLQLimit     = 200
)

// DLQFilter narrows a dead-letter listing. Zero values mean no filter.
type DLQFilter struct {
	EventType   *enums.OutboxEventType
	AggregateID *uuid.UUID
	Limit       int
}

type DLQRepository struct {
	db *gorm.DB
}

func NewDLQRepository(db *gorm.DB) *DLQRepository {
	return &DLQRepository{db: db}
}

func (r *DLQRepository) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if entry.ErrorMessage != nil {
		msg := truncate(*entry.ErrorMessage)
		entry.ErrorMessage = &msg
	}
	return tx.Create(&entry).Error
}

// List returns the most recent failures first.
func (r *DLQRepository) List(ctx context.Context, filter DLQFilter) ([]models.OutboxDLQ, error) {
	limit := filter.Limit
	switch {
	case limit <= 0:
		limit = defaultDLQLimit
	case limit > maxDLQLimit:
		limit = maxDLQLimit
	}

	query := r.db.WithContext(ctx)
	if filter.EventType != nil {
		query = query.Where("event_type = ?", *filter.EventType)
	}
	if filter.AggregateID != nil {
		query = query.Where("aggregate_id = ?", *filter.AggregateID)
	}

	var rows []models.OutboxDLQ
	err := query.
		Order("failed_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// FindForUpdateTx loads one dead letter, locking it on Postgres.
func (r *DLQRepository) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*models.OutboxDLQ, error) {
	var row models.OutboxDLQ
	if err := lockForUpdate(tx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *DLQRepository) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Where("id = ?", id).Delete(&models.OutboxDLQ{}).Error
}
