package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/enums"
)

// Repository manages persistence for ledger entries. Entries are append-only.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListEntries(ctx context.Context, entityID uuid.UUID, entityModel enums.EntityModel) ([]models.LedgerEntry, error)
	AppendEntry(ctx context.Context, entry *models.LedgerEntry) error
	NextSequence(ctx context.Context, entityID uuid.UUID, entityModel enums.EntityModel) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListEntries(ctx context.Context, entityID uuid.UUID, entityModel enums.EntityModel) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("entity_id = ? AND entity_model = ?", entityID, entityModel).
		Order("created_at ASC").
		Order("sequence ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) AppendEntry(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) NextSequence(ctx context.Context, entityID uuid.UUID, entityModel enums.EntityModel) (int64, error) {
	var last int64
	if err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("entity_id = ? AND entity_model = ?", entityID, entityModel).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&last).Error; err != nil {
		return 0, err
	}
	return last + 1, nil
}
