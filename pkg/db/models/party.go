package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Supplier is master data for a goods supplier. Balance is a cached value and
// only consulted when the ledger has no entries for the supplier.
type Supplier struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Currency  string          `gorm:"column:currency;not null;default:'USD'"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(14,4);not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// LogisticsCompany is master data for a freight forwarder.
type LogisticsCompany struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Currency  string          `gorm:"column:currency;not null;default:'USD'"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(14,4);not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
