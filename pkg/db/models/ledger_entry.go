package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/importops-backend/pkg/enums"
)

// LedgerEntry is one append-only movement on a supplier or logistics ledger.
// Sequence numbers a party's entries in insertion order, starting at 1.
type LedgerEntry struct {
	ID              uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	EntityID        uuid.UUID                   `gorm:"column:entity_id;type:uuid;not null;uniqueIndex:ux_ledger_entries_party_sequence,priority:2" json:"entityId"`
	EntityModel     enums.EntityModel           `gorm:"column:entity_model;type:text;not null;uniqueIndex:ux_ledger_entries_party_sequence,priority:1" json:"entityModel"`
	Sequence        int64                       `gorm:"column:sequence;not null;uniqueIndex:ux_ledger_entries_party_sequence,priority:3" json:"sequence"`
	TransactionType enums.LedgerTransactionType `gorm:"column:transaction_type;type:text;not null" json:"transactionType"`
	Debit           decimal.Decimal             `gorm:"column:debit;type:numeric(14,4);not null;default:0" json:"debit"`
	Credit          decimal.Decimal             `gorm:"column:credit;type:numeric(14,4);not null;default:0" json:"credit"`
	PaymentMethod   *enums.PaymentMethod        `gorm:"column:payment_method;type:text" json:"paymentMethod,omitempty"`
	Date            time.Time                   `gorm:"column:date;not null" json:"date"`
	ReferenceID     *uuid.UUID                  `gorm:"column:reference_id;type:uuid" json:"referenceId,omitempty"`
	ReferenceModel  *string                     `gorm:"column:reference_model" json:"referenceModel,omitempty"`
	Notes           *string                     `gorm:"column:notes" json:"notes,omitempty"`
	CreatedBy       *uuid.UUID                  `gorm:"column:created_by;type:uuid" json:"createdBy,omitempty"`
	CreatedAt       time.Time                   `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
