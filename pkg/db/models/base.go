package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (o *DispatchOrder) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

func (i *DispatchOrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

func (r *DispatchOrderReturn) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

func (e *LedgerEntry) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

func (e *OutboxEvent) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

func (d *OutboxDLQ) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

// All lists every persisted model; used by the sqlite auto-migration path.
func All() []any {
	return []any{
		&Supplier{},
		&LogisticsCompany{},
		&DispatchOrder{},
		&DispatchOrderItem{},
		&DispatchOrderReturn{},
		&LedgerEntry{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
