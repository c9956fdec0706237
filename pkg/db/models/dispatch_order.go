package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/importops-backend/pkg/enums"
	"github.com/angelmondragon/importops-backend/pkg/types"
)

// DispatchOrder is one supplier shipment tracked through approval, confirmation,
// payment and returns.
type DispatchOrder struct {
	ID                    uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber           int64                     `gorm:"column:order_number;not null"`
	Status                enums.DispatchOrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	SupplierID            uuid.UUID                 `gorm:"column:supplier_id;type:uuid;not null"`
	LogisticsCompanyID    *uuid.UUID                `gorm:"column:logistics_company_id;type:uuid"`
	DispatchDate          *time.Time                `gorm:"column:dispatch_date"`
	ExchangeRate          decimal.Decimal           `gorm:"column:exchange_rate;type:numeric(18,6);not null;default:0"`
	Percentage            decimal.Decimal           `gorm:"column:percentage;type:numeric(9,4);not null;default:0"`
	TotalDiscount         decimal.Decimal           `gorm:"column:total_discount;type:numeric(14,4);not null;default:0"`
	TotalBoxes            int                       `gorm:"column:total_boxes;not null;default:0"`
	IsTotalBoxesConfirmed bool                      `gorm:"column:is_total_boxes_confirmed;not null;default:false"`
	Boxes                 []types.Box               `gorm:"column:boxes;type:jsonb;serializer:json"`
	ConfirmedQuantities   types.ConfirmedQuantities `gorm:"column:confirmed_quantities;type:jsonb;serializer:json"`
	PaymentDetails        types.PaymentDetails      `gorm:"column:payment_details;type:jsonb;serializer:json"`
	PaymentSnapshot       *types.PaymentSnapshot    `gorm:"column:payment_snapshot;type:jsonb;serializer:json"`
	Notes                 *string                   `gorm:"column:notes"`
	SubmittedAt           *time.Time                `gorm:"column:submitted_at"`
	SubmittedBy           *uuid.UUID                `gorm:"column:submitted_by;type:uuid"`
	ConfirmedAt           *time.Time                `gorm:"column:confirmed_at"`
	ConfirmedBy           *uuid.UUID                `gorm:"column:confirmed_by;type:uuid"`
	CancelledAt           *time.Time                `gorm:"column:cancelled_at"`
	Items                 []DispatchOrderItem       `gorm:"foreignKey:DispatchOrderID;constraint:OnDelete:CASCADE"`
	Returns               []DispatchOrderReturn     `gorm:"foreignKey:DispatchOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

// DispatchOrderItem is a line item. Its ID is stable for the order's lifetime;
// Position only orders items for display.
type DispatchOrderItem struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	DispatchOrderID    uuid.UUID       `gorm:"column:dispatch_order_id;type:uuid;not null"`
	Position           int             `gorm:"column:position;not null"`
	OriginalIndex      *int            `gorm:"column:original_index"`
	ProductName        string          `gorm:"column:product_name;not null"`
	ProductCode        string          `gorm:"column:product_code"`
	Quantity           int             `gorm:"column:quantity;not null"`
	CostPrice          decimal.Decimal `gorm:"column:cost_price;type:numeric(14,4);not null"`
	PrimaryColors      []string        `gorm:"column:primary_colors;type:jsonb;serializer:json"`
	Sizes              []string        `gorm:"column:sizes;type:jsonb;serializer:json"`
	Packets            types.Packets   `gorm:"column:packets;type:jsonb;serializer:json"`
	UseVariantTracking bool            `gorm:"column:use_variant_tracking;not null;default:false"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// DispatchOrderReturn is an immutable return event against one line item.
type DispatchOrderReturn struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	DispatchOrderID   uuid.UUID  `gorm:"column:dispatch_order_id;type:uuid;not null"`
	LineItemID        uuid.UUID  `gorm:"column:line_item_id;type:uuid;not null"`
	ItemIndex         int        `gorm:"column:item_index;not null"`
	Quantity          int        `gorm:"column:quantity;not null"`
	Reason            string     `gorm:"column:reason"`
	ReturnedAt        time.Time  `gorm:"column:returned_at;not null"`
	ReturnedBy        *uuid.UUID `gorm:"column:returned_by;type:uuid"`
	AfterConfirmation bool       `gorm:"column:after_confirmation;not null;default:false"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
}
