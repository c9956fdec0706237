package dispatch

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/importops-backend/internal/payments"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	"github.com/angelmondragon/importops-backend/pkg/types"
)

// Actor is the operator performing a dispatch order action.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// HeaderPatch carries optional edits to order-level fields. Nil fields are
// left untouched.
type HeaderPatch struct {
	LogisticsCompanyID *uuid.UUID       `json:"logisticsCompanyId,omitempty"`
	DispatchDate       *time.Time       `json:"dispatchDate,omitempty"`
	ExchangeRate       *decimal.Decimal `json:"exchangeRate,omitempty"`
	Percentage         *decimal.Decimal `json:"percentage,omitempty"`
	TotalDiscount      *decimal.Decimal `json:"totalDiscount,omitempty"`
	TotalBoxes         *int             `json:"totalBoxes,omitempty"`
	Notes              *string          `json:"notes,omitempty"`
}

// ItemEdit overrides fields of an existing line item.
type ItemEdit struct {
	ID                 uuid.UUID        `json:"id"`
	ProductName        *string          `json:"productName,omitempty"`
	ProductCode        *string          `json:"productCode,omitempty"`
	Quantity           *int             `json:"quantity,omitempty"`
	CostPrice          *decimal.Decimal `json:"costPrice,omitempty"`
	PrimaryColors      *[]string        `json:"primaryColors,omitempty"`
	Sizes              *[]string        `json:"sizes,omitempty"`
	Packets            *types.Packets   `json:"packets,omitempty"`
	UseVariantTracking *bool            `json:"useVariantTracking,omitempty"`
}

// NewItem is a line item added by an operator.
type NewItem struct {
	ProductName        string          `json:"productName"`
	ProductCode        string          `json:"productCode"`
	Quantity           int             `json:"quantity"`
	CostPrice          decimal.Decimal `json:"costPrice"`
	PrimaryColors      []string        `json:"primaryColors,omitempty"`
	Sizes              []string        `json:"sizes,omitempty"`
	Packets            types.Packets   `json:"packets,omitempty"`
	UseVariantTracking bool            `json:"useVariantTracking"`
}

// ItemChanges groups the item-level edits shared by drafts and confirmation.
type ItemChanges struct {
	Edits          []ItemEdit  `json:"edits,omitempty"`
	RemovedItemIDs []uuid.UUID `json:"removedItemIds,omitempty"`
	NewItems       []NewItem   `json:"newItems,omitempty"`
}

// ConfirmationState is the operator input to the confirm transition. Verified
// items and the boxes confirmation are explicit human approvals.
type ConfirmationState struct {
	Header          HeaderPatch `json:"header"`
	Items           ItemChanges `json:"items"`
	VerifiedItemIDs []uuid.UUID `json:"verifiedItemIds"`
	BoxesConfirmed  bool        `json:"boxesConfirmed"`
	BoxNumbers      string      `json:"boxNumbers"`
}

// DraftInput edits a pending or pending-approval order.
type DraftInput struct {
	OrderID        uuid.UUID
	Actor          Actor
	SupplierID     *uuid.UUID
	Header         HeaderPatch
	Items          ItemChanges
	BoxesConfirmed *bool
}

// TransitionInput drives submit, revert, cancel and delete.
type TransitionInput struct {
	OrderID uuid.UUID
	Actor   Actor
}

// ConfirmInput confirms an order and optionally pays the supplier.
type ConfirmInput struct {
	OrderID     uuid.UUID
	Actor       Actor
	State       ConfirmationState
	CashPayment decimal.Decimal
	BankPayment decimal.Decimal
	PaymentDate *time.Time
	Notes       string
}

// ReturnInput appends a return submission.
type ReturnInput struct {
	OrderID    uuid.UUID
	Actor      Actor
	Lines      []ReturnLine
	ReturnedAt *time.Time
}

// Violation is one failed rule.
type Violation struct {
	Rule    string         `json:"rule"`
	Field   string         `json:"field,omitempty"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ValidationResult lists every failed rule of the confirmation gate.
type ValidationResult struct {
	Valid  bool        `json:"valid"`
	Errors []Violation `json:"errors"`
}

// ReturnView is a return record as exposed to callers.
type ReturnView struct {
	ID                uuid.UUID  `json:"id"`
	LineItemID        uuid.UUID  `json:"lineItemId"`
	ItemIndex         int        `json:"itemIndex"`
	Quantity          int        `json:"quantity"`
	Reason            string     `json:"reason,omitempty"`
	ReturnedAt        time.Time  `json:"returnedAt"`
	ReturnedBy        *uuid.UUID `json:"returnedBy,omitempty"`
	AfterConfirmation bool       `json:"afterConfirmation"`
}

// OrderDetail is the stored order plus its computed view.
type OrderDetail struct {
	ID                    uuid.UUID                 `json:"id"`
	OrderNumber           int64                     `json:"orderNumber"`
	Status                enums.DispatchOrderStatus `json:"status"`
	SupplierID            uuid.UUID                 `json:"supplierId"`
	LogisticsCompanyID    *uuid.UUID                `json:"logisticsCompanyId,omitempty"`
	DispatchDate          *time.Time                `json:"dispatchDate,omitempty"`
	ExchangeRate          decimal.Decimal           `json:"exchangeRate"`
	Percentage            decimal.Decimal           `json:"percentage"`
	TotalDiscount         decimal.Decimal           `json:"totalDiscount"`
	TotalBoxes            int                       `json:"totalBoxes"`
	IsTotalBoxesConfirmed bool                      `json:"isTotalBoxesConfirmed"`
	Boxes                 []types.Box               `json:"boxes,omitempty"`
	ConfirmedQuantities   types.ConfirmedQuantities `json:"confirmedQuantities,omitempty"`
	PaymentDetails        types.PaymentDetails      `json:"paymentDetails"`
	PaymentSnapshot       *types.PaymentSnapshot    `json:"paymentSnapshot,omitempty"`
	Notes                 *string                   `json:"notes,omitempty"`
	SubmittedAt           *time.Time                `json:"submittedAt,omitempty"`
	ConfirmedAt           *time.Time                `json:"confirmedAt,omitempty"`
	ConfirmedBy           *uuid.UUID                `json:"confirmedBy,omitempty"`
	Returns               []ReturnView              `json:"returnedItems"`
	View                  OrderView                 `json:"view"`
	CreatedAt             time.Time                 `json:"createdAt"`
	UpdatedAt             time.Time                 `json:"updatedAt"`
}

// ConfirmResult is the confirmed order plus the outcome of the supplier
// payment made alongside it.
type ConfirmResult struct {
	Order        *OrderDetail                 `json:"order"`
	Payment      *payments.DistributionResult `json:"payment,omitempty"`
	PaymentError string                       `json:"paymentError,omitempty"`
}

// ListFilters narrows the order listing. Nil fields do not filter.
type ListFilters struct {
	Status     *enums.DispatchOrderStatus
	SupplierID *uuid.UUID
}

// OrderSummary is the list projection of an order.
type OrderSummary struct {
	ID                    uuid.UUID                 `json:"id"`
	OrderNumber           int64                     `json:"orderNumber"`
	Status                enums.DispatchOrderStatus `json:"status"`
	SupplierID            uuid.UUID                 `json:"supplierId"`
	LogisticsCompanyID    *uuid.UUID                `json:"logisticsCompanyId,omitempty"`
	DispatchDate          *time.Time                `json:"dispatchDate,omitempty"`
	TotalBoxes            int                       `json:"totalBoxes"`
	IsTotalBoxesConfirmed bool                      `json:"isTotalBoxesConfirmed"`
	ConfirmedAt           *time.Time                `json:"confirmedAt,omitempty"`
	CreatedAt             time.Time                 `json:"createdAt"`
}

// OrderList is one page of order summaries.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"nextCursor,omitempty"`
}
