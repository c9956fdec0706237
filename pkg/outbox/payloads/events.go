package payloads

import (
	"time"

	"github.com/angelmondragon/importops-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DispatchOrderStatusEvent covers submit, revert and cancel transitions.
type DispatchOrderStatusEvent struct {
	DispatchOrderID uuid.UUID                 `json:"dispatch_order_id"`
	OrderNumber     int64                     `json:"order_number"`
	SupplierID      uuid.UUID                 `json:"supplier_id"`
	From            enums.DispatchOrderStatus `json:"from"`
	To              enums.DispatchOrderStatus `json:"to"`
}

// DispatchOrderConfirmedEvent carries the financial snapshot frozen at confirmation.
type DispatchOrderConfirmedEvent struct {
	DispatchOrderID    uuid.UUID       `json:"dispatch_order_id"`
	OrderNumber        int64           `json:"order_number"`
	SupplierID         uuid.UUID       `json:"supplier_id"`
	LogisticsCompanyID *uuid.UUID      `json:"logistics_company_id,omitempty"`
	ExchangeRate       decimal.Decimal `json:"exchange_rate"`
	Percentage         decimal.Decimal `json:"percentage"`
	Discount           decimal.Decimal `json:"discount"`
	SupplierTotal      decimal.Decimal `json:"supplier_total"`
	CashPayment        decimal.Decimal `json:"cash_payment"`
	BankPayment        decimal.Decimal `json:"bank_payment"`
	ItemCount          int             `json:"item_count"`
	ConfirmedAt        time.Time       `json:"confirmed_at"`
}

// ReturnedLine is one line of a return submission.
type ReturnedLine struct {
	LineItemID uuid.UUID `json:"line_item_id"`
	ItemIndex  int       `json:"item_index"`
	Quantity   int       `json:"quantity"`
	Reason     string    `json:"reason,omitempty"`
}

// DispatchOrderReturnedEvent is emitted once per accepted return submission.
type DispatchOrderReturnedEvent struct {
	DispatchOrderID   uuid.UUID       `json:"dispatch_order_id"`
	SupplierID        uuid.UUID       `json:"supplier_id"`
	Lines             []ReturnedLine  `json:"lines"`
	AfterConfirmation bool            `json:"after_confirmation"`
	CreditAmount      decimal.Decimal `json:"credit_amount"`
}

// PartyPaymentRecordedEvent is emitted for each persisted payment sub-submission.
type PartyPaymentRecordedEvent struct {
	LedgerEntryID uuid.UUID           `json:"ledger_entry_id"`
	EntityID      uuid.UUID           `json:"entity_id"`
	EntityModel   enums.EntityModel   `json:"entity_model"`
	Method        enums.PaymentMethod `json:"method"`
	Amount        decimal.Decimal     `json:"amount"`
	BalanceAfter  decimal.Decimal     `json:"balance_after"`
	Date          time.Time           `json:"date"`
}

// LedgerEntryRecordedEvent is emitted for manually recorded charges and adjustments.
type LedgerEntryRecordedEvent struct {
	LedgerEntryID   uuid.UUID                   `json:"ledger_entry_id"`
	EntityID        uuid.UUID                   `json:"entity_id"`
	EntityModel     enums.EntityModel           `json:"entity_model"`
	TransactionType enums.LedgerTransactionType `json:"transaction_type"`
	Debit           decimal.Decimal             `json:"debit"`
	Credit          decimal.Decimal             `json:"credit"`
}
