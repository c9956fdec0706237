package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/importops-backend/pkg/enums"
)

// BalanceSource tells callers where a reported balance came from.
type BalanceSource string

const (
	BalanceSourceLedger BalanceSource = "ledger"
	BalanceSourceStored BalanceSource = "stored"
)

// BalanceResult is the outstanding balance of a party.
type BalanceResult struct {
	EntityID    uuid.UUID         `json:"entityId"`
	EntityModel enums.EntityModel `json:"entityModel"`
	Currency    string            `json:"currency"`
	Balance     decimal.Decimal   `json:"balance"`
	HasData     bool              `json:"hasData"`
	Source      BalanceSource     `json:"source"`
	EntryCount  int               `json:"entryCount"`
}

// Statement is the chronological ledger of a party with running balances.
type Statement struct {
	EntityID       uuid.UUID         `json:"entityId"`
	EntityModel    enums.EntityModel `json:"entityModel"`
	PartyName      string            `json:"partyName"`
	Currency       string            `json:"currency"`
	Lines          []StatementLine   `json:"lines"`
	ClosingBalance decimal.Decimal   `json:"closingBalance"`
	HasData        bool              `json:"hasData"`
}

// RecordEntryInput is a manually recorded charge or adjustment.
type RecordEntryInput struct {
	EntityID        uuid.UUID
	EntityModel     enums.EntityModel
	TransactionType enums.LedgerTransactionType
	Debit           decimal.Decimal
	Credit          decimal.Decimal
	Date            time.Time
	Notes           *string
	ActorUserID     uuid.UUID
	ActorRole       string
}

// Violation is one rejected field of a ledger request.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
