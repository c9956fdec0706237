package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/importops-backend/pkg/enums"
)

// Instruction is one payment to a party that may carry both a cash and a bank
// amount. Amounts are in the party's currency.
type Instruction struct {
	EntityID       uuid.UUID
	EntityModel    enums.EntityModel
	CashAmount     decimal.Decimal
	BankAmount     decimal.Decimal
	Date           time.Time
	Notes          string
	ReferenceID    *uuid.UUID
	ReferenceModel string
	ActorUserID    uuid.UUID
	ActorRole      string
}

// Outcome summarises a distribution.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomePartial   Outcome = "partial"
	OutcomeFailed    Outcome = "failed"
)

// SubmissionStatus is the result of one sub-submission.
type SubmissionStatus string

const (
	SubmissionCommitted SubmissionStatus = "committed"
	SubmissionFailed    SubmissionStatus = "failed"
	SubmissionSkipped   SubmissionStatus = "skipped"
)

// SubmissionError is the client-facing view of a failed sub-submission.
type SubmissionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// SubmissionResult describes one cash or bank sub-submission.
type SubmissionResult struct {
	Method        enums.PaymentMethod `json:"method"`
	Amount        decimal.Decimal     `json:"amount"`
	Status        SubmissionStatus    `json:"status"`
	LedgerEntryID *uuid.UUID          `json:"ledgerEntryId,omitempty"`
	BalanceBefore *decimal.Decimal    `json:"balanceBefore,omitempty"`
	BalanceAfter  *decimal.Decimal    `json:"balanceAfter,omitempty"`
	Error         *SubmissionError    `json:"error,omitempty"`

	err error
}

// DistributionResult lists the sub-submissions in the order they ran.
type DistributionResult struct {
	EntityID    uuid.UUID          `json:"entityId"`
	EntityModel enums.EntityModel  `json:"entityModel"`
	Outcome     Outcome            `json:"outcome"`
	Submissions []SubmissionResult `json:"submissions"`
}

// Err returns the first sub-submission failure, if any.
func (r *DistributionResult) Err() error {
	if r == nil {
		return nil
	}
	for _, s := range r.Submissions {
		if s.err != nil {
			return s.err
		}
	}
	return nil
}

// Violation is one rejected field of a payment instruction.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
