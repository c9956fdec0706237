package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/importops-backend/internal/ledger"
	"github.com/angelmondragon/importops-backend/pkg/config"
	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
	"github.com/angelmondragon/importops-backend/pkg/logger"
	"github.com/angelmondragon/importops-backend/pkg/metrics"
	"github.com/angelmondragon/importops-backend/pkg/outbox"
	"github.com/angelmondragon/importops-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/importops-backend/pkg/redis"
)

const referenceModelPayment = "party_payment"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Ledger is the balance read and append surface used by payments.
type Ledger interface {
	BalanceTx(ctx context.Context, tx *gorm.DB, entityModel enums.EntityModel, entityID uuid.UUID) (*ledger.BalanceResult, error)
	AppendTx(ctx context.Context, tx *gorm.DB, entry *models.LedgerEntry) (decimal.Decimal, error)
}

// Service splits a payment instruction into ordered sub-submissions.
type Service interface {
	Distribute(ctx context.Context, instruction Instruction) (*DistributionResult, error)
}

// ServiceParams wires the payment service.
type ServiceParams struct {
	Ledger  Ledger
	Tx      txRunner
	Outbox  outboxPublisher
	Locks   redis.LockStore
	Config  config.PaymentsConfig
	Metrics *metrics.DispatchMetrics
	Logger  *logger.Logger
}

type service struct {
	ledger  Ledger
	tx      txRunner
	outbox  outboxPublisher
	locks   redis.LockStore
	cfg     config.PaymentsConfig
	metrics *metrics.DispatchMetrics
	logg    *logger.Logger
}

type step struct {
	method enums.PaymentMethod
	amount decimal.Decimal
}

// NewService builds the payment distribution service. Locks may be nil, in
// which case distributions for the same party are not serialised.
func NewService(params ServiceParams) (Service, error) {
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		ledger:  params.Ledger,
		tx:      params.Tx,
		outbox:  params.Outbox,
		locks:   params.Locks,
		cfg:     params.Config,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

// Distribute runs the cash sub-submission and then the bank one. Each runs in
// its own transaction against a freshly computed balance, so the bank payment
// sees the effect of the cash payment. A failed cash payment skips the bank
// payment.
func (s *service) Distribute(ctx context.Context, instruction Instruction) (*DistributionResult, error) {
	if violations := validateInstruction(instruction); len(violations) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment").WithViolations(violations)
	}
	if instruction.Date.IsZero() {
		instruction.Date = time.Now().UTC()
	}

	var lock *redis.Lock
	if s.locks != nil {
		var err error
		lock, err = redis.NewLock(s.locks, redis.PartyLockKey(instruction.EntityModel.String(), instruction.EntityID.String()), s.cfg.LockTTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build party lock")
		}
		acquired, err := lock.Acquire(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire party lock")
		}
		if !acquired {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "another payment for this party is in progress")
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil && s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "release party lock failed")
			}
		}()
	}

	amounts := map[enums.PaymentMethod]decimal.Decimal{
		enums.PaymentMethodCash: instruction.CashAmount,
		enums.PaymentMethodBank: instruction.BankAmount,
	}
	steps := make([]step, 0, len(enums.SettlementOrder))
	for _, method := range enums.SettlementOrder {
		if amount := amounts[method]; amount.IsPositive() {
			steps = append(steps, step{method: method, amount: amount})
		}
	}

	result := &DistributionResult{
		EntityID:    instruction.EntityID,
		EntityModel: instruction.EntityModel,
		Submissions: make([]SubmissionResult, 0, len(steps)),
	}
	failed := false
	committed := 0
	for i, st := range steps {
		if !failed && i > 0 && lock != nil {
			if err := lock.Extend(ctx); err != nil {
				// Without the party lock a concurrent payment could interleave.
				failed = true
				if s.logg != nil {
					s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "party lock lost between payment legs")
				}
			}
		}
		if failed {
			result.Submissions = append(result.Submissions, SubmissionResult{Method: st.method, Amount: st.amount, Status: SubmissionSkipped})
			s.metrics.IncPayment(instruction.EntityModel.String(), st.method.String(), string(SubmissionSkipped))
			continue
		}
		sub := s.submit(ctx, instruction, st)
		result.Submissions = append(result.Submissions, sub)
		s.metrics.IncPayment(instruction.EntityModel.String(), st.method.String(), string(sub.Status))
		if sub.Status == SubmissionCommitted {
			committed++
			s.metrics.AddPaidAmount(instruction.EntityModel.String(), st.method.String(), st.amount.InexactFloat64())
			continue
		}
		failed = true
	}

	switch {
	case !failed:
		result.Outcome = OutcomeSucceeded
	case committed > 0:
		result.Outcome = OutcomePartial
	default:
		result.Outcome = OutcomeFailed
	}
	return result, nil
}

func (s *service) submit(ctx context.Context, instruction Instruction, st step) SubmissionResult {
	sub := SubmissionResult{Method: st.method, Amount: st.amount}
	logCtx := ctx
	if s.logg != nil {
		logCtx = s.logg.WithParty(ctx, instruction.EntityModel.String(), instruction.EntityID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{"payment_method": st.method, "amount": st.amount.String()})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		current, err := s.ledger.BalanceTx(ctx, tx, instruction.EntityModel, instruction.EntityID)
		if err != nil {
			return err
		}
		before := current.Balance
		sub.BalanceBefore = &before
		if st.amount.GreaterThan(before) && !s.cfg.AllowOverpayment {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "%s payment exceeds the outstanding balance", st.method).
				WithDetails(map[string]any{
					"method":      st.method,
					"amount":      st.amount.String(),
					"outstanding": before.String(),
				})
		}

		method := st.method
		entry := &models.LedgerEntry{
			EntityID:        instruction.EntityID,
			EntityModel:     instruction.EntityModel,
			TransactionType: enums.LedgerTransactionPayment,
			Credit:          st.amount,
			PaymentMethod:   &method,
			Date:            instruction.Date,
			ReferenceID:     instruction.ReferenceID,
		}
		refModel := instruction.ReferenceModel
		if refModel == "" {
			refModel = referenceModelPayment
		}
		entry.ReferenceModel = &refModel
		if instruction.Notes != "" {
			notes := instruction.Notes
			entry.Notes = &notes
		}
		if instruction.ActorUserID != uuid.Nil {
			actor := instruction.ActorUserID
			entry.CreatedBy = &actor
		}

		after, err := s.ledger.AppendTx(ctx, tx, entry)
		if err != nil {
			return err
		}
		sub.LedgerEntryID = &entry.ID
		sub.BalanceAfter = &after

		var actor *outbox.ActorRef
		if instruction.ActorUserID != uuid.Nil {
			actor = &outbox.ActorRef{UserID: instruction.ActorUserID, Role: instruction.ActorRole}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPartyPaymentRecorded,
			AggregateType: enums.AggregateLedgerEntry,
			AggregateID:   entry.ID,
			Actor:         actor,
			Data: payloads.PartyPaymentRecordedEvent{
				LedgerEntryID: entry.ID,
				EntityID:      instruction.EntityID,
				EntityModel:   instruction.EntityModel,
				Method:        st.method,
				Amount:        st.amount,
				BalanceAfter:  after,
				Date:          instruction.Date,
			},
		})
	})
	if err != nil {
		sub.Status = SubmissionFailed
		sub.LedgerEntryID = nil
		sub.BalanceAfter = nil
		sub.err = err
		sub.Error = toSubmissionError(err)
		if s.logg != nil {
			s.logg.Error(logCtx, "payment sub-submission failed", err)
		}
		return sub
	}
	sub.Status = SubmissionCommitted
	if s.logg != nil {
		s.logg.Info(logCtx, "payment sub-submission committed")
	}
	return sub
}

func toSubmissionError(err error) *SubmissionError {
	typed := pkgerrors.As(err)
	if typed == nil {
		return &SubmissionError{Code: string(pkgerrors.CodeInternal), Message: pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage}
	}
	out := &SubmissionError{Code: string(typed.Code()), Message: typed.Message()}
	if pkgerrors.MetadataFor(typed.Code()).DetailsAllowed {
		out.Details = typed.Details()
	}
	return out
}

func validateInstruction(instruction Instruction) []Violation {
	var violations []Violation
	if instruction.EntityID == uuid.Nil {
		violations = append(violations, Violation{Field: "entityId", Message: "entity id required"})
	}
	if !instruction.EntityModel.IsValid() {
		violations = append(violations, Violation{Field: "entityModel", Message: "unknown entity model"})
	}
	if instruction.CashAmount.IsNegative() {
		violations = append(violations, Violation{Field: "cashAmount", Message: "must not be negative"})
	}
	if instruction.BankAmount.IsNegative() {
		violations = append(violations, Violation{Field: "bankAmount", Message: "must not be negative"})
	}
	if !instruction.CashAmount.IsPositive() && !instruction.BankAmount.IsPositive() {
		violations = append(violations, Violation{Field: "amount", Message: "cash or bank amount required"})
	}
	return violations
}
