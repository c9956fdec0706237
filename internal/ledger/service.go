package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/importops-backend/internal/parties"
	"github.com/angelmondragon/importops-backend/pkg/db"
	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
	"github.com/angelmondragon/importops-backend/pkg/logger"
	"github.com/angelmondragon/importops-backend/pkg/outbox"
	"github.com/angelmondragon/importops-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes party balances, statements and ledger writes.
type Service interface {
	Balance(ctx context.Context, entityModel enums.EntityModel, entityID uuid.UUID) (*BalanceResult, error)
	BalanceTx(ctx context.Context, tx *gorm.DB, entityModel enums.EntityModel, entityID uuid.UUID) (*BalanceResult, error)
	Entries(ctx context.Context, entityModel enums.EntityModel, entityID uuid.UUID) ([]models.LedgerEntry, error)
	Statement(ctx context.Context, entityModel enums.EntityModel, entityID uuid.UUID) (*Statement, error)
	WriteStatementXLSX(ctx context.Context, entityModel enums.EntityModel, entityID uuid.UUID, w io.Writer) error
	RecordEntry(ctx context.Context, input RecordEntryInput) (*models.LedgerEntry, error)
	// AppendTx appends entry inside tx and refreshes the stored party balance.
	// It returns the balance after the entry.
	AppendTx(ctx context.Context, tx *gorm.DB, entry *models.LedgerEntry) (decimal.Decimal, error)
}

type service struct {
	repo    Repository
	parties parties.Repository
	tx      txRunner
	outbox  outboxPublisher
	logg    *logger.Logger
}

// NewService wires the ledger service.
func NewService(repo Repository, partyRepo parties.Repository, tx txRunner, outbox outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if partyRepo == nil {
		return nil, fmt.Errorf("party repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, parties: partyRepo, tx: tx, outbox: outbox, logg: logg}, nil
}

func (s *service) Balance(ctx context.Context, entityModel enums.EntityModel, entityID uuid.UUID) (*BalanceResult, error) {
	return s.BalanceTx(ctx, nil, entityModel, entityID)
}

func (s *service) BalanceTx(ctx context.Context, tx *gorm.DB, entityModel enums.EntityModel, entityID uuid.UUID) (*BalanceResult, error) {
	party, entries, err := s.load(ctx, tx, entityModel, entityID)
	if err != nil {
		return nil, err
	}
	result := &BalanceResult{
		EntityID:    entityID,
		EntityModel: entityModel,
		Currency:    party.Currency,
		EntryCount:  len(entries),
	}
	balance, ok := ComputeBalance(entries, entityModel)
	if ok {
		result.Balance = balance
		result.HasData = true
		result.Source = BalanceSourceLedger
		return result, nil
	}
	result.Balance = party.StoredBalance
	result.Source = BalanceSourceStored
	return result, nil
}

func (s *service) Entries(ctx context.Context, entityModel enums.EntityModel, entityID uuid.UUID) ([]models.LedgerEntry, error) {
	_, entries, err := s.load(ctx, nil, entityModel, entityID)
	return entries, err
}

func (s *service) Statement(ctx context.Context, entityModel enums.EntityModel, entityID uuid.UUID) (*Statement, error) {
	party, entries, err := s.load(ctx, nil, entityModel, entityID)
	if err != nil {
		return nil, err
	}
	lines := RunningBalances(entries, entityModel)
	statement := &Statement{
		EntityID:    entityID,
		EntityModel: entityModel,
		PartyName:   party.Name,
		Currency:    party.Currency,
		Lines:       lines,
		HasData:     len(lines) > 0,
	}
	if statement.HasData {
		statement.ClosingBalance = lines[len(lines)-1].Balance
	} else {
		statement.ClosingBalance = party.StoredBalance
	}
	return statement, nil
}

func (s *service) WriteStatementXLSX(ctx context.Context, entityModel enums.EntityModel, entityID uuid.UUID, w io.Writer) error {
	statement, err := s.Statement(ctx, entityModel, entityID)
	if err != nil {
		return err
	}
	if err := writeStatementXLSX(statement, w); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render statement")
	}
	return nil
}

func (s *service) RecordEntry(ctx context.Context, input RecordEntryInput) (*models.LedgerEntry, error) {
	if violations := validateRecordEntry(input); len(violations) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ledger entry").WithViolations(violations)
	}
	if input.Date.IsZero() {
		input.Date = time.Now().UTC()
	}

	entry := &models.LedgerEntry{
		EntityID:        input.EntityID,
		EntityModel:     input.EntityModel,
		TransactionType: input.TransactionType,
		Debit:           input.Debit,
		Credit:          input.Credit,
		Date:            input.Date,
		Notes:           input.Notes,
	}
	if input.ActorUserID != uuid.Nil {
		actor := input.ActorUserID
		entry.CreatedBy = &actor
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.AppendTx(ctx, tx, entry); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLedgerEntryRecorded,
			AggregateType: enums.AggregateLedgerEntry,
			AggregateID:   entry.ID,
			Actor:         actorRef(input.ActorUserID, input.ActorRole),
			Data: payloads.LedgerEntryRecordedEvent{
				LedgerEntryID:   entry.ID,
				EntityID:        entry.EntityID,
				EntityModel:     entry.EntityModel,
				TransactionType: entry.TransactionType,
				Debit:           entry.Debit,
				Credit:          entry.Credit,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) AppendTx(ctx context.Context, tx *gorm.DB, entry *models.LedgerEntry) (decimal.Decimal, error) {
	if entry == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "ledger entry required")
	}
	if !entry.EntityModel.Accepts(entry.TransactionType) {
		return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeValidation, "%s entries do not apply to %s ledgers", entry.TransactionType, entry.EntityModel)
	}
	if entry.Debit.IsNegative() || entry.Credit.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "debit and credit must not be negative")
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}

	repo := s.repo.WithTx(tx)
	if err := s.parties.WithTx(tx).Lock(ctx, entry.EntityModel, entry.EntityID); err != nil {
		if errors.Is(err, parties.ErrNotFound) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "party not found")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock party")
	}
	seq, err := repo.NextSequence(ctx, entry.EntityID, entry.EntityModel)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "next ledger sequence")
	}
	entry.Sequence = seq
	if err := repo.AppendEntry(ctx, entry); err != nil {
		if db.IsUniqueViolation(err, "") {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "ledger entry already posted for this reference")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
	}
	entries, err := repo.ListEntries(ctx, entry.EntityID, entry.EntityModel)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	balance, _ := ComputeBalance(entries, entry.EntityModel)
	if err := s.parties.WithTx(tx).UpdateBalance(ctx, entry.EntityModel, entry.EntityID, balance); err != nil {
		if errors.Is(err, parties.ErrNotFound) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "party not found")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh party balance")
	}

	if s.logg != nil {
		logCtx := s.logg.WithParty(ctx, entry.EntityModel.String(), entry.EntityID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"ledger_entry_id":  entry.ID.String(),
			"transaction_type": entry.TransactionType,
			"debit":            entry.Debit.String(),
			"credit":           entry.Credit.String(),
			"balance_after":    balance.String(),
		})
		s.logg.Info(logCtx, "ledger entry appended")
	}
	return balance, nil
}

func (s *service) load(ctx context.Context, tx *gorm.DB, entityModel enums.EntityModel, entityID uuid.UUID) (*parties.Party, []models.LedgerEntry, error) {
	if !entityModel.IsValid() {
		return nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid entity model %q", entityModel)
	}
	if entityID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "entity id required")
	}
	party, err := s.parties.WithTx(tx).Get(ctx, entityModel, entityID)
	if err != nil {
		if errors.Is(err, parties.ErrNotFound) {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "%s not found", entityModel)
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party")
	}
	entries, err := s.repo.WithTx(tx).ListEntries(ctx, entityID, entityModel)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	return party, entries, nil
}

func validateRecordEntry(input RecordEntryInput) []Violation {
	var violations []Violation
	if input.EntityID == uuid.Nil {
		violations = append(violations, Violation{Field: "entityId", Message: "entity id required"})
	}
	if !input.EntityModel.IsValid() {
		violations = append(violations, Violation{Field: "entityModel", Message: "unknown entity model"})
	}
	switch input.TransactionType {
	case enums.LedgerTransactionCharge, enums.LedgerTransactionAdjustment:
		if input.EntityModel.IsValid() && !input.EntityModel.Accepts(input.TransactionType) {
			violations = append(violations, Violation{Field: "transactionType", Message: fmt.Sprintf("%s entries do not apply to %s ledgers", input.TransactionType, input.EntityModel)})
		}
	default:
		violations = append(violations, Violation{Field: "transactionType", Message: "only charge and adjustment entries can be recorded manually"})
	}
	if input.Debit.IsNegative() {
		violations = append(violations, Violation{Field: "debit", Message: "must not be negative"})
	}
	if input.Credit.IsNegative() {
		violations = append(violations, Violation{Field: "credit", Message: "must not be negative"})
	}
	if input.Debit.IsZero() && input.Credit.IsZero() {
		violations = append(violations, Violation{Field: "amount", Message: "debit or credit required"})
	}
	if input.TransactionType == enums.LedgerTransactionCharge && input.Credit.IsPositive() {
		violations = append(violations, Violation{Field: "credit", Message: "charges are debits"})
	}
	return violations
}

func actorRef(userID uuid.UUID, role string) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: userID, Role: role}
}
