package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/importops-backend/internal/ledger"
	"github.com/angelmondragon/importops-backend/pkg/config"
	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
	"github.com/angelmondragon/importops-backend/pkg/metrics"
	"github.com/angelmondragon/importops-backend/pkg/outbox"
)

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

// stubLedger keeps entries in memory and folds them with the shared calculator.
type stubLedger struct {
	entries   []models.LedgerEntry
	calls     []enums.PaymentMethod
	appendErr func(entry *models.LedgerEntry) error
}

func (s *stubLedger) BalanceTx(ctx context.Context, tx *gorm.DB, entityModel enums.EntityModel, entityID uuid.UUID) (*ledger.BalanceResult, error) {
	balance, ok := ledger.ComputeBalance(s.entries, entityModel)
	return &ledger.BalanceResult{EntityID: entityID, EntityModel: entityModel, Balance: balance, HasData: ok}, nil
}

func (s *stubLedger) AppendTx(ctx context.Context, tx *gorm.DB, entry *models.LedgerEntry) (decimal.Decimal, error) {
	if entry.PaymentMethod != nil {
		s.calls = append(s.calls, *entry.PaymentMethod)
	}
	if s.appendErr != nil {
		if err := s.appendErr(entry); err != nil {
			return decimal.Zero, err
		}
	}
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().Add(time.Duration(len(s.entries)) * time.Millisecond)
	s.entries = append(s.entries, *entry)
	balance, _ := ledger.ComputeBalance(s.entries, entry.EntityModel)
	return balance, nil
}

type stubLocks struct {
	held     map[string]string
	setNXOK  bool
	extended int
	lost     bool
}

func (s *stubLocks) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if !s.setNXOK {
		return false, nil
	}
	if s.held == nil {
		s.held = map[string]string{}
	}
	if _, ok := s.held[key]; ok {
		return false, nil
	}
	s.held[key] = value.(string)
	return true, nil
}

func (s *stubLocks) CompareAndDelete(ctx context.Context, key, value string) (bool, error) {
	if s.held[key] != value {
		return false, nil
	}
	delete(s.held, key)
	return true, nil
}

func (s *stubLocks) CompareAndExpire(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.extended++
	return !s.lost && s.held[key] == value, nil
}

func supplierWithBalance(amount int64) *stubLedger {
	return &stubLedger{entries: []models.LedgerEntry{{
		EntityModel:     enums.EntityModelSupplier,
		TransactionType: enums.LedgerTransactionPurchase,
		Debit:           decimal.NewFromInt(amount),
		CreatedAt:       time.Now().Add(-time.Hour),
	}}}
}

func newTestService(t *testing.T, l Ledger, locks *stubLocks, cfg config.PaymentsConfig, m *metrics.DispatchMetrics) (Service, *stubOutbox) {
	t.Helper()
	ob := &stubOutbox{}
	params := ServiceParams{Ledger: l, Tx: stubTx{}, Outbox: ob, Config: cfg, Metrics: m}
	if locks != nil {
		params.Locks = locks
	}
	svc, err := NewService(params)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, ob
}

func TestDistributeCashBeforeBankObservesFreshBalance(t *testing.T) {
	l := supplierWithBalance(40)
	svc, ob := newTestService(t, l, nil, config.PaymentsConfig{}, nil)

	result, err := svc.Distribute(context.Background(), Instruction{
		EntityID:    uuid.New(),
		EntityModel: enums.EntityModelSupplier,
		CashAmount:  decimal.NewFromInt(30),
		BankAmount:  decimal.NewFromInt(20),
	})
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(l.calls) != 2 || l.calls[0] != enums.PaymentMethodCash || l.calls[1] != enums.PaymentMethodBank {
		t.Fatalf("expected cash then bank append attempts, got %v", l.calls)
	}
	if result.Outcome != OutcomePartial {
		t.Fatalf("expected partial outcome, got %s", result.Outcome)
	}
	cash, bank := result.Submissions[0], result.Submissions[1]
	if cash.Status != SubmissionCommitted || !cash.BalanceAfter.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected cash submission %+v", cash)
	}
	if bank.Status != SubmissionFailed || !bank.BalanceBefore.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("bank must see the balance left by cash, got %+v", bank)
	}
	if bank.Error == nil || bank.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict on bank, got %+v", bank.Error)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventPartyPaymentRecorded {
		t.Fatalf("expected one payment event, got %d", len(ob.events))
	}
	if !pkgerrors.IsCode(result.Err(), pkgerrors.CodeStateConflict) {
		t.Fatalf("expected first error to be state conflict, got %v", result.Err())
	}
}

func TestDistributeCashFailureSkipsBank(t *testing.T) {
	l := supplierWithBalance(100)
	l.appendErr = func(entry *models.LedgerEntry) error {
		if *entry.PaymentMethod == enums.PaymentMethodCash {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("connection reset"), "append ledger entry")
		}
		return nil
	}
	svc, ob := newTestService(t, l, nil, config.PaymentsConfig{}, nil)

	result, err := svc.Distribute(context.Background(), Instruction{
		EntityID:    uuid.New(),
		EntityModel: enums.EntityModelSupplier,
		CashAmount:  decimal.NewFromInt(30),
		BankAmount:  decimal.NewFromInt(20),
	})
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(l.calls) != 1 || l.calls[0] != enums.PaymentMethodCash {
		t.Fatalf("bank must not be attempted after cash failure, got %v", l.calls)
	}
	if result.Outcome != OutcomeFailed {
		t.Fatalf("expected failed outcome, got %s", result.Outcome)
	}
	if result.Submissions[1].Status != SubmissionSkipped {
		t.Fatalf("expected bank to be skipped, got %s", result.Submissions[1].Status)
	}
	if len(ob.events) != 0 {
		t.Fatalf("no events expected, got %d", len(ob.events))
	}
	if !pkgerrors.IsCode(result.Err(), pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error to surface, got %v", result.Err())
	}
}

func TestDistributeSucceedsWithinBalance(t *testing.T) {
	l := supplierWithBalance(100)
	reg := prometheus.NewRegistry()
	m := metrics.NewDispatchMetrics(reg)
	svc, _ := newTestService(t, l, nil, config.PaymentsConfig{}, m)

	result, err := svc.Distribute(context.Background(), Instruction{
		EntityID:    uuid.New(),
		EntityModel: enums.EntityModelSupplier,
		CashAmount:  decimal.NewFromInt(30),
		BankAmount:  decimal.NewFromInt(20),
		Notes:       "April settlement",
	})
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if result.Outcome != OutcomeSucceeded {
		t.Fatalf("expected success, got %s", result.Outcome)
	}
	if !result.Submissions[1].BalanceAfter.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected 50 left, got %s", result.Submissions[1].BalanceAfter)
	}
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	series := 0
	for _, mf := range mfs {
		if mf.GetName() == "party_payment_submissions_total" {
			series = len(mf.GetMetric())
		}
	}
	if series != 2 {
		t.Fatalf("expected cash and bank payment series, got %d", series)
	}
}

func TestDistributeAllowsOverpaymentWhenConfigured(t *testing.T) {
	l := supplierWithBalance(10)
	svc, _ := newTestService(t, l, nil, config.PaymentsConfig{AllowOverpayment: true}, nil)

	result, err := svc.Distribute(context.Background(), Instruction{
		EntityID:    uuid.New(),
		EntityModel: enums.EntityModelSupplier,
		BankAmount:  decimal.NewFromInt(25),
	})
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if result.Outcome != OutcomeSucceeded || len(result.Submissions) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !result.Submissions[0].BalanceAfter.Equal(decimal.NewFromInt(-15)) {
		t.Fatalf("expected party to owe 15, got %s", result.Submissions[0].BalanceAfter)
	}
}

func TestDistributeRejectsInvalidInstruction(t *testing.T) {
	svc, _ := newTestService(t, supplierWithBalance(10), nil, config.PaymentsConfig{}, nil)

	_, err := svc.Distribute(context.Background(), Instruction{
		EntityModel: enums.EntityModel("customer"),
		CashAmount:  decimal.NewFromInt(-1),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDistributeHonoursPartyLock(t *testing.T) {
	locks := &stubLocks{setNXOK: false}
	l := supplierWithBalance(100)
	svc, _ := newTestService(t, l, locks, config.PaymentsConfig{}, nil)

	_, err := svc.Distribute(context.Background(), Instruction{
		EntityID:    uuid.New(),
		EntityModel: enums.EntityModelSupplier,
		CashAmount:  decimal.NewFromInt(5),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict while lock is held, got %v", err)
	}
	if len(l.calls) != 0 {
		t.Fatalf("no ledger writes expected")
	}

	locks.setNXOK = true
	if _, err := svc.Distribute(context.Background(), Instruction{
		EntityID:    uuid.New(),
		EntityModel: enums.EntityModelSupplier,
		CashAmount:  decimal.NewFromInt(5),
	}); err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(locks.held) != 0 {
		t.Fatalf("lock must be released, still held: %v", locks.held)
	}
}

func TestDistributeExtendsLockBetweenLegs(t *testing.T) {
	locks := &stubLocks{setNXOK: true}
	l := supplierWithBalance(100)
	svc, _ := newTestService(t, l, locks, config.PaymentsConfig{}, nil)

	result, err := svc.Distribute(context.Background(), Instruction{
		EntityID:    uuid.New(),
		EntityModel: enums.EntityModelSupplier,
		CashAmount:  decimal.NewFromInt(30),
		BankAmount:  decimal.NewFromInt(20),
	})
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if result.Outcome != OutcomeSucceeded {
		t.Fatalf("expected success, got %s", result.Outcome)
	}
	if locks.extended != 1 {
		t.Fatalf("expected one extension before the bank leg, got %d", locks.extended)
	}
}

func TestDistributeStopsWhenLockIsLost(t *testing.T) {
	locks := &stubLocks{setNXOK: true, lost: true}
	l := supplierWithBalance(100)
	svc, _ := newTestService(t, l, locks, config.PaymentsConfig{}, nil)

	result, err := svc.Distribute(context.Background(), Instruction{
		EntityID:    uuid.New(),
		EntityModel: enums.EntityModelSupplier,
		CashAmount:  decimal.NewFromInt(30),
		BankAmount:  decimal.NewFromInt(20),
	})
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if result.Outcome != OutcomePartial {
		t.Fatalf("expected partial outcome, got %s", result.Outcome)
	}
	if len(l.calls) != 1 || result.Submissions[1].Status != SubmissionSkipped {
		t.Fatalf("bank leg must be skipped once the lock is gone: calls=%v subs=%+v", l.calls, result.Submissions)
	}
}
