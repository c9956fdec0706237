package ledger

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/importops-backend/internal/parties"
	"github.com/angelmondragon/importops-backend/pkg/db"
	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
	"github.com/angelmondragon/importops-backend/pkg/outbox"
)

type ledgerFixture struct {
	conn        *gorm.DB
	svc         Service
	repo        Repository
	outbox      *outbox.Repository
	supplierID  uuid.UUID
	logisticsID uuid.UUID
}

func newLedgerFixture(t *testing.T) ledgerFixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))

	supplier := models.Supplier{ID: uuid.New(), Name: "Canton Textiles", Currency: "CNY", Balance: decimal.NewFromInt(250)}
	logistics := models.LogisticsCompany{ID: uuid.New(), Name: "Blue Freight", Currency: "USD"}
	require.NoError(t, conn.Create(&supplier).Error)
	require.NoError(t, conn.Create(&logistics).Error)

	repo := NewRepository(conn)
	outboxRepo := outbox.NewRepository(conn)
	svc, err := NewService(repo, parties.NewRepository(conn), db.NewFromConn(conn), outbox.NewService(outboxRepo, nil), nil)
	require.NoError(t, err)
	return ledgerFixture{
		conn:        conn,
		svc:         svc,
		repo:        repo,
		outbox:      outboxRepo,
		supplierID:  supplier.ID,
		logisticsID: logistics.ID,
	}
}

func (f ledgerFixture) append(t *testing.T, entry models.LedgerEntry) decimal.Decimal {
	t.Helper()
	var balance decimal.Decimal
	err := f.conn.Transaction(func(tx *gorm.DB) error {
		var err error
		balance, err = f.svc.AppendTx(context.Background(), tx, &entry)
		return err
	})
	require.NoError(t, err)
	return balance
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestBalanceFallsBackToStoredBalanceWithoutEntries(t *testing.T) {
	f := newLedgerFixture(t)

	result, err := f.svc.Balance(context.Background(), enums.EntityModelSupplier, f.supplierID)
	require.NoError(t, err)
	assert.False(t, result.HasData)
	assert.Equal(t, BalanceSourceStored, result.Source)
	assert.True(t, result.Balance.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "CNY", result.Currency)
}

func TestAppendTxRecomputesAndRefreshesStoredBalance(t *testing.T) {
	f := newLedgerFixture(t)
	cash := enums.PaymentMethodCash
	now := time.Now().UTC()

	f.append(t, models.LedgerEntry{EntityID: f.supplierID, EntityModel: enums.EntityModelSupplier, TransactionType: enums.LedgerTransactionPurchase, Debit: decimal.NewFromInt(100), Date: now})
	f.append(t, models.LedgerEntry{EntityID: f.supplierID, EntityModel: enums.EntityModelSupplier, TransactionType: enums.LedgerTransactionPayment, Credit: decimal.NewFromInt(40), PaymentMethod: &cash, Date: now})
	after := f.append(t, models.LedgerEntry{EntityID: f.supplierID, EntityModel: enums.EntityModelSupplier, TransactionType: enums.LedgerTransactionPurchase, Debit: decimal.NewFromInt(10), Date: now})
	assert.True(t, after.Equal(decimal.NewFromInt(70)), "got %s", after)

	result, err := f.svc.Balance(context.Background(), enums.EntityModelSupplier, f.supplierID)
	require.NoError(t, err)
	assert.True(t, result.HasData)
	assert.Equal(t, BalanceSourceLedger, result.Source)
	assert.Equal(t, 3, result.EntryCount)
	assert.True(t, result.Balance.Equal(decimal.NewFromInt(70)))

	var stored models.Supplier
	require.NoError(t, f.conn.First(&stored, "id = ?", f.supplierID).Error)
	assert.True(t, stored.Balance.Equal(decimal.NewFromInt(70)))
}

func TestAppendTxRejectsIrrelevantTransactionType(t *testing.T) {
	f := newLedgerFixture(t)
	entry := models.LedgerEntry{EntityID: f.supplierID, EntityModel: enums.EntityModelSupplier, TransactionType: enums.LedgerTransactionCharge, Debit: decimal.NewFromInt(5)}

	err := f.conn.Transaction(func(tx *gorm.DB) error {
		_, err := f.svc.AppendTx(context.Background(), tx, &entry)
		return err
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	entries, err := f.repo.ListEntries(context.Background(), f.supplierID, enums.EntityModelSupplier)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecordEntryWritesChargeAndOutboxEvent(t *testing.T) {
	f := newLedgerFixture(t)
	notes := "port handling"

	entry, err := f.svc.RecordEntry(context.Background(), RecordEntryInput{
		EntityID:        f.logisticsID,
		EntityModel:     enums.EntityModelLogisticsCompany,
		TransactionType: enums.LedgerTransactionCharge,
		Debit:           decimal.NewFromInt(80),
		Notes:           &notes,
		ActorUserID:     uuid.New(),
		ActorRole:       "admin",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	require.NotNil(t, entry.CreatedBy)

	result, err := f.svc.Balance(context.Background(), enums.EntityModelLogisticsCompany, f.logisticsID)
	require.NoError(t, err)
	assert.True(t, result.Balance.Equal(decimal.NewFromInt(80)))

	rows, err := f.outbox.FetchUnpublishedForPublish(f.conn, 10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.EventLedgerEntryRecorded, rows[0].EventType)
	assert.Equal(t, entry.ID, rows[0].AggregateID)
}

func TestRecordEntryReportsAllViolations(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.svc.RecordEntry(context.Background(), RecordEntryInput{
		EntityID:        f.supplierID,
		EntityModel:     enums.EntityModelSupplier,
		TransactionType: enums.LedgerTransactionCharge,
		Credit:          decimal.NewFromInt(-1),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	violations, ok := details["violations"].([]Violation)
	require.True(t, ok)
	fields := make([]string, 0, len(violations))
	for _, v := range violations {
		fields = append(fields, v.Field)
	}
	assert.Contains(t, fields, "transactionType")
	assert.Contains(t, fields, "credit")
}

func TestBalanceUnknownPartyIsNotFound(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.svc.Balance(context.Background(), enums.EntityModelSupplier, uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Balance(context.Background(), enums.EntityModel("customer"), f.supplierID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestStatementRunningBalanceAndXLSX(t *testing.T) {
	f := newLedgerFixture(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	f.append(t, models.LedgerEntry{EntityID: f.supplierID, EntityModel: enums.EntityModelSupplier, TransactionType: enums.LedgerTransactionPurchase, Debit: decimal.NewFromInt(500), Date: base})
	f.append(t, models.LedgerEntry{EntityID: f.supplierID, EntityModel: enums.EntityModelSupplier, TransactionType: enums.LedgerTransactionReturn, Credit: decimal.NewFromInt(50), Date: base.AddDate(0, 0, 1)})

	statement, err := f.svc.Statement(context.Background(), enums.EntityModelSupplier, f.supplierID)
	require.NoError(t, err)
	require.Len(t, statement.Lines, 2)
	assert.True(t, statement.Lines[0].Balance.Equal(decimal.NewFromInt(500)))
	assert.True(t, statement.ClosingBalance.Equal(decimal.NewFromInt(450)))
	assert.Equal(t, "Canton Textiles", statement.PartyName)

	var buf bytes.Buffer
	require.NoError(t, f.svc.WriteStatementXLSX(context.Background(), enums.EntityModelSupplier, f.supplierID, &buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()
	header, err := book.GetCellValue(statementSheet, "F3")
	require.NoError(t, err)
	assert.Equal(t, "Balance", header)
	last, err := book.GetCellValue(statementSheet, "F5")
	require.NoError(t, err)
	assert.Equal(t, "450", last)
	kind, err := book.GetCellValue(statementSheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "return", kind)
}

func TestAppendTxNumbersEntriesPerPartyInInsertionOrder(t *testing.T) {
	f := newLedgerFixture(t)
	stamp := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cash := enums.PaymentMethodCash

	f.append(t, models.LedgerEntry{EntityID: f.supplierID, EntityModel: enums.EntityModelSupplier, TransactionType: enums.LedgerTransactionPurchase, Debit: decimal.NewFromInt(100), Date: stamp, CreatedAt: stamp})
	f.append(t, models.LedgerEntry{EntityID: f.logisticsID, EntityModel: enums.EntityModelLogisticsCompany, TransactionType: enums.LedgerTransactionCharge, Debit: decimal.NewFromInt(9), Date: stamp, CreatedAt: stamp})
	f.append(t, models.LedgerEntry{EntityID: f.supplierID, EntityModel: enums.EntityModelSupplier, TransactionType: enums.LedgerTransactionPayment, Credit: decimal.NewFromInt(30), PaymentMethod: &cash, Date: stamp, CreatedAt: stamp})
	f.append(t, models.LedgerEntry{EntityID: f.supplierID, EntityModel: enums.EntityModelSupplier, TransactionType: enums.LedgerTransactionPurchase, Debit: decimal.NewFromInt(5), Date: stamp, CreatedAt: stamp})

	statement, err := f.svc.Statement(context.Background(), enums.EntityModelSupplier, f.supplierID)
	require.NoError(t, err)
	require.Len(t, statement.Lines, 3)
	for i, want := range []struct {
		seq     int64
		balance int64
	}{{1, 100}, {2, 70}, {3, 75}} {
		assert.Equal(t, want.seq, statement.Lines[i].Entry.Sequence)
		assert.True(t, statement.Lines[i].Balance.Equal(decimal.NewFromInt(want.balance)), "line %d: got %s", i, statement.Lines[i].Balance)
	}

	entries, err := f.repo.ListEntries(context.Background(), f.logisticsID, enums.EntityModelLogisticsCompany)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].Sequence)
}

func TestAppendTxUnknownPartyIsNotFound(t *testing.T) {
	f := newLedgerFixture(t)
	entry := models.LedgerEntry{EntityID: uuid.New(), EntityModel: enums.EntityModelSupplier, TransactionType: enums.LedgerTransactionPurchase, Debit: decimal.NewFromInt(1)}

	err := f.conn.Transaction(func(tx *gorm.DB) error {
		_, err := f.svc.AppendTx(context.Background(), tx, &entry)
		return err
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	var count int64
	require.NoError(t, f.conn.Model(&models.LedgerEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}
