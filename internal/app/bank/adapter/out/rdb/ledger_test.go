package rdb

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/usecase"
	"github.com/JoeShih716/go-mem-bank/pkg/database"
)

func newTestClient(t *testing.T) *database.Client {
	t.Helper()
	client, err := database.NewClient(database.Config{
		Driver:       database.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "bank.db"),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	assert.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	assert.NoError(t, Migrate(context.Background(), client))
	return client
}

func TestLedgerRecordAndHistory(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(newTestClient(t), nil)

	msg, err := ledger.RecordTransaction(ctx, domain.TransactionKindDeposit, 50)
	assert.NoError(t, err)
	assert.Equal(t, "Transaction recorded: deposit 50", msg)
	_, err = ledger.RecordTransaction(ctx, domain.TransactionKindWithdraw, -40)
	assert.NoError(t, err)

	history, err := ledger.GetHistory(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(history))
	assert.Equal(t, domain.TransactionKindDeposit, history[0].Kind())
	assert.Equal(t, 50.0, history[0].Amount())
	assert.Equal(t, domain.TransactionKindWithdraw, history[1].Kind())
	assert.Equal(t, -40.0, history[1].Amount())
	assert.False(t, history[1].CreatedAt().Before(history[0].CreatedAt()))
}

func TestLedgerSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	first := NewLedger(client, nil)
	second := NewLedger(client, nil)
	assert.NotEqual(t, first.SessionID(), second.SessionID())

	_, err := first.RecordTransaction(ctx, domain.TransactionKindDeposit, 1)
	assert.NoError(t, err)
	_, err = second.RecordTransaction(ctx, domain.TransactionKindDeposit, 2)
	assert.NoError(t, err)
	_, err = second.RecordTransaction(ctx, domain.TransactionKindDeposit, 3)
	assert.NoError(t, err)

	h1, err := first.GetHistory(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(h1))
	h2, err := second.GetHistory(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(h2))
}

func TestLedgerRejectsInvalidTransaction(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(newTestClient(t), nil)

	_, err := ledger.RecordTransaction(ctx, "", 1)
	assert.IsError(t, err, domain.ErrInvalidTransactionKind)
	_, err = ledger.RecordTransaction(ctx, domain.TransactionKindDeposit, math.Inf(1))
	assert.IsError(t, err, domain.ErrInvalidTransactionAmount)

	history, err := ledger.GetHistory(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(history))
}

func TestLedgerPreservesTransactionIdentity(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	ledger := NewLedger(client, nil)
	_, err := ledger.RecordTransaction(ctx, domain.TransactionKindDeposit, 12.5)
	assert.NoError(t, err)

	var row sqlTransaction
	assert.NoError(t, client.DB().First(&row).Error)

	history, err := ledger.GetHistory(ctx)
	assert.NoError(t, err)
	id := history[0].ID()
	assert.Equal(t, id[:], row.RefID)
	assert.Equal(t, history[0].CreatedAt().UnixNano(), row.RecordedAt)
}

func TestLedgerDrivesAccount(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(newTestClient(t), nil)
	account := usecase.NewAccount(ledger)

	_, err := account.Deposit(ctx, 50)
	assert.NoError(t, err)
	_, err = account.Withdraw(ctx, 40)
	assert.NoError(t, err)

	history, err := ledger.GetHistory(ctx)
	assert.NoError(t, err)
	total := 0.0
	for _, tran := range history {
		total += tran.Amount()
	}
	assert.Equal(t, account.Balance(), total)
	assert.Equal(t, 10.0, total)
}

func TestLedgerFailsAfterClose(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	ledger := NewLedger(client, nil)
	assert.NoError(t, client.Close())

	_, err := ledger.RecordTransaction(ctx, domain.TransactionKindDeposit, 1)
	assert.Error(t, err)
}
