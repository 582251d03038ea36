package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
)

type closingLedger struct {
	fakeLedger
	closed bool
}

func (c *closingLedger) Close() error {
	c.closed = true
	return nil
}

func newTestTeller(t *testing.T, opts ...TellerOption) (*Teller, *[]*closingLedger) {
	t.Helper()
	var created []*closingLedger
	factory := func(ctx context.Context) (Ledger, error) {
		l := &closingLedger{}
		created = append(created, l)
		return l, nil
	}
	return NewTeller(factory, opts...), &created
}

func TestTellerRequiresAccount(t *testing.T) {
	teller, _ := newTestTeller(t)
	ctx := context.Background()

	_, err := teller.Deposit(ctx, 10.0)
	assert.IsError(t, err, domain.ErrNoAccount)
	_, err = teller.Withdraw(ctx, 10.0)
	assert.IsError(t, err, domain.ErrNoAccount)
	_, err = teller.Balance()
	assert.IsError(t, err, domain.ErrNoAccount)
	_, err = teller.Owner()
	assert.IsError(t, err, domain.ErrNoAccount)
	_, err = teller.History(ctx)
	assert.IsError(t, err, domain.ErrNoAccount)
	_, err = teller.Statement(ctx)
	assert.IsError(t, err, domain.ErrNoAccount)
}

func TestTellerScenario(t *testing.T) {
	teller, _ := newTestTeller(t)
	ctx := context.Background()
	assert.NoError(t, teller.OpenAccount(ctx, "Alice"))

	owner, err := teller.Owner()
	assert.NoError(t, err)
	assert.Equal(t, "Alice", owner)
	balance, err := teller.Balance()
	assert.NoError(t, err)
	assert.Equal(t, 0.0, balance)

	_, err = teller.Deposit(ctx, 50.0)
	assert.NoError(t, err)
	balance, _ = teller.Balance()
	assert.Equal(t, 50.0, balance)

	_, err = teller.Withdraw(ctx, 40)
	assert.NoError(t, err)
	balance, _ = teller.Balance()
	assert.Equal(t, 10.0, balance)

	history, err := teller.History(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(history))
	assert.Equal(t, -40.0, history[1].Amount())
	assert.Equal(t, domain.TransactionKindWithdraw, history[1].Kind())
}

func TestTellerRejectsUntypedAmounts(t *testing.T) {
	teller, created := newTestTeller(t)
	ctx := context.Background()
	assert.NoError(t, teller.OpenAccount(ctx, ""))

	for _, raw := range []any{"50", true, nil, -1.0, json.Number("-3")} {
		_, err := teller.Deposit(ctx, raw)
		assert.IsError(t, err, domain.ErrInvalidDepositAmount)
		_, err = teller.Withdraw(ctx, raw)
		assert.IsError(t, err, domain.ErrInvalidWithdrawAmount)
	}

	balance, _ := teller.Balance()
	assert.Equal(t, 0.0, balance)
	assert.Equal(t, 0, (*created)[0].calls)

	_, err := teller.Deposit(ctx, json.Number("12.5"))
	assert.NoError(t, err)
	_, err = teller.Withdraw(ctx, 2)
	assert.NoError(t, err)
	balance, _ = teller.Balance()
	assert.Equal(t, 10.5, balance)
}

func TestTellerOpenAccountReplacesSession(t *testing.T) {
	teller, created := newTestTeller(t)
	ctx := context.Background()

	assert.NoError(t, teller.OpenAccount(ctx, "first"))
	_, err := teller.Deposit(ctx, 5.0)
	assert.NoError(t, err)

	assert.NoError(t, teller.OpenAccount(ctx, "second"))
	assert.Equal(t, 2, len(*created))
	assert.True(t, (*created)[0].closed)

	balance, _ := teller.Balance()
	assert.Equal(t, 0.0, balance)
	history, err := teller.History(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(history))

	assert.NoError(t, teller.Close())
	assert.True(t, (*created)[1].closed)
	_, err = teller.Balance()
	assert.IsError(t, err, domain.ErrNoAccount)
}

func TestTellerLedgerFactoryError(t *testing.T) {
	boom := errors.New("no database")
	teller := NewTeller(func(ctx context.Context) (Ledger, error) { return nil, boom })
	assert.IsError(t, teller.OpenAccount(context.Background(), "x"), boom)
	_, err := teller.Balance()
	assert.IsError(t, err, domain.ErrNoAccount)
}

func TestTellerAcceptsEveryNumericType(t *testing.T) {
	teller, _ := newTestTeller(t)
	ctx := context.Background()
	assert.NoError(t, teller.OpenAccount(ctx, ""))

	amounts := []any{
		int(1), int8(1), int16(1), int32(1), int64(1),
		uint(1), uint8(1), uint16(1), uint32(1), uint64(1),
		float32(1), float64(1), json.Number("1"),
	}
	for _, amount := range amounts {
		_, err := teller.Deposit(ctx, amount)
		assert.NoError(t, err)
	}
	balance, _ := teller.Balance()
	assert.Equal(t, float64(len(amounts)), balance)

	for _, amount := range []any{int8(1), int16(1), uint8(1), uint16(1)} {
		_, err := teller.Withdraw(ctx, amount)
		assert.NoError(t, err)
	}
	balance, _ = teller.Balance()
	assert.Equal(t, float64(len(amounts)-4), balance)
}

func TestTellerAccountOptions(t *testing.T) {
	boom := errors.New("ledger down")
	teller := NewTeller(func(ctx context.Context) (Ledger, error) {
		return &fakeLedger{err: boom}, nil
	}, WithAccountOptions(WithRollback()))
	ctx := context.Background()
	assert.NoError(t, teller.OpenAccount(ctx, ""))

	_, err := teller.Deposit(ctx, 10.0)
	assert.IsError(t, err, boom)
	balance, _ := teller.Balance()
	assert.Equal(t, 0.0, balance)
}

func TestTellerLogsAccountCreation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	teller, _ := newTestTeller(t, WithLogger(logger))
	assert.NoError(t, teller.OpenAccount(context.Background(), "Bob"))
	assert.Contains(t, buf.String(), "account created")
	assert.Contains(t, buf.String(), "owner=Bob")
}

func TestTellerStatement(t *testing.T) {
	teller, _ := newTestTeller(t)
	ctx := context.Background()
	assert.NoError(t, teller.OpenAccount(ctx, "Alice"))
	for _, amount := range []float64{0.1, 0.2} {
		_, err := teller.Deposit(ctx, amount)
		assert.NoError(t, err)
	}
	_, err := teller.Withdraw(ctx, 0.3)
	assert.NoError(t, err)

	s, err := teller.Statement(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "Alice", s.Owner)
	assert.Equal(t, 3, s.Count())
	assert.True(t, s.Deposits.Equal(decimal.RequireFromString("0.3")))
	assert.True(t, s.Withdrawals.Equal(decimal.RequireFromString("0.3")))
	assert.True(t, s.Net.IsZero())
}
