package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
)

// Teller 是核心業務邏輯層，管理一個 session 內的帳戶與帳本
//
// 選單與 gRPC 都透過 Teller 操作帳戶。
// 金額參數為未定型別的輸入，在這裡做型別檢查後才交給 Account。
type Teller struct {
	mu          sync.RWMutex
	newLedger   LedgerFactory
	account     *Account
	ledger      Ledger
	accountOpts []AccountOption
	logger      *slog.Logger
}

// TellerOption 定義了 Teller 的配置選項函數
type TellerOption func(*Teller)

// WithAccountOptions 建立帳戶時套用的選項
func WithAccountOptions(opts ...AccountOption) TellerOption {
	return func(t *Teller) {
		t.accountOpts = append(t.accountOpts, opts...)
	}
}

// WithLogger 設定 Teller 使用的 logger
func WithLogger(logger *slog.Logger) TellerOption {
	return func(t *Teller) {
		t.logger = logger
	}
}

func NewTeller(newLedger LedgerFactory, opts ...TellerOption) *Teller {
	t := &Teller{
		newLedger: newLedger,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OpenAccount 建立新的帳戶與帳本，取代目前的帳戶
//
// 參數:
//
//	ctx: 上下文
//	owner: 帳戶顯示名稱 (可為空)
//
// 回傳:
//
//	error: 建立帳本失敗
func (t *Teller) OpenAccount(ctx context.Context, owner string) error {
	ledger, err := t.newLedger(ctx)
	if err != nil {
		return err
	}
	account := NewAccount(ledger, t.accountOpts...)
	account.SetOwnerLabel(owner)

	t.mu.Lock()
	prev := t.ledger
	t.account = account
	t.ledger = ledger
	t.mu.Unlock()

	if err := closeLedger(prev); err != nil {
		t.logger.Warn("close previous ledger failed", "error", err)
	}
	t.logger.Info("account created", "owner", owner)
	return nil
}

// Deposit 存款，amount 必須是數字型別
func (t *Teller) Deposit(ctx context.Context, amount any) (string, error) {
	account, _, err := t.current()
	if err != nil {
		return "", err
	}
	value, ok := domain.AmountOf(amount)
	if !ok {
		return "", domain.ErrInvalidDepositAmount
	}
	return account.Deposit(ctx, value)
}

// Withdraw 提款，amount 必須是數字型別
func (t *Teller) Withdraw(ctx context.Context, amount any) (string, error) {
	account, _, err := t.current()
	if err != nil {
		return "", err
	}
	value, ok := domain.AmountOf(amount)
	if !ok {
		return "", domain.ErrInvalidWithdrawAmount
	}
	return account.Withdraw(ctx, value)
}

// Balance 取得帳戶餘額
func (t *Teller) Balance() (float64, error) {
	account, _, err := t.current()
	if err != nil {
		return 0, err
	}
	return account.Balance(), nil
}

// Owner 取得帳戶名稱
func (t *Teller) Owner() (string, error) {
	account, _, err := t.current()
	if err != nil {
		return "", err
	}
	return account.OwnerLabel(), nil
}

// History 取得交易紀錄
func (t *Teller) History(ctx context.Context) ([]domain.Transaction, error) {
	_, ledger, err := t.current()
	if err != nil {
		return nil, err
	}
	return ledger.GetHistory(ctx)
}

// Statement 產生對帳單
func (t *Teller) Statement(ctx context.Context) (Statement, error) {
	account, ledger, err := t.current()
	if err != nil {
		return Statement{}, err
	}
	history, err := ledger.GetHistory(ctx)
	if err != nil {
		return Statement{}, err
	}
	return NewStatement(account.OwnerLabel(), account.Balance(), history), nil
}

// Close 關閉目前的帳本
func (t *Teller) Close() error {
	t.mu.Lock()
	ledger := t.ledger
	t.account = nil
	t.ledger = nil
	t.mu.Unlock()
	return closeLedger(ledger)
}

func (t *Teller) current() (*Account, Ledger, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.account == nil {
		return nil, nil, domain.ErrNoAccount
	}
	return t.account, t.ledger, nil
}

func closeLedger(ledger Ledger) error {
	if c, ok := ledger.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
