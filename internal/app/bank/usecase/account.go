package usecase

import (
	"context"
	"sync"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
)

// Account 單一帳戶，持有餘額並將記帳委派給注入的 Ledger
//
// 餘額會先更新再寫入帳本；若寫入帳本失敗，預設不會回滾餘額。
// 使用 WithRollback 可改為失敗時沖回。
type Account struct {
	mu         sync.Mutex
	balance    float64
	ownerLabel string
	ledger     Ledger
	rollback   bool
}

// AccountOption 定義了 Account 的配置選項函數
type AccountOption func(*Account)

// WithRollback 帳本寫入失敗時沖回餘額
func WithRollback() AccountOption {
	return func(a *Account) {
		a.rollback = true
	}
}

// NewAccount 建立餘額為 0 的帳戶
func NewAccount(ledger Ledger, opts ...AccountOption) *Account {
	a := &Account{ledger: ledger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Balance 取得目前餘額
func (a *Account) Balance() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

func (a *Account) OwnerLabel() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ownerLabel
}

func (a *Account) SetOwnerLabel(label string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ownerLabel = label
}

// Deposit 存款
//
// 參數:
//
//	ctx: 上下文
//	amount: 存款金額 (必須為非負數)
//
// 回傳:
//
//	string: 帳本回傳的確認訊息
//	error: ErrInvalidDepositAmount 或帳本錯誤
func (a *Account) Deposit(ctx context.Context, amount float64) (string, error) {
	if !domain.ValidAmount(amount) {
		return "", domain.ErrInvalidDepositAmount
	}
	return a.apply(ctx, domain.TransactionKindDeposit, amount)
}

// Withdraw 提款，不檢查餘額是否足夠，餘額可以為負
//
// 參數:
//
//	ctx: 上下文
//	amount: 提款金額 (必須為非負數)
//
// 回傳:
//
//	string: 帳本回傳的確認訊息
//	error: ErrInvalidWithdrawAmount 或帳本錯誤
func (a *Account) Withdraw(ctx context.Context, amount float64) (string, error) {
	if !domain.ValidAmount(amount) {
		return "", domain.ErrInvalidWithdrawAmount
	}
	return a.apply(ctx, domain.TransactionKindWithdraw, -amount)
}

// apply 更新餘額後寫入帳本，整段持有帳戶鎖
func (a *Account) apply(ctx context.Context, kind domain.TransactionKind, signed float64) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.balance
	a.balance += signed
	msg, err := a.ledger.RecordTransaction(ctx, kind, signed)
	if err != nil {
		if a.rollback {
			a.balance = prev
		}
		return "", err
	}
	return msg, nil
}
