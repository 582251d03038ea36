package usecase

import (
	"context"
	"fmt"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
)

// Ledger 是帳本管理者的介面，負責保存只增不減的交易紀錄
type Ledger interface {
	// RecordTransaction 建立並附加一筆交易紀錄，回傳確認訊息
	// 確認訊息只會在紀錄附加完成後回傳
	RecordTransaction(ctx context.Context, kind domain.TransactionKind, amount float64) (string, error)
	// GetHistory 依寫入順序回傳交易紀錄的副本
	GetHistory(ctx context.Context) ([]domain.Transaction, error)
}

// LedgerFactory 建立帳戶時用來產生新的帳本
type LedgerFactory func(ctx context.Context) (Ledger, error)

// Confirmation 產生交易確認訊息
func Confirmation(tran *domain.Transaction) string {
	return fmt.Sprintf("Transaction recorded: %s %s", tran.Kind(), domain.FormatAmount(tran.Amount()))
}
