package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/usecase"
	"github.com/JoeShih716/go-mem-bank/pkg/wal"
)

// MutexLedger 是一個使用 Mutex 實現的帳本
//
// 結構:
//
//	history: 交易紀錄 (只增不減)
//	mu: RWMutex 用於保護交易紀錄
//	wal: Write-Ahead Log 實例 (可為 nil)
//	sessionID: 寫入 WAL 時標記紀錄屬於哪個帳本
type MutexLedger struct {
	mu        sync.RWMutex
	history   []domain.Transaction
	wal       *wal.WAL
	logger    *slog.Logger
	sessionID uuid.UUID
}

// NewMutexLedger 建立一個新的 MutexLedger 實例
func NewMutexLedger(opts ...Option) *MutexLedger {
	o := newOptions(opts)
	return &MutexLedger{
		history:   make([]domain.Transaction, 0),
		wal:       o.wal,
		logger:    o.logger,
		sessionID: uuid.New(),
	}
}

// SessionID 回傳此帳本寫入 WAL 時使用的 session id
func (m *MutexLedger) SessionID() uuid.UUID {
	return m.sessionID
}

// RecordTransaction 建立交易紀錄並附加到帳本 (Mutex Lock)
//
// 參數:
//
//	ctx: 上下文
//	kind: 交易類型
//	amount: 帶正負號的金額
//
// 回傳:
//
//	string: 確認訊息
//	error: 交易建立錯誤或 WAL 寫入錯誤
func (m *MutexLedger) RecordTransaction(ctx context.Context, kind domain.TransactionKind, amount float64) (string, error) {
	tran, err := domain.NewTransaction(kind, amount)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// 1. 寫入 WAL (Critical Path)
	if m.wal != nil {
		if err := m.wal.Write(domain.JournalEntry{SessionID: m.sessionID, Transaction: *tran}); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrWALWriteFailed, err)
		}
	}

	// 2. 附加到帳本
	m.history = append(m.history, *tran)
	logRecorded(m.logger, tran)
	return usecase.Confirmation(tran), nil
}

// GetHistory 回傳交易紀錄的副本
func (m *MutexLedger) GetHistory(ctx context.Context) ([]domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneHistory(m.history), nil
}

var _ usecase.Ledger = (*MutexLedger)(nil)
