package rdb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/usecase"
	"github.com/JoeShih716/go-mem-bank/pkg/database"
)

// sqlTransaction 對應資料庫的 transactions 表
type sqlTransaction struct {
	ID         int64   `gorm:"primaryKey;autoIncrement"`
	RefID      []byte  `gorm:"column:ref_id;type:binary(16);uniqueIndex"` // 對應 domain.Transaction.ID
	SessionID  []byte  `gorm:"column:session_id;type:binary(16);index"`   // 同一個帳戶 session 的紀錄
	Kind       string  `gorm:"column:kind;type:varchar(32)"`
	Amount     float64 `gorm:"column:amount"`
	RecordedAt int64   `gorm:"column:recorded_at"` // UnixNano
}

func (*sqlTransaction) TableName() string {
	return "transactions"
}

// Ledger 以資料庫保存交易紀錄的帳本
// 每個 Ledger 有自己的 session id，只讀回自己寫入的紀錄
type Ledger struct {
	client    *database.Client
	sessionID uuid.UUID
	logger    *slog.Logger
}

func NewLedger(client *database.Client, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		client:    client,
		sessionID: uuid.New(),
		logger:    logger,
	}
}

// Migrate 建立 transactions 表
func Migrate(ctx context.Context, client *database.Client) error {
	return client.DB().WithContext(ctx).AutoMigrate(&sqlTransaction{})
}

// SessionID 回傳此帳本的 session id
func (ledger *Ledger) SessionID() uuid.UUID {
	return ledger.sessionID
}

func (ledger *Ledger) RecordTransaction(ctx context.Context, kind domain.TransactionKind, amount float64) (string, error) {
	tran, err := domain.NewTransaction(kind, amount)
	if err != nil {
		return "", err
	}

	id := tran.ID()
	row := sqlTransaction{
		RefID:      id[:],
		SessionID:  ledger.sessionID[:],
		Kind:       string(tran.Kind()),
		Amount:     tran.Amount(),
		RecordedAt: tran.CreatedAt().UnixNano(),
	}
	if err := ledger.client.DB().WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	ledger.logger.Info("transaction recorded",
		"id", id,
		"kind", tran.Kind(),
		"amount", tran.Amount(),
		"time", tran.CreatedAt(),
		"session", ledger.sessionID,
	)
	return usecase.Confirmation(tran), nil
}

// GetHistory 依寫入順序讀回此 session 的交易紀錄
func (ledger *Ledger) GetHistory(ctx context.Context) ([]domain.Transaction, error) {
	var rows []sqlTransaction
	err := ledger.client.DB().WithContext(ctx).
		Where("session_id = ?", ledger.sessionID[:]).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}

	history := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.FromBytes(row.RefID)
		if err != nil {
			return nil, fmt.Errorf("decode ref_id %d: %w", row.ID, err)
		}
		tran, err := domain.RestoreTransaction(id, domain.TransactionKind(row.Kind), row.Amount, time.Unix(0, row.RecordedAt))
		if err != nil {
			return nil, err
		}
		history = append(history, *tran)
	}
	return history, nil
}

var _ usecase.Ledger = (*Ledger)(nil)
