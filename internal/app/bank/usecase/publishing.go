package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
)

// EventPublisher 發布帳本事件
type EventPublisher interface {
	Publish(ctx context.Context, event domain.TransactionRecorded) error
}

// PublishingLedger 包裝 Ledger，每筆交易寫入成功後發布事件
// 發布失敗只記錄 log，不影響交易結果
type PublishingLedger struct {
	Ledger
	publisher EventPublisher
	logger    *slog.Logger
}

func NewPublishingLedger(ledger Ledger, publisher EventPublisher, logger *slog.Logger) *PublishingLedger {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishingLedger{
		Ledger:    ledger,
		publisher: publisher,
		logger:    logger,
	}
}

// RecordTransaction 寫入帳本後發布 TransactionRecorded
func (p *PublishingLedger) RecordTransaction(ctx context.Context, kind domain.TransactionKind, amount float64) (string, error) {
	msg, err := p.Ledger.RecordTransaction(ctx, kind, amount)
	if err != nil {
		return "", err
	}
	event := domain.TransactionRecorded{
		Kind:       kind,
		Amount:     amount,
		Message:    msg,
		OccurredAt: time.Now(),
	}
	if err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.Warn("publish transaction event failed", "kind", kind, "amount", amount, "error", err)
	}
	return msg, nil
}

// Close 關閉底層帳本 (若有實作 Close)
func (p *PublishingLedger) Close() error {
	if c, ok := p.Ledger.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

var _ Ledger = (*PublishingLedger)(nil)
