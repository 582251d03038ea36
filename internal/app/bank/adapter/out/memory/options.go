package memory

import (
	"log/slog"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
	"github.com/JoeShih716/go-mem-bank/pkg/wal"
)

const defaultQueueSize = 1000

type options struct {
	wal       *wal.WAL
	logger    *slog.Logger
	queueSize int
}

// Option 定義了記憶體帳本的配置選項函數
type Option func(*options)

// WithWAL 每筆交易附加到帳本前先寫入 WAL
func WithWAL(w *wal.WAL) Option {
	return func(o *options) {
		o.wal = w
	}
}

// WithLogger 設定帳本使用的 logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithQueueSize 設定 LMAXLedger 輸送帶的緩衝大小
func WithQueueSize(size int) Option {
	return func(o *options) {
		o.queueSize = size
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:    slog.Default(),
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.queueSize <= 0 {
		o.queueSize = defaultQueueSize
	}
	return o
}

func logRecorded(logger *slog.Logger, tran *domain.Transaction) {
	logger.Info("transaction recorded",
		"id", tran.ID(),
		"kind", tran.Kind(),
		"amount", tran.Amount(),
		"time", tran.CreatedAt(),
	)
}

func cloneHistory(history []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(history))
	copy(out, history)
	return out
}
