package domain

import "time"

// TransactionRecorded 交易寫入帳本後發布的事件
type TransactionRecorded struct {
	Kind       TransactionKind `json:"kind"`
	Amount     float64         `json:"amount"`
	Message    string          `json:"message"`
	OccurredAt time.Time       `json:"occurred_at"`
}
