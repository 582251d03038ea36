package domain

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionKind 交易類型
type TransactionKind string

const (
	// 存款
	TransactionKindDeposit TransactionKind = "deposit"
	// 提款
	TransactionKindWithdraw TransactionKind = "withdraw"
)

// Transaction 交易紀錄，建立後即不可變更
//
// Amount 為帶正負號的金額：存款為正，提款為負，
// 將所有紀錄的 Amount 相加即可還原帳戶餘額。
type Transaction struct {
	id        uuid.UUID
	kind      TransactionKind
	amount    float64
	createdAt time.Time
}

// NewTransaction 建立一筆交易紀錄
//
// 參數:
//
//	kind: 交易類型 (不可為空字串)
//	amount: 帶正負號的金額 (不可為 NaN 或 Inf)
//
// 回傳:
//
//	*Transaction: 交易紀錄
//	error: ErrInvalidTransactionKind 或 ErrInvalidTransactionAmount
func NewTransaction(kind TransactionKind, amount float64) (*Transaction, error) {
	if kind == "" {
		return nil, ErrInvalidTransactionKind
	}
	if !IsFinite(amount) {
		return nil, ErrInvalidTransactionAmount
	}
	return &Transaction{
		id:        uuid.New(),
		kind:      kind,
		amount:    amount,
		createdAt: time.Now(),
	}, nil
}

// RestoreTransaction 由儲存層還原既有的交易紀錄，保留原本的 ID 與時間
func RestoreTransaction(id uuid.UUID, kind TransactionKind, amount float64, createdAt time.Time) (*Transaction, error) {
	if kind == "" {
		return nil, ErrInvalidTransactionKind
	}
	if !IsFinite(amount) {
		return nil, ErrInvalidTransactionAmount
	}
	return &Transaction{
		id:        id,
		kind:      kind,
		amount:    amount,
		createdAt: createdAt,
	}, nil
}

func (t Transaction) ID() uuid.UUID { return t.id }

func (t Transaction) Kind() TransactionKind { return t.kind }

func (t Transaction) Amount() float64 { return t.amount }

func (t Transaction) CreatedAt() time.Time { return t.createdAt }

// transactionJSON 外部 JSON 格式，kind/amount 先保留原始內容再做型別檢查
type transactionJSON struct {
	ID        uuid.UUID       `json:"id"`
	Kind      json.RawMessage `json:"kind"`
	Amount    json.RawMessage `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// transactionFields 交易紀錄輸出時的欄位
type transactionFields struct {
	ID        uuid.UUID       `json:"id"`
	Kind      TransactionKind `json:"kind"`
	Amount    float64         `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

func (t Transaction) fields() transactionFields {
	return transactionFields{
		ID:        t.id,
		Kind:      t.kind,
		Amount:    t.amount,
		CreatedAt: t.createdAt,
	}
}

// MarshalJSON implements json.Marshaler.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.fields())
}

// UnmarshalJSON 從不受信任的 JSON (例如 WAL 檔) 還原交易紀錄
// kind 必須是 JSON 字串，amount 必須是 JSON 數字
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var raw transactionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var kind string
	if isNull(raw.Kind) || json.Unmarshal(raw.Kind, &kind) != nil || kind == "" {
		return ErrInvalidTransactionKind
	}
	var amount float64
	if isNull(raw.Amount) || json.Unmarshal(raw.Amount, &amount) != nil {
		return ErrInvalidTransactionAmount
	}

	tran, err := RestoreTransaction(raw.ID, TransactionKind(kind), amount, raw.CreatedAt)
	if err != nil {
		return err
	}
	*t = *tran
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
