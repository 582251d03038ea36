package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// JournalEntry WAL 中的一行：交易紀錄與寫入它的帳本 session
//
// 同一個 WAL 檔會被多個帳本共用，session 用來區分紀錄屬於哪個帳戶。
// 沒有 session_id 的舊紀錄解出 uuid.Nil。
type JournalEntry struct {
	SessionID   uuid.UUID
	Transaction Transaction
}

// MarshalJSON 輸出交易欄位並附上 session_id
func (e JournalEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SessionID uuid.UUID `json:"session_id"`
		transactionFields
	}{
		SessionID:         e.SessionID,
		transactionFields: e.Transaction.fields(),
	})
}

// UnmarshalJSON 交易欄位的檢查與 Transaction.UnmarshalJSON 相同
func (e *JournalEntry) UnmarshalJSON(data []byte) error {
	var head struct {
		SessionID uuid.UUID `json:"session_id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	var tran Transaction
	if err := json.Unmarshal(data, &tran); err != nil {
		return err
	}
	e.SessionID = head.SessionID
	e.Transaction = tran
	return nil
}
