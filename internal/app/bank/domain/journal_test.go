package domain

import (
	"encoding/json"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/google/uuid"
)

func TestJournalEntryJSON(t *testing.T) {
	tran, err := NewTransaction(TransactionKindWithdraw, -40)
	assert.NoError(t, err)
	session := uuid.New()

	data, err := json.Marshal(JournalEntry{SessionID: session, Transaction: *tran})
	assert.NoError(t, err)

	var fields map[string]any
	assert.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal[any](t, session.String(), fields["session_id"])
	assert.Equal(t, "withdraw", fields["kind"])
	assert.Equal(t, -40.0, fields["amount"])

	var entry JournalEntry
	assert.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, session, entry.SessionID)
	assert.Equal(t, tran.ID(), entry.Transaction.ID())
	assert.Equal(t, tran.Amount(), entry.Transaction.Amount())

	// 單純的 Transaction 也讀得懂 journal 的格式
	var plain Transaction
	assert.NoError(t, json.Unmarshal(data, &plain))
	assert.Equal(t, tran.ID(), plain.ID())
}

func TestJournalEntryWithoutSession(t *testing.T) {
	var entry JournalEntry
	assert.NoError(t, json.Unmarshal([]byte(`{"kind":"deposit","amount":5}`), &entry))
	assert.Equal(t, uuid.Nil, entry.SessionID)
	assert.Equal(t, 5.0, entry.Transaction.Amount())

	err := json.Unmarshal([]byte(`{"session_id":"`+uuid.NewString()+`","kind":90,"amount":5}`), &entry)
	assert.IsError(t, err, ErrInvalidTransactionKind)
}
