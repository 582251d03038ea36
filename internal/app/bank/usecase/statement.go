package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
)

// Statement 帳戶對帳單
type Statement struct {
	Owner        string
	Balance      float64
	Transactions []domain.Transaction
	// Deposits 存款總額，Withdrawals 提款總額 (正數)，Net 為所有紀錄加總
	Deposits    decimal.Decimal
	Withdrawals decimal.Decimal
	Net         decimal.Decimal
}

// NewStatement 依交易紀錄計算對帳單總額
func NewStatement(owner string, balance float64, history []domain.Transaction) Statement {
	s := Statement{
		Owner:        owner,
		Balance:      balance,
		Transactions: history,
		Deposits:     decimal.Zero,
		Withdrawals:  decimal.Zero,
		Net:          decimal.Zero,
	}
	for _, tran := range history {
		amount := decimal.NewFromFloat(tran.Amount())
		switch tran.Kind() {
		case domain.TransactionKindDeposit:
			s.Deposits = s.Deposits.Add(amount)
		case domain.TransactionKindWithdraw:
			s.Withdrawals = s.Withdrawals.Add(amount.Neg())
		}
		s.Net = s.Net.Add(amount)
	}
	return s
}

// Count 交易筆數
func (s Statement) Count() int {
	return len(s.Transactions)
}
