package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount 金額必須為有效且非負的數字
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidDepositAmount 存款金額不合法
	ErrInvalidDepositAmount = fmt.Errorf("%w: deposit amount must be a valid positive number", ErrInvalidAmount)

	// ErrInvalidWithdrawAmount 提款金額不合法
	ErrInvalidWithdrawAmount = fmt.Errorf("%w: withdrawing amount must be a valid positive number", ErrInvalidAmount)

	// ErrInvalidTransactionKind 交易類型必須是非空字串
	ErrInvalidTransactionKind = errors.New("type of transaction needs to be deposit or withdraw")

	// ErrInvalidTransactionAmount 交易金額必須是數字
	ErrInvalidTransactionAmount = errors.New("amount of transaction needs to be a number")

	// ErrNoAccount 尚未建立帳戶
	ErrNoAccount = errors.New("please create an account first")

	// ErrWALWriteFailed 寫入 WAL 失敗
	ErrWALWriteFailed = errors.New("wal write failed")

	// ErrLedgerClosed 帳本已關閉
	ErrLedgerClosed = errors.New("ledger closed")

	// ErrLedgerNotStarted LMAX 帳本尚未呼叫 Start
	ErrLedgerNotStarted = errors.New("ledger not started")
)
