package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/usecase"
	"github.com/JoeShih716/go-mem-bank/pkg/wal"
)

// ledgerRequest 請求包裝channel，讓呼叫端可以等待結果
type ledgerRequest struct {
	kind   domain.TransactionKind
	amount float64
	// query 為 true 時只讀取交易紀錄
	query  bool
	result chan ledgerResult
}

type ledgerResult struct {
	message string
	history []domain.Transaction
	err     error
}

// LMAXLedger 單一 goroutine 擁有交易紀錄，所有讀寫都經由輸送帶排隊
type LMAXLedger struct {
	// 只有 run loop 會讀寫
	history []domain.Transaction
	// Write-Ahead Logging
	wal       *wal.WAL
	logger    *slog.Logger
	sessionID uuid.UUID
	// 輸送帶 負責接收請求
	requestChan chan *ledgerRequest
	// Pool 減少 GC 壓力
	requestPool sync.Pool

	started   atomic.Bool
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewLMAXLedger 建立一個新的 LMAXLedger 實例，需呼叫 Start 後才會處理請求
//
// 參數:
//
//	opts: WithWAL / WithLogger / WithQueueSize
//
// 回傳:
//
//	*LMAXLedger: LMAXLedger 實例
func NewLMAXLedger(opts ...Option) *LMAXLedger {
	o := newOptions(opts)
	return &LMAXLedger{
		history:     make([]domain.Transaction, 0),
		wal:         o.wal,
		logger:      o.logger,
		sessionID:   uuid.New(),
		requestChan: make(chan *ledgerRequest, o.queueSize),
		requestPool: sync.Pool{
			New: func() interface{} {
				return &ledgerRequest{
					result: make(chan ledgerResult, 1),
				}
			},
		},
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// SessionID 回傳此帳本寫入 WAL 時使用的 session id
func (l *LMAXLedger) SessionID() uuid.UUID {
	return l.sessionID
}

// Start 啟動核心引擎 (非同步)，ctx 結束或呼叫 Close 時停止
func (l *LMAXLedger) Start(ctx context.Context) {
	if !l.started.CompareAndSwap(false, true) {
		return
	}
	go l.run(ctx)
}

// Close 停止核心引擎，並等待佇列中的請求處理完畢
func (l *LMAXLedger) Close() error {
	l.closeOnce.Do(func() {
		close(l.quit)
	})
	if l.started.Load() {
		<-l.done
	}
	return nil
}

// RecordTransaction 將交易請求放上輸送帶並等待結果
//
// RecordTransaction(等待) -> Channel -> Run Loop -> WAL -> History Append -> Result Channel -> RecordTransaction(收到結果)
//
// ctx 只在排隊時生效，請求一旦進入輸送帶就一定等到處理結果
func (l *LMAXLedger) RecordTransaction(ctx context.Context, kind domain.TransactionKind, amount float64) (string, error) {
	req := l.requestPool.Get().(*ledgerRequest)
	req.kind = kind
	req.amount = amount
	req.query = false

	res, err := l.submit(ctx, req)
	if err != nil {
		return "", err
	}
	return res.message, res.err
}

// GetHistory 經由輸送帶取得交易紀錄的副本
func (l *LMAXLedger) GetHistory(ctx context.Context) ([]domain.Transaction, error) {
	req := l.requestPool.Get().(*ledgerRequest)
	req.query = true

	res, err := l.submit(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.history, res.err
}

func (l *LMAXLedger) submit(ctx context.Context, req *ledgerRequest) (ledgerResult, error) {
	// 清空 Channel (理論上應該是空的)
	select {
	case <-req.result:
	default:
	}

	select {
	case <-l.quit:
		l.requestPool.Put(req)
		return ledgerResult{}, domain.ErrLedgerClosed
	default:
	}
	// 沒有 run loop 時排隊會永遠等不到結果
	if !l.started.Load() {
		l.requestPool.Put(req)
		return ledgerResult{}, domain.ErrLedgerNotStarted
	}

	select {
	case <-l.quit:
		l.requestPool.Put(req)
		return ledgerResult{}, domain.ErrLedgerClosed
	case <-ctx.Done():
		l.requestPool.Put(req)
		return ledgerResult{}, ctx.Err()
	case l.requestChan <- req:
	}

	select {
	case res := <-req.result:
		l.requestPool.Put(req)
		return res, nil
	case <-l.done:
		// loop 已結束，若結果已送達仍以結果為準
		select {
		case res := <-req.result:
			l.requestPool.Put(req)
			return res, nil
		default:
			return ledgerResult{}, domain.ErrLedgerClosed
		}
	}
}

func (l *LMAXLedger) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			// 收到關閉信號，把剩下的請求處理完
			l.drain()
			return
		case <-l.quit:
			l.drain()
			return
		case req := <-l.requestChan:
			l.process(req)
		}
	}
}

func (l *LMAXLedger) drain() {
	for {
		select {
		case req := <-l.requestChan:
			l.process(req)
		default:
			return
		}
	}
}

// process 處理單筆請求並回傳結果
func (l *LMAXLedger) process(req *ledgerRequest) {
	if req.query {
		req.result <- ledgerResult{history: cloneHistory(l.history)}
		return
	}

	tran, err := domain.NewTransaction(req.kind, req.amount)
	if err != nil {
		req.result <- ledgerResult{err: err}
		return
	}

	// 1. 寫入 WAL (Critical Path)
	if l.wal != nil {
		if err := l.wal.Write(domain.JournalEntry{SessionID: l.sessionID, Transaction: *tran}); err != nil {
			req.result <- ledgerResult{err: fmt.Errorf("%w: %v", domain.ErrWALWriteFailed, err)}
			return
		}
	}

	// 2. 附加到帳本
	l.history = append(l.history, *tran)
	logRecorded(l.logger, tran)

	// 3. 回傳結果
	req.result <- ledgerResult{message: usecase.Confirmation(tran)}
}

var _ usecase.Ledger = (*LMAXLedger)(nil)
