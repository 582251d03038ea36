package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	cli_adapter "github.com/JoeShih716/go-mem-bank/internal/app/bank/adapter/in/cli"
	grpc_adapter "github.com/JoeShih716/go-mem-bank/internal/app/bank/adapter/in/grpc"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/usecase"
	grpc_pool "github.com/JoeShih716/go-mem-bank/pkg/grpc"
	"github.com/JoeShih716/go-mem-bank/pkg/wal"
)

type Commands struct {
	Menu    MenuCmd    `cmd:"" default:"1" help:"Run the interactive banking menu."`
	Serve   ServeCmd   `cmd:"" help:"Serve the teller over gRPC."`
	Client  ClientCmd  `cmd:"" help:"Call a running teller server."`
	Journal JournalCmd `cmd:"" help:"Print the transactions stored in a WAL journal."`
}

type MenuCmd struct{}

func (cmd *MenuCmd) Run(ctx *kong.Context, globals *Globals) error {
	a, err := newApp(globals, ctx.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	runCtx := context.Background()
	teller, err := a.newTeller(runCtx)
	if err != nil {
		return err
	}
	menu := cli_adapter.NewMenu(teller, cli_adapter.NewPrompter(os.Stdin, ctx.Stdout), ctx.Stdout)
	return menu.Run(runCtx)
}

type ServeCmd struct {
	Addr string `help:"Listen address (overrides grpc.addr)." optional:""`
}

func (cmd *ServeCmd) Run(ctx *kong.Context, globals *Globals) error {
	a, err := newApp(globals, ctx.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	teller, err := a.newTeller(context.Background())
	if err != nil {
		return err
	}

	addr := a.cfg.GRPC.Addr
	if cmd.Addr != "" {
		addr = cmd.Addr
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s := grpc.NewServer(grpc.UnaryInterceptor(grpc_adapter.LoggingInterceptor(a.logger)))
	grpc_adapter.RegisterTellerServer(s, grpc_adapter.NewGrpcServer(teller))
	reflection.Register(s)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting gRPC server", "addr", lis.Addr().String())
		errCh <- s.Serve(lis)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to serve: %w", err)
	case <-quit:
	}
	a.logger.Info("shutting down server")
	s.GracefulStop()
	a.logger.Info("server exited")
	return nil
}

// ClientCmd 透過 gRPC 操作 serve 啟動的 Teller
type ClientCmd struct {
	Addr    string        `help:"Server address (overrides grpc.addr)." optional:""`
	Timeout time.Duration `help:"Per-call timeout." default:"5s"`

	Open     ClientOpenCmd     `cmd:"" help:"Open a new account."`
	Deposit  ClientDepositCmd  `cmd:"" help:"Deposit money."`
	Withdraw ClientWithdrawCmd `cmd:"" help:"Withdraw money."`
	Balance  ClientBalanceCmd  `cmd:"" help:"Show the balance."`
	History  ClientHistoryCmd  `cmd:"" help:"Show the transaction history."`
}

// dial 建立客戶端，回傳的 func 負責釋放連線與 context
func (cmd *ClientCmd) dial(kctx *kong.Context, globals *Globals) (context.Context, *grpc_adapter.Client, func(), error) {
	a, err := newApp(globals, kctx.Stderr)
	if err != nil {
		return nil, nil, nil, err
	}
	addr := a.cfg.GRPC.Addr
	if cmd.Addr != "" {
		addr = cmd.Addr
	}

	pool := grpc_pool.NewPool(grpc_pool.WithInterceptor(grpc_pool.LoggingInterceptor(a.logger)))
	conn, err := pool.GetConnection(addr)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	release := func() {
		cancel()
		_ = pool.Close()
	}
	return ctx, grpc_adapter.NewClient(conn), release, nil
}

type ClientOpenCmd struct {
	Owner string `arg:"" optional:"" help:"Account holder name."`
}

func (cmd *ClientOpenCmd) Run(kctx *kong.Context, globals *Globals, parent *ClientCmd) error {
	ctx, client, release, err := parent.dial(kctx, globals)
	if err != nil {
		return err
	}
	defer release()
	if err := client.OpenAccount(ctx, cmd.Owner); err != nil {
		return err
	}
	fmt.Fprintln(kctx.Stdout, "Account created successfully!")
	return nil
}

// ClientDepositCmd 金額以 JSON 值解析，"50" 之類的字串會原樣送出並被服務端拒絕
type ClientDepositCmd struct {
	Amount string `arg:"" help:"Amount as a JSON value."`
}

func (cmd *ClientDepositCmd) Run(kctx *kong.Context, globals *Globals, parent *ClientCmd) error {
	ctx, client, release, err := parent.dial(kctx, globals)
	if err != nil {
		return err
	}
	defer release()
	msg, err := client.Deposit(ctx, parseJSONAmount(cmd.Amount))
	if err != nil {
		return err
	}
	fmt.Fprintln(kctx.Stdout, msg)
	return nil
}

type ClientWithdrawCmd struct {
	Amount string `arg:"" help:"Amount as a JSON value."`
}

func (cmd *ClientWithdrawCmd) Run(kctx *kong.Context, globals *Globals, parent *ClientCmd) error {
	ctx, client, release, err := parent.dial(kctx, globals)
	if err != nil {
		return err
	}
	defer release()
	msg, err := client.Withdraw(ctx, parseJSONAmount(cmd.Amount))
	if err != nil {
		return err
	}
	fmt.Fprintln(kctx.Stdout, msg)
	return nil
}

type ClientBalanceCmd struct{}

func (cmd *ClientBalanceCmd) Run(kctx *kong.Context, globals *Globals, parent *ClientCmd) error {
	ctx, client, release, err := parent.dial(kctx, globals)
	if err != nil {
		return err
	}
	defer release()
	balance, err := client.GetBalance(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(kctx.Stdout, "Balance: %s\n", domain.FormatAmount(balance))
	return nil
}

type ClientHistoryCmd struct{}

func (cmd *ClientHistoryCmd) Run(kctx *kong.Context, globals *Globals, parent *ClientCmd) error {
	ctx, client, release, err := parent.dial(kctx, globals)
	if err != nil {
		return err
	}
	defer release()
	history, err := client.GetHistory(ctx)
	if err != nil {
		return err
	}
	cli_adapter.PrintHistory(kctx.Stdout, history)
	return nil
}

type JournalCmd struct {
	File string `arg:"" type:"existingfile" help:"WAL journal file."`
}

// Run 依帳本 session 分組列出紀錄，每組的餘額只加總該 session 的交易
func (cmd *JournalCmd) Run(ctx *kong.Context) error {
	sessions, err := readJournal(cmd.File)
	if err != nil {
		return err
	}
	printJournal(ctx.Stdout, sessions)
	return nil
}

func printJournal(w io.Writer, sessions []journalSession) {
	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(w, "No transactions yet.")
		return
	}
	for i, session := range sessions {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "Session: %s\n", session.ID)
		cli_adapter.PrintStatement(w, usecase.NewStatement("", sumAmounts(session.History), session.History))
	}
}

// journalSession 同一個帳本寫入 WAL 的紀錄
type journalSession struct {
	ID      uuid.UUID
	History []domain.Transaction
}

// readJournal 讀回 WAL 中的交易並依 session 分組 (依第一次出現的順序)，
// 任何一行格式錯誤都會中止
func readJournal(path string) ([]journalSession, error) {
	w, err := wal.NewWAL(path)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	var sessions []journalSession
	index := map[uuid.UUID]int{}
	line := 0
	err = w.ReadAll(func(raw []byte) error {
		line++
		var entry domain.JournalEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
		i, ok := index[entry.SessionID]
		if !ok {
			i = len(sessions)
			index[entry.SessionID] = i
			sessions = append(sessions, journalSession{ID: entry.SessionID})
		}
		sessions[i].History = append(sessions[i].History, entry.Transaction)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func sumAmounts(history []domain.Transaction) float64 {
	total := 0.0
	for _, tran := range history {
		total += tran.Amount()
	}
	return total
}

// parseJSONAmount 可解析為 JSON 的輸入保留其型別，其餘視為字串
func parseJSONAmount(text string) any {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return text
	}
	return v
}
