package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/adapter/out/kafka"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/adapter/out/memory"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/adapter/out/rdb"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/usecase"
	"github.com/JoeShih716/go-mem-bank/internal/config"
	"github.com/JoeShih716/go-mem-bank/pkg/database"
	"github.com/JoeShih716/go-mem-bank/pkg/wal"
)

// Globals 所有子命令共用的旗標
type Globals struct {
	Config string `help:"Path to the YAML config file." default:"config/config.yaml"`
	Env    string `help:"Path to a .env file with BANK_* overrides." optional:""`
}

// app 持有依設定建立的基礎設施，結束時依相反順序關閉
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []io.Closer
}

func newApp(globals *Globals, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(globals.Config, globals.Env)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:    cfg,
		logger: newLogger(stderr, cfg.Log.Level),
	}, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

// newTeller 依設定組裝帳本工廠並建立 Teller
func (a *app) newTeller(ctx context.Context) (*usecase.Teller, error) {
	factory, err := a.ledgerFactory(ctx)
	if err != nil {
		return nil, err
	}
	opts := []usecase.TellerOption{usecase.WithLogger(a.logger)}
	if a.cfg.Ledger.Rollback {
		opts = append(opts, usecase.WithAccountOptions(usecase.WithRollback()))
	}
	teller := usecase.NewTeller(factory, opts...)
	a.closers = append(a.closers, teller)
	return teller, nil
}

// ledgerFactory 共用的資源 (WAL、資料庫、Kafka) 只建立一次，
// 每次開戶再從工廠取得新的帳本
func (a *app) ledgerFactory(ctx context.Context) (usecase.LedgerFactory, error) {
	memOpts := []memory.Option{
		memory.WithLogger(a.logger),
		memory.WithQueueSize(a.cfg.Ledger.QueueSize),
	}
	if a.cfg.Ledger.WALPath != "" {
		w, err := wal.NewWAL(a.cfg.Ledger.WALPath)
		if err != nil {
			return nil, fmt.Errorf("failed to init WAL: %w", err)
		}
		a.closers = append(a.closers, w)
		memOpts = append(memOpts, memory.WithWAL(w))
		a.logger.Info("WAL enabled", "path", w.Path())
	}

	var publisher usecase.EventPublisher
	if len(a.cfg.Kafka.Brokers) > 0 {
		p := kafka.NewPublisher(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topic)
		a.closers = append(a.closers, p)
		publisher = p
		a.logger.Info("publishing transaction events", "brokers", a.cfg.Kafka.Brokers, "topic", a.cfg.Kafka.Topic)
	}

	var build usecase.LedgerFactory
	switch a.cfg.Ledger.Backend {
	case config.BackendMutex:
		build = func(context.Context) (usecase.Ledger, error) {
			return memory.NewMutexLedger(memOpts...), nil
		}
	case config.BackendLMAX:
		build = func(ctx context.Context) (usecase.Ledger, error) {
			l := memory.NewLMAXLedger(memOpts...)
			// 帳本的生命週期跟著帳戶，不跟著開戶的請求
			l.Start(context.WithoutCancel(ctx))
			return l, nil
		}
	case config.BackendDatabase:
		client, err := database.NewClient(a.cfg.Database, database.WithLogger(a.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, client)
		if err := rdb.Migrate(ctx, client); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		a.logger.Info("connected to database", "driver", a.cfg.Database.Driver)
		build = func(context.Context) (usecase.Ledger, error) {
			return rdb.NewLedger(client, a.logger), nil
		}
	default:
		return nil, fmt.Errorf("invalid ledger backend %q", a.cfg.Ledger.Backend)
	}

	if publisher == nil {
		return build, nil
	}
	return func(ctx context.Context) (usecase.Ledger, error) {
		l, err := build(ctx)
		if err != nil {
			return nil, err
		}
		return usecase.NewPublishingLedger(l, publisher, a.logger), nil
	}, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
