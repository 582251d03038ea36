// Package config 載入 bank 程式的設定
// 順序: YAML 檔 -> .env 與環境變數覆寫 -> 程式內預設值
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-mem-bank/pkg/database"
)

// DefaultPath 預設的設定檔路徑，檔案不存在時直接使用預設值
const DefaultPath = "config/config.yaml"

const (
	BackendMutex    = "mutex"
	BackendLMAX     = "lmax"
	BackendDatabase = "database"
)

type Config struct {
	Ledger   LedgerConfig    `yaml:"ledger"`
	Database database.Config `yaml:"database"`
	GRPC     GRPCConfig      `yaml:"grpc"`
	Kafka    KafkaConfig     `yaml:"kafka"`
	Log      LogConfig       `yaml:"log"`
}

type LedgerConfig struct {
	Backend   string `yaml:"backend"`    // mutex | lmax | database
	WALPath   string `yaml:"wal_path"`   // 空字串表示不寫 WAL
	QueueSize int    `yaml:"queue_size"` // LMAX 輸送帶大小
	Rollback  bool   `yaml:"rollback"`   // 帳本寫入失敗時還原餘額
}

type GRPCConfig struct {
	Addr string `yaml:"addr"`
}

// KafkaConfig brokers 為空時不發布交易事件
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
}

// Load 讀取設定檔並套用環境變數與預設值
//
// 參數:
//
//	path: YAML 設定檔路徑，空字串時不讀檔
//	envPath: 選填的 .env 路徑，未指定時嘗試讀取目前目錄的 .env
//
// 回傳:
//
//	*Config: 完整的設定
//	error: 讀檔、解析或驗證失敗
func Load(path string, envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Ledger.Backend, "BANK_LEDGER_BACKEND")
	setFromEnv(&c.Ledger.WALPath, "BANK_WAL_PATH")
	setFromEnv(&c.Database.Driver, "BANK_DB_DRIVER")
	setFromEnv(&c.Database.Path, "BANK_DB_DSN_PATH")
	setFromEnv(&c.Database.Password, "BANK_DB_PASSWORD")
	setFromEnv(&c.GRPC.Addr, "BANK_GRPC_ADDR")
	setFromEnv(&c.Log.Level, "BANK_LOG_LEVEL")
	if v := os.Getenv("BANK_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
}

func (c *Config) applyDefaults() {
	if c.Ledger.Backend == "" {
		c.Ledger.Backend = BackendMutex
	}
	if c.Ledger.QueueSize == 0 {
		c.Ledger.QueueSize = 1000
	}
	if c.Database.Driver == "" {
		c.Database.Driver = database.DriverSQLite
	}
	if c.Database.Driver == database.DriverSQLite && c.Database.Path == "" {
		c.Database.Path = "bank.db"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 100
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 10
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if c.Database.LogLevel == "" {
		c.Database.LogLevel = "silent"
	}
	if c.GRPC.Addr == "" {
		c.GRPC.Addr = ":50051"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "transaction_recorded"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate 檢查列舉型的設定值
func (c *Config) Validate() error {
	switch c.Ledger.Backend {
	case BackendMutex, BackendLMAX, BackendDatabase:
	default:
		return fmt.Errorf("invalid ledger.backend %q", c.Ledger.Backend)
	}
	switch c.Database.Driver {
	case database.DriverMySQL, database.DriverSQLite:
	default:
		return fmt.Errorf("invalid database.driver %q", c.Database.Driver)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	return nil
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
