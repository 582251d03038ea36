package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/JoeShih716/go-mem-bank/pkg/database"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, BackendMutex, cfg.Ledger.Backend)
	assert.Equal(t, "", cfg.Ledger.WALPath)
	assert.Equal(t, 1000, cfg.Ledger.QueueSize)
	assert.Equal(t, database.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "bank.db", cfg.Database.Path)
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, ":50051", cfg.GRPC.Addr)
	assert.Equal(t, 0, len(cfg.Kafka.Brokers))
	assert.Equal(t, "transaction_recorded", cfg.Kafka.Topic)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
ledger:
  backend: lmax
  wal_path: /tmp/wal.log
  queue_size: 64
  rollback: true
database:
  driver: mysql
  host: db
  user: bank
  db_name: bank
  conn_max_lifetime: 5m
kafka:
  brokers: ["k1:9092", "k2:9092"]
log:
  level: debug
`)
	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, BackendLMAX, cfg.Ledger.Backend)
	assert.Equal(t, "/tmp/wal.log", cfg.Ledger.WALPath)
	assert.Equal(t, 64, cfg.Ledger.QueueSize)
	assert.True(t, cfg.Ledger.Rollback)
	assert.Equal(t, database.DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "", cfg.Database.Path)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "bank:@tcp(db:3306)/bank?charset=utf8mb4&parseTime=True&loc=Local", cfg.Database.DSN())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", "ledger:\n  backend: lmax\n")
	t.Setenv("BANK_LEDGER_BACKEND", "database")
	t.Setenv("BANK_DB_DSN_PATH", "/data/bank.db")
	t.Setenv("BANK_DB_PASSWORD", "secret")
	t.Setenv("BANK_GRPC_ADDR", "127.0.0.1:6000")
	t.Setenv("BANK_KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("BANK_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, BackendDatabase, cfg.Ledger.Backend)
	assert.Equal(t, "/data/bank.db", cfg.Database.Path)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, "127.0.0.1:6000", cfg.GRPC.Addr)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadDotEnv(t *testing.T) {
	envPath := writeFile(t, ".env", "BANK_WAL_PATH=journal.log\n")
	t.Setenv("BANK_WAL_PATH", "")
	os.Unsetenv("BANK_WAL_PATH")

	cfg, err := Load("", envPath)
	assert.NoError(t, err)
	assert.Equal(t, "journal.log", cfg.Ledger.WALPath)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "ledger: [1, 2"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "backend.yaml", "ledger:\n  backend: redis\n"))
	assert.EqualError(t, err, `invalid ledger.backend "redis"`)

	_, err = Load(writeFile(t, "driver.yaml", "database:\n  driver: oracle\n"))
	assert.EqualError(t, err, `invalid database.driver "oracle"`)

	_, err = Load(writeFile(t, "level.yaml", "log:\n  level: loud\n"))
	assert.EqualError(t, err, `invalid log.level "loud"`)
}
