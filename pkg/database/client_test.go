package database

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 3306, User: "bank", Password: "secret", DBName: "ledger"}
	assert.Equal(t, "bank:secret@tcp(db:3306)/ledger?charset=utf8mb4&parseTime=True&loc=Local", cfg.DSN())
}

func TestNewClientSQLite(t *testing.T) {
	client, err := NewClient(Config{
		Driver:       DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "bank.db"),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	assert.NoError(t, err)

	var one int
	assert.NoError(t, client.DB().Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
	assert.NoError(t, client.Close())
}

func TestNewClientRejectsBadConfig(t *testing.T) {
	_, err := NewClient(Config{Driver: DriverSQLite})
	assert.Error(t, err)
	_, err = NewClient(Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestNewClientLogsRetries(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, err := NewClient(Config{
		Driver:     DriverSQLite,
		Path:       filepath.Join(t.TempDir(), "missing", "dir", "bank.db"),
		MaxRetries: 3,
		LogLevel:   "silent",
	}, WithLogger(logger), WithRetryInterval(time.Millisecond))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "database connect failed, retrying"))
	assert.Contains(t, out, "driver=sqlite")
	assert.Contains(t, out, "attempt=1")
	assert.Contains(t, out, "attempt=2")
}
