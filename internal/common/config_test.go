package common

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"DB_URL", "PDFTOTEXT_BIN", "PDF_MAX_PAGES", "QUEUE_WORKERS", "QUEUE_SIZE", "QUEUE_TIMEOUT", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, "file:quotations.db", cfg.Database.DSN)
	assert.Equal(t, "pdftotext", cfg.Decoder.Pdftotext)
	assert.Zero(t, cfg.Decoder.MaxPages)
	assert.Equal(t, 4, cfg.Queue.Workers)
	assert.Equal(t, 64, cfg.Queue.Size)
	assert.Equal(t, 2*time.Minute, cfg.Queue.Timeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("DB_URL", "postgres://u:p@localhost:5432/quotes")
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("PDF_MAX_PAGES", "3")
	t.Setenv("QUEUE_WORKERS", "not-a-number")
	t.Setenv("QUEUE_TIMEOUT", "45s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadConfig()
	assert.Equal(t, "postgres://u:p@localhost:5432/quotes", cfg.Database.DSN)
	assert.Equal(t, int32(7), cfg.Database.MaxConns)
	assert.Equal(t, 3, cfg.Decoder.MaxPages)
	assert.Equal(t, 4, cfg.Queue.Workers)
	assert.Equal(t, 45*time.Second, cfg.Queue.Timeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestConfig_Validate(t *testing.T) {
	cfg := LoadConfig()
	cfg.Queue.Workers = 0

	err := cfg.Validate()
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFIG_ERROR", appErr.Code)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
