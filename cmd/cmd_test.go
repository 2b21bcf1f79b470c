package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jacobarthurs/mysqlplan/internal/config"
)

func withLogger(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	orig := logger
	logger = zap.New(core)
	t.Cleanup(func() { logger = orig })
	return logs
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("text"))
	assert.NoError(t, validateFormat("json"))
	assert.Error(t, validateFormat("yaml"))
}

func TestExplainDSN(t *testing.T) {
	assert.Equal(t, "app@tcp(db:3306)/shop", explainDSN("app@tcp(db:3306)/shop"))
	assert.Empty(t, explainDSN("postgres://user@localhost/app"))
	assert.Empty(t, explainDSN(""))
}

func TestOpenProvider_EmptyDSN(t *testing.T) {
	logs := withLogger(t)

	provider, closeFn := openProvider(context.Background(), "")
	defer closeFn()

	assert.Nil(t, provider)
	assert.Zero(t, logs.Len())
}

func TestOpenProvider_BadDSNContinuesWithoutMetadata(t *testing.T) {
	logs := withLogger(t)

	provider, closeFn := openProvider(context.Background(), "app:secret@tcp(db:3306")
	defer closeFn()

	assert.Nil(t, provider)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "Metadata provider unavailable", entry.Message)
	assert.Equal(t, "mysql", entry.ContextMap()["driver"])
	assert.NotContains(t, entry.ContextMap()["dsn"], "secret")
}

func TestAnalyzerOptions(t *testing.T) {
	orig := cfg
	t.Cleanup(func() { cfg = orig })

	cfg = nil
	opts := analyzerOptions()
	assert.Zero(t, opts.Concurrency)

	cfg = &config.Config{FetchConcurrency: 2, FetchTimeout: time.Second}
	opts = analyzerOptions()
	assert.Equal(t, 2, opts.Concurrency)
	assert.Equal(t, time.Second, opts.FetchTimeout)
	assert.NotNil(t, opts.Logger)
}

func TestExplainContext(t *testing.T) {
	orig := cfg
	t.Cleanup(func() { cfg = orig })

	cfg = &config.Config{ExplainTimeout: time.Minute}
	ctx, cancel := explainContext(context.Background())
	defer cancel()
	_, ok := ctx.Deadline()
	assert.True(t, ok)

	cfg = &config.Config{}
	ctx2, cancel2 := explainContext(context.Background())
	defer cancel2()
	_, ok = ctx2.Deadline()
	assert.False(t, ok)
}
