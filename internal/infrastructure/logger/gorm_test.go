package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newGormTestLogger(level gormlogger.LogLevel) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return NewGormLogger(zap.New(core), level), logs
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := context.Background()
	query := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("queries log at debug when level is info", func(t *testing.T) {
		l, logs := newGormTestLogger(gormlogger.Info)

		l.Trace(ctx, time.Now(), query, nil)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zap.DebugLevel, entry.Level)
		assert.Equal(t, "SELECT 1", entry.ContextMap()["sql"])
		assert.Equal(t, int64(1), entry.ContextMap()["rows"])
	})

	t.Run("silent level logs nothing", func(t *testing.T) {
		l, logs := newGormTestLogger(gormlogger.Silent)

		l.Trace(ctx, time.Now(), query, errors.New("boom"))

		assert.Zero(t, logs.Len())
	})

	t.Run("errors log at error level", func(t *testing.T) {
		l, logs := newGormTestLogger(gormlogger.Error)

		l.Trace(ctx, time.Now(), query, errors.New("constraint violated"))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zap.ErrorLevel, entry.Level)
		assert.Equal(t, "constraint violated", entry.ContextMap()["error"])
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		l, logs := newGormTestLogger(gormlogger.Error)

		l.Trace(ctx, time.Now(), query, gormlogger.ErrRecordNotFound)

		assert.Zero(t, logs.Len())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		l, logs := newGormTestLogger(gormlogger.Warn)

		l.Trace(ctx, time.Now().Add(-time.Second), query, nil)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zap.WarnLevel, entry.Level)
		assert.Equal(t, "slow sql", entry.Message)
	})

	t.Run("request id from context is attached", func(t *testing.T) {
		l, logs := newGormTestLogger(gormlogger.Info)
		reqCtx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-42")

		l.Trace(reqCtx, time.Now(), query, nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "req-42", logs.All()[0].ContextMap()["request_id"])
	})
}

func TestGormLogger_LeveledMessages(t *testing.T) {
	t.Run("messages below the level are dropped", func(t *testing.T) {
		l, logs := newGormTestLogger(gormlogger.Error)

		l.Info(context.Background(), "migrating %s", "products")
		l.Warn(context.Background(), "retrying %s", "products")

		assert.Zero(t, logs.Len())
	})

	t.Run("messages at the level pass through", func(t *testing.T) {
		l, logs := newGormTestLogger(gormlogger.Info)

		l.Info(context.Background(), "migrating %s", "products")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "migrating products", logs.All()[0].Message)
	})
}

func TestGormLogger_LogMode(t *testing.T) {
	l, logs := newGormTestLogger(gormlogger.Silent)

	elevated := l.LogMode(gormlogger.Info)
	elevated.Info(context.Background(), "now visible")

	// The original logger keeps its level
	l.Info(context.Background(), "still silent")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "now visible", logs.All()[0].Message)
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}
