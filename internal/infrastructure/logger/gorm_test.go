package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

const traceBatchQuery = "SELECT * FROM batches WHERE status = 'PENDING'"

func observedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func TestGormLogger_Levels(t *testing.T) {
	t.Run("info formats sprintf args", func(t *testing.T) {
		gl, recorded := observedGormLogger(gormlogger.Info)
		gl.Info(context.Background(), "loaded %d rate table entries", 12)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "loaded 12 rate table entries", logs[0].Message)
	})

	t.Run("warn and error respect the configured level", func(t *testing.T) {
		gl, recorded := observedGormLogger(gormlogger.Error)
		gl.Warn(context.Background(), "suppressed")
		gl.Error(context.Background(), "migration table missing")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
	})

	t.Run("silent suppresses everything", func(t *testing.T) {
		gl, recorded := observedGormLogger(gormlogger.Silent)
		gl.Info(context.Background(), "hidden")
		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return traceBatchQuery, 1
		}, nil)

		assert.Empty(t, recorded.All())
	})
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := observedGormLogger(gormlogger.Info)
	quieter := gl.LogMode(gormlogger.Warn)

	assert.Equal(t, gormlogger.Info, gl.logLevel)
	require.IsType(t, &GormLogger{}, quieter)
	assert.Equal(t, gormlogger.Warn, quieter.(*GormLogger).logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("normal query logs sql and row count", func(t *testing.T) {
		gl, recorded := observedGormLogger(gormlogger.Info)
		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return traceBatchQuery, 5
		}, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL Query", logs[0].Message)

		fields := logs[0].ContextMap()
		assert.Equal(t, traceBatchQuery, fields["sql"])
		assert.Equal(t, int64(5), fields["rows"])
	})

	t.Run("query error logs at error level", func(t *testing.T) {
		gl, recorded := observedGormLogger(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "INSERT INTO invoices", 0
		}, errors.New("duplicate key value"))

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL Error", logs[0].Message)
		assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
	})

	t.Run("record not found stays quiet by default", func(t *testing.T) {
		gl, recorded := observedGormLogger(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT * FROM invoices WHERE id = ?", 0
		}, gormlogger.ErrRecordNotFound)

		assert.Empty(t, recorded.All())
	})

	t.Run("record not found logs when not ignored", func(t *testing.T) {
		gl, recorded := observedGormLogger(gormlogger.Error, WithIgnoreRecordNotFoundError(false))
		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT * FROM invoices WHERE id = ?", 0
		}, gormlogger.ErrRecordNotFound)

		require.Len(t, recorded.All(), 1)
	})

	t.Run("slow query warns past the threshold", func(t *testing.T) {
		gl, recorded := observedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Millisecond))
		gl.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
			return traceBatchQuery, 200
		}, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
		assert.Contains(t, logs[0].Message, "SLOW SQL")
	})

	t.Run("request and company ids flow from the context", func(t *testing.T) {
		gl, recorded := observedGormLogger(gormlogger.Info)

		ctx := context.WithValue(context.Background(), RequestIDKey, "req-7f3a")
		ctx = context.WithValue(ctx, CompanyIDKey, "9b1c2d3e")

		gl.Trace(ctx, time.Now(), func() (string, int64) {
			return traceBatchQuery, 1
		}, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		fields := logs[0].ContextMap()
		assert.Equal(t, "req-7f3a", fields["request_id"])
		assert.Equal(t, "9b1c2d3e", fields["company_id"])
	})
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
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, MapGormLogLevel(tt.level), "level %q", tt.level)
	}
}
