package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestNew(t *testing.T) {
	t.Run("writes to file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(&Config{Level: "debug", Format: "json", Output: path})
		require.NoError(t, err)
		l.Info("hello")
		require.NoError(t, l.Sync())
		assert.FileExists(t, path)
	})

	t.Run("fails on unwritable output", func(t *testing.T) {
		_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "app.log")})
		assert.Error(t, err)
	})
}

func TestL(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithUsername(ctx, "admin")

	L(ctx).Info("converted")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "admin", fields["username"])
	assert.NotContains(t, fields, "trace_id")
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestGinMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set("request_id", "abc"); c.Next() })
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) {
		assert.Equal(t, "abc", GetRequestID(c.Request.Context()))
		c.Status(http.StatusOK)
	})
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	for _, path := range []string{"/ok", "/fail"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestParseSQLLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, ParseSQLLevel("silent"))
	assert.Equal(t, gormlogger.Info, ParseSQLLevel("DEBUG"))
	assert.Equal(t, gormlogger.Warn, ParseSQLLevel("info"))
	assert.Equal(t, gormlogger.Error, ParseSQLLevel("error"))
}

func TestSQLLogger_Trace(t *testing.T) {
	stmt := func(sql string, rows int64) func() (string, int64) {
		return func() (string, int64) { return sql, rows }
	}

	t.Run("tags statements with the request and trace", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), gormlogger.Info, time.Second)

		spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    trace.TraceID{1},
			SpanID:     trace.SpanID{2},
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)
		ctx = WithRequestID(ctx, "req-7")
		ctx = WithUsername(ctx, "admin")

		l.Trace(ctx, time.Now(), stmt(`SELECT * FROM "shipments" WHERE id = 1`, 1), nil)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.DebugLevel, entry.Level)
		assert.Equal(t, "sql", entry.LoggerName)
		fields := entry.ContextMap()
		assert.Equal(t, "req-7", fields["request_id"])
		assert.Equal(t, "admin", fields["username"])
		assert.Equal(t, spanCtx.TraceID().String(), fields["trace_id"])
		assert.Equal(t, spanCtx.SpanID().String(), fields["span_id"])
		assert.Equal(t, "select", fields["statement"])
		assert.EqualValues(t, 1, fields["rows"])
	})

	t.Run("skips missing rows and reports failures", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), gormlogger.Warn, time.Second)

		l.Trace(context.Background(), time.Now(), stmt("SELECT 1", 0), gormlogger.ErrRecordNotFound)
		assert.Zero(t, logs.Len())

		l.Trace(context.Background(), time.Now(), stmt("INSERT INTO leads", 0), errors.New("duplicate key"))
		require.Equal(t, 1, logs.FilterMessage("SQL failed").Len())
		assert.Equal(t, "insert", logs.All()[0].ContextMap()["statement"])
	})

	t.Run("canceled statements warn", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), gormlogger.Warn, time.Second)

		l.Trace(context.Background(), time.Now(), stmt("UPDATE kv_entries", 1), context.Canceled)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
		assert.Equal(t, "SQL canceled", logs.All()[0].Message)
	})

	t.Run("slow statements warn with the threshold", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), gormlogger.Warn, 100*time.Millisecond)

		l.Trace(context.Background(), time.Now().Add(-time.Second), stmt("DELETE FROM activities", -1), nil)
		l.Trace(context.Background(), time.Now(), stmt("SELECT 1", 1), nil)

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "Slow SQL", logs.All()[0].Message)
		assert.NotContains(t, fields, "rows")
		assert.Equal(t, 100*time.Millisecond, fields["threshold"])
	})

	t.Run("long statements are truncated", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), gormlogger.Info, 0)

		l.Trace(context.Background(), time.Now(), stmt("INSERT "+strings.Repeat("x", 3*maxLoggedSQL), 500), nil)

		require.Equal(t, 1, logs.Len())
		logged := logs.All()[0].ContextMap()["sql"].(string)
		assert.Less(t, len(logged), maxLoggedSQL+32)
		assert.Contains(t, logged, "bytes)")
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), gormlogger.Info, 0).LogMode(gormlogger.Silent)
		l.Trace(context.Background(), time.Now(), stmt("SELECT 1", 1), errors.New("boom"))
		assert.Zero(t, logs.Len())
	})
}
