package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// maxLoggedSQL caps the statement text; bulk seeding inserts run to megabytes
const maxLoggedSQL = 2048

// SQLLogger writes gorm statements to zap, correlated with the HTTP request
// and span that issued them.
type SQLLogger struct {
	base  *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

// NewSQLLogger returns a gorm logger. A zero slow threshold disables the
// slow statement warning.
func NewSQLLogger(base *zap.Logger, level gormlogger.LogLevel, slow time.Duration) *SQLLogger {
	return &SQLLogger{base: base.Named("sql"), level: level, slow: slow}
}

// LogMode implements gormlogger.Interface
func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *SQLLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.with(ctx).Info(fmt.Sprintf(msg, data...))
	}
}

func (l *SQLLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.with(ctx).Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *SQLLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.with(ctx).Error(fmt.Sprintf(msg, data...))
	}
}

// Trace implements gormlogger.Interface. Missing rows are a normal lookup
// outcome for the repositories and are not reported. A statement aborted
// because its caller went away is a warning, not a database error.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	if err != nil && errors.Is(err, gormlogger.ErrRecordNotFound) {
		err = nil
	}

	elapsed := time.Since(begin)
	slow := l.slow > 0 && elapsed > l.slow
	canceled := err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))

	switch {
	case err != nil && !canceled && l.level >= gormlogger.Error:
	case (canceled || slow) && l.level >= gormlogger.Warn:
	case l.level >= gormlogger.Info:
	default:
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.String("statement", statementKind(sql)),
		zap.Duration("elapsed", elapsed),
		zap.String("sql", truncateSQL(sql)),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}

	log := l.with(ctx)
	switch {
	case err != nil && !canceled:
		log.Error("SQL failed", append(fields, zap.Error(err))...)
	case canceled:
		log.Warn("SQL canceled", append(fields, zap.Error(err))...)
	case slow:
		log.Warn("Slow SQL", append(fields, zap.Duration("threshold", l.slow))...)
	default:
		log.Debug("SQL", fields...)
	}
}

func (l *SQLLogger) with(ctx context.Context) *zap.Logger {
	if fields := contextFields(ctx); len(fields) > 0 {
		return l.base.With(fields...)
	}
	return l.base
}

// statementKind is the leading keyword, lower-cased: select, insert, ...
func statementKind(sql string) string {
	sql = strings.TrimSpace(sql)
	if i := strings.IndexAny(sql, " \t\n("); i > 0 {
		sql = sql[:i]
	}
	return strings.ToLower(sql)
}

func truncateSQL(sql string) string {
	if len(sql) <= maxLoggedSQL {
		return sql
	}
	return sql[:maxLoggedSQL] + fmt.Sprintf("... (%d bytes)", len(sql))
}

// ParseSQLLevel maps the console log level onto gorm's. Statements are only
// traced at debug; info keeps to slow and failed ones.
func ParseSQLLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
