package logger

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// maxLoggedSQL bounds the statement text attached to an entry.
const maxLoggedSQL = 1000

var tablePattern = regexp.MustCompile(`(?i)\b(?:from|into|update)\s+["\x60]?([a-z_][a-z0-9_]*)`)

// GormLogger writes GORM statements to zap, tagged with the table they hit
// and the request, user and session that issued them.
type GormLogger struct {
	log   *zap.Logger
	slow  time.Duration
	level gormlogger.LogLevel
}

// NewGormLogger follows the LOG_LEVEL names: debug and info log every
// statement, warn logs slow statements and errors, error logs errors only.
// A zero slow threshold disables slow statement warnings.
func NewGormLogger(l *zap.Logger, slow time.Duration, level string) *GormLogger {
	return &GormLogger{log: l.Named("gorm"), slow: slow, level: gormLevel(level)}
}

func gormLevel(name string) gormlogger.LogLevel {
	switch strings.ToLower(name) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// tableOf returns the first table named in a statement, or "".
func tableOf(sql string) string {
	if m := tablePattern.FindStringSubmatch(sql); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

// LogMode implements gormlogger.Interface.
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		WithContext(ctx, l.log).Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		WithContext(ctx, l.log).Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		WithContext(ctx, l.log).Sugar().Errorf(msg, data...)
	}
}

// Trace logs one executed statement. Missing rows are routine lookups and
// duplicate keys surface as AlreadyExists, so neither is logged as an error.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	table := tableOf(sql)

	fields := append(Fields(ctx),
		zap.String("table", table),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)
	if len(sql) > maxLoggedSQL {
		sql = sql[:maxLoggedSQL] + "..."
		fields = append(fields, zap.Bool("sql_truncated", true))
	}
	fields = append(fields, zap.String("sql", sql))

	switch {
	case err != nil && errors.Is(err, gorm.ErrDuplicatedKey):
		if l.level >= gormlogger.Warn {
			l.log.Warn("duplicate key on "+table, fields...)
		}
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		if l.level >= gormlogger.Error {
			l.log.Error("query failed on "+table, append(fields, zap.Error(err))...)
		}
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		l.log.Warn("slow query on "+table, append(fields, zap.Duration("threshold", l.slow))...)
	case l.level >= gormlogger.Info:
		l.log.Info("query", fields...)
	}
}
