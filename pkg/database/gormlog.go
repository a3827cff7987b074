package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shashiranjanraj/cafe/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormLogger sends gorm's output to the request logger. Statements are only
// logged when they fail or run longer than slow; not-found lookups are
// ordinary control flow and stay quiet.
type gormLogger struct {
	level gormlogger.LogLevel
	slow  time.Duration
}

func newGormLogger(slow time.Duration) *gormLogger {
	return &gormLogger{level: gormlogger.Warn, slow: slow}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *l
	c.level = level
	return &c
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		logger.WithCtx(ctx).Info("gorm: " + fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		logger.WithCtx(ctx).Warn("gorm: " + fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		logger.WithCtx(ctx).Error("gorm: " + fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var level slog.Level
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		level = slog.LevelError
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		level = slog.LevelWarn
	case l.level >= gormlogger.Info:
		level = slog.LevelDebug
	default:
		return
	}

	sql, rows := fc()
	attrs := []any{"sql", sql, "rows", rows, "duration_ms", elapsed.Milliseconds()}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	logger.WithCtx(ctx).Log(ctx, level, "gorm: statement", attrs...)
}
