package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowSQLThreshold applies when GormOptions.SlowThreshold is zero
const DefaultSlowSQLThreshold = 200 * time.Millisecond

// GormOptions tune the SQL logger
type GormOptions struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
}

// GormLogger writes gorm's SQL trace through zap, tagged with the principal and
// organization of the statement's context. Record-not-found is never logged as an
// error because lookups that miss are a normal outcome.
type GormLogger struct {
	logger *zap.Logger
	opts   GormOptions
}

// NewGormLogger creates the SQL logger as a "sql" child of l
func NewGormLogger(l *zap.Logger, opts GormOptions) *GormLogger {
	if opts.SlowThreshold <= 0 {
		opts.SlowThreshold = DefaultSlowSQLThreshold
	}
	return &GormLogger{logger: l.Named("sql"), opts: opts}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.opts.Level = level
	return &next
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.opts.Level >= gormlogger.Info {
		l.logger.Info(fmt.Sprintf(msg, data...), ContextFields(ctx)...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.opts.Level >= gormlogger.Warn {
		l.logger.Warn(fmt.Sprintf(msg, data...), ContextFields(ctx)...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.opts.Level >= gormlogger.Error {
		l.logger.Error(fmt.Sprintf(msg, data...), ContextFields(ctx)...)
	}
}

// Trace logs one executed statement: failures at error, slow statements at warn and
// everything else at debug when the level is info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	level := l.opts.Level
	if level <= gormlogger.Silent {
		return
	}
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	elapsed := time.Since(begin)
	slow := elapsed > l.opts.SlowThreshold

	switch {
	case failed && level >= gormlogger.Error:
	case slow && level >= gormlogger.Warn:
	case level >= gormlogger.Info:
	default:
		return
	}

	sql, rows := fc()
	fields := append(ContextFields(ctx),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	)
	switch {
	case failed && level >= gormlogger.Error:
		l.logger.Error("SQL failed", append(fields, zap.Error(err))...)
	case slow && level >= gormlogger.Warn:
		l.logger.Warn("Slow SQL", append(fields, zap.Duration("threshold", l.opts.SlowThreshold))...)
	default:
		l.logger.Debug("SQL", fields...)
	}
}

// GormLevel maps the configured sql level name to gorm's level. Unknown names mean warn.
func GormLevel(name string) gormlogger.LogLevel {
	switch name {
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
