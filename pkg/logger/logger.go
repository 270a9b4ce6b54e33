// Package logger carries a zap logger through context.Context so request
// scoped fields follow a call down into the services.
package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DevelopmentEnvironment = "development"
	ProductionEnvironment  = "production"
)

var defaultLogger = zap.NewNop() //nolint: gochecknoglobals

// Setup replaces the default logger with one configured for environment.
// Production logs JSON at info level; anything else gets the development
// console encoder at debug level.
func Setup(environment string) error {
	var (
		l   *zap.Logger
		err error
	)
	if environment == ProductionEnvironment {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	defaultLogger = l
	return nil
}

// Sync flushes the default logger.
func Sync() {
	_ = defaultLogger.Sync()
}

type key struct{}

// Get returns the logger stored in ctx, or the default logger.
func Get(ctx context.Context) *zap.Logger {
	if l, _ := ctx.Value(key{}).(*zap.Logger); l != nil {
		return l
	}
	return defaultLogger
}

func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, key{}, l)
}

// WithFields returns a context whose logger adds fields to every entry.
func WithFields(ctx context.Context, fields ...zapcore.Field) context.Context {
	return WithLogger(ctx, Get(ctx).With(fields...))
}

func Debug(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Debug(msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Info(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Warn(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Error(msg, fields...)
}

// Fatal logs at fatal level and exits the process.
func Fatal(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Fatal(msg, fields...)
}
