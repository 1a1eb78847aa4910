package logger

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// base уже несёт поле service, поэтому на каждый вызов With не нужен.
var base atomic.Pointer[zap.Logger]

// Init поднимает общий zap-логгер. Повторный вызов пересоздаёт его.
func Init(service, level string) error {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("build zap logger: %w", err)
	}
	base.Store(l.With(zap.String("service", service)))
	return nil
}

// InitNop для тестов: логи никуда не пишутся.
func InitNop() {
	base.Store(zap.NewNop())
}

func Sync() {
	if l := base.Load(); l != nil {
		_ = l.Sync()
	}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func get() *zap.Logger {
	l := base.Load()
	if l == nil {
		panic("logger is not initialized")
	}
	return l
}

func Debug(format string, args ...interface{}) {
	l := get()
	if l.Core().Enabled(zapcore.DebugLevel) {
		l.Debug(fmt.Sprintf(format, args...))
	}
}

func Info(format string, args ...interface{}) {
	get().Info(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	get().Warn(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	get().Error(fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	get().Fatal(fmt.Sprintf(format, args...))
}
