package lspr

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger      *zap.Logger
	globalLoggerMutex sync.RWMutex
)

// ParseLogLevel maps a configuration level name to a zap level. "off"
// yields a level above fatal, which discards every entry.
func ParseLogLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "off":
		return zapcore.FatalLevel + 1, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

// NewLogger builds a JSON production logger at the given level. Output goes
// to stderr so generated PDFs can be streamed to stdout.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl > zapcore.DebugLevel {
		config.DisableCaller = true
	}
	return config.Build()
}

// GetLogger returns the package logger. Until SetLogger is called it is a
// no-op logger.
func GetLogger() *zap.Logger {
	globalLoggerMutex.RLock()
	l := globalLogger
	globalLoggerMutex.RUnlock()
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// SetLogger replaces the package logger. A nil logger restores the no-op
// logger.
func SetLogger(l *zap.Logger) {
	globalLoggerMutex.Lock()
	globalLogger = l
	globalLoggerMutex.Unlock()
}
