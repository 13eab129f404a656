package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields holds structured logging key/value pairs
type Fields map[string]any

// Logger is the structured logging interface used across the project
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

var (
	mu     sync.RWMutex
	root   *zapLogger
	levels = map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
)

func init() {
	root = newZapLogger(zapcore.InfoLevel, false)
}

// Configure replaces the global logger with the given level and mode.
// Verbose mode uses the zap development config (console encoder).
func Configure(level string, verbose bool) {
	lvl, ok := levels[level]
	if !ok {
		lvl = zapcore.InfoLevel
	}

	mu.Lock()
	defer mu.Unlock()
	root = newZapLogger(lvl, verbose)
}

// Default returns the global logger
func Default() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// WithFields returns the global logger with the given fields attached
func WithFields(fields Fields) Logger {
	return Default().WithFields(fields)
}

type zapLogger struct {
	base *zap.Logger
}

func newZapLogger(level zapcore.Level, verbose bool) *zapLogger {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		logger = zap.NewNop()
	}

	return &zapLogger{base: logger}
}

func (l *zapLogger) Debug(msg string, fields ...Fields) {
	l.base.Debug(msg, zapFields(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Fields) {
	l.base.Info(msg, zapFields(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Fields) {
	l.base.Warn(msg, zapFields(fields)...)
}

func (l *zapLogger) Error(err error, msg string, fields ...Fields) {
	zf := zapFields(fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	l.base.Error(msg, zf...)
}

func (l *zapLogger) WithFields(fields Fields) Logger {
	return &zapLogger{base: l.base.With(zapFields([]Fields{fields})...)}
}

func zapFields(groups []Fields) []zap.Field {
	var out []zap.Field
	for _, fields := range groups {
		for k, v := range fields {
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}
