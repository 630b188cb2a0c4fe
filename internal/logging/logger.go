// Package logging is the structured logger shared by the gateway, the backend
// client and the tool handlers. Output always goes to stderr: in stdio mode
// stdout carries the MCP protocol and must stay free of log lines.
package logging

import (
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps logr.Logger with the Debug level the memory-mcp components use
// for per-request detail (backend round trips, model runs, session sweeps).
type Logger struct {
	log logr.Logger
}

// New wraps base. A zero logr.Logger falls back to an info level zap logger.
func New(base logr.Logger) Logger {
	if base.GetSink() == nil {
		base = NewZapLogger("info")
	}
	return Logger{log: base}
}

// Discard drops everything.
func Discard() Logger {
	return Logger{log: logr.Discard()}
}

// NewZapLogger builds a development zap logger on stderr. level is the
// log_level setting: debug, info, warn or error; anything else means info.
func NewZapLogger(level string) logr.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	zapLogger, err := cfg.Build()
	if err != nil {
		zapLogger = zap.NewNop()
	}
	return zapr.NewLogger(zapLogger)
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

func (l Logger) WithValues(keysAndValues ...any) Logger {
	return Logger{log: l.log.WithValues(keysAndValues...)}
}

// WithName appends a component name, e.g. "gateway" or "backend".
func (l Logger) WithName(name string) Logger {
	return Logger{log: l.log.WithName(name)}
}

func (l Logger) Info(msg string, keysAndValues ...any) {
	l.log.Info(msg, keysAndValues...)
}

// Debug logs at V(1), which zapr maps to zap's debug level.
func (l Logger) Debug(msg string, keysAndValues ...any) {
	l.log.V(1).Info(msg, keysAndValues...)
}

func (l Logger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(err, msg, keysAndValues...)
}
