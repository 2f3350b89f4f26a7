// Package zapadapter adapts a go.uber.org/zap.Logger to the tracelog.Logger
// interface.
package zapadapter

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jackc/pgxproto/log/tracelog"
)

type Logger struct {
	logger *zap.Logger
}

// Option configures a Logger at construction.
type Option func(*zap.Logger) *zap.Logger

// WithCallerSkip overrides the number of stack frames zap skips when
// reporting the caller, for a caller whose own Log wrapper adds frames
// beyond the one this adapter already accounts for.
func WithCallerSkip(n int) Option {
	return func(l *zap.Logger) *zap.Logger { return l.WithOptions(zap.AddCallerSkip(n)) }
}

func NewLogger(logger *zap.Logger, opts ...Option) *Logger {
	logger = logger.WithOptions(zap.AddCallerSkip(1))
	for _, opt := range opts {
		logger = opt(logger)
	}
	return &Logger{logger: logger}
}

func (pl *Logger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]interface{}) {
	var zlevel zapcore.Level
	switch level {
	case tracelog.LogLevelNone:
		return
	case tracelog.LogLevelError:
		zlevel = zap.ErrorLevel
	case tracelog.LogLevelWarn:
		zlevel = zap.WarnLevel
	case tracelog.LogLevelInfo:
		zlevel = zap.InfoLevel
	case tracelog.LogLevelDebug, tracelog.LogLevelTrace:
		zlevel = zap.DebugLevel
	default:
		zlevel = zap.DebugLevel
	}

	ce := pl.logger.Check(zlevel, msg)
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, len(data))
	for k, v := range data {
		// zap.Any would encode an error value as a struct via reflection;
		// promoting it to zap.Error gives it the same treatment as any
		// other zap error field (stack trace support, string formatting).
		if err, ok := v.(error); ok && (k == "err" || k == "error") {
			fields = append(fields, zap.Error(err))
			continue
		}
		fields = append(fields, zap.Any(k, v))
	}
	ce.Write(fields...)
}
