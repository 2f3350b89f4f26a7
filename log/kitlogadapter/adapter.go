// Package kitlogadapter adapts a github.com/go-kit/log.Logger to the
// tracelog.Logger interface.
package kitlogadapter

import (
	"context"

	"github.com/go-kit/log"
	kitlevel "github.com/go-kit/log/level"

	"github.com/jackc/pgxproto/log/tracelog"
)

type Logger struct {
	l        log.Logger
	minLevel tracelog.LogLevel
}

// Option configures a Logger at construction.
type Option func(*Logger)

// WithMinLevel drops any call whose level is noisier (a higher LogLevel
// value) than min before it ever reaches the wrapped log.Logger, so a
// caller stuck with a verbose driver-side trace level isn't forced to
// filter it out downstream via a go-kit level.Filter of their own.
func WithMinLevel(min tracelog.LogLevel) Option {
	return func(l *Logger) { l.minLevel = min }
}

func NewLogger(l log.Logger, opts ...Option) *Logger {
	logger := &Logger{l: l, minLevel: tracelog.LogLevelTrace}
	for _, opt := range opts {
		opt(logger)
	}
	return logger
}

func (l *Logger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]interface{}) {
	if level > l.minLevel {
		return
	}

	logger := l.l
	if data != nil {
		keyvals := make([]interface{}, 0, 2*len(data))
		for k, v := range data {
			keyvals = append(keyvals, k, v)
		}
		logger = log.With(l.l, keyvals...)
	}

	switch level {
	case tracelog.LogLevelTrace:
		logger.Log("pgxproto_level", level, "msg", msg)
	case tracelog.LogLevelDebug:
		kitlevel.Debug(logger).Log("msg", msg)
	case tracelog.LogLevelInfo:
		kitlevel.Info(logger).Log("msg", msg)
	case tracelog.LogLevelWarn:
		kitlevel.Warn(logger).Log("msg", msg)
	case tracelog.LogLevelError:
		kitlevel.Error(logger).Log("msg", msg)
	default:
		logger.Log("pgxproto_level_invalid", level, "error", msg)
	}
}
