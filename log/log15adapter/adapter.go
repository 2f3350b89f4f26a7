// Package log15adapter adapts a gopkg.in/inconshreveable/log15.v2.Logger to
// the tracelog.Logger interface.
package log15adapter

import (
	"context"
	"sort"

	"github.com/jackc/pgxproto/log/tracelog"
)

// Log15Logger is the subset of gopkg.in/inconshreveable/log15.v2.Logger this
// adapter uses.
type Log15Logger interface {
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type Logger struct {
	l Log15Logger
}

func NewLogger(l Log15Logger) *Logger {
	return &Logger{l: l}
}

// sortedContext flattens data into log15's alternating key/value ctx form
// with keys in sorted order, since log15's own convention is that context
// pairs read left-to-right in a stable order and Go map iteration alone
// can't promise that.
func sortedContext(data map[string]interface{}, extra ...interface{}) []interface{} {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	logCtx := make([]interface{}, 0, 2*len(keys)+len(extra))
	for _, k := range keys {
		logCtx = append(logCtx, k, data[k])
	}
	return append(logCtx, extra...)
}

func (l *Logger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]interface{}) {
	switch level {
	case tracelog.LogLevelTrace:
		l.l.Debug(msg, sortedContext(data, "pgxproto_level", level)...)
	case tracelog.LogLevelDebug:
		l.l.Debug(msg, sortedContext(data)...)
	case tracelog.LogLevelInfo:
		l.l.Info(msg, sortedContext(data)...)
	case tracelog.LogLevelWarn:
		l.l.Warn(msg, sortedContext(data)...)
	case tracelog.LogLevelError:
		l.l.Error(msg, sortedContext(data)...)
	default:
		l.l.Error(msg, sortedContext(data, "pgxproto_level_invalid", level)...)
	}
}
