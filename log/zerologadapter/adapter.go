// Package zerologadapter adapts a github.com/rs/zerolog.Logger to the
// tracelog.Logger interface.
package zerologadapter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jackc/pgxproto/log/tracelog"
)

// errDataKeys are the data map keys Log treats as the event's error, passed
// to zerolog.Event.Err instead of the generic Interface encoding so it
// serializes the way zerolog's own error-logging convention expects.
var errDataKeys = [...]string{"err", "error"}

type Logger struct {
	logger      zerolog.Logger
	withFunc    func(context.Context, zerolog.Context) zerolog.Context
	fromContext bool
	skipModule  bool
}

// option configures the logger when creating a new one.
type option func(logger *Logger)

// WithContextFunc adds the possibility to pull request-scoped values from
// ctx before logging lines.
func WithContextFunc(withFunc func(context.Context, zerolog.Context) zerolog.Context) option {
	return func(logger *Logger) {
		logger.withFunc = withFunc
	}
}

// WithoutModule disables adding module:pgxproto to the default logger context.
func WithoutModule() option {
	return func(logger *Logger) {
		logger.skipModule = true
	}
}

// NewLogger accepts a zerolog.Logger as input and returns a tracelog.Logger
// facade over it.
func NewLogger(logger zerolog.Logger, options ...option) *Logger {
	l := Logger{
		logger: logger,
	}
	l.init(options)
	return &l
}

// NewContextLogger creates a logger that extracts the zerolog.Logger from
// context.Context via zerolog.Ctx. zerolog.DefaultContextLogger is used if no
// logger is associated with the context.
func NewContextLogger(options ...option) *Logger {
	l := Logger{
		fromContext: true,
	}
	l.init(options)
	return &l
}

func (pl *Logger) init(options []option) {
	for _, opt := range options {
		opt(pl)
	}
	if !pl.skipModule {
		pl.logger = pl.logger.With().Str("module", "pgxproto").Logger()
	}
}

func (pl *Logger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]interface{}) {
	var zlevel zerolog.Level
	switch level {
	case tracelog.LogLevelNone:
		zlevel = zerolog.NoLevel
	case tracelog.LogLevelError:
		zlevel = zerolog.ErrorLevel
	case tracelog.LogLevelWarn:
		zlevel = zerolog.WarnLevel
	case tracelog.LogLevelInfo:
		zlevel = zerolog.InfoLevel
	case tracelog.LogLevelDebug:
		zlevel = zerolog.DebugLevel
	default:
		zlevel = zerolog.DebugLevel
	}

	var zctx zerolog.Context
	if pl.fromContext {
		logger := zerolog.Ctx(ctx)
		zctx = logger.With()
	} else {
		zctx = pl.logger.With()
	}
	if pl.withFunc != nil {
		zctx = pl.withFunc(ctx, zctx)
	}

	plog := zctx.Logger()
	event := plog.WithLevel(zlevel)
	if event.Enabled() {
		if pl.fromContext && !pl.skipModule {
			event.Str("module", "pgxproto")
		}
		event.Fields(fieldsWithoutErr(event, data)).Msg(msg)
	}
}

// fieldsWithoutErr strips any errDataKeys entry holding an error value from
// data and attaches it to event via Err instead, so it serializes under
// zerolog's "error" key the way zerolog's own error-logging helpers do
// rather than through the generic interface{} encoding Fields would give it.
func fieldsWithoutErr(event *zerolog.Event, data map[string]interface{}) map[string]interface{} {
	for _, k := range errDataKeys {
		if e, ok := data[k].(error); ok {
			event.Err(e)
			rest := make(map[string]interface{}, len(data)-1)
			for dk, dv := range data {
				if dk != k {
					rest[dk] = dv
				}
			}
			return rest
		}
	}
	return data
}
