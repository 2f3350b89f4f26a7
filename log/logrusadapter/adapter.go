// Package logrusadapter adapts a github.com/sirupsen/logrus.Logger to the
// tracelog.Logger interface.
package logrusadapter

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/jackc/pgxproto/log/tracelog"
)

type Logger struct {
	l *logrus.Logger
}

func NewLogger(l *logrus.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]interface{}) {
	var logger logrus.FieldLogger
	if data != nil {
		logger = l.l.WithFields(data)
	} else {
		logger = l.l
	}

	switch level {
	case tracelog.LogLevelTrace:
		// logrus has carried a native Trace level since well before this
		// adapter existed, so there is no need for the Debug+marker-field
		// workaround older loggers without one required.
		logger.Trace(msg)
	case tracelog.LogLevelDebug:
		logger.Debug(msg)
	case tracelog.LogLevelInfo:
		logger.Info(msg)
	case tracelog.LogLevelWarn:
		logger.Warn(msg)
	case tracelog.LogLevelError:
		logger.Error(msg)
	default:
		logger.WithField("pgxproto_level", int(level)).Error(msg)
	}
}
