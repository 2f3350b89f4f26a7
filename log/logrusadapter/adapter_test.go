package logrusadapter_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/jackc/pgxproto/log/logrusadapter"
	"github.com/jackc/pgxproto/log/tracelog"
)

func TestLoggerLogsAtMatchingLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	logger := logrusadapter.NewLogger(l)
	logger.Log(context.Background(), tracelog.LogLevelInfo, "hello", map[string]interface{}{"one": "two"})

	out := buf.String()
	require.Contains(t, out, "level=info")
	require.Contains(t, out, "msg=hello")
	require.Contains(t, out, "one=two")
}

func TestLoggerTraceLevelUsesNativeTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.TraceLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	logger := logrusadapter.NewLogger(l)
	logger.Log(context.Background(), tracelog.LogLevelTrace, "hello", nil)

	require.Contains(t, buf.String(), "level=trace")
	require.Contains(t, buf.String(), "msg=hello")
}

func TestLoggerUnknownLevelTagsFieldAndLogsAsError(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	logger := logrusadapter.NewLogger(l)
	logger.Log(context.Background(), tracelog.LogLevel(99), "hello", nil)

	require.Contains(t, buf.String(), "level=error")
	require.Contains(t, buf.String(), "pgxproto_level=99")
}
