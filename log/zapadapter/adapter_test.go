package zapadapter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jackc/pgxproto/log/tracelog"
	"github.com/jackc/pgxproto/log/zapadapter"
)

func TestLoggerLogsAtMatchingLevelWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zapadapter.NewLogger(zap.New(core))

	logger.Log(context.Background(), tracelog.LogLevelWarn, "hello", map[string]interface{}{"one": "two"})

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Equal(t, "hello", entries[0].Message)
	require.Equal(t, map[string]interface{}{"one": "two"}, entries[0].ContextMap())
}

func TestLoggerPromotesErrorField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zapadapter.NewLogger(zap.New(core))

	cause := errors.New("boom")
	logger.Log(context.Background(), tracelog.LogLevelError, "hello", map[string]interface{}{"err": cause})

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, cause, entries[0].Context[0].Interface)
}

func TestLoggerNoneLevelIsDropped(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zapadapter.NewLogger(zap.New(core))

	logger.Log(context.Background(), tracelog.LogLevelNone, "hello", nil)

	require.Empty(t, logs.All())
}
