// Package testingadapter provides a logger that writes to a test or
// benchmark log (testing.TB).
package testingadapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgxproto/log/tracelog"
)

// TestingLogger is the subset of testing.TB this adapter uses.
type TestingLogger interface {
	Log(args ...interface{})
}

// testingHelper is the subset of testing.TB's Helper method; asserted
// against l.l at log time so a t.Helper()-capable logger gets correct
// caller-line reporting when a test fails from inside Log.
type testingHelper interface {
	Helper()
}

type Logger struct {
	l TestingLogger
}

func NewLogger(l TestingLogger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]interface{}) {
	if h, ok := l.l.(testingHelper); ok {
		h.Helper()
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	logArgs := make([]interface{}, 0, 2+len(keys))
	logArgs = append(logArgs, level, msg)
	for _, k := range keys {
		logArgs = append(logArgs, fmt.Sprintf("%s=%v", k, data[k]))
	}
	l.l.Log(logArgs...)
}
