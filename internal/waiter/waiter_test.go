package waiter_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jackc/pgxproto/internal/handle"
	"github.com/jackc/pgxproto/internal/pgmock"
	"github.com/jackc/pgxproto/internal/proto"
	pgproto3 "github.com/jackc/pgproto3/v2"
	"github.com/jackc/pgxproto/internal/waiter"
	"github.com/jackc/pgxproto/internal/wire"
)

func newPipe(t *testing.T) (client *handle.Handle, server net.Conn) {
	t.Helper()
	c, s := net.Pipe()
	t.Cleanup(func() { c.Close(); s.Close() })
	return handle.New(wire.New(c), "UTF8"), s
}

func TestCooperativeWaitDrivesGeneratorToCompletion(t *testing.T) {
	h, server := newPipe(t)

	script := pgmock.SimpleQueryOkScript(nil, nil, "SELECT 1")
	done := make(chan error, 1)
	go func() { done <- script.Run(server) }()

	require.NoError(t, h.SendQuery("select 1"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	results, err := waiter.WaitCooperative(ctx, waiter.Cooperative{Tick: time.Millisecond}, proto.Execute(h))
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NoError(t, <-done)
}

func TestBlockingWaitRespectsCanceledContext(t *testing.T) {
	h, _ := newPipe(t)

	require.NoError(t, h.SendQuery("select 1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := waiter.Wait(ctx, waiter.Blocking{Tick: time.Millisecond}, proto.Execute(h))
	require.ErrorIs(t, err, context.Canceled)
}

func TestCooperativeWaitRespectsCanceledContext(t *testing.T) {
	h, _ := newPipe(t)

	require.NoError(t, h.SendQuery("select 1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := waiter.WaitCooperative(ctx, waiter.Cooperative{Tick: time.Millisecond}, proto.Execute(h))
	require.ErrorIs(t, err, context.Canceled)
}
