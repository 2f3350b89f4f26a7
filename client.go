package pgxproto

import (
	"context"
	"net"

	pgproto3 "github.com/jackc/pgproto3/v2"

	"github.com/jackc/pgxproto/internal/adapt"
	"github.com/jackc/pgxproto/internal/handle"
	"github.com/jackc/pgxproto/internal/proto"
	"github.com/jackc/pgxproto/internal/waiter"
	"github.com/jackc/pgxproto/internal/wire"
	"github.com/jackc/pgxproto/log/tracelog"
)

// Conn is one established PostgreSQL session. It owns the non-blocking
// Handle (internal/handle) and the Transformer (internal/adapt) used to
// dump/load every value that crosses the wire on it. Connection
// establishment itself — dialing, TLS, and the startup/auth handshake —
// happens before a Conn exists; Wrap takes an already-authenticated
// stream, mirroring Handle's own scope boundary.
type Conn struct {
	h      *handle.Handle
	xf     *adapt.Transformer
	logger tracelog.Logger
	closed bool
	format adapt.Format
}

// Wrap adapts an already-connected, already-authenticated net.Conn (and the
// encoding the startup handshake negotiated) into a Conn. New cursors default
// to requesting binary-format results; use WrapConfig to honor a parsed
// Config's FormatPreference instead.
func Wrap(nc net.Conn, clientEncoding string) *Conn {
	return &Conn{
		h:      handle.New(wire.New(nc), clientEncoding),
		xf:     adapt.NewTransformer(),
		format: adapt.Binary,
	}
}

// WrapConfig is Wrap plus a parsed Config's ClientEncoding and
// FormatPreference, for callers that already went through ParseConfig.
func WrapConfig(nc net.Conn, cfg *Config) *Conn {
	c := Wrap(nc, cfg.ClientEncoding)
	if cfg.FormatPreference == FormatText {
		c.format = adapt.Text
	}
	return c
}

// SetLogger installs a tracer for notices and protocol-level events,
// following the teacher's pluggable log/tracelog.Logger seam.
func (c *Conn) SetLogger(l tracelog.Logger) { c.logger = l }

// Transformer exposes the connection-local dumper/loader registry so a
// caller can register application-specific types before issuing queries.
func (c *Conn) Transformer() *adapt.Transformer { return c.xf }

// Close closes the underlying stream.
func (c *Conn) Close() error {
	c.closed = true
	return c.h.Close()
}

// NewCursor returns a Cursor bound to this connection with the default
// array size (see Config.ArraySize for overriding it per-cursor).
func (c *Conn) NewCursor() *Cursor {
	return &Cursor{conn: c, arraySize: defaultArraySize, format: c.format}
}

// Notifies drains any asynchronous NOTIFY messages the server has queued
// since the last call.
func (c *Conn) Notifies() []pgproto3.NotificationResponse {
	return c.h.Notifies()
}

func (c *Conn) logNotice(err *pgproto3.ErrorResponse) {
	if c.logger != nil {
		c.logger.Log(context.Background(), tracelog.LogLevelInfo, "notice", map[string]interface{}{
			"severity": err.Severity,
			"message":  err.Message,
		})
	}
}

// runBlocking drives gen to completion on the calling goroutine using the
// default tick-retry Waiter; this is the common path for callers that don't
// need cooperative scheduling alongside other I/O.
func runBlocking[T any](ctx context.Context, gen proto.Generator[T]) (T, error) {
	return waiter.Wait(ctx, waiter.Blocking{}, gen)
}

// RunCooperative drives gen using the cooperative Waiter, for callers
// already running their own event loop who want this operation to yield
// between attempts instead of retrying on a blocking tick.
func RunCooperative[T any](ctx context.Context, gen proto.Generator[T]) (T, error) {
	return waiter.WaitCooperative(ctx, waiter.Cooperative{}, gen)
}
