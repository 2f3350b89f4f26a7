// Package pgmock scripts a fake PostgreSQL backend over a net.Conn, for
// exercising internal/handle and internal/proto without a live server.
package pgmock

import (
	"fmt"
	"net"

	"github.com/jackc/chunkreader/v2"
	pgproto3 "github.com/jackc/pgproto3/v2"
	"github.com/jackc/pgio"
)

// Step is one action a scripted backend takes against the server side of a
// connection: receive and check a frontend message, or send a backend one.
type Step interface {
	Run(conn net.Conn, cr *chunkreader.ChunkReader) error
}

// Script is an ordered sequence of Steps run against one connection.
type Script struct {
	Steps []Step
}

// Run executes every step in order against conn, stopping at the first
// error.
func (s *Script) Run(conn net.Conn) error {
	cr := chunkreader.New(conn)
	for i, step := range s.Steps {
		if err := step.Run(conn, cr); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

// rawMessage is one type-byte + length-prefixed frontend message as received
// off the wire, undecoded.
type rawMessage struct {
	Type byte
	Body []byte
}

func receiveRaw(cr *chunkreader.ChunkReader) (rawMessage, error) {
	header, err := cr.Next(5)
	if err != nil {
		return rawMessage{}, err
	}
	msgType := header[0]
	bodyLen := int(pgio.GetUint32(header[1:])) - 4
	if bodyLen < 0 {
		return rawMessage{}, fmt.Errorf("invalid message length: %d", bodyLen)
	}
	var body []byte
	if bodyLen > 0 {
		body, err = cr.Next(bodyLen)
		if err != nil {
			return rawMessage{}, err
		}
	}
	buf := make([]byte, len(body))
	copy(buf, body)
	return rawMessage{Type: msgType, Body: buf}, nil
}

type expectStep struct {
	msgType byte // 0 means "any type"
}

func (e *expectStep) Run(conn net.Conn, cr *chunkreader.ChunkReader) error {
	msg, err := receiveRaw(cr)
	if err != nil {
		return err
	}
	if e.msgType != 0 && msg.Type != e.msgType {
		return fmt.Errorf("expected message type %q, got %q", e.msgType, msg.Type)
	}
	return nil
}

// ExpectAnyMessage accepts whatever frontend message arrives next.
func ExpectAnyMessage() Step { return &expectStep{} }

// ExpectMessageType accepts the next frontend message only if its type byte
// matches t (e.g. 'Q' for Query, 'P' for Parse, 'f' for CopyFail).
func ExpectMessageType(t byte) Step { return &expectStep{msgType: t} }

type sendStep struct {
	msg pgproto3.BackendMessage
}

func (s *sendStep) Run(conn net.Conn, cr *chunkreader.ChunkReader) error {
	buf := s.msg.Encode(nil)
	_, err := conn.Write(buf)
	return err
}

// SendMessage encodes and writes one backend message.
func SendMessage(msg pgproto3.BackendMessage) Step { return &sendStep{msg: msg} }

type funcStep struct {
	fn func(conn net.Conn, cr *chunkreader.ChunkReader) error
}

func (f *funcStep) Run(conn net.Conn, cr *chunkreader.ChunkReader) error { return f.fn(conn, cr) }

// Func wraps an arbitrary step, for cases the canned steps don't cover (e.g.
// reading several CopyData frontend messages until CopyDone).
func Func(fn func(conn net.Conn, cr *chunkreader.ChunkReader) error) Step { return &funcStep{fn: fn} }

// SimpleQueryOkScript replies to one simple-query-protocol statement with a
// single-row TuplesOk result, mirroring the shape Cursor.Execute expects.
func SimpleQueryOkScript(fields []pgproto3.FieldDescription, rows [][][]byte, tag string) *Script {
	steps := []Step{ExpectMessageType('Q')}
	if len(fields) > 0 {
		steps = append(steps, SendMessage(&pgproto3.RowDescription{Fields: fields}))
		for _, row := range rows {
			steps = append(steps, SendMessage(&pgproto3.DataRow{Values: row}))
		}
	}
	steps = append(steps,
		SendMessage(&pgproto3.CommandComplete{CommandTag: []byte(tag)}),
		SendMessage(&pgproto3.ReadyForQuery{TxStatus: 'I'}),
	)
	return &Script{Steps: steps}
}
