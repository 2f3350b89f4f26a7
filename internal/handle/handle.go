// Package handle implements the non-blocking wire handle (spec component A):
// a thin state machine over the frontend/backend protocol exposing the exact
// primitives the protocol generator (internal/proto) drives: SendQuery,
// SendQueryParams, SendPrepare, SendQueryPrepared, ConsumeInput, IsBusy,
// GetResult, Flush, PutCopyData, PutCopyEnd, GetCopyData.
//
// Connection establishment, authentication and startup parameter negotiation
// happen before a Handle exists; a Handle always starts from an already
// established byte stream.
package handle

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	pgproto3 "github.com/jackc/pgproto3/v2"

	"github.com/jackc/pgxproto/internal/wire"
)

// Transaction status bytes reported in ReadyForQuery, matching the plain
// byte pgproto3.ReadyForQuery.TxStatus carries.
const (
	TxStatusIdle    byte = 'I'
	TxStatusInTx    byte = 'T'
	TxStatusInError byte = 'E'
)

// describeStatement and describePortal are the two valid ObjectType bytes
// for a Describe message.
const (
	describeStatement byte = 'S'
	describePortal    byte = 'P'
)

// inboundBuffer is the io.Reader pgproto3.Frontend reads from. It never
// blocks: Read returns wire.ErrWouldBlock once its buffered bytes are
// exhausted, letting the handle tell "not enough data yet" apart from a
// real I/O fault without touching the socket itself.
type inboundBuffer struct {
	buf []byte
}

func (b *inboundBuffer) push(p []byte) {
	b.buf = append(b.buf, p...)
}

func (b *inboundBuffer) Read(p []byte) (int, error) {
	if len(b.buf) == 0 {
		return 0, wire.ErrWouldBlock
	}
	n := copy(p, b.buf)
	b.buf = b.buf[n:]
	return n, nil
}

// Handle is one PostgreSQL session's wire-level driver.
type Handle struct {
	conn *wire.Conn
	in   *inboundBuffer
	fe   *pgproto3.Frontend

	building    *Result
	completed   []*Result
	copyChunks  [][]byte
	readyForQry bool
	txStatus    byte
	clientEncNm string
	err         error // sticky connection-level error
	notifies    []pgproto3.NotificationResponse
}

// New wraps an already-connected stream as a Handle. clientEncoding is the
// connection's negotiated encoding (established out of band).
func New(nc *wire.Conn, clientEncoding string) *Handle {
	h := &Handle{
		conn:        nc,
		clientEncNm: clientEncoding,
		txStatus:    TxStatusIdle,
	}
	h.in = &inboundBuffer{}
	// The Frontend is used only for decoding BackendMessages received off
	// h.in; outgoing messages are encoded directly and queued through
	// wire.Conn's own non-blocking write buffer (see enqueue), so the
	// writer side of the Frontend is never exercised.
	h.fe = pgproto3.NewFrontend(h.in, io.Discard)
	return h
}

// Err returns the sticky connection-level error, if the stream has broken.
func (h *Handle) Err() error { return h.err }

// Close closes the underlying connection.
func (h *Handle) Close() error { return h.conn.Close() }

// Fd returns the underlying connection's file descriptor, and whether one
// was available (false for e.g. an in-memory net.Pipe conn in tests).
func (h *Handle) Fd() (uintptr, bool) { return h.conn.Fd() }

// ClientEncoding is the connection's negotiated encoding name, e.g. "UTF8".
func (h *Handle) ClientEncoding() string { return h.clientEncNm }

// TransactionStatus is the status byte reported by the most recent
// ReadyForQuery ('I' idle, 'T' in a transaction, 'E' in a failed one).
func (h *Handle) TransactionStatus() byte { return h.txStatus }

// Notifies drains any pending asynchronous NOTIFY messages.
func (h *Handle) Notifies() []pgproto3.NotificationResponse {
	n := h.notifies
	h.notifies = nil
	return n
}

// resetForNewOperation clears per-operation bookkeeping. Called by each
// Send* entry point; callers must guarantee (via the cursor's lock) that at
// most one operation is in flight.
func (h *Handle) resetForNewOperation() {
	h.building = nil
	h.completed = nil
	h.copyChunks = nil
	h.readyForQry = false
}

func (h *Handle) enqueue(msgs ...pgproto3.FrontendMessage) {
	var buf []byte
	for _, m := range msgs {
		buf = m.Encode(buf)
	}
	h.conn.QueueWrite(buf)
}

// SendQuery issues the simple query protocol, which may contain more than
// one ';'-separated statement.
func (h *Handle) SendQuery(sql string) error {
	h.resetForNewOperation()
	h.enqueue(&pgproto3.Query{String: sql})
	return nil
}

// SendQueryParams issues one statement through the extended protocol using
// the unnamed statement and portal, with explicit parameter/result formats
// and parameter type OIDs.
func (h *Handle) SendQueryParams(sql string, params [][]byte, paramFormats []int16, paramOIDs []uint32, resultFormat int16) error {
	h.resetForNewOperation()
	h.enqueue(
		&pgproto3.Parse{Query: sql, ParameterOIDs: paramOIDs},
		&pgproto3.Bind{
			ParameterFormatCodes: paramFormats,
			Parameters:           params,
			ResultFormatCodes:    []int16{resultFormat},
		},
		&pgproto3.Describe{ObjectType: describePortal},
		&pgproto3.Execute{},
		&pgproto3.Sync{},
	)
	return nil
}

// SendPrepare creates a named (or, with an empty name, unnamed) prepared
// statement.
func (h *Handle) SendPrepare(name, sql string, paramOIDs []uint32) error {
	h.resetForNewOperation()
	h.enqueue(&pgproto3.Parse{Name: name, Query: sql, ParameterOIDs: paramOIDs}, &pgproto3.Sync{})
	return nil
}

// SendQueryPrepared binds params to the named prepared statement and
// executes it.
func (h *Handle) SendQueryPrepared(name string, params [][]byte, paramFormats []int16, resultFormat int16) error {
	h.resetForNewOperation()
	h.enqueue(
		&pgproto3.Bind{
			PreparedStatement:    name,
			ParameterFormatCodes: paramFormats,
			Parameters:           params,
			ResultFormatCodes:    []int16{resultFormat},
		},
		&pgproto3.Describe{ObjectType: describePortal},
		&pgproto3.Execute{},
		&pgproto3.Sync{},
	)
	return nil
}

// Flush attempts to send all queued output. It returns wire.ErrWouldBlock if
// the socket buffer is still full; the caller (via the waiter) should wait
// for writability and call Flush again.
func (h *Handle) Flush() error {
	if h.err != nil {
		return h.err
	}
	err := h.conn.Flush()
	if err != nil && err != wire.ErrWouldBlock {
		h.err = err
	}
	return err
}

// ConsumeInput performs one non-blocking read of whatever bytes are
// available and processes any complete messages they yield. It never blocks;
// wire.ErrWouldBlock from the underlying read is not an error here, it just
// means there was nothing to read yet.
func (h *Handle) ConsumeInput() error {
	if h.err != nil {
		return h.err
	}

	buf := make([]byte, 65536)
	n, err := h.conn.ReadAvailable(buf)
	if n > 0 {
		h.in.push(buf[:n])
	}
	if err != nil && err != wire.ErrWouldBlock {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		h.err = fmt.Errorf("connection closed: %w", err)
		return h.err
	}

	for {
		msg, err := h.fe.Receive()
		if err != nil {
			if err == wire.ErrWouldBlock {
				return nil // no complete message buffered yet
			}
			h.err = err
			return err
		}
		h.process(msg)
	}
}

func (h *Handle) process(msg pgproto3.BackendMessage) {
	switch m := msg.(type) {
	case *pgproto3.RowDescription:
		fields := make([]FieldDescription, len(m.Fields))
		for i, f := range m.Fields {
			fields[i] = FieldDescription{Name: f.Name, TypeOID: f.DataTypeOID, Format: f.Format, Size: f.DataTypeSize, Modifier: f.TypeModifier}
		}
		h.building = &Result{Status: StatusTuplesOk, Fields: fields}
	case *pgproto3.DataRow:
		if h.building == nil {
			h.building = &Result{Status: StatusTuplesOk}
		}
		h.building.appendRow(m.Values)
	case *pgproto3.CommandComplete:
		r := h.building
		if r == nil {
			r = &Result{Status: StatusCommandOk}
		}
		if n, ok := parseCommandTag(string(m.CommandTag)); ok {
			r.CommandTuples = &n
		}
		h.building = nil
		h.completed = append(h.completed, r)
	case *pgproto3.EmptyQueryResponse:
		h.completed = append(h.completed, &Result{Status: StatusEmptyQuery})
	case *pgproto3.CopyInResponse:
		h.completed = append(h.completed, &Result{Status: StatusCopyIn, BinaryTuples: m.OverallFormat == 1, CopyColumnFormat: m.ColumnFormatCodes})
	case *pgproto3.CopyOutResponse:
		h.completed = append(h.completed, &Result{Status: StatusCopyOut, BinaryTuples: m.OverallFormat == 1, CopyColumnFormat: m.ColumnFormatCodes})
	case *pgproto3.CopyBothResponse:
		h.completed = append(h.completed, &Result{Status: StatusCopyBoth, BinaryTuples: m.OverallFormat == 1, CopyColumnFormat: m.ColumnFormatCodes})
	case *pgproto3.CopyData:
		h.copyChunks = append(h.copyChunks, m.Data)
	case *pgproto3.CopyDone:
		// the terminal CommandComplete follows; nothing to do yet.
	case *pgproto3.ErrorResponse:
		h.building = nil
		h.completed = append(h.completed, &Result{Status: StatusFatalError, Err: m})
	case *pgproto3.NoticeResponse:
		// notices are logged by the caller's tracer, not surfaced here.
	case *pgproto3.ParameterStatus:
		if m.Name == "client_encoding" {
			h.clientEncNm = m.Value
		}
	case *pgproto3.NotificationResponse:
		h.notifies = append(h.notifies, *m)
	case *pgproto3.ReadyForQuery:
		h.txStatus = m.TxStatus
		h.readyForQry = true
	case *pgproto3.ParseComplete, *pgproto3.BindComplete, *pgproto3.BackendKeyData:
		// acks with no state to update.
	}
}

// IsBusy reports whether another result is still expected before the caller
// may safely call GetResult without risking it returning a stale nil.
func (h *Handle) IsBusy() bool {
	return len(h.completed) == 0 && !h.readyForQry
}

// GetResult dequeues one completed Result, or nil if none remain for the
// current operation (the caller has reached ReadyForQuery with an empty
// queue).
func (h *Handle) GetResult() *Result {
	if len(h.completed) == 0 {
		return nil
	}
	r := h.completed[0]
	h.completed = h.completed[1:]
	return r
}

// PutCopyData queues one chunk of COPY IN data and attempts to flush it.
// sent=false (err==nil) means the data is queued but the socket write would
// have blocked; the caller should yield for writability and call Flush
// (not PutCopyData again) until it returns nil.
func (h *Handle) PutCopyData(data []byte) (sent bool, err error) {
	h.enqueue(&pgproto3.CopyData{Data: data})
	err = h.Flush()
	if err == nil {
		return true, nil
	}
	if err == wire.ErrWouldBlock {
		return false, nil
	}
	return false, err
}

// PutCopyEnd queues the COPY terminator: CopyDone on success, CopyFail with
// errMsg on client-initiated abort.
func (h *Handle) PutCopyEnd(errMsg string) (sent bool, err error) {
	var msg pgproto3.FrontendMessage
	if errMsg == "" {
		msg = &pgproto3.CopyDone{}
	} else {
		msg = &pgproto3.CopyFail{Message: errMsg}
	}
	h.enqueue(msg, &pgproto3.Sync{})
	err = h.Flush()
	if err == nil {
		return true, nil
	}
	if err == wire.ErrWouldBlock {
		return false, nil
	}
	return false, err
}

// CopyDataOutcome is the result of one GetCopyData poll.
type CopyDataOutcome int

const (
	CopyDataWait CopyDataOutcome = iota
	CopyDataBytes
	CopyDataDone
)

// GetCopyData returns the next buffered COPY OUT chunk, or signals that the
// caller must wait for more input, or that the COPY has terminated (the
// terminal Result is now available via GetResult).
func (h *Handle) GetCopyData() (data []byte, outcome CopyDataOutcome) {
	if len(h.copyChunks) > 0 {
		d := h.copyChunks[0]
		h.copyChunks = h.copyChunks[1:]
		return d, CopyDataBytes
	}
	if len(h.completed) > 0 {
		return nil, CopyDataDone
	}
	return nil, CopyDataWait
}

func parseCommandTag(tag string) (int64, bool) {
	i := strings.LastIndexByte(tag, ' ')
	if i < 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(tag[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
