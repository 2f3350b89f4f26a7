package pgxproto

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/jackc/pgxproto/internal/adapt"
	"github.com/jackc/pgxproto/internal/handle"
	"github.com/jackc/pgxproto/internal/proto"
)

// binaryCopyHeader is PostgreSQL's fixed binary-COPY prologue: an 11-byte
// signature, a 4-byte flags field (always zero here; no OIDs, no
// extensions), and a 4-byte header-extension length (always zero).
var binaryCopyHeader = []byte("PGCOPY\n\xff\r\n\x00" + "\x00\x00\x00\x00" + "\x00\x00\x00\x00")

// binaryCopyTrailer is the int16(-1) field-count sentinel marking end of
// binary tuple data.
var binaryCopyTrailer = []byte{0xff, 0xff}

// Copy is one COPY IN/OUT/BOTH sub-protocol session, opened by
// Cursor.Copy. It is single-shot: once Finish, Cancel, or the OUT stream's
// end is reached, the session is done and a Cursor is free for its next
// operation.
type Copy struct {
	conn      *Conn
	result    *handle.Result
	direction handle.Status
	binary    bool

	release func()
	done    bool

	wroteHeader bool
	wroteRow    bool
	readHeader  bool // binary COPY OUT: whether the signature prologue has been consumed

	inbuf []byte // unconsumed bytes from the most recent COPY OUT chunk

	iterErr error // set by Next on failure; retrieved with Err
}

func newCopy(conn *Conn, result *handle.Result, release func()) *Copy {
	return &Copy{
		conn:      conn,
		result:    result,
		direction: result.Status,
		binary:    result.BinaryTuples,
		release:   release,
	}
}

// IsBinary reports whether the server negotiated binary framing for this
// COPY.
func (cp *Copy) IsBinary() bool { return cp.binary }

func (cp *Copy) checkWritable() error {
	if cp.done {
		return fmt.Errorf("%w: copy session already finished", ErrProgramming)
	}
	if cp.direction == handle.StatusCopyOut {
		return fmt.Errorf("%w: this COPY is server-to-client, use ReadRow", ErrProgramming)
	}
	return nil
}

func (cp *Copy) checkReadable() error {
	if cp.done {
		return fmt.Errorf("%w: copy session already finished", ErrProgramming)
	}
	if cp.direction == handle.StatusCopyIn {
		return fmt.Errorf("%w: this COPY is client-to-server, use WriteRow", ErrProgramming)
	}
	return nil
}

func (cp *Copy) ensureHeader() []byte {
	if cp.wroteHeader || !cp.binary {
		return nil
	}
	cp.wroteHeader = true
	return binaryCopyHeader
}

// WriteRow dumps values through the connection's Transformer and sends one
// COPY row, text or binary framed according to what the server negotiated.
func (cp *Copy) WriteRow(ctx context.Context, values []any) error {
	if err := cp.checkWritable(); err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.Write(cp.ensureHeader())

	if cp.binary {
		if err := formatRowBinary(&buf, cp.conn.xf, values); err != nil {
			return wrapSentinel(err, ErrDataError)
		}
	} else {
		if err := formatRowText(&buf, cp.conn.xf, values); err != nil {
			return wrapSentinel(err, ErrDataError)
		}
	}
	cp.wroteRow = true

	_, err := runBlocking(ctx, proto.CopyTo(cp.conn.h, buf.Bytes()))
	return err
}

// formatRowBinary appends one row in PostgreSQL's binary COPY tuple format:
// int16 field count, then per field int32(len)+bytes or -1 for NULL.
// Grounded on psycopg3's copy.py _format_row_binary.
func formatRowBinary(buf *bytes.Buffer, xf *adapt.Transformer, values []any) error {
	var countBuf [2]byte
	binary.BigEndian.PutUint16(countBuf[:], uint16(len(values)))
	buf.Write(countBuf[:])

	for _, v := range values {
		data, _, err := xf.Dump(v, adapt.Binary)
		if err != nil {
			return err
		}
		var lenBuf [4]byte
		if data == nil {
			binary.BigEndian.PutUint32(lenBuf[:], 0xffffffff)
			buf.Write(lenBuf[:])
			continue
		}
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
		buf.Write(lenBuf[:])
		buf.Write(data)
	}
	return nil
}

// copyTextEscaper escapes the bytes PostgreSQL's COPY text format requires
// backslash-escaped within a field: backslash itself and the control
// characters that double as row/field delimiters.
func copyTextEscaper(b byte) (escaped byte, needsEscape bool) {
	switch b {
	case '\\':
		return '\\', true
	case '\b':
		return 'b', true
	case '\t':
		return 't', true
	case '\n':
		return 'n', true
	case '\v':
		return 'v', true
	case '\f':
		return 'f', true
	case '\r':
		return 'r', true
	}
	return 0, false
}

// formatRowText appends one row in PostgreSQL's text COPY format: fields
// separated by '\t', row terminated by '\n', NULL spelled "\N", and
// backslash-escaping for the bytes copyTextEscaper recognizes. Grounded on
// psycopg3's copy.py _format_row_text.
func formatRowText(buf *bytes.Buffer, xf *adapt.Transformer, values []any) error {
	for i, v := range values {
		if i > 0 {
			buf.WriteByte('\t')
		}
		data, _, err := xf.Dump(v, adapt.Text)
		if err != nil {
			return err
		}
		if data == nil {
			buf.WriteString(`\N`)
			continue
		}
		for _, b := range data {
			if esc, ok := copyTextEscaper(b); ok {
				buf.WriteByte('\\')
				buf.WriteByte(esc)
			} else {
				buf.WriteByte(b)
			}
		}
	}
	buf.WriteByte('\n')
	return nil
}

// Finish completes a client-to-server COPY normally, emitting the binary
// trailer first if this session wrote at least one binary row and a
// CopyDone otherwise. It returns the terminal command-complete Result.
func (cp *Copy) Finish(ctx context.Context) (*handle.Result, error) {
	if err := cp.checkWritable(); err != nil {
		return nil, err
	}
	defer cp.finish()

	if cp.binary && cp.wroteRow {
		if _, err := runBlocking(ctx, proto.CopyTo(cp.conn.h, binaryCopyTrailer)); err != nil {
			return nil, err
		}
	}
	return runBlocking(ctx, proto.CopyEnd(cp.conn.h, ""))
}

// Cancel aborts a client-to-server COPY, reporting reason to the server as
// the cause (wrapped the way psycopg3 reports an abrupt Python-side
// exception during a copy block: "error from client: <reason>").
func (cp *Copy) Cancel(ctx context.Context, reason string) (*handle.Result, error) {
	if err := cp.checkWritable(); err != nil {
		return nil, err
	}
	defer cp.finish()

	msg := fmt.Sprintf("error from client: %s", reason)
	return runBlocking(ctx, proto.CopyEnd(cp.conn.h, msg))
}

// ReadRow returns the next server-to-client COPY row as raw per-field
// bytes (nil entries are SQL NULL), or (nil, nil) once the COPY has ended.
// Unlike Execute's result rows, COPY OUT carries no column OIDs, so fields
// are returned undecoded; the caller loads them through Transformer.Load if
// it knows the expected types.
func (cp *Copy) ReadRow(ctx context.Context) ([][]byte, error) {
	if err := cp.checkReadable(); err != nil {
		return nil, err
	}

	for {
		if cp.binary {
			row, ok, err := cp.tryParseBinaryRow()
			if err != nil {
				return nil, wrapSentinel(err, ErrBadCopyFileFormat)
			}
			if ok {
				return row, nil
			}
		} else {
			row, ok, err := cp.tryParseTextRow()
			if err != nil {
				return nil, wrapSentinel(err, ErrBadCopyFileFormat)
			}
			if ok {
				return row, nil
			}
		}

		outcome, err := runBlocking(ctx, proto.CopyFrom(cp.conn.h))
		if err != nil {
			return nil, err
		}
		if outcome.Final != nil {
			cp.finish()
			if len(cp.inbuf) > 0 {
				return nil, fmt.Errorf("%w: trailing bytes after COPY OUT stream ended", ErrBadCopyFileFormat)
			}
			return nil, nil
		}
		cp.inbuf = append(cp.inbuf, outcome.Data...)
		if cp.binary && !cp.readHeader {
			if len(cp.inbuf) < len(binaryCopyHeader) {
				continue
			}
			if !bytes.Equal(cp.inbuf[:len(binaryCopyHeader)], binaryCopyHeader) {
				return nil, fmt.Errorf("%w: binary COPY stream missing signature", ErrBadCopyFileFormat)
			}
			cp.inbuf = cp.inbuf[len(binaryCopyHeader):]
			cp.readHeader = true
		}
	}
}

// Next returns the next raw, undecoded chunk of a server-to-client COPY
// stream exactly as it arrived off the wire (unlike ReadRow, it performs no
// row framing at all, binary header included on the first chunk), for a
// caller that wants to stream COPY OUT straight to a file or pipe. It
// reports ok=false once the stream's first empty chunk arrives or the COPY
// has ended; Err distinguishes the two.
func (cp *Copy) Next(ctx context.Context) (data []byte, ok bool) {
	if err := cp.checkReadable(); err != nil {
		cp.iterErr = err
		return nil, false
	}

	if len(cp.inbuf) > 0 {
		data, cp.inbuf = cp.inbuf, nil
		return data, true
	}

	outcome, err := runBlocking(ctx, proto.CopyFrom(cp.conn.h))
	if err != nil {
		cp.iterErr = err
		return nil, false
	}
	if outcome.Final != nil {
		cp.finish()
		return nil, false
	}
	if len(outcome.Data) == 0 {
		return nil, false
	}
	return outcome.Data, true
}

// Err reports the error, if any, that caused the most recent Next call to
// return ok=false. A nil Err after ok=false means the COPY stream simply
// ended.
func (cp *Copy) Err() error { return cp.iterErr }

func (cp *Copy) tryParseBinaryRow() (row [][]byte, ok bool, err error) {
	if !cp.readHeader {
		return nil, false, nil // header not yet consumed
	}
	if len(cp.inbuf) < 2 {
		return nil, false, nil
	}
	n := int16(binary.BigEndian.Uint16(cp.inbuf[:2]))
	if n == -1 {
		cp.inbuf = cp.inbuf[2:]
		return nil, false, nil // trailer; let the caller drain to Final
	}
	pos := 2
	fields := make([][]byte, n)
	for i := 0; i < int(n); i++ {
		if len(cp.inbuf) < pos+4 {
			return nil, false, nil
		}
		size := int32(binary.BigEndian.Uint32(cp.inbuf[pos:]))
		pos += 4
		if size == -1 {
			fields[i] = nil
			continue
		}
		if len(cp.inbuf) < pos+int(size) {
			return nil, false, nil
		}
		fields[i] = append([]byte(nil), cp.inbuf[pos:pos+int(size)]...)
		pos += int(size)
	}
	cp.inbuf = cp.inbuf[pos:]
	return fields, true, nil
}

func (cp *Copy) tryParseTextRow() (row [][]byte, ok bool, err error) {
	nl := bytes.IndexByte(cp.inbuf, '\n')
	if nl < 0 {
		return nil, false, nil
	}
	line := cp.inbuf[:nl]
	cp.inbuf = cp.inbuf[nl+1:]

	var fields [][]byte
	start := 0
	for i := 0; i <= len(line); i++ {
		if i < len(line) && line[i] == '\\' {
			i++ // skip the escaped byte so an escaped tab is never mistaken for a delimiter
			continue
		}
		if i == len(line) || line[i] == '\t' {
			fields = append(fields, unescapeTextField(line[start:i]))
			start = i + 1
		}
	}
	return fields, true, nil
}

// unescapeTextField decodes one raw (still backslash-escaped) COPY text
// field, or returns nil for the literal "\N" NULL token.
func unescapeTextField(raw []byte) []byte {
	if len(raw) == 2 && raw[0] == '\\' && raw[1] == 'N' {
		return nil
	}
	if len(raw) == 0 {
		return []byte{}
	}
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			i++
			switch raw[i] {
			case 'b':
				out = append(out, '\b')
			case 't':
				out = append(out, '\t')
			case 'n':
				out = append(out, '\n')
			case 'v':
				out = append(out, '\v')
			case 'f':
				out = append(out, '\f')
			case 'r':
				out = append(out, '\r')
			default:
				out = append(out, raw[i])
			}
			continue
		}
		out = append(out, raw[i])
	}
	return out
}

func (cp *Copy) finish() {
	cp.done = true
	if cp.release != nil {
		cp.release()
	}
}
