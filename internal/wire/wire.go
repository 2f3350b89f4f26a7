// Package wire adapts a net.Conn into the non-blocking read/write primitives
// the protocol engine needs, using the same deadline-trick "fake" non-blocking
// I/O the teacher's internal/nbconn package uses for its portable code path.
package wire

import (
	"errors"
	"net"
	"syscall"
	"time"
)

// ErrWouldBlock is returned by Read/Write when the operation could not be
// completed without blocking.
var ErrWouldBlock = errors.New("would block")

// Conn wraps a net.Conn to expose non-blocking Read/Write plus an explicit
// Flush-until-would-block helper for write buffering.
type Conn struct {
	nc  net.Conn
	out []byte // bytes queued by Write, not yet flushed to nc

	fd    uintptr
	hasFD bool
}

// New wraps nc. If nc exposes a raw file descriptor (true for *net.TCPConn
// and *net.UnixConn, false for e.g. net.Pipe's in-memory conn), it is
// captured once here so the waiter can multiplex readiness on it instead of
// guessing with a fixed retry interval.
func New(nc net.Conn) *Conn {
	c := &Conn{nc: nc}
	if sc, ok := nc.(syscall.Conn); ok {
		if rawConn, err := sc.SyscallConn(); err == nil {
			_ = rawConn.Control(func(fd uintptr) {
				c.fd = fd
				c.hasFD = true
			})
		}
	}
	return c
}

// Raw returns the underlying net.Conn, e.g. for setting socket options.
func (c *Conn) Raw() net.Conn { return c.nc }

// Fd returns the connection's underlying file descriptor, and whether one
// was available. It is captured once in New and never changes afterward, so
// it is safe to read from a different goroutine than the one driving reads
// and writes (the waiter's poll loop does exactly that).
func (c *Conn) Fd() (uintptr, bool) { return c.fd, c.hasFD }

// QueueWrite appends p to the outbound buffer. It never blocks.
func (c *Conn) QueueWrite(p []byte) {
	c.out = append(c.out, p...)
}

// Pending reports whether QueueWrite'd bytes remain unflushed.
func (c *Conn) Pending() bool { return len(c.out) > 0 }

// Flush attempts to write all queued bytes without blocking. It returns
// ErrWouldBlock if the socket buffer filled before everything was sent;
// callers should wait for writability and call Flush again.
func (c *Conn) Flush() error {
	for len(c.out) > 0 {
		n, err := c.nonblockingWrite(c.out)
		if n > 0 {
			c.out = c.out[n:]
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrWouldBlock
		}
	}
	return nil
}

// ReadAvailable performs one non-blocking read, returning whatever bytes are
// immediately available. It returns ErrWouldBlock (with no data) if nothing
// is available yet, or an error (including io.EOF) if the connection broke.
func (c *Conn) ReadAvailable(buf []byte) (int, error) {
	return c.nonblockingRead(buf)
}

// fakeNonblockingReadWaitDuration is the deadline used to probe readability
// without a real non-blocking socket mode. It mirrors the teacher's
// nbconn fake-non-blocking techinque (minNonblockingReadWaitDuration).
const fakeNonblockingReadWaitDuration = time.Microsecond

func (c *Conn) nonblockingRead(buf []byte) (int, error) {
	if err := c.nc.SetReadDeadline(time.Now().Add(fakeNonblockingReadWaitDuration)); err != nil {
		return 0, err
	}
	n, err := c.nc.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return n, ErrWouldBlock
		}
		return n, err
	}
	return n, nil
}

func (c *Conn) nonblockingWrite(buf []byte) (int, error) {
	if err := c.nc.SetWriteDeadline(time.Now().Add(fakeNonblockingReadWaitDuration)); err != nil {
		return 0, err
	}
	n, err := c.nc.Write(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return n, nil // partial or zero write; caller retries
		}
		return n, err
	}
	return n, nil
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.nc.Close() }
