// Package proto implements the protocol generator (spec component B): a
// resumable step machine that drives one logical wire operation (execute,
// COPY IN/OUT, COPY terminate) to completion, yielding a readiness intent
// whenever it would block. A Waiter (internal/waiter) is the only thing
// allowed to resume it.
package proto

import (
	"github.com/jackc/pgxproto/internal/handle"
	"github.com/jackc/pgxproto/internal/wire"
)

// Want is the readiness a generator is blocked on.
type Want int

const (
	WantRead Want = iota
	WantWrite
	WantReadWrite
)

// Ready is the readiness a Waiter observed and is feeding back in.
type Ready int

const (
	ReadyRead Ready = iota
	ReadyWrite
)

// Yield is what a Generator produces instead of its final value when it
// would otherwise block. FD and HasFD carry the socket_fd a Waiter should
// multiplex readiness on for Want; HasFD is false when the underlying
// connection exposed no real descriptor (e.g. an in-memory net.Pipe in
// tests), in which case the Waiter falls back to a fixed-interval retry.
type Yield struct {
	Want  Want
	FD    uintptr
	HasFD bool
}

// yieldFor builds a Yield for want, attaching h's file descriptor when one
// is available.
func yieldFor(h *handle.Handle, want Want) Yield {
	fd, ok := h.Fd()
	return Yield{Want: want, FD: fd, HasFD: ok}
}

// Generator is a resumable procedure. The very first call must pass an
// arbitrary Ready value (ignored); every subsequent call passes the
// readiness the Waiter actually observed for the most recently yielded Want.
// done is false while the generator still has work to do; once true, Value
// holds its result and Err holds any error.
type Generator[T any] interface {
	Resume(ready Ready) (yield Yield, done bool)
	Value() T
	Err() error
}

// step is the concrete Generator implementation shared by all four
// operation shapes; only the stepFunc differs between them.
type step[T any] struct {
	fn    func(ready Ready) (Yield, bool, error)
	value T
	err   error
	done  bool
}

func (s *step[T]) Resume(ready Ready) (Yield, bool) {
	if s.done {
		return Yield{}, true
	}
	y, done, err := s.fn(ready)
	if done {
		s.done = true
		s.err = err
	}
	return y, done
}

func (s *step[T]) Value() T    { return s.value }
func (s *step[T]) Err() error  { return s.err }

// Execute drives h through flush-then-drain and returns the accumulated
// results of one send_query/send_query_params/send_prepare/
// send_query_prepared call. If an intermediate result carries a COPY
// status, it returns immediately with just that result.
func Execute(h *handle.Handle) Generator[[]*handle.Result] {
	s := &step[[]*handle.Result]{}
	phase := 0 // 0 = flushing, 1 = draining
	var results []*handle.Result

	s.fn = func(ready Ready) (Yield, bool, error) {
		for {
			switch phase {
			case 0:
				err := h.Flush()
				if err == nil {
					phase = 1
					continue
				}
				if isWouldBlock(err) {
					// Drain whatever the server has already sent (e.g. a
					// fatal error that made it stop reading) so a hung
					// write never masks a response already waiting.
					if err := h.ConsumeInput(); err != nil {
						return Yield{}, true, err
					}
					return yieldFor(h, WantReadWrite), false, nil
				}
				return Yield{}, true, err
			case 1:
				if err := h.ConsumeInput(); err != nil {
					return Yield{}, true, err
				}
				if h.IsBusy() {
					return yieldFor(h, WantRead), false, nil
				}
				r := h.GetResult()
				if r == nil {
					s.value = results
					return Yield{}, true, nil
				}
				results = append(results, r)
				if r.Status.IsCopy() {
					s.value = results
					return Yield{}, true, nil
				}
				continue
			}
		}
	}
	return s
}

// drainOne consumes whatever input is available and dequeues the next
// completed Result, for the generators below that already have the flush
// phase behind them by construction.
func drainOne(h *handle.Handle) (result *handle.Result, busy bool, err error) {
	if err := h.ConsumeInput(); err != nil {
		return nil, false, err
	}
	if h.IsBusy() {
		return nil, true, nil
	}
	return h.GetResult(), false, nil
}

// CopyFrom implements one server->client COPY chunk read. On Done it
// returns the COPY's terminal Result (having drained through ReadyForQuery);
// on Bytes it returns that chunk.
type CopyFromOutcome struct {
	Data  []byte
	Final *handle.Result
}

func CopyFrom(h *handle.Handle) Generator[CopyFromOutcome] {
	s := &step[CopyFromOutcome]{}
	draining := false

	s.fn = func(ready Ready) (Yield, bool, error) {
		for {
			if !draining {
				if err := h.ConsumeInput(); err != nil {
					return Yield{}, true, err
				}
				data, outcome := h.GetCopyData()
				switch outcome {
				case handle.CopyDataBytes:
					s.value = CopyFromOutcome{Data: data}
					return Yield{}, true, nil
				case handle.CopyDataDone:
					draining = true
					continue
				case handle.CopyDataWait:
					return yieldFor(h, WantRead), false, nil
				}
			}

			r, busy, err := drainOne(h)
			if err != nil {
				return Yield{}, true, err
			}
			if busy {
				return yieldFor(h, WantRead), false, nil
			}
			if r == nil {
				// Should not happen: a Done outcome guarantees a terminal
				// Result was already queued.
				return Yield{}, true, errNoTerminalResult
			}
			s.value = CopyFromOutcome{Final: r}
			return Yield{}, true, nil
		}
	}
	return s
}

// CopyTo implements one client->server COPY chunk write.
func CopyTo(h *handle.Handle, buf []byte) Generator[struct{}] {
	s := &step[struct{}]{}
	sent := false

	s.fn = func(ready Ready) (Yield, bool, error) {
		if !sent {
			ok, err := h.PutCopyData(buf)
			if err != nil {
				return Yield{}, true, err
			}
			if ok {
				return Yield{}, true, nil
			}
			sent = true
			return yieldFor(h, WantWrite), false, nil
		}
		err := h.Flush()
		if err == nil {
			return Yield{}, true, nil
		}
		if isWouldBlock(err) {
			return yieldFor(h, WantWrite), false, nil
		}
		return Yield{}, true, err
	}
	return s
}

// CopyEnd terminates a COPY IN sub-protocol, with errMsg empty for a clean
// end or non-empty to abort with a client-initiated error. It drains
// through to the single terminal Result.
func CopyEnd(h *handle.Handle, errMsg string) Generator[*handle.Result] {
	s := &step[*handle.Result]{}
	sent := false

	s.fn = func(ready Ready) (Yield, bool, error) {
		for {
			if !sent {
				ok, err := h.PutCopyEnd(errMsg)
				if err != nil {
					return Yield{}, true, err
				}
				sent = true
				if ok {
					continue
				}
				// Queued but not fully flushed; retry the flush only, never
				// re-enqueue CopyDone/CopyFail+Sync.
				return yieldFor(h, WantWrite), false, nil
			}
			if err := h.Flush(); err != nil {
				if isWouldBlock(err) {
					return yieldFor(h, WantWrite), false, nil
				}
				return Yield{}, true, err
			}
			r, busy, err := drainOne(h)
			if err != nil {
				return Yield{}, true, err
			}
			if busy {
				return yieldFor(h, WantRead), false, nil
			}
			if r == nil {
				return Yield{}, true, errNoTerminalResult
			}
			s.value = r
			return Yield{}, true, nil
		}
	}
	return s
}

func isWouldBlock(err error) bool {
	return err == wire.ErrWouldBlock
}

type sentinelError string

func (e sentinelError) Error() string { return string(e) }

const errNoTerminalResult = sentinelError("internal error: expected a terminal result but none was queued")
