// Package waiter implements the two interchangeable drivers (spec component
// C) that run a protocol generator to completion: a blocking one and a
// cooperative one built on a goroutine + channel latch standing in for an
// external event loop's on_readable/on_writable registration. Both drive
// genuine readiness: when a Yield carries a real file descriptor, the wait
// is satisfied by an actual poll(2) on that fd (see waiter_poll_unix.go),
// not a blind sleep-then-resume.
package waiter

import (
	"context"
	"time"

	"github.com/jackc/pgxproto/internal/proto"
)

// DefaultTick bounds how often a Yield with no real file descriptor (e.g.
// an in-memory net.Pipe in tests) is optimistically retried, and how often
// a real poll(2) wait re-checks ctx cancellation between timeouts.
const DefaultTick = 2 * time.Millisecond

func readyFor(want proto.Want) proto.Ready {
	// Step 1 of the generator's flush phase yields (fd, ReadWrite) and
	// explicitly expects to be resumed with Read so it drains any pending
	// error/notice bytes before retrying the flush; Write-only yields are
	// fed back Write.
	if want == proto.WantWrite {
		return proto.ReadyWrite
	}
	return proto.ReadyRead
}

// Blocking drives a generator using awaitReady as its readiness source,
// checking ctx for cancellation between attempts.
type Blocking struct {
	Tick time.Duration
}

// Wait runs gen to completion or until ctx is done.
func Wait[T any](ctx context.Context, w Blocking, gen proto.Generator[T]) (T, error) {
	tick := w.Tick
	if tick <= 0 {
		tick = DefaultTick
	}

	var ready proto.Ready
	for {
		yield, done := gen.Resume(ready)
		if done {
			return gen.Value(), gen.Err()
		}

		r, err := awaitReady(ctx, tick, yield)
		if err != nil {
			var zero T
			return zero, err
		}
		ready = r
	}
}

// Cooperative drives a generator from a single-shot latch fed by a watcher
// goroutine per yield, so the calling goroutine never busy-polls: it parks
// on the latch channel until the watcher (standing in for an event loop's
// on_readable/on_writable registration, backed by a genuine poll(2) wait
// when a file descriptor is available) fires it, and deregisters (cancels
// the watcher's context) before resuming or propagating cancellation.
type Cooperative struct {
	Tick time.Duration
}

// WaitCooperative runs gen to completion, honoring ctx cancellation. On
// cancellation it stops the in-flight watcher goroutine before returning,
// mirroring the spec's "deregister readiness callbacks before propagating"
// requirement.
func WaitCooperative[T any](ctx context.Context, w Cooperative, gen proto.Generator[T]) (T, error) {
	tick := w.Tick
	if tick <= 0 {
		tick = DefaultTick
	}

	var ready proto.Ready
	for {
		yield, done := gen.Resume(ready)
		if done {
			return gen.Value(), gen.Err()
		}

		watchCtx, deregister := context.WithCancel(ctx)
		latch := make(chan proto.Ready, 1)
		errCh := make(chan error, 1)
		go func() {
			r, err := awaitReady(watchCtx, tick, yield)
			if err != nil {
				errCh <- err
				return
			}
			latch <- r
		}()

		select {
		case <-ctx.Done():
			deregister()
			var zero T
			return zero, ctx.Err()
		case err := <-errCh:
			deregister()
			var zero T
			return zero, err
		case r := <-latch:
			deregister()
			ready = r
		}
	}
}
