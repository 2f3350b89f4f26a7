//go:build aix || android || darwin || dragonfly || freebsd || hurd || illumos || ios || linux || netbsd || openbsd || solaris

package waiter

import (
	"context"
	"time"

	"golang.org/x/sys/unix"

	"github.com/jackc/pgxproto/internal/proto"
)

// awaitReady blocks until yield's file descriptor reports genuine readiness
// for Want, ctx is done, or an I/O error occurs on the descriptor itself
// (POLLERR/POLLHUP). When the yield carries no descriptor (an in-memory
// net.Pipe, used throughout this package's tests, exposes none) it falls
// back to the fixed-interval optimistic retry this package used
// unconditionally before real polling existed.
func awaitReady(ctx context.Context, tick time.Duration, yield proto.Yield) (proto.Ready, error) {
	if !yield.HasFD {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(tick):
			return readyFor(yield.Want), nil
		}
	}

	var events int16
	switch yield.Want {
	case proto.WantWrite:
		events = unix.POLLOUT
	case proto.WantReadWrite:
		events = unix.POLLIN | unix.POLLOUT
	default:
		events = unix.POLLIN
	}

	timeoutMs := int(tick / time.Millisecond)
	if timeoutMs <= 0 {
		timeoutMs = 1
	}

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		pfd := []unix.PollFd{{Fd: int32(yield.FD), Events: events}}
		n, err := unix.Poll(pfd, timeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return 0, err
		}
		if n == 0 {
			continue // timed out with no readiness yet; re-check ctx and retry
		}

		revents := pfd[0].Revents
		if revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			return proto.ReadyRead, nil
		}
		if revents&unix.POLLOUT != 0 {
			return proto.ReadyWrite, nil
		}
	}
}
