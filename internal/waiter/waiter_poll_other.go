//go:build !(aix || android || darwin || dragonfly || freebsd || hurd || illumos || ios || linux || netbsd || openbsd || solaris)

package waiter

import (
	"context"
	"time"

	"github.com/jackc/pgxproto/internal/proto"
)

// awaitReady on platforms without golang.org/x/sys/unix.Poll support falls
// back to the fixed-interval optimistic retry; there is no portable way to
// multiplex on a raw descriptor outside the unix poll(2) family.
func awaitReady(ctx context.Context, tick time.Duration, yield proto.Yield) (proto.Ready, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(tick):
		return readyFor(yield.Want), nil
	}
}
