// Package bridge provides the blocking entry point through which dispatch
// workers invoke database operations. It bounds how many driver operations
// run at once and detaches operation completion from the caller's deadline:
// a caller that times out stops waiting, while the underlying operation
// runs to completion in the background and its result is discarded exactly
// once.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/opendevtool/dbbridge/pkg/adapter"
)

// ErrSlotWait marks errors returned while still waiting for an execution
// slot, before the operation was ever started. Callers holding per-call
// resources can use it to tell "never ran" apart from "ran past my
// deadline": in the latter case the operation itself still finishes and
// cleans up.
var ErrSlotWait = errors.New("no execution slot became available")

// DefaultMaxConcurrent is the slot count used when no limit is configured.
const DefaultMaxConcurrent = 32

// Bridge is shared by all connections and holds no connection-specific
// state. Operations on different connections never serialize through it
// beyond waiting for a free slot.
type Bridge struct {
	sem *semaphore.Weighted
}

// New creates a bridge with the given concurrency limit.
func New(maxConcurrent int64) *Bridge {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Bridge{
		sem: semaphore.NewWeighted(maxConcurrent),
	}
}

// Run submits op and blocks the calling goroutine until it completes or
// the timeout expires. On timeout the caller receives ErrTimeout while op
// keeps running in the background; its late result is dropped, never
// applied twice, and its slot is released when it actually finishes.
// A non-positive timeout means no deadline beyond ctx's own.
func Run[T any](ctx context.Context, b *Bridge, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	var zero T

	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := b.sem.Acquire(waitCtx, 1); err != nil {
		if waitCtx.Err() == context.DeadlineExceeded {
			return zero, fmt.Errorf("%w: %w after waiting %s", adapter.ErrTimeout, ErrSlotWait, timeout)
		}
		return zero, fmt.Errorf("%w: %w", ErrSlotWait, err)
	}

	type outcome struct {
		result T
		err    error
	}

	// Buffered so a post-timeout completion never blocks or leaks the
	// goroutine; the abandoned value is simply garbage collected.
	done := make(chan outcome, 1)

	// The operation deliberately outlives the caller's deadline, so it
	// runs on a context stripped of cancellation.
	opCtx := context.WithoutCancel(ctx)

	go func() {
		defer b.sem.Release(1)
		result, err := op(opCtx)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-waitCtx.Done():
		if waitCtx.Err() == context.DeadlineExceeded {
			return zero, fmt.Errorf("%w after %s", adapter.ErrTimeout, timeout)
		}
		return zero, waitCtx.Err()
	}
}
