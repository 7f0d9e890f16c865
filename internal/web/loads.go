package web

// loads.go bounds how many reloads read the data source at once.
//
// A reload re-reads the whole record set; with a database source each one
// holds a pool connection for the duration. The limiter is a semaphore: a
// reload waits up to maxWait for a slot before failing with
// ErrTooManyLoads. WaitForDrain lets shutdown wait for running reloads.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyLoads is returned when every load slot stays busy for the whole
// wait. Clients should retry after a short delay.
var ErrTooManyLoads = errors.New("too many concurrent reloads, please try again later")

// DefaultMaxConcurrentLoads is the default number of parallel reloads.
const DefaultMaxConcurrentLoads = 2

// DefaultMaxLoadWait is how long a reload waits for a slot.
const DefaultMaxLoadWait = 5 * time.Second

type loadLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration
	active    atomic.Int32
}

func newLoadLimiter(maxConcurrent int, maxWait time.Duration) *loadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentLoads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxLoadWait
	}
	return &loadLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire takes a slot. The caller must Release it.
func (l *loadLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-waitCtx.Done():
		// Distinguish the caller giving up from the wait running out.
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrTooManyLoads
	}
}

// Release returns a slot taken by Acquire.
func (l *loadLimiter) Release() {
	l.active.Add(-1)
	<-l.semaphore
}

// Active returns the number of reloads in progress.
func (l *loadLimiter) Active() int {
	return int(l.active.Load())
}

// WaitForDrain blocks until no reload is running or ctx is done.
func (l *loadLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.Active() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
