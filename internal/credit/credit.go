// Package credit implements a counting semaphore that supports granting
// credits ahead of demand, the pattern spec §4.2/§4.3 use to pace the
// stats processor behind the feeder: the feeder grants one credit per
// frame written (plus a sentinel burst on EOF) before anything has
// necessarily asked to acquire them yet.
//
// golang.org/x/sync/semaphore.Weighted does not fit this: its Release
// panics if cur drops below zero, i.e. it requires every Release to be
// preceded by a matching Acquire. Grounded on the teacher's
// internal/worker.Semaphore (a prefillable buffered-channel semaphore)
// and on internal/framebuffer's generation-channel notify pattern.
package credit

import (
	"context"
	"sync"
)

// Counter is a counting semaphore whose balance may go positive before
// any Acquire call, unlike golang.org/x/sync/semaphore.Weighted.
type Counter struct {
	mu        sync.Mutex
	available int64
	notify    chan struct{}
}

// New returns a Counter starting at zero available credits.
func New() *Counter {
	return &Counter{notify: make(chan struct{})}
}

// broadcast wakes every goroutine currently blocked in Acquire. Callers
// must hold c.mu.
func (c *Counter) broadcast() {
	close(c.notify)
	c.notify = make(chan struct{})
}

// Grant adds n credits to the balance, independent of whether anything
// is currently waiting to acquire them.
func (c *Counter) Grant(n int64) {
	c.mu.Lock()
	c.available += n
	c.broadcast()
	c.mu.Unlock()
}

// Acquire blocks until n credits are available, then consumes them. It
// returns ctx.Err() if ctx is done first.
func (c *Counter) Acquire(ctx context.Context, n int64) error {
	for {
		c.mu.Lock()
		if c.available >= n {
			c.available -= n
			c.mu.Unlock()
			return nil
		}
		ch := c.notify
		c.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// TryAcquire consumes n credits without blocking, reporting whether it
// succeeded. Used by tests to assert on the final credit balance.
func (c *Counter) TryAcquire(n int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.available < n {
		return false
	}
	c.available -= n
	return true
}
