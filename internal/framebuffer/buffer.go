// Package framebuffer implements the bounded single-producer,
// multi-consumer frame buffer of spec §4.1: random access by frame number
// for the scene-detection feeder, and FIFO pop for the scene slicer.
//
// Grounded on original_source/src/frame_buffer.rs's RwLock + Notify +
// capacity-semaphore design; the Go translation uses a generation-channel
// notify pattern (closed and replaced on every state change) so waiters can
// be woken without a polling timeout, while still honoring a caller
// context for cancellation.
package framebuffer

import (
	"bufio"
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/five82/scenevq/internal/errorsx"
	"github.com/five82/scenevq/internal/y4m"
)

// Buffer is a bounded ring of resident frames keyed by a monotonically
// increasing frame number. At most Capacity frames are resident at once.
type Buffer struct {
	frameSize int
	capacity  int64
	sem       *semaphore.Weighted

	mu        sync.Mutex
	frames    []*y4m.Frame // ordered oldest (index 0) to newest
	headNum   uint64       // smallest frame number not yet evicted
	nextNum   uint64       // frame number to assign to the next insertion
	finished  bool
	notifyCh  chan struct{}
}

// New creates a Buffer with the given capacity (K ≥ 1) and per-frame
// payload size in bytes.
func New(capacity int, frameSize int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		frameSize: frameSize,
		capacity:  int64(capacity),
		sem:       semaphore.NewWeighted(int64(capacity)),
		notifyCh:  make(chan struct{}),
	}
}

func (b *Buffer) broadcast() {
	close(b.notifyCh)
	b.notifyCh = make(chan struct{})
}

// ReadIn reads one framed payload from r and appends it with the next
// sequence number, blocking until capacity is available. It returns
// y4m.Completed on a clean end of stream without mutating any
// frame-number bookkeeping — there is nothing to rewind (§9(c)): no tail
// or counter advance happens until a frame is known to be real.
func (b *Buffer) ReadIn(ctx context.Context, r *bufio.Reader) (y4m.Status, error) {
	frame, status, err := y4m.ReadFrame(r, b.frameSize)
	if err != nil {
		return y4m.Processing, err
	}
	if status == y4m.Completed {
		b.mu.Lock()
		b.finished = true
		b.broadcast()
		b.mu.Unlock()
		return y4m.Completed, nil
	}

	if err := b.sem.Acquire(ctx, 1); err != nil {
		return y4m.Processing, err
	}

	b.mu.Lock()
	frame.Num = b.nextNum
	b.nextNum++
	b.frames = append(b.frames, frame)
	b.broadcast()
	b.mu.Unlock()

	return y4m.Processing, nil
}

// Add inserts an externally-supplied frame payload, copying it and
// assigning the next sequence number. Blocks until capacity is available.
func (b *Buffer) Add(ctx context.Context, data []byte) (*y4m.Frame, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	b.mu.Lock()
	f := &y4m.Frame{Num: b.nextNum, Data: cp}
	b.nextNum++
	b.frames = append(b.frames, f)
	b.broadcast()
	b.mu.Unlock()

	return f, nil
}

// Get returns the frame with the given number, blocking until it is
// produced. It returns (nil, nil) if the producer finished before n was
// produced. Requesting a number below the smallest resident frame is a
// programming error and panics with an errorsx.InvariantViolation.
func (b *Buffer) Get(ctx context.Context, n uint64) (*y4m.Frame, error) {
	for {
		b.mu.Lock()
		if n < b.headNum {
			b.mu.Unlock()
			errorsx.Fatal(fmt.Sprintf("framebuffer: get(%d) requested before head %d", n, b.headNum))
		}
		if len(b.frames) > 0 {
			idx := n - b.frames[0].Num
			if idx < uint64(len(b.frames)) {
				f := b.frames[idx]
				b.mu.Unlock()
				return f, nil
			}
		}
		finished := b.finished
		ch := b.notifyCh
		b.mu.Unlock()

		if finished {
			return nil, nil
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Pop removes and returns the oldest resident frame, releasing one unit of
// capacity. Returns nil if the buffer is currently empty.
func (b *Buffer) Pop() *y4m.Frame {
	b.mu.Lock()
	if len(b.frames) == 0 {
		b.mu.Unlock()
		return nil
	}
	f := b.frames[0]
	b.frames = b.frames[1:]
	b.headNum = f.Num + 1
	b.mu.Unlock()

	b.sem.Release(1)
	return f
}

// Size returns the current resident frame count.
func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames)
}
