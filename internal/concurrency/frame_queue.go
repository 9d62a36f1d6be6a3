// File: internal/concurrency/frame_queue.go
// Package concurrency provides the inbound frame queue and session runner.
// License: Apache-2.0
//
// FrameQueue is a multi-producer/single-consumer FIFO with a blocking
// pop-with-timeout, explicit close, and explicit reset. Producers are the
// transport delivery callbacks (which must never block for long); the sole
// consumer is the session loop.

package concurrency

import (
	"sync"
	"time"

	"github.com/eapache/queue"

	"streamsock/api"
	"streamsock/protocol"
)

// FrameQueue is a thread-safe FIFO of pending inbound frames.
//
// Push never blocks; it fails only on a closed queue. WaitPop blocks until
// a frame arrives, the queue closes, or the timeout elapses. A closed queue
// with no pending frames yields (nil, false), indistinguishable from a
// timeout; callers needing to tell them apart check Closed.
type FrameQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending *queue.Queue
	closed  bool
}

// NewFrameQueue constructs an empty, open queue.
func NewFrameQueue() *FrameQueue {
	q := &FrameQueue{pending: queue.New()}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends a frame and wakes one blocked waiter. O(1) amortized.
// Returns api.ErrQueueClosed once the queue has closed.
func (q *FrameQueue) Push(f *protocol.Frame) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return api.ErrQueueClosed
	}
	q.pending.Add(f)
	q.mu.Unlock()
	q.cond.Signal()
	return nil
}

// Close marks the queue closed and wakes all waiters. Idempotent. Frames
// already pending remain poppable.
func (q *FrameQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Reset discards all pending frames and clears the closed flag, so a new
// session never consumes frames left over from a prior one. The caller
// serializes Reset against any still-active consumer.
func (q *FrameQueue) Reset() {
	q.mu.Lock()
	q.pending = queue.New()
	q.closed = false
	q.mu.Unlock()
}

// Closed reports whether the queue has been closed and not reset since.
func (q *FrameQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of pending frames.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending.Length()
}

// WaitPop removes and returns the oldest pending frame, blocking up to
// timeout. It wakes immediately on Push or Close rather than polling, and
// returns (nil, false) if the queue is still empty after waking.
func (q *FrameQueue) WaitPop(timeout time.Duration) (*protocol.Frame, bool) {
	deadline := time.Now().Add(timeout)

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.pending.Length() == 0 && !q.closed {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, false
		}
		// sync.Cond has no timed wait; a timer broadcast bounds the sleep.
		// The loop re-checks state, so a spurious wakeup is harmless.
		t := time.AfterFunc(remaining, q.cond.Broadcast)
		q.cond.Wait()
		t.Stop()
	}

	if q.pending.Length() == 0 {
		return nil, false
	}
	return q.pending.Remove().(*protocol.Frame), true
}
