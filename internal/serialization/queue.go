package serialization

import (
	"context"
	"errors"
	"sync"
)

// errQueueClosed is returned by enqueue after close.
var errQueueClosed = errors.New("queue closed")

// queue is a thread-safe FIFO shared by one producer and one consumer.
//
// A zero capacity means unbounded. With a positive capacity, enqueue blocks
// until the consumer makes room or ctx is done.
//
// The queue uses channels for signaling so both ends can wait with select
// and honor context cancellation.
type queue[T any] struct {
	mu       sync.Mutex
	items    []T
	capacity int
	closed   bool
	err      error

	signal chan struct{} // item available or closed (buffered, size 1)
	space  chan struct{} // room available (buffered, size 1)
}

func newQueue[T any](capacity int) *queue[T] {
	size := capacity
	if size <= 0 || size > 64 {
		size = 64
	}
	return &queue[T]{
		items:    make([]T, 0, size),
		capacity: capacity,
		signal:   make(chan struct{}, 1),
		space:    make(chan struct{}, 1),
	}
}

// enqueue appends item to the back of the queue.
// Returns errQueueClosed after close, or ctx.Err() if ctx ends while
// waiting for room.
func (q *queue[T]) enqueue(ctx context.Context, item T) error {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return errQueueClosed
		}
		if q.capacity <= 0 || len(q.items) < q.capacity {
			q.items = append(q.items, item)
			notify(q.signal)
			q.mu.Unlock()
			return nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.space:
		}
	}
}

// tryDequeue removes the front item without blocking.
func (q *queue[T]) tryDequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}

	item := q.items[0]
	q.items[0] = zero
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	notify(q.space)

	return item, true
}

// wait returns a channel that signals when items may be available.
// It is closed once the queue is closed.
func (q *queue[T]) wait() <-chan struct{} {
	return q.signal
}

// drained reports whether the queue is closed and empty, and returns the
// error it was closed with.
func (q *queue[T]) drained() (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.items) == 0, q.err
}

func (q *queue[T]) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// close marks the end of production. err, if non-nil, is the producer
// fault to report once the queue is drained. Wakes any blocked waiters.
func (q *queue[T]) close(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.err = err
	close(q.signal)
}

// notify sends a non-blocking signal; the buffer of 1 coalesces signals.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
