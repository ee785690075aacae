package serialization

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
)

type options struct {
	capacity int
	logger   *slog.Logger
}

// Option configures Deserialize.
type Option func(*options)

// WithQueueCapacity bounds the number of payloads buffered between the
// source and the consumer. Zero, the default, means unbounded.
func WithQueueCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Batch is an ordered, single-pass sequence of decoded items.
//
// Usage:
//
//	b := serialization.Deserialize[Order](ctx, src, serialization.JSON{})
//	defer b.Close()
//	for b.Next() {
//	    order := b.Item() // nil if the payload was malformed
//	}
//	if err := b.Err(); err != nil { ... }
//
// A Batch must be used from one goroutine.
type Batch[T any] struct {
	parent     context.Context
	cancel     context.CancelFunc
	queue      *queue[string]
	serializer Serializer
	logger     *slog.Logger
	producer   chan struct{} // closed when the source returns

	pos     int
	item    *T
	itemErr error
	err     error
	closed  bool
}

// Deserialize starts enumerating src in the background and returns a
// Batch that decodes each payload with ser, in source order.
//
// Cancelling ctx stops both the source and the consumer. Call Close to
// release the background goroutine early.
func Deserialize[T any](ctx context.Context, src Source, ser Serializer, opts ...Option) *Batch[T] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	produceCtx, cancel := context.WithCancel(ctx)
	b := &Batch[T]{
		parent:     ctx,
		cancel:     cancel,
		queue:      newQueue[string](o.capacity),
		serializer: ser,
		logger:     o.logger,
		producer:   make(chan struct{}),
	}

	go b.produce(produceCtx, src)

	return b
}

// produce is the single background unit of work: it enumerates the source
// into the queue and closes the queue with the source's error.
func (b *Batch[T]) produce(ctx context.Context, src Source) {
	defer close(b.producer)

	var enqueued int
	var enqueueErr error
	err := src(ctx, func(payload string) bool {
		if enqueueErr = b.queue.enqueue(ctx, payload); enqueueErr != nil {
			return false
		}
		enqueued++
		return true
	})
	if err == nil && enqueueErr != nil && enqueueErr != errQueueClosed {
		err = enqueueErr
	}
	if err != nil {
		err = fmt.Errorf("deserialize: source: %w", err)
	}

	b.logger.Debug("deserializer source finished", "payloads", enqueued, "error", err)
	b.queue.close(err)
}

// Next decodes the next payload. It returns false when the source is
// exhausted, the source faulted, ctx was cancelled, or Close was called.
func (b *Batch[T]) Next() bool {
	b.item, b.itemErr = nil, nil
	if b.closed || b.err != nil {
		return false
	}

	for {
		if err := b.parent.Err(); err != nil {
			b.err = err
			return false
		}

		if payload, ok := b.queue.tryDequeue(); ok {
			b.decode(payload)
			return true
		}

		if done, err := b.queue.drained(); done {
			b.err = err
			return false
		}

		select {
		case <-b.parent.Done():
		case <-b.queue.wait():
		}
	}
}

func (b *Batch[T]) decode(payload string) {
	pos := b.pos
	b.pos++

	v := new(T)
	if err := b.serializer.Deserialize(payload, v); err != nil {
		b.itemErr = fmt.Errorf("deserialize item %d: %w", pos, err)
		b.logger.Debug("malformed payload", "position", pos, "error", err)
		return
	}
	b.item = v
}

// Item returns the current item, or nil if its payload was malformed.
func (b *Batch[T]) Item() *T {
	return b.item
}

// ItemErr returns why the current item is nil, if it is.
func (b *Batch[T]) ItemErr() error {
	return b.itemErr
}

// Err returns the source fault or cancellation that ended the batch.
// Malformed payloads are not reported here.
func (b *Batch[T]) Err() error {
	return b.err
}

// Close stops the source and waits for the background goroutine to exit.
// It is safe to call more than once.
func (b *Batch[T]) Close() error {
	b.closed = true
	b.cancel()
	<-b.producer
	return nil
}

// All returns an iterator over (position, item) pairs. Check Err after the
// loop. The batch is closed when iteration stops.
func (b *Batch[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		defer b.Close()
		for b.Next() {
			if !yield(b.pos-1, b.item) {
				return
			}
		}
	}
}

// Collect drains the batch into a slice, keeping nil for malformed
// payloads, and closes it.
func (b *Batch[T]) Collect() ([]*T, error) {
	var items []*T
	for _, item := range b.All() {
		items = append(items, item)
	}
	return items, b.Err()
}
