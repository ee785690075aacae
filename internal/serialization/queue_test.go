package serialization

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := newQueue[string](0)
	ctx := context.Background()

	for _, s := range []string{"A", "B", "C"} {
		require.NoError(t, q.enqueue(ctx, s))
	}

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.tryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := q.tryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestQueue_UnboundedNeverBlocks(t *testing.T) {
	q := newQueue[int](0)
	ctx := context.Background()

	for i := range 1000 {
		require.NoError(t, q.enqueue(ctx, i))
	}
	assert.Equal(t, 1000, q.size())
}

func TestQueue_BoundedBlocksUntilRoom(t *testing.T) {
	q := newQueue[int](2)

	require.NoError(t, q.enqueue(context.Background(), 1))
	require.NoError(t, q.enqueue(context.Background(), 2))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.enqueue(ctx, 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	done := make(chan error, 1)
	go func() {
		done <- q.enqueue(context.Background(), 3)
	}()

	select {
	case <-done:
		t.Fatal("enqueue should block while the queue is full")
	case <-time.After(20 * time.Millisecond):
	}

	got, ok := q.tryDequeue()
	require.True(t, ok)
	assert.Equal(t, 1, got)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("enqueue did not resume after dequeue")
	}
	assert.Equal(t, 2, q.size())
}

func TestQueue_CloseWakesWaiters(t *testing.T) {
	q := newQueue[int](0)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-q.wait()
	}()

	q.close(nil)
	wg.Wait()

	done, err := q.drained()
	assert.True(t, done)
	assert.NoError(t, err)
	assert.ErrorIs(t, q.enqueue(context.Background(), 1), errQueueClosed)
}

func TestQueue_DrainedOnlyWhenEmpty(t *testing.T) {
	q := newQueue[int](0)
	require.NoError(t, q.enqueue(context.Background(), 1))

	q.close(assert.AnError)
	q.close(nil) // idempotent, first error wins

	done, _ := q.drained()
	assert.False(t, done, "items remain")

	_, ok := q.tryDequeue()
	require.True(t, ok)

	done, err := q.drained()
	assert.True(t, done)
	assert.ErrorIs(t, err, assert.AnError)
}
