package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_DeliversInOrder(t *testing.T) {
	q := New[int](4, Block)
	ctx := context.Background()

	for i := range 4 {
		require.NoError(t, q.Send(ctx, i))
	}
	assert.Equal(t, 4, q.Len())

	for i := range 4 {
		v, st := q.TryRecv()
		require.Equal(t, Received, st)
		assert.Equal(t, i, v)
	}

	_, st := q.TryRecv()
	assert.Equal(t, Empty, st)
}

func TestQueue_MinimumCapacity(t *testing.T) {
	q := New[int](0, Block)
	assert.Equal(t, 1, q.Cap())
}

func TestQueue_DrainsBeforeDisconnect(t *testing.T) {
	q := New[string](4, Block)
	require.NoError(t, q.Send(context.Background(), "a"))
	require.NoError(t, q.Send(context.Background(), "b"))
	q.Close()

	v, st := q.TryRecv()
	require.Equal(t, Received, st)
	assert.Equal(t, "a", v)

	v, st = q.TryRecv()
	require.Equal(t, Received, st)
	assert.Equal(t, "b", v)

	_, st = q.TryRecv()
	assert.Equal(t, Disconnected, st)

	// Stays disconnected.
	_, st = q.TryRecv()
	assert.Equal(t, Disconnected, st)
}

func TestQueue_SendAfterClose(t *testing.T) {
	for _, policy := range []Backpressure{Block, DropOldest} {
		t.Run(policy.String(), func(t *testing.T) {
			q := New[int](2, policy)
			q.Close()
			q.Close() // idempotent

			assert.True(t, q.Closed())
			assert.ErrorIs(t, q.Send(context.Background(), 1), ErrClosed)
		})
	}
}

func TestQueue_BlockWaitsForRoom(t *testing.T) {
	q := New[int](1, Block)
	ctx := context.Background()
	require.NoError(t, q.Send(ctx, 1))

	sent := make(chan error, 1)
	go func() { sent <- q.Send(ctx, 2) }()

	select {
	case <-sent:
		t.Fatal("Send returned while the queue was full")
	case <-time.After(20 * time.Millisecond):
	}

	v, st := q.TryRecv()
	require.Equal(t, Received, st)
	assert.Equal(t, 1, v)

	require.NoError(t, <-sent)
	v, st = q.TryRecv()
	require.Equal(t, Received, st)
	assert.Equal(t, 2, v)
}

func TestQueue_BlockHonorsContext(t *testing.T) {
	q := New[int](1, Block)
	require.NoError(t, q.Send(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, q.Send(ctx, 2), context.DeadlineExceeded)
}

func TestQueue_BlockUnblocksOnClose(t *testing.T) {
	q := New[int](1, Block)
	require.NoError(t, q.Send(context.Background(), 1))

	sent := make(chan error, 1)
	go func() { sent <- q.Send(context.Background(), 2) }()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	assert.ErrorIs(t, <-sent, ErrClosed)
}

func TestQueue_DropOldest(t *testing.T) {
	q := New[int](3, DropOldest)
	ctx := context.Background()

	for i := range 5 {
		require.NoError(t, q.Send(ctx, i))
	}

	assert.Equal(t, uint64(2), q.Dropped())

	var got []int
	for {
		v, st := q.TryRecv()
		if st != Received {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{2, 3, 4}, got)
}

func TestQueue_ConcurrentProducerConsumer(t *testing.T) {
	const total = 10000
	q := New[int](16, Block)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer q.Close()
		for i := range total {
			if err := q.Send(context.Background(), i); err != nil {
				t.Errorf("Send(%d): %v", i, err)
				return
			}
		}
	}()

	next := 0
	for {
		v, st := q.TryRecv()
		if st == Disconnected {
			break
		}
		if st == Empty {
			continue
		}
		require.Equal(t, next, v)
		next++
	}
	wg.Wait()
	assert.Equal(t, total, next)
}

func TestQueue_TryRecvDoesNotAllocate(t *testing.T) {
	q := New[int](4, Block)
	allocs := testing.AllocsPerRun(100, func() {
		_ = q.Send(context.Background(), 1)
		_, _ = q.TryRecv()
		_, _ = q.TryRecv()
	})
	assert.Zero(t, allocs)
}
