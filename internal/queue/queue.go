// Package queue provides the bounded hand-off between a control context and a
// real-time render context.
//
// A Queue has one producer and one consumer. The consumer side never blocks:
// TryRecv either returns a queued value, reports that the queue is empty, or
// reports that the producer has gone away. The producer side follows an
// explicit Backpressure policy when the queue is full.
package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("queue closed")

// Backpressure selects what Send does when the queue is full.
type Backpressure uint8

const (
	// Block waits until the consumer frees a slot, the queue is closed, or
	// the context is done. Only the producer ever waits.
	Block Backpressure = iota

	// DropOldest never waits: the oldest queued value is discarded to make
	// room for the new one.
	DropOldest
)

func (b Backpressure) String() string {
	if b == DropOldest {
		return "drop-oldest"
	}
	return "block"
}

// Status is the outcome of a TryRecv.
type Status uint8

const (
	// Received means a value was returned.
	Received Status = iota

	// Empty means nothing is queued right now.
	Empty

	// Disconnected means the producer closed the queue and everything it
	// sent has been received.
	Disconnected
)

func (s Status) String() string {
	switch s {
	case Received:
		return "received"
	case Empty:
		return "empty"
	default:
		return "disconnected"
	}
}

// Queue is a bounded single-producer single-consumer queue.
//
// The value channel is never closed; closing is signalled on a separate done
// channel so a racing Send can never panic.
type Queue[T any] struct {
	ch      chan T
	done    chan struct{}
	once    sync.Once
	policy  Backpressure
	dropped atomic.Uint64
}

// New returns a queue holding at most capacity values. A capacity below one
// is raised to one.
func New[T any](capacity int, policy Backpressure) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{
		ch:     make(chan T, capacity),
		done:   make(chan struct{}),
		policy: policy,
	}
}

// Send enqueues v according to the queue's backpressure policy.
func (q *Queue[T]) Send(ctx context.Context, v T) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}

	if q.policy == DropOldest {
		return q.sendDropOldest(v)
	}

	select {
	case q.ch <- v:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue[T]) sendDropOldest(v T) error {
	for {
		select {
		case q.ch <- v:
			return nil
		default:
		}

		// Full: evict one value. The consumer may win the race for it, in
		// which case a slot is free anyway.
		select {
		case <-q.ch:
			q.dropped.Add(1)
		default:
		}

		select {
		case <-q.done:
			return ErrClosed
		default:
		}
	}
}

// TryRecv returns the next value without blocking. Values sent before Close
// are still delivered; Disconnected is only reported once the queue is both
// closed and drained.
func (q *Queue[T]) TryRecv() (T, Status) {
	select {
	case v := <-q.ch:
		return v, Received
	default:
	}

	var zero T
	select {
	case <-q.done:
		// Close may have raced with a final Send.
		select {
		case v := <-q.ch:
			return v, Received
		default:
			return zero, Disconnected
		}
	default:
		return zero, Empty
	}
}

// Close disconnects the producer. It is safe to call more than once and
// concurrently with Send and TryRecv.
func (q *Queue[T]) Close() {
	q.once.Do(func() { close(q.done) })
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}

// Policy returns the backpressure policy.
func (q *Queue[T]) Policy() Backpressure {
	return q.policy
}

// Dropped returns how many values DropOldest has evicted.
func (q *Queue[T]) Dropped() uint64 {
	return q.dropped.Load()
}
