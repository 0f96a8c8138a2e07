package match

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
)

// ErrDisruptorTimeout is returned when shutdown times out
var ErrDisruptorTimeout = errors.New("disruptor: shutdown timeout")

// EventHandler consumes events from a RingBuffer on its single consumer goroutine.
type EventHandler[T any] interface {
	OnEvent(event T)
}

// RingBuffer is a multi-producer, single-consumer ring.
// Events are handed to the handler one at a time, in claim order.
type RingBuffer[T any] struct {
	// Cache line padding to avoid false sharing
	_                [56]byte
	producerSequence atomic.Int64
	_                [56]byte
	consumerSequence atomic.Int64
	_                [56]byte

	buffer     []T
	bufferMask int64
	capacity   int64

	// published[i] holds the sequence last written to slot i
	published []int64

	handler    EventHandler[T]
	isShutdown atomic.Bool

	// producers currently inside Publish; the consumer drains only once it is zero
	inflight atomic.Int64
	done     chan struct{}
}

// NewRingBuffer creates a ring with the given capacity, which must be a power of 2.
func NewRingBuffer[T any](capacity int64, handler EventHandler[T]) *RingBuffer[T] {
	if capacity <= 0 || (capacity&(capacity-1)) != 0 {
		panic("size must be a power of 2")
	}

	rb := &RingBuffer[T]{
		buffer:     make([]T, capacity),
		published:  make([]int64, capacity),
		capacity:   capacity,
		bufferMask: capacity - 1,
		handler:    handler,
		done:       make(chan struct{}),
	}

	rb.producerSequence.Store(-1)
	rb.consumerSequence.Store(-1)

	for i := range rb.published {
		atomic.StoreInt64(&rb.published[i], -1)
	}

	return rb
}

// Publish claims the next slot and writes event into it. Safe for many producers.
// It spins while the ring is full and returns false once shutdown has begun.
// An event for which Publish returns true is always handled, even when
// Shutdown runs concurrently.
func (rb *RingBuffer[T]) Publish(event T) bool {
	// registered before the shutdown check, so the consumer cannot finish
	// draining between that check and the claim below
	rb.inflight.Add(1)
	defer rb.inflight.Add(-1)

	if rb.isShutdown.Load() {
		return false
	}

	var nextSeq int64
	for {
		current := rb.producerSequence.Load()
		nextSeq = current + 1

		// the producer may not lap the consumer
		wrapPoint := nextSeq - rb.capacity
		if wrapPoint > rb.consumerSequence.Load() {
			if rb.isShutdown.Load() {
				return false
			}
			runtime.Gosched()
			continue
		}

		if rb.producerSequence.CompareAndSwap(current, nextSeq) {
			break
		}
		runtime.Gosched()
	}

	index := nextSeq & rb.bufferMask
	rb.buffer[index] = event
	atomic.StoreInt64(&rb.published[index], nextSeq)
	return true
}

// Start starts the consumer goroutine.
func (rb *RingBuffer[T]) Start() {
	go rb.consumerLoop()
}

// Shutdown stops accepting events and waits until every claimed event is handled.
func (rb *RingBuffer[T]) Shutdown(ctx context.Context) error {
	rb.isShutdown.Store(true)

	select {
	case <-rb.done:
		return nil
	case <-ctx.Done():
		return ErrDisruptorTimeout
	}
}

func (rb *RingBuffer[T]) consumerLoop() {
	defer close(rb.done)

	next := rb.consumerSequence.Load() + 1

	for {
		available := rb.producerSequence.Load()

		if rb.isShutdown.Load() {
			rb.drain(next)
			return
		}

		processed := false
		for next <= available {
			rb.handle(next)
			next++
			processed = true
		}

		if !processed {
			runtime.Gosched()
		}
	}
}

// drain handles what producers claimed before shutdown.
func (rb *RingBuffer[T]) drain(next int64) {
	for rb.inflight.Load() > 0 {
		runtime.Gosched()
	}

	available := rb.producerSequence.Load()

	for next <= available {
		rb.handle(next)
		next++
	}
}

func (rb *RingBuffer[T]) handle(seq int64) {
	index := seq & rb.bufferMask

	// wait for the producer that claimed seq to finish writing
	for atomic.LoadInt64(&rb.published[index]) != seq {
		runtime.Gosched()
	}

	event := rb.buffer[index]
	var zero T
	rb.buffer[index] = zero

	rb.handler.OnEvent(event)
	rb.consumerSequence.Store(seq)
}

// ConsumerSequence returns the last handled sequence (for monitoring).
func (rb *RingBuffer[T]) ConsumerSequence() int64 {
	return rb.consumerSequence.Load()
}

// ProducerSequence returns the last claimed sequence (for monitoring).
func (rb *RingBuffer[T]) ProducerSequence() int64 {
	return rb.producerSequence.Load()
}

// GetPendingEvents returns how many claimed events are not handled yet.
func (rb *RingBuffer[T]) GetPendingEvents() int64 {
	return rb.producerSequence.Load() - rb.consumerSequence.Load()
}
