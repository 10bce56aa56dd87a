package queue

import (
	"github.com/ssargent/mmqueue/pkg/codec"
)

// Typed marries a Queue with an element codec so callers work with
// application values instead of raw slots. A Typed queue is safe for
// concurrent use whenever its codec is.
type Typed[T any] struct {
	q *Queue
	c codec.ElementCodec[T]
}

// NewTyped wraps q with the given element codec.
func NewTyped[T any](q *Queue, c codec.ElementCodec[T]) *Typed[T] {
	return &Typed[T]{q: q, c: c}
}

// Enqueue encodes v into a slot-sized buffer and appends it.
func (t *Typed[T]) Enqueue(v T) error {
	buf := make([]byte, t.q.SlotSize())
	if err := t.c.ToBytes(v, buf); err != nil {
		return err
	}
	return t.q.Enqueue(buf)
}

// Dequeue removes the oldest element and decodes it.
func (t *Typed[T]) Dequeue() (T, error) {
	raw, err := t.q.Dequeue()
	if err != nil {
		var zero T
		return zero, err
	}
	return t.c.FromBytes(raw)
}

// Peek decodes the head element without removing it.
func (t *Typed[T]) Peek() (T, error) {
	raw, err := t.q.Peek()
	if err != nil {
		var zero T
		return zero, err
	}
	return t.c.FromBytes(raw)
}

// Queue returns the underlying raw queue.
func (t *Typed[T]) Queue() *Queue {
	return t.q
}
