package driving

import "context"

// Limiter bounds the number of concurrently executing inbound calls.
type Limiter interface {
	// Acquire blocks until a slot is free. It fails with an overloaded
	// error when the wait queue is full. The returned func releases the slot.
	Acquire(ctx context.Context) (release func(), err error)
}
