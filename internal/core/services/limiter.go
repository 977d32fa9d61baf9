package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driving"
)

// Ensure Limiter implements the interface.
var _ driving.Limiter = (*Limiter)(nil)

// Limiter admits up to maxInFlight concurrent operations. Up to maxQueued
// further callers block for a slot; callers beyond that are rejected with
// a retryable overloaded error.
type Limiter struct {
	sem         *semaphore.Weighted
	maxInFlight int64
	maxQueued   int64
	waiting     atomic.Int64
}

// NewLimiter creates a limiter. maxInFlight below 1 is treated as 1;
// maxQueued below 0 as 0.
func NewLimiter(maxInFlight, maxQueued int) *Limiter {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	if maxQueued < 0 {
		maxQueued = 0
	}
	return &Limiter{
		sem:         semaphore.NewWeighted(int64(maxInFlight)),
		maxInFlight: int64(maxInFlight),
		maxQueued:   int64(maxQueued),
	}
}

// Acquire takes a slot, waiting if necessary.
func (l *Limiter) Acquire(ctx context.Context) (func(), error) {
	if l.sem.TryAcquire(1) {
		return l.releaser(), nil
	}

	if l.waiting.Add(1) > l.maxQueued {
		l.waiting.Add(-1)
		return nil, domain.Overloaded(fmt.Sprintf(
			"server is at capacity (%d in flight, %d queued)", l.maxInFlight, l.maxQueued))
	}
	defer l.waiting.Add(-1)

	if err := l.sem.Acquire(ctx, 1); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.Timeout("timed out waiting for a free request slot", err)
		}
		return nil, &domain.Error{
			Kind:    domain.KindOverloaded,
			Message: "request cancelled while waiting for a free slot",
			Hint:    "retry after a short delay",
			Err:     err,
		}
	}
	return l.releaser(), nil
}

// Waiting returns the number of callers currently queued.
func (l *Limiter) Waiting() int {
	return int(l.waiting.Load())
}

func (l *Limiter) releaser() func() {
	var once sync.Once
	return func() {
		once.Do(func() { l.sem.Release(1) })
	}
}
