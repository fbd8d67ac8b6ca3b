package itad

import (
	"context"
	"sync"
	"time"

	"dealve/internal/domain"
)

// Budget is the local request allowance: at most requests grants inside any
// window-long span. It is safe for concurrent use.
type Budget struct {
	mu       sync.Mutex
	requests int
	window   time.Duration
	granted  []time.Time // oldest first
	now      func() time.Time
}

func NewBudget(requests int, window time.Duration) *Budget {
	if requests < 1 {
		requests = 1
	}

	return &Budget{
		requests: requests,
		window:   window,
		granted:  make([]time.Time, 0, requests),
		now:      time.Now,
	}
}

// Acquire takes one unit. With allowWait it blocks until a unit is free or
// ctx ends; otherwise an exhausted budget fails at once with RateLimited.
func (b *Budget) Acquire(ctx context.Context, allowWait bool) error {
	for {
		if err := ctx.Err(); err != nil {
			return domain.NewUnreachable(err)
		}

		wait := b.take()
		if wait == 0 {
			return nil
		}

		if !allowWait {
			budgetRejections.Inc()
			return domain.NewRateLimited(wait)
		}

		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
			budgetRejections.Inc()
			return domain.NewRateLimited(wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.NewUnreachable(ctx.Err())
		case <-timer.C:
		}
	}
}

// take records a grant and returns zero, or returns how long until the
// oldest grant leaves the window.
func (b *Budget) take() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.expire(now)

	if len(b.granted) < b.requests {
		b.granted = append(b.granted, now)
		return 0
	}

	return max(b.granted[0].Add(b.window).Sub(now), time.Millisecond)
}

func (b *Budget) expire(now time.Time) {
	n := 0
	for n < len(b.granted) && now.Sub(b.granted[n]) >= b.window {
		n++
	}

	b.granted = append(b.granted[:0], b.granted[n:]...)
}

// Available is the number of units that can be taken right now.
func (b *Budget) Available() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.expire(b.now())

	return b.requests - len(b.granted)
}
