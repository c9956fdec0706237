package main

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// pollBackoff spaces out outbox polls. Idle polls wait the base interval;
// consecutive batch failures double the wait up to max. Every wait gets up
// to jitter of random spread so several relays do not poll in lockstep.
type pollBackoff struct {
	base    time.Duration
	max     time.Duration
	jitter  time.Duration
	current time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

func newPollBackoff(base, max, jitter time.Duration) *pollBackoff {
	return &pollBackoff{
		base:    base,
		max:     max,
		jitter:  jitter,
		current: base,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *pollBackoff) reset() {
	b.current = b.base
}

// failed grows the delay and returns the next wait.
func (b *pollBackoff) failed() time.Duration {
	next := b.current * 2
	if next <= 0 {
		next = b.base
	}
	if next > b.max {
		next = b.max
	}
	b.current = next
	return b.spread(next)
}

func (b *pollBackoff) idle() time.Duration {
	return b.spread(b.base)
}

func (b *pollBackoff) spread(d time.Duration) time.Duration {
	if d <= 0 || b.jitter <= 0 {
		return d
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return d + time.Duration(b.rnd.Int63n(int64(b.jitter)))
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
