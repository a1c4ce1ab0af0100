package ratefeed

import (
	"context"
	"sync"
	"time"
)

// DefaultHourlyLimit is the vendor's documented call allowance.
const DefaultHourlyLimit = 3000

// hourlyLimiter enforces a client-side calls-per-hour cap. The vendor
// counts a fixed window from the first call, not a sliding one, so the
// limiter mirrors that: when the cap is hit it waits out the remainder
// of the window, then starts a new one.
type hourlyLimiter struct {
	mu          sync.Mutex
	limit       int
	count       int
	windowStart time.Time

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func newHourlyLimiter(limit int) *hourlyLimiter {
	return &hourlyLimiter{
		limit: limit,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// wait blocks until a call slot is available or ctx is done.
func (l *hourlyLimiter) wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.windowStart.IsZero() || now.Sub(l.windowStart) >= time.Hour {
		l.windowStart = now
		l.count = 0
	}

	if l.count >= l.limit {
		remaining := time.Hour - now.Sub(l.windowStart)
		if remaining > 0 {
			if err := l.sleep(ctx, remaining); err != nil {
				return err
			}
		}
		l.windowStart = l.now()
		l.count = 0
	}

	l.count++
	return nil
}

// reset forces a new window, used after the vendor reports 429 so the
// client-side count re-syncs with the server's.
func (l *hourlyLimiter) reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := time.Hour - l.now().Sub(l.windowStart)
	if !l.windowStart.IsZero() && remaining > 0 {
		if err := l.sleep(ctx, remaining); err != nil {
			return err
		}
	}
	l.windowStart = l.now()
	l.count = 0
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
