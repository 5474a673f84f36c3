package usecases

import (
	"context"
	"time"
)

const (
	// DefaultResolveAttempts is how many times a query is tried before giving up.
	DefaultResolveAttempts = 2
	// DefaultResolveRetryDelay is the fixed pause between attempts.
	DefaultResolveRetryDelay = 3 * time.Second
)

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy bounds retries of transient resolver failures.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	Sleep    SleepFunc // Defaults to a real timer
}

// DefaultRetryPolicy returns two attempts three seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: DefaultResolveAttempts,
		Delay:    DefaultResolveRetryDelay,
		Sleep:    sleepContext,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	if p.Sleep == nil {
		p.Sleep = sleepContext
	}
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
