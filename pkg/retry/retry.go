// Package retry runs an operation again after transient failures, waiting a
// little longer before each new attempt.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Policy describes how often and how patiently to retry. The zero value
// makes a single attempt.
type Policy struct {
	// Attempts counts the first call. Values below 1 mean 1.
	Attempts int

	// Delay is the wait before the second attempt. It doubles after each
	// further failure, up to MaxDelay when MaxDelay is set.
	Delay    time.Duration
	MaxDelay time.Duration

	// Jitter spreads each wait by up to +/- this fraction of it.
	Jitter float64

	// Retry decides whether an error is worth another attempt. Nil retries
	// every error.
	Retry func(error) bool

	// OnRetry runs after a failed attempt that will be retried.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Source is the policy for roster sources and the databases behind them: a
// few quick attempts that ride out a server still starting up.
func Source() Policy {
	return Policy{
		Attempts: 4,
		Delay:    250 * time.Millisecond,
		MaxDelay: 2 * time.Second,
		Jitter:   0.1,
	}
}

// Run calls fn until it succeeds, fails with an error Retry rejects, runs
// out of attempts, or ctx is done. It returns how many times fn was called
// and fn's last error. If ctx is done before the first call, ctx.Err() is
// returned.
func (p Policy) Run(ctx context.Context, fn func(ctx context.Context) error) (int, error) {
	limit := max(p.Attempts, 1)

	var err error
	for n := 1; ; n++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err == nil {
				err = ctxErr
			}
			return n - 1, err
		}

		err = fn(ctx)
		if err == nil || n >= limit || (p.Retry != nil && !p.Retry(err)) {
			return n, err
		}

		wait := p.wait(n)
		if p.OnRetry != nil {
			p.OnRetry(n, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return n, err
		case <-timer.C:
		}
	}
}

// Value is Run for operations that produce a result.
func Value[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, int, error) {
	var out T
	n, err := p.Run(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, n, err
}

// wait returns the pause after the n-th failed attempt.
func (p Policy) wait(n int) time.Duration {
	d := float64(p.Delay) * math.Pow(2, float64(n-1))
	if p.MaxDelay > 0 {
		d = math.Min(d, float64(p.MaxDelay))
	}
	if p.Jitter > 0 {
		d += d * p.Jitter * (2*rand.Float64() - 1)
	}
	return time.Duration(math.Max(d, 0))
}
