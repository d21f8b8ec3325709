// Package retry wraps cenkalti/backoff with the engine's own retry
// policy: exponential backoff with jitter, a bounded elapsed-time budget,
// and context cancellation honored on every sleep (spec.md §5). Only
// errkind.Transient failures are retried; everything else returns
// immediately through backoff.Permanent.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/syssam/persisto/errkind"
)

// Policy configures how Do retries a failing operation.
type Policy struct {
	// MaxElapsedTime bounds the total time spent retrying, including
	// sleeps. Zero means backoff.DefaultMaxElapsedTime (15 minutes).
	// Negative disables the policy entirely: Do runs op exactly once.
	MaxElapsedTime time.Duration

	// InitialInterval is the first backoff sleep. Zero uses the
	// cenkalti/backoff default (500ms).
	InitialInterval time.Duration

	// MaxInterval caps each individual sleep. Zero uses the
	// cenkalti/backoff default (60s).
	MaxInterval time.Duration

	// OnRetry, when set, is called before each sleep with the attempt
	// number (1-based) and the error that triggered it.
	OnRetry func(attempt int, err error)
}

// Disabled returns a Policy that never retries.
func Disabled() Policy { return Policy{MaxElapsedTime: -1} }

// disabled reports whether p retries at all.
func (p Policy) disabled() bool { return p.MaxElapsedTime < 0 }

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		eb.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		eb.MaxInterval = p.MaxInterval
	}
	if p.MaxElapsedTime > 0 {
		eb.MaxElapsedTime = p.MaxElapsedTime
	}
	return backoff.WithContext(eb, ctx)
}

// Do runs op, retrying on errkind.Transient failures per p until it
// succeeds, a non-transient error is returned, the elapsed-time budget is
// exhausted, or ctx is cancelled. It returns the last error encountered.
func Do(ctx context.Context, p Policy, op func() error) error {
	if p.disabled() {
		return op()
	}

	attempt := 0
	wrapped := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if errkind.OfKind(err) != errkind.Transient {
			return backoff.Permanent(err)
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		return err
	}

	return backoff.Retry(wrapped, p.backOff(ctx))
}
