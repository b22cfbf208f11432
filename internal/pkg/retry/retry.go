package retry

import (
	"context"
	"math/rand"
	"time"
)

// Policy is a bounded retry schedule shared by every external-service client.
// Attempts is the total number of tries, not the number of retries.
type Policy struct {
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	JitterFraction float64
}

func DefaultPolicy() Policy {
	return Policy{
		Attempts:       4,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     10 * time.Second,
		JitterFraction: 0.2,
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, exhausts the
// attempt budget, or ctx is done. The delay for attempt n doubles each round;
// fn may suggest a longer delay (e.g. from a Retry-After header) via hint.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error, retryable func(error) bool, hint func(error) time.Duration) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.InitialBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if attempt == attempts {
			return err
		}

		sleepFor := backoff
		if hint != nil {
			if h := hint(err); h > 0 {
				sleepFor = h
			}
		}
		if p.MaxBackoff > 0 && sleepFor > p.MaxBackoff {
			sleepFor = p.MaxBackoff
		}
		sleepFor = jitter(sleepFor, p.JitterFraction)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}
	return err
}

func jitter(base time.Duration, fraction float64) time.Duration {
	if base <= 0 || fraction <= 0 {
		return base
	}
	delta := base.Seconds() * fraction
	low := base.Seconds() - delta
	if low < 0 {
		low = 0
	}
	high := base.Seconds() + delta
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}
