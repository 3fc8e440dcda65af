package retry

import (
	"context"
	"time"
)

const DefaultMaxRetries = 5

// Policy controls how often and how long Do waits between attempts.
type Policy struct {
	MaxRetries int
	Delay      func(attempt int) time.Duration
	// Retryable reports whether err is worth another attempt.
	Retryable func(err error) bool
}

// Default retries up to five times with exponential backoff.
func Default(retryable func(error) bool) Policy {
	return Policy{MaxRetries: DefaultMaxRetries, Delay: Backoff, Retryable: retryable}
}

// Backoff doubles from 200ms and caps at 5s.
func Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	d := base << attempt
	if d > 5*time.Second || d <= 0 {
		d = 5 * time.Second
	}
	return d
}

// Do runs fn until it succeeds, returns a non-retryable error, runs out of
// attempts, or ctx is done.
func Do(ctx context.Context, p Policy, fn func() error) error {
	delay := p.Delay
	if delay == nil {
		delay = Backoff
	}
	var err error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == p.MaxRetries {
			break
		}
		t := time.NewTimer(delay(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return err
}
