package connector

import (
	"context"
	"errors"
	"time"
)

const maxAttempts = 3

// Backoff runs op up to three times, doubling the wait between attempts
// starting from base. A nil retryable retries every failure; otherwise only
// errors it reports as transient are retried.
func Backoff(ctx context.Context, base time.Duration, op func() error, retryable func(error) bool) error {
	wait := base
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if serr := sleepWithContext(ctx, wait); serr != nil {
				return serr
			}
			wait *= 2
		}
		if err = op(); err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
	}
	return err
}

// RetryableHTTP reports whether an error from a platform call is worth
// retrying: network-level failures and 429/5xx responses are, unambiguous
// client errors are not.
func RetryableHTTP(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == 429 || se.Code >= 500
	}
	// Timeouts, connection resets and other transport errors.
	return true
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
