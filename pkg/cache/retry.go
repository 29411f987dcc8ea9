package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is wrapped by the Redis cache and the record stores when
// the backend cannot be reached. Callers test for it with errors.Is.
var ErrUnavailable = errors.New("backend unavailable")

// RetryAttempts bounds the calls RetryWithBackoff makes.
const RetryAttempts = 3

// BaseDelay is the wait after the first failed attempt; it doubles after each
// further one. Tests lower it.
var BaseDelay = time.Second

// RetryableError marks a transient backend failure: a dropped connection or
// a timeout, as opposed to a missing owner or a malformed row.
type RetryableError struct{ Err error }

// Retryable marks err as transient. It returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err, or anything it wraps, was marked by
// Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff calls fn until it succeeds, returns an error not marked
// Retryable, or RetryAttempts calls have failed. The runner wraps record
// fetches in it so a store restart does not fail an open session.
//
// Cancelling ctx during a wait returns ctx.Err().
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := BaseDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt == RetryAttempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
