package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Default polling values
const (
	DefaultInterval = 1 * time.Second
	DefaultTimeout  = 240 * time.Second
)

// ErrExhausted is matched by errors returned when a poll deadline elapses.
var ErrExhausted = errors.New("retries exhausted")

// Policy bounds a polling loop.
type Policy struct {
	// Interval is the fixed delay between probes.
	Interval time.Duration
	// Timeout is the total time allowed across all probes.
	Timeout time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.Interval <= 0 {
		p.Interval = DefaultInterval
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	return p
}

// ExhaustedError reports that the result was still pending when the timeout elapsed.
type ExhaustedError struct {
	Timeout  time.Duration
	Attempts int
	// Last is the last retryable probe error, if the final attempt failed.
	Last error
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("retries exhausted after %s (%d attempts)", e.Timeout, e.Attempts)
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}
	return msg
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// RetryableError wraps a probe error that should not stop polling.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Retryable wraps an error to mark it as retryable
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable returns true if the error is marked as retryable
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Until calls probe immediately and then once per interval until pending
// reports false for its result, the probe fails with a non-retryable error,
// or the timeout elapses.
func Until[T any](ctx context.Context, p Policy, probe func(ctx context.Context) (T, error), pending func(T) bool) (T, error) {
	p = p.withDefaults()

	var (
		result   T
		attempts int
		lastErr  error
		probeErr error
	)
	err := wait.PollUntilContextTimeout(ctx, p.Interval, p.Timeout, true, func(ctx context.Context) (bool, error) {
		attempts++
		v, err := probe(ctx)
		if err != nil {
			var re *RetryableError
			if errors.As(err, &re) {
				lastErr = re.Err
				return false, nil
			}
			if ctx.Err() != nil {
				// The probe raced the deadline.
				lastErr = err
				return false, nil
			}
			probeErr = err
			return false, err
		}
		lastErr = nil
		result = v
		return !pending(v), nil
	})
	switch {
	case err == nil:
		return result, nil
	case probeErr != nil:
		return result, probeErr
	case ctx.Err() != nil:
		return result, ctx.Err()
	}
	return result, &ExhaustedError{Timeout: p.Timeout, Attempts: attempts, Last: lastErr}
}
