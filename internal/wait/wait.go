// Package wait implements the single polling-wait used for both implicit
// element lookups and explicit readiness conditions.
//
// A Waiter carries the default bound and poll interval. Every call can
// override the bound with WithTimeout. Polls are paced by a token-bucket
// limiter so the first check runs immediately and later checks never run
// faster than the interval.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/kuitang/storefront-e2e/internal/errs"
)

// Condition reports whether the awaited state holds. A non-nil error counts
// as "not yet" unless it is wrapped with Permanent.
type Condition func(ctx context.Context) (bool, error)

// Waiter holds the default bound and poll interval.
type Waiter struct {
	Timeout  time.Duration
	Interval time.Duration
}

// DefaultInterval is used when a Waiter has no interval configured.
const DefaultInterval = 100 * time.Millisecond

// New returns a Waiter with the given defaults.
func New(timeout, interval time.Duration) Waiter {
	return Waiter{Timeout: timeout, Interval: interval}
}

type options struct {
	timeout     time.Duration
	description string
}

// Option adjusts a single wait.
type Option func(*options)

// WithTimeout overrides the bound for one wait.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Describe sets the text used in the timeout error.
func Describe(format string, args ...any) Option {
	return func(o *options) { o.description = fmt.Sprintf(format, args...) }
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks a condition error that must end the wait immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Until polls cond until it holds, returning nil; or until the bound
// elapses, returning an errs.Timeout error that names the description and
// the last condition error. When the next poll would land past the bound,
// the last check runs at the bound instead, so a timeout is only reported
// once the full bound has passed.
func (w Waiter) Until(ctx context.Context, cond Condition, opts ...Option) error {
	o := options{
		timeout:     w.Timeout,
		description: "condition",
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		return errs.New(errs.InvalidArgument, fmt.Sprintf("wait for %s: bound must be positive, got %s", o.description, o.timeout))
	}
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	deadline := time.Now().Add(o.timeout)
	// A check started at the deadline may still run for one interval.
	checkCtx, cancel := context.WithDeadline(ctx, deadline.Add(interval))
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	attempts := 0
	var lastErr error
	for {
		if delay := limiter.Reserve().Delay(); delay > 0 {
			if left := time.Until(deadline); delay > left {
				delay = left
			}
			if !sleep(ctx, delay) {
				return timeoutError(ctx, o, attempts, lastErr)
			}
		}
		if ctx.Err() != nil {
			return timeoutError(ctx, o, attempts, lastErr)
		}

		attempts++
		ok, err := cond(checkCtx)
		if err != nil {
			var perm *permanentError
			if errors.As(err, &perm) {
				return perm.err
			}
			lastErr = err
		} else if ok {
			return nil
		}

		if !time.Now().Before(deadline) {
			return timeoutError(ctx, o, attempts, lastErr)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func timeoutError(parent context.Context, o options, attempts int, lastErr error) error {
	verb := "timed out after " + o.timeout.String()
	if parent.Err() != nil {
		verb = "cancelled"
	}
	msg := fmt.Sprintf("waiting for %s: %s (%d checks)", o.description, verb, attempts)
	if lastErr != nil {
		return errs.Wrap(errs.Timeout, msg, lastErr)
	}
	return errs.New(errs.Timeout, msg)
}
