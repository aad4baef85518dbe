package collector

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

const (
	maxRetryAttempts    = 3
	initialRetryBackoff = 100 * time.Millisecond
	maxRetryBackoff     = 2 * time.Second
)

// Azure surfaces credential problems as AADSTS codes, token text, or
// 401/403 statuses. Retrying those hammers a dead credential, so they
// fail the run on first sight.
var authErrorSubstrings = []string{
	"aadsts",
	"token expired",
	"unauthorized",
	"forbidden",
	"access denied",
	"invalid credentials",
	"invalid_client",
	"invalid_grant",
	"authentication failed",
	"authentication error",
	"status 401",
	"status 403",
}

// Throttling and transport failures worth another attempt.
var retryableErrorSubstrings = []string{
	"status 429",
	"status 502",
	"status 503",
	"status 504",
	"too many requests",
	"throttled",
	"service unavailable",
	"timeout",
	"i/o timeout",
	"tls handshake timeout",
	"connection reset",
	"connection refused",
	"connection aborted",
	"connection closed",
	"use of closed network connection",
	"network is unreachable",
	"no route to host",
	"no such host",
	"broken pipe",
	"eof",
	"unexpected eof",
}

// retryConfig tunes executeWithRetry. The sleep hook exists so tests can
// record the backoff schedule instead of waiting it out.
type retryConfig struct {
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	sleep          func(context.Context, time.Duration) error
}

func defaultRetryConfig() retryConfig {
	return retryConfig{maxAttempts: maxRetryAttempts}
}

// executeWithRetry runs fn up to cfg.maxAttempts times, doubling the
// backoff between transient failures. Auth errors and errors it does not
// recognize as transient return after the first attempt.
func executeWithRetry(ctx context.Context, cfg retryConfig, fn func() error) error {
	attempts := cfg.maxAttempts
	if attempts <= 0 {
		attempts = maxRetryAttempts
	}
	sleep := cfg.sleep
	if sleep == nil {
		sleep = sleepWithContext
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if ctxErr := contextError(ctx); ctxErr != nil {
			return ctxErr
		}

		if err = fn(); err == nil {
			return nil
		}
		if ctxErr := contextError(ctx); ctxErr != nil {
			return ctxErr
		}
		if isAuthError(err) || !isRetryableError(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		if sleepErr := sleep(ctx, cfg.backoffFor(attempt)); sleepErr != nil {
			if ctxErr := contextError(ctx); ctxErr != nil {
				return ctxErr
			}
			return sleepErr
		}
	}

	return err
}

// backoffFor doubles the initial backoff once per completed attempt,
// capped at the configured maximum.
func (cfg retryConfig) backoffFor(attempt int) time.Duration {
	initial := cfg.initialBackoff
	if initial <= 0 {
		initial = initialRetryBackoff
	}
	limit := cfg.maxBackoff
	if limit <= 0 {
		limit = maxRetryBackoff
	}
	if limit < initial {
		limit = initial
	}

	d := initial
	for ; attempt > 0 && d < limit; attempt-- {
		d *= 2
	}
	if d > limit {
		d = limit
	}
	return d
}

// withTotalTimeoutContext caps an entire collection pass. The cause is
// set explicitly so callers can tell the cap from a parent cancellation.
func withTotalTimeoutContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return parent, func() {}
	}

	ctx, cancel := context.WithCancelCause(parent)
	timer := time.AfterFunc(timeout, func() { cancel(context.DeadlineExceeded) })
	return ctx, func() {
		timer.Stop()
		cancel(context.Canceled)
	}
}

// contextError reports why a context finished, preferring the recorded
// cause so a total-timeout cap reads as DeadlineExceeded.
func contextError(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return ctx.Err()
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return contextError(ctx)
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

func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	return containsAny(strings.ToLower(err.Error()), authErrorSubstrings)
}

func isRetryableError(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return containsAny(strings.ToLower(err.Error()), retryableErrorSubstrings)
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
