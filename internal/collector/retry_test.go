package collector

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecuteWithRetryTransientBackoff(t *testing.T) {
	attempts := 0
	var sleeps []time.Duration

	cfg := retryConfig{
		maxAttempts:    3,
		initialBackoff: 10 * time.Millisecond,
		maxBackoff:     40 * time.Millisecond,
		sleep: func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		},
	}

	err := executeWithRetry(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("i/o timeout")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected retry success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if len(sleeps) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(sleeps))
	}
	if sleeps[0] != 10*time.Millisecond || sleeps[1] != 20*time.Millisecond {
		t.Fatalf("unexpected backoff schedule: %v", sleeps)
	}
}

func TestExecuteWithRetryAuthFailFast(t *testing.T) {
	attempts := 0
	sleepCalls := 0

	cfg := retryConfig{
		maxAttempts:    3,
		initialBackoff: 10 * time.Millisecond,
		maxBackoff:     40 * time.Millisecond,
		sleep: func(context.Context, time.Duration) error {
			sleepCalls++
			return nil
		},
	}

	err := executeWithRetry(context.Background(), cfg, func() error {
		attempts++
		return errors.New("AADSTS700016: application not found in the directory")
	})
	if err == nil {
		t.Fatal("expected auth error")
	}
	if attempts != 1 {
		t.Fatalf("expected auth fail-fast after 1 attempt, got %d", attempts)
	}
	if sleepCalls != 0 {
		t.Fatalf("expected no backoff sleeps for auth errors, got %d", sleepCalls)
	}
}

func TestExecuteWithRetryNonRetryableFailFast(t *testing.T) {
	attempts := 0

	cfg := retryConfig{
		maxAttempts:    3,
		initialBackoff: 10 * time.Millisecond,
		maxBackoff:     40 * time.Millisecond,
		sleep: func(context.Context, time.Duration) error {
			return nil
		},
	}

	err := executeWithRetry(context.Background(), cfg, func() error {
		attempts++
		return errors.New("semantic error in query")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected no retries for non-retryable errors, got %d attempts", attempts)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name          string
		err           error
		wantAuth      bool
		wantRetryable bool
	}{
		{
			name:          "throttled_response",
			err:           errors.New("request failed with status 429: too many requests"),
			wantAuth:      false,
			wantRetryable: true,
		},
		{
			name:          "gateway_timeout",
			err:           errors.New("request failed with status 504"),
			wantAuth:      false,
			wantRetryable: true,
		},
		{
			name:          "expired_token",
			err:           errors.New("token expired, please reauthenticate"),
			wantAuth:      true,
			wantRetryable: false,
		},
		{
			name:          "forbidden",
			err:           errors.New("request failed with status 403: forbidden"),
			wantAuth:      true,
			wantRetryable: false,
		},
		{
			name:          "deadline",
			err:           context.DeadlineExceeded,
			wantAuth:      false,
			wantRetryable: true,
		},
		{
			name:          "canceled",
			err:           context.Canceled,
			wantAuth:      false,
			wantRetryable: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isAuthError(tc.err); got != tc.wantAuth {
				t.Fatalf("isAuthError(%v) = %v, want %v", tc.err, got, tc.wantAuth)
			}
			if got := isRetryableError(tc.err); got != tc.wantRetryable {
				t.Fatalf("isRetryableError(%v) = %v, want %v", tc.err, got, tc.wantRetryable)
			}
		})
	}
}

func TestWithTotalTimeoutContextDeadlineCause(t *testing.T) {
	ctx, cancel := withTotalTimeoutContext(context.Background(), 20*time.Millisecond)
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected timeout context to finish")
	}

	if !errors.Is(context.Cause(ctx), context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded cause, got %v", context.Cause(ctx))
	}
}
