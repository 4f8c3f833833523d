package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/adriaviles2711/finanzaApp/internal/service"
)

var fastRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     5 * time.Millisecond,
	Multiplier:   2.0,
}

func TestWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("fetch: %w", ErrRemoteUnavailable)
		}
		return nil
	}, fastRetry)
	if err != nil {
		t.Fatalf("WithRetry: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("bad request")
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return permanent
	}, fastRetry)
	if !errors.Is(err, permanent) {
		t.Fatalf("err = %v, want %v", err, permanent)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 for a non-retryable error", attempts)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return fmt.Errorf("fetch: %w", ErrRemoteUnavailable)
	}, fastRetry)
	if !errors.Is(err, ErrMaxRetries) {
		t.Fatalf("err = %v, want ErrMaxRetries", err)
	}
	if attempts != fastRetry.MaxAttempts {
		t.Errorf("attempts = %d, want %d", attempts, fastRetry.MaxAttempts)
	}
}

func TestWithRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := fastRetry
	opts.InitialDelay = time.Minute
	opts.MaxDelay = time.Minute

	done := make(chan error, 1)
	go func() {
		done <- WithRetry(ctx, func() error {
			return fmt.Errorf("fetch: %w", ErrRemoteUnavailable)
		}, opts)
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WithRetry did not return after cancellation")
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("call: %w", ErrRateLimit), true},
		{fmt.Errorf("call: %w", ErrRemoteUnavailable), true},
		{context.DeadlineExceeded, true},
		{errors.New("constraint violation"), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
