package fault

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		code int
		want Category
	}{
		{http.StatusTooManyRequests, CategoryRateLimit},
		{http.StatusRequestTimeout, CategoryTimeout},
		{http.StatusGatewayTimeout, CategoryTimeout},
		{http.StatusUnauthorized, CategoryPermission},
		{http.StatusForbidden, CategoryPermission},
		{http.StatusNotFound, CategoryNotFound},
		{http.StatusBadRequest, CategoryValidation},
		{http.StatusUnprocessableEntity, CategoryValidation},
		{http.StatusInternalServerError, CategoryInternal},
		{http.StatusBadGateway, CategoryInternal},
	}
	for _, tt := range tests {
		if got := FromStatus(tt.code); got != tt.want {
			t.Errorf("FromStatus(%d) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestCategoryRetryable(t *testing.T) {
	retryable := []Category{CategoryNetwork, CategoryTimeout, CategoryRateLimit, CategoryInternal}
	for _, c := range retryable {
		if !c.Retryable() {
			t.Errorf("%s should be retryable", c)
		}
	}
	permanent := []Category{CategoryValidation, CategoryPermission, CategoryNotFound}
	for _, c := range permanent {
		if c.Retryable() {
			t.Errorf("%s should not be retryable", c)
		}
	}
}

func TestCategoryOf(t *testing.T) {
	if got := CategoryOf(New(CategoryRateLimit, "op", errors.New("slow down"))); got != CategoryRateLimit {
		t.Errorf("CategoryOf(fault.Error) = %s, want rate_limit", got)
	}
	wrapped := New(CategoryNotFound, "GET /v1/ideas/x", nil)
	if got := CategoryOf(wrapped); got != CategoryNotFound {
		t.Errorf("CategoryOf = %s, want not_found", got)
	}
	if got := CategoryOf(context.DeadlineExceeded); got != CategoryTimeout {
		t.Errorf("CategoryOf(DeadlineExceeded) = %s, want timeout", got)
	}
	if got := CategoryOf(os.ErrNotExist); got != CategoryNotFound {
		t.Errorf("CategoryOf(ErrNotExist) = %s, want not_found", got)
	}
	if got := CategoryOf(errors.New("mystery")); got != CategoryInternal {
		t.Errorf("CategoryOf(plain) = %s, want internal", got)
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := New(CategoryNetwork, "scan express", cause)
	want := "scan express: network: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap should expose the cause")
	}
}

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2,
		Jitter:         0.1,
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetryConfig(), func() error {
		calls++
		if calls < 3 {
			return New(CategoryNetwork, "op", errors.New("flaky"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	permanent := New(CategoryValidation, "op", errors.New("bad input"))
	err := Retry(context.Background(), fastRetryConfig(), func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("Retry() = %v, want the validation error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries for validation errors)", calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetryConfig(), func() error {
		calls++
		return New(CategoryTimeout, "op", errors.New("slow"))
	})
	if err == nil {
		t.Fatal("Retry() = nil, want error after exhaustion")
	}
	if calls != 4 { // 1 initial + 3 retries
		t.Errorf("calls = %d, want 4", calls)
	}
}

func TestRetry_CapsBackoffAtMax(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries:     4,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     25 * time.Millisecond,
		Multiplier:     10,
		Jitter:         0.01,
	}

	var stamps []time.Time
	err := Retry(context.Background(), cfg, func() error {
		stamps = append(stamps, time.Now())
		return New(CategoryNetwork, "op", errors.New("connection refused"))
	})
	if err == nil {
		t.Fatal("Retry() = nil, want error after exhaustion")
	}
	if len(stamps) != 5 { // 1 initial + 4 retries
		t.Fatalf("attempts = %d, want 5", len(stamps))
	}

	// With a 10x multiplier the uncapped waits would be 10ms, 100ms, 1s,
	// 10s; the cap keeps every wait at MaxBackoff or below (plus jitter
	// and scheduling slack).
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap > 80*time.Millisecond {
			t.Errorf("wait before attempt %d = %v, want at most ~%v", i+1, gap, cfg.MaxBackoff)
		}
	}
}

func TestRetry_HonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	cfg := RetryConfig{
		MaxRetries:     10,
		InitialBackoff: time.Hour, // would block forever without cancellation
		MaxBackoff:     time.Hour,
		Multiplier:     2,
		Jitter:         0.1,
	}
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Retry(ctx, cfg, func() error {
		calls++
		return New(CategoryNetwork, "op", errors.New("down"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Retry() = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWithFallback(t *testing.T) {
	v, err := WithFallback(42, func() (int, error) {
		return 0, errors.New("nope")
	})
	if err == nil {
		t.Error("expected error to be passed through")
	}
	if v != 42 {
		t.Errorf("value = %d, want fallback 42", v)
	}

	v, err = WithFallback(42, func() (int, error) {
		return 7, nil
	})
	if err != nil || v != 7 {
		t.Errorf("got (%d, %v), want (7, nil)", v, err)
	}
}
