package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "hubexport/pkg/errors"
)

func TestConstantBackoff(t *testing.T) {
	backoff := &ConstantBackoff{Delay: 5 * time.Second}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 5 * time.Second},
		{2, 5 * time.Second},
		{10, 5 * time.Second},
	}

	for _, test := range tests {
		if delay := backoff.NextDelay(test.attempt); delay != test.expected {
			t.Errorf("attempt %d: expected delay %v, got %v", test.attempt, test.expected, delay)
		}
	}
}

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second},
		{6, 1 * time.Second},
	}

	for _, test := range tests {
		if delay := backoff.NextDelay(test.attempt); delay != test.expected {
			t.Errorf("attempt %d: expected delay %v, got %v", test.attempt, test.expected, delay)
		}
	}
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
	}

	if err := Do(op, cfg); err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	delays := 0
	op := func() error {
		attempts++
		return &errs.Error{Type: errs.ErrorTypeServerError, Message: "server error", Code: 500}
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		OnRetry: func(attempt int, err error, delay time.Duration) {
			delays++
		},
	}

	err := Do(op, cfg)
	if err == nil {
		t.Fatal("Expected error when attempts are exhausted")
	}
	if attempts != 5 {
		t.Errorf("Expected 5 attempts, got %d", attempts)
	}
	// Five attempts mean exactly four waits between them
	if delays != 4 {
		t.Errorf("Expected 4 delays, got %d", delays)
	}

	var apiErr *errs.Error
	if !errors.As(err, &apiErr) {
		t.Errorf("Expected wrapped API error, got %v", err)
	}
}

func TestRetryWithNonRetryableError(t *testing.T) {
	attempts := 0
	authError := &errs.Error{
		Type:    errs.ErrorTypeAuth,
		Message: "authentication required",
		Code:    401,
	}
	op := func() error {
		attempts++
		return authError
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
	}

	err := Do(op, cfg)
	if !errors.Is(err, authError) {
		t.Errorf("Expected the auth error unchanged, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected a single attempt for a non-retryable error, got %d", attempts)
	}
}

func TestRetryWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	op := func() error {
		attempts++
		if attempts == 1 {
			cancel()
		}
		return &errs.Error{Type: errs.ErrorTypeNetwork, Message: "network error"}
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Second},
		RetryIf:     DefaultRetryIf,
		Context:     ctx,
	}

	err := Do(op, cfg)
	if err == nil {
		t.Fatal("Expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in chain, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt before cancellation, got %d", attempts)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"network error", &errs.Error{Type: errs.ErrorTypeNetwork}, true},
		{"rate limit error", &errs.Error{Type: errs.ErrorTypeRateLimit, Code: 429}, true},
		{"server error", &errs.Error{Type: errs.ErrorTypeServerError, Code: 500}, true},
		{"auth error", &errs.Error{Type: errs.ErrorTypeAuth, Code: 401}, false},
		{"not found error", &errs.Error{Type: errs.ErrorTypeNotFound, Code: 404}, false},
		{"parsing error", &errs.Error{Type: errs.ErrorTypeParsing}, false},
		{"context canceled", context.Canceled, false},
		{"plain error", errors.New("boom"), true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := DefaultRetryIf(test.err); got != test.expected {
				t.Errorf("DefaultRetryIf(%v) = %v, expected %v", test.err, got, test.expected)
			}
		})
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	op := func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("temporary error")
		}
		return "done", nil
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
	}

	result, err := DoWithResult(op, cfg)
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if result != "done" {
		t.Errorf("Expected result 'done', got %q", result)
	}
}
