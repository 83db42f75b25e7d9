package gcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unavailable", status.Error(codes.Unavailable, "x"), true},
		{"exhausted", status.Error(codes.ResourceExhausted, "x"), true},
		{"deadline", status.Error(codes.DeadlineExceeded, "x"), true},
		{"invalid", status.Error(codes.InvalidArgument, "x"), false},
		{"plain", errors.New("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetry(t *testing.T) {
	fast := Backoff{MaxRetries: 3, Initial: time.Millisecond, Max: 2 * time.Millisecond}

	calls := 0
	got, err := Retry(context.Background(), fast, func() (string, error) {
		calls++
		if calls < 3 {
			return "", status.Error(codes.Unavailable, "try again")
		}
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Errorf("Retry() = %q, %v; want ok, nil", got, err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	calls = 0
	_, err = Retry(context.Background(), fast, func() (int, error) {
		calls++
		return 0, status.Error(codes.PermissionDenied, "no")
	})
	if err == nil || calls != 1 {
		t.Errorf("Retry() non-retryable: err = %v, calls = %d; want error after 1 call", err, calls)
	}

	calls = 0
	_, err = Retry(context.Background(), fast, func() (int, error) {
		calls++
		return 0, status.Error(codes.Unavailable, "down")
	})
	if err == nil || calls != 4 {
		t.Errorf("Retry() exhausted: err = %v, calls = %d; want error after 4 calls", err, calls)
	}
}

func TestClientOptionsFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if got := ClientOptionsFromEnv(); len(got) != 0 {
		t.Errorf("ClientOptionsFromEnv() = %d options, want 0", len(got))
	}

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/sa.json")
	if got := ClientOptionsFromEnv(); len(got) != 1 {
		t.Errorf("ClientOptionsFromEnv() = %d options, want 1", len(got))
	}

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", `{"type":"service_account"}`)
	if got := ClientOptionsFromEnv(); len(got) != 1 {
		t.Errorf("ClientOptionsFromEnv() = %d options, want 1", len(got))
	}
}
