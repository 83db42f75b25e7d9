// Package gcp holds helpers shared by the Google Cloud backends.
package gcp

import (
	"context"
	"os"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ClientOptionsFromEnv reads credentials from GOOGLE_APPLICATION_CREDENTIALS_JSON
// (inline JSON) or GOOGLE_APPLICATION_CREDENTIALS (JSON or file path). With
// neither set the client falls back to application default credentials.
func ClientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	opts := []option.ClientOption{}
	if creds == "" {
		return opts
	}
	if strings.HasPrefix(creds, "{") {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	} else {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}

// Retryable reports whether a gRPC error is worth retrying.
func Retryable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}

// Backoff controls Retry. Zero values get 750ms initial delay capped at 10s.
type Backoff struct {
	MaxRetries int
	Initial    time.Duration
	Max        time.Duration
}

// Retry calls fn until it succeeds, fails with a non-retryable error, or
// MaxRetries retries are used up.
func Retry[T any](ctx context.Context, b Backoff, fn func() (T, error)) (T, error) {
	if b.Initial == 0 {
		b.Initial = 750 * time.Millisecond
	}
	if b.Max == 0 {
		b.Max = 10 * time.Second
	}

	var zero T
	var last error
	delay := b.Initial
	for attempt := 0; attempt <= b.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := fn()
		if err == nil {
			return v, nil
		}
		last = err
		if !Retryable(err) || attempt == b.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > b.Max {
			delay = b.Max
		}
	}
	return zero, last
}
