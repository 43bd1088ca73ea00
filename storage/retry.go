package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry wraps a Storage and retries transient failures with exponential
// backoff. Missing keys and context cancellation are permanent and returned
// immediately; everything else is treated as a retryable backend hiccup.
type Retry struct {
	inner           Storage
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
}

// RetryOption configures a Retry store.
type RetryOption func(*Retry)

// WithInitialInterval sets the first backoff delay.
func WithInitialInterval(d time.Duration) RetryOption {
	return func(r *Retry) {
		r.initialInterval = d
	}
}

// WithMaxInterval caps the delay between attempts.
func WithMaxInterval(d time.Duration) RetryOption {
	return func(r *Retry) {
		r.maxInterval = d
	}
}

// WithMaxElapsedTime bounds the total time spent retrying. Zero retries
// forever (until the context is done).
func WithMaxElapsedTime(d time.Duration) RetryOption {
	return func(r *Retry) {
		r.maxElapsedTime = d
	}
}

// NewRetry wraps inner with retry behavior.
// Defaults: initial interval 500ms, max interval 10s, max elapsed 30s.
func NewRetry(inner Storage, optFns ...RetryOption) *Retry {
	r := &Retry{
		inner:           inner,
		initialInterval: 500 * time.Millisecond,
		maxInterval:     10 * time.Second,
		maxElapsedTime:  30 * time.Second,
	}

	for _, fn := range optFns {
		fn(r)
	}

	return r
}

// Get fetches key with retries.
func (r *Retry) Get(ctx context.Context, key, path string) error {
	return r.do(ctx, func() error {
		return r.inner.Get(ctx, key, path)
	})
}

// Put uploads key with retries.
func (r *Retry) Put(ctx context.Context, key, path string) error {
	return r.do(ctx, func() error {
		return r.inner.Put(ctx, key, path)
	})
}

func (r *Retry) do(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	operation := func() error {
		err := op()
		if err == nil {
			return nil
		}

		if !retryable(err) {
			return backoff.Permanent(err)
		}

		return err
	}

	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}
