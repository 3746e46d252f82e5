// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"context"
	"errors"
	"time"

	"github.com/apex/log"
)

// Retryable is implemented by errors that know whether a repeated attempt
// might succeed. A timeout typically returns true, a bad request false.
type Retryable interface {
	Retryable() bool
}

// IsRetryable reports whether err, or any error it wraps, implements
// Retryable and asks to be retried. Errors without the capability are never
// retried.
func IsRetryable(err error) bool {
	var r Retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}

// Do calls fn up to attempts times. It returns as soon as fn succeeds or
// fails with a non-retryable error. Between attempts it waits delay, unless
// ctx is done first, in which case the context error is returned. When the
// attempts are exhausted the last error is returned unchanged. Failed
// attempts are logged at debug level to logger, which may be nil.
func Do[T any](
	ctx context.Context,
	logger log.Interface,
	attempts int,
	delay time.Duration,
	fn func(context.Context) (T, error),
) (T, error) {
	var zero T
	attempts = max(attempts, 1)

	var err error
	for i := range attempts {
		var result T
		result, err = fn(ctx)
		if err == nil {
			return result, nil
		}

		if !IsRetryable(err) {
			return zero, err
		}

		// Don't sleep after the last attempt.
		if i == attempts-1 {
			break
		}

		if logger != nil {
			logger.WithError(err).Debugf("attempt %d/%d failed, retrying in %s", i+1, attempts, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, err
}
