package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/knowcore"
)

// DefaultRetryDelays returns the backoff delays for acquisition retries:
// 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// retryable reports whether a fetch failure may succeed on a later
// attempt. Invalid URLs and client errors other than 429 are final.
func retryable(err error) bool {
	var fe *knowcore.FetchError
	if !errors.As(err, &fe) {
		return true
	}
	switch fe.Reason {
	case knowcore.FetchInvalid:
		return false
	case knowcore.FetchStatus:
		return fe.StatusCode == 429 || fe.StatusCode >= 500
	}
	return true
}

// fetchWithRetry fetches url, retrying retryable failures after each of
// delays. The onRetry callback, if set, is called before each wait.
func fetchWithRetry(ctx context.Context, f knowcore.Fetcher, url string, delays []time.Duration, onRetry func(attempt int, err error)) (*knowcore.FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		res, err := f.Fetch(ctx, url)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if attempt == len(delays) || !retryable(err) {
			break
		}
		if onRetry != nil {
			onRetry(attempt+2, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
	return nil, lastErr
}

