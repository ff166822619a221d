package knowcore

import (
	"context"
	"errors"
	"fmt"
)

// FetchFailure classifies why a fetch did not produce content.
type FetchFailure string

// Fetch failure reasons.
const (
	FetchTimeout FetchFailure = "timeout"
	FetchStatus  FetchFailure = "status"
	FetchNetwork FetchFailure = "network"
	FetchRead    FetchFailure = "read"
	FetchInvalid FetchFailure = "invalid"
)

// FetchResult is the content returned by a successful fetch.
type FetchResult struct {
	URL         string
	Data        []byte
	ContentType string
}

// FetchError is the typed failure returned by a Fetcher.
type FetchError struct {
	URL        string
	Reason     FetchFailure
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Reason == FetchStatus:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Reason, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Reason)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetchReason returns the failure reason of a *FetchError in err's chain,
// or "" if there is none.
func FetchReason(err error) FetchFailure {
	var e *FetchError
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

// Fetcher retrieves remote content. It is used both to acquire pages and to
// download figure images.
type Fetcher interface {
	// Fetch retrieves the body at url. Failures are reported as *FetchError.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}

// AssetStore holds content-addressed asset files.
type AssetStore interface {
	// PutAsset stores data under id. Storing the same id twice is a no-op
	// on the store's content.
	PutAsset(ctx context.Context, id string, data []byte) error

	// HasAsset reports whether an asset with id is stored.
	HasAsset(ctx context.Context, id string) (bool, error)
}
