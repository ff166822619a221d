package mock

import (
	"context"

	"github.com/fwojciec/knowcore"
)

var _ knowcore.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of knowcore.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*knowcore.FetchResult, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*knowcore.FetchResult, error) {
	return f.FetchFn(ctx, url)
}

var _ knowcore.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of knowcore.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}

var _ knowcore.AssetStore = (*AssetStore)(nil)

// AssetStore is a mock implementation of knowcore.AssetStore.
type AssetStore struct {
	PutAssetFn func(ctx context.Context, id string, data []byte) error
	HasAssetFn func(ctx context.Context, id string) (bool, error)
}

func (s *AssetStore) PutAsset(ctx context.Context, id string, data []byte) error {
	return s.PutAssetFn(ctx, id, data)
}

func (s *AssetStore) HasAsset(ctx context.Context, id string) (bool, error) {
	return s.HasAssetFn(ctx, id)
}
