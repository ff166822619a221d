package mock

import (
	"context"

	"github.com/fwojciec/knowcore"
)

var _ knowcore.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of knowcore.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *knowcore.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *knowcore.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
