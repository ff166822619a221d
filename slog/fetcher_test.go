package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/knowcore"
	"github.com/fwojciec/knowcore/mock"
	kslog "github.com/fwojciec/knowcore/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs fetch with bytes and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (*knowcore.FetchResult, error) {
				return &knowcore.FetchResult{URL: url, Data: []byte("<html>content</html>"), ContentType: "text/html"}, nil
			},
		}

		fetcher := kslog.NewLoggingFetcher(inner, logger)
		res, err := fetcher.Fetch(context.Background(), "https://example.com/docs")

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", string(res.Data))
		output := buf.String()
		assert.Contains(t, output, "fetch")
		assert.Contains(t, output, "url=https://example.com/docs")
		assert.Contains(t, output, "bytes=20")
		assert.Contains(t, output, "content_type=text/html")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs reason on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (*knowcore.FetchResult, error) {
				return nil, &knowcore.FetchError{URL: url, Reason: knowcore.FetchStatus, StatusCode: 404}
			},
		}

		fetcher := kslog.NewLoggingFetcher(inner, logger)
		_, err := fetcher.Fetch(context.Background(), "https://example.com/a.png")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, "reason=status")
		assert.Contains(t, output, "HTTP 404")
	})
}
