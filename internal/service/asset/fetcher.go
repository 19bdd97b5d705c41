package asset

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/kapu/steam-profile-md/internal/constants"
	"github.com/kapu/steam-profile-md/pkg/errors"
)

// ErrAssetTooLarge is returned when a response body exceeds the size limit.
var ErrAssetTooLarge = stderrors.New("asset exceeds maximum size")

// Fetcher downloads the bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches assets over HTTP. Only 200 responses count as success.
type HTTPFetcher struct {
	httpClient *http.Client
	maxBytes   int64
}

func NewHTTPFetcher(httpClient *http.Client) *HTTPFetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPFetcher{
		httpClient: httpClient,
		maxBytes:   constants.AssetConfig.MaxImageBytes,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", constants.APIConfig.UserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError(fmt.Sprintf("unexpected status code: %d", resp.StatusCode), resp.StatusCode, map[string]any{
			"url": url,
		})
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrAssetTooLarge, url)
	}
	return data, nil
}
