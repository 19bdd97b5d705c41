package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kapu/steam-profile-md/internal/constants"
	"github.com/kapu/steam-profile-md/internal/service/cache"
	"github.com/kapu/steam-profile-md/internal/util"
	"github.com/kapu/steam-profile-md/pkg/errors"
	"go.uber.org/zap"
)

type Options struct {
	APIKey       string
	APIBaseURL   string
	StoreBaseURL string
	HTTPClient   *http.Client
	Cache        cache.Store
	CacheTTL     time.Duration
}

// Client talks to the Steam Web API and the store API. It does not retry;
// callers decide what a failure means.
type Client struct {
	httpClient   *http.Client
	apiKey       string
	apiBaseURL   string
	storeBaseURL string
	cache        cache.Store
	cacheTTL     time.Duration
	logger       *zap.Logger
}

func NewClient(opts Options, logger *zap.Logger) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: constants.APIConfig.Timeout}
	}
	if opts.APIBaseURL == "" {
		opts.APIBaseURL = constants.APIConfig.SteamAPIBaseURL
	}
	if opts.StoreBaseURL == "" {
		opts.StoreBaseURL = constants.APIConfig.SteamStoreBaseURL
	}
	if opts.Cache == nil {
		opts.Cache = cache.NopStore{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = constants.CacheTTL.AppDetails
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient:   opts.HTTPClient,
		apiKey:       opts.APIKey,
		apiBaseURL:   strings.TrimRight(opts.APIBaseURL, "/"),
		storeBaseURL: strings.TrimRight(opts.StoreBaseURL, "/"),
		cache:        opts.Cache,
		cacheTTL:     opts.CacheTTL,
		logger:       logger,
	}
}

// Endpoint selects which Steam host a request goes to.
type Endpoint int

const (
	WebAPI Endpoint = iota
	StoreAPI
)

// DoRequest performs a GET and returns the body of a 2xx response. The API
// key is only sent to the Web API.
func (c *Client) DoRequest(ctx context.Context, endpoint Endpoint, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}

	baseURL := c.storeBaseURL
	if endpoint == WebAPI {
		baseURL = c.apiBaseURL
		if c.apiKey != "" {
			params.Set("key", c.apiKey)
		}
	}

	reqURL := baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constants.APIConfig.UserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.APIConfig.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	c.logger.Debug("Steam request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode >= 500 {
		return nil, errors.NewAPIError(fmt.Sprintf("Server error: %d", resp.StatusCode), resp.StatusCode, map[string]any{
			"path": path,
		})
	}
	if resp.StatusCode >= 400 {
		return nil, errors.NewAPIError(fmt.Sprintf("Client error: %d", resp.StatusCode), resp.StatusCode, map[string]any{
			"path": path,
			"body": util.TruncateString(string(body), 512),
		})
	}

	return body, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint Endpoint, path string, params url.Values, operation string, dest any) error {
	body, err := c.DoRequest(ctx, endpoint, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return errors.NewPayloadError(operation, err)
	}
	return nil
}

// cached runs load on a cache miss and stores its result. Cache errors are
// logged and otherwise ignored.
func cached[T any](ctx context.Context, c *Client, key string, ttl time.Duration, load func() (*T, error)) (*T, error) {
	var hit T
	ok, err := c.cache.Get(ctx, key, &hit)
	if err != nil {
		c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		c.logger.Debug("Cache hit", zap.String("key", key))
		return &hit, nil
	}

	value, err := load()
	if err != nil || value == nil {
		return value, err
	}
	if err := c.cache.Set(ctx, key, value, ttl); err != nil {
		c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}
