package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kapu/steam-profile-md/internal/config"
	"github.com/kapu/steam-profile-md/internal/constants"
	"github.com/kapu/steam-profile-md/internal/markup"
	"github.com/kapu/steam-profile-md/internal/normalize"
	"github.com/kapu/steam-profile-md/internal/render"
	"github.com/kapu/steam-profile-md/internal/service/asset"
	"github.com/kapu/steam-profile-md/internal/service/cache"
	"github.com/kapu/steam-profile-md/internal/service/steam"
	"go.uber.org/zap"
)

// Container bundles assembled services for constructing the export pipeline.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	deps    *Dependencies
	closers []func()
}

// NewPipeline instantiates a pipeline using the pre-built dependency graph.
func (c *Container) NewPipeline() (*Pipeline, error) {
	if c == nil || c.deps == nil {
		return nil, fmt.Errorf("pipeline dependencies not initialized")
	}
	return NewPipeline(c.deps)
}

// Close releases external connections in reverse order of creation.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles every service the export needs. The redis cache is
// optional: when it cannot be reached the run continues uncached.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	var store cache.Store = cache.NopStore{}
	if cfg.Cache.RedisURL != "" {
		cacheSvc, cacheErr := cache.NewCacheService(ctx, cfg.Cache.RedisURL, logger)
		if cacheErr != nil {
			logger.Warn("Redis unavailable, continuing without response cache", zap.Error(cacheErr))
		} else {
			store = cacheSvc
			closers = append(closers, func() {
				_ = cacheSvc.Close()
			})
		}
	}

	source := steam.NewClient(steam.Options{
		APIKey:       cfg.Steam.APIKey,
		APIBaseURL:   cfg.Steam.APIBaseURL,
		StoreBaseURL: cfg.Steam.StoreBaseURL,
		HTTPClient:   &http.Client{Timeout: constants.APIConfig.Timeout},
		Cache:        store,
		CacheTTL:     cfg.Cache.TTL,
	}, logger.Named("steam"))

	assets := asset.NewMaterializer(asset.Options{
		Root:    cfg.Assets.Path,
		Skip:    cfg.Assets.Skip,
		Timeout: cfg.Assets.FetchTimeout,
	}, asset.NewHTTPFetcher(&http.Client{}), logger.Named("assets"))

	var exporter *render.HTMLExporter
	if cfg.Output.HTML {
		exporter = render.NewHTMLExporter()
	}

	loc := time.Local
	deps := &Dependencies{
		Config:     cfg,
		Logger:     logger,
		Source:     source,
		Assets:     assets,
		Rewriter:   markup.NewDescriptionRewriter(cfg.Output.Rewriter, assets, logger.Named("rewriter")),
		Normalizer: normalize.New(logger.Named("normalize")),
		Renderer:   render.NewRenderer(loc),
		HTML:       exporter,
		Pacer:      NewPacer(cfg.Pacing.Delay),
	}

	logger.Info("Services assembled",
		zap.Bool("skip_assets", cfg.Assets.Skip),
		zap.String("asset_path", cfg.Assets.Path),
		zap.String("rewriter", cfg.Output.Rewriter),
		zap.Bool("cache", cfg.Cache.RedisURL != ""),
		zap.Bool("html", cfg.Output.HTML),
	)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		deps:    deps,
		closers: closers,
	}, nil
}
