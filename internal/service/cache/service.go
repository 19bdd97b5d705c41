package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kapu/steam-profile-md/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store caches upstream responses between runs. A miss is (false, nil).
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Close() error
}

const keyPrefix = "steammd:"

type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheService connects to the redis instance described by rawURL
// (redis://[:password@]host:port/db).
func NewCacheService(ctx context.Context, rawURL string, logger *zap.Logger) (*CacheService, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, errors.NewCacheError("invalid redis URL", "parse", "", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", opts.Addr),
		zap.Int("db", opts.DB),
	)

	return &CacheService{
		client: client,
		logger: logger,
	}, nil
}

func (c *CacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	value, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.logger.Warn("Cache get failed", zap.String("key", key), zap.Error(err))
		return false, errors.NewCacheError("get failed", "get", key, err)
	}

	if err := json.Unmarshal([]byte(value), dest); err != nil {
		c.logger.Warn("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
		return false, errors.NewCacheError("unmarshal failed", "get", key, err)
	}
	return true, nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if err := c.client.Set(ctx, keyPrefix+key, jsonData, ttl).Err(); err != nil {
		c.logger.Warn("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}
	return nil
}

func (c *CacheService) Close() error {
	if err := c.client.Close(); err != nil {
		return errors.NewCacheError("close failed", "close", "", err)
	}
	c.logger.Info("Redis connection closed")
	return nil
}

// NopStore is used when no redis URL is configured. Every lookup misses.
type NopStore struct{}

func (NopStore) Get(context.Context, string, any) (bool, error)         { return false, nil }
func (NopStore) Set(context.Context, string, any, time.Duration) error { return nil }
func (NopStore) Close() error                                           { return nil }
