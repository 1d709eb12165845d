package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eleya-storefront/internal/catalog"
	"eleya-storefront/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultProductTTL = 5 * time.Minute
	DefaultVendorTTL  = 10 * time.Minute

	keyPrefix = "catalog"
)

// Config holds cache lifetimes
type Config struct {
	ProductTTL time.Duration
	VendorTTL  time.Duration
}

// CatalogCache is a read-through Redis cache in front of a catalog.Client.
// Concurrent misses for the same key share one upstream call. Redis failures
// are logged and the request goes straight to the platform.
type CatalogCache struct {
	next   catalog.Client
	redis  *redis.Client
	config Config
	logger *zap.Logger
	group  singleflight.Group
}

var _ catalog.Client = (*CatalogCache)(nil)

// NewCatalogCache wraps next with a Redis cache
func NewCatalogCache(next catalog.Client, redisClient *redis.Client, config Config, logger *zap.Logger) *CatalogCache {
	if config.ProductTTL <= 0 {
		config.ProductTTL = DefaultProductTTL
	}
	if config.VendorTTL <= 0 {
		config.VendorTTL = DefaultVendorTTL
	}
	return &CatalogCache{
		next:   next,
		redis:  redisClient,
		config: config,
		logger: logger,
	}
}

// Products returns a cached page or fetches it
func (c *CatalogCache) Products(ctx context.Context, q catalog.ProductQuery) (*catalog.ProductPage, error) {
	key, err := productsKey(q)
	if err != nil {
		return c.next.Products(ctx, q)
	}
	return cached(ctx, c, key, c.config.ProductTTL, func(ctx context.Context) (*catalog.ProductPage, error) {
		return c.next.Products(ctx, q)
	})
}

// ProductByHandle returns a cached product or fetches it. Misses for unknown handles are not cached.
func (c *CatalogCache) ProductByHandle(ctx context.Context, handle string) (*domain.Product, error) {
	key := fmt.Sprintf("%s:product:%s", keyPrefix, handle)
	return cached(ctx, c, key, c.config.ProductTTL, func(ctx context.Context) (*domain.Product, error) {
		return c.next.ProductByHandle(ctx, handle)
	})
}

// Vendors returns the cached vendor list or fetches it
func (c *CatalogCache) Vendors(ctx context.Context) ([]string, error) {
	key := keyPrefix + ":vendors"
	return cached(ctx, c, key, c.config.VendorTTL, func(ctx context.Context) ([]string, error) {
		return c.next.Vendors(ctx)
	})
}

// CreateCheckout is never cached
func (c *CatalogCache) CreateCheckout(ctx context.Context, lines []domain.CheckoutLine) (string, error) {
	return c.next.CreateCheckout(ctx, lines)
}

func cached[T any](ctx context.Context, c *CatalogCache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	if value, ok := lookup[T](ctx, c, key); ok {
		return value, nil
	}

	// the shared fetch is detached from the cancellation of whichever caller started it
	ch := c.group.DoChan(key, func() (any, error) {
		value, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, value, ttl)
		return value, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func lookup[T any](ctx context.Context, c *CatalogCache, key string) (T, bool) {
	var value T
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Catalog cache read failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		c.logger.Warn("Catalog cache entry is corrupt",
			zap.String("key", key),
			zap.Error(err),
		)
		c.redis.Del(ctx, key)
		return value, false
	}
	return value, true
}

func (c *CatalogCache) store(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Failed to encode catalog cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.redis.Set(context.WithoutCancel(ctx), key, data, ttl).Err(); err != nil {
		c.logger.Warn("Catalog cache write failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func productsKey(q catalog.ProductQuery) (string, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:products:%s", keyPrefix, hex.EncodeToString(sum[:])), nil
}
