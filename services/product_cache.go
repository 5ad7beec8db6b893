package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Rvd99/ali-baba/models"
)

const (
	productCachePrefix     = "product:detail:"
	productListCachePrefix = "products:v:"
	cacheVersionKey        = "products:version"

	defaultCacheTTL = 5 * time.Minute
)

// ProductCache is a read-through cache for the catalog. A nil redis client
// disables it: every method degrades to a miss or a no-op, so the catalog
// works identically with caching off.
type ProductCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewProductCache(client *redis.Client, logger *zap.Logger) *ProductCache {
	return &ProductCache{redis: client, ttl: defaultCacheTTL, logger: logger}
}

func (pc *ProductCache) enabled() bool {
	return pc != nil && pc.redis != nil
}

// GetProduct returns a cached product detail, keyed by id or slug.
func (pc *ProductCache) GetProduct(ctx context.Context, key string) (*models.Product, bool) {
	if !pc.enabled() {
		return nil, false
	}
	data, err := pc.redis.Get(ctx, productCachePrefix+key).Result()
	if err != nil {
		return nil, false
	}
	var product models.Product
	if err := json.Unmarshal([]byte(data), &product); err != nil {
		pc.logger.Warn("Failed to unmarshal cached product", zap.Error(err))
		return nil, false
	}
	return &product, true
}

// SetProductAsync caches a product detail under both its id and slug, off the
// request path.
func (pc *ProductCache) SetProductAsync(product *models.Product) {
	if !pc.enabled() {
		return
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		data, err := json.Marshal(product)
		if err != nil {
			pc.logger.Warn("Failed to marshal product for cache", zap.Error(err))
			return
		}
		for _, key := range []string{product.ID.String(), product.Slug} {
			if err := pc.redis.Set(bgCtx, productCachePrefix+key, data, pc.ttl).Err(); err != nil {
				pc.logger.Warn("Failed to cache product",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		}
	}()
}

// GetProductList returns a cached list response for the given filter/page
// combination under the current cache version.
func (pc *ProductCache) GetProductList(ctx context.Context, filterKey string, page, limit int) (json.RawMessage, bool) {
	if !pc.enabled() {
		return nil, false
	}
	version, err := pc.cacheVersion(ctx)
	if err != nil {
		return nil, false
	}
	data, err := pc.redis.Get(ctx, pc.listKey(version, filterKey, page, limit)).Result()
	if err != nil {
		return nil, false
	}
	return json.RawMessage(data), true
}

// SetProductListAsync caches a serialized list response off the request path.
func (pc *ProductCache) SetProductListAsync(filterKey string, page, limit int, payload []byte) {
	if !pc.enabled() {
		return
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := pc.cacheVersion(bgCtx)
		if err != nil {
			return
		}
		if err := pc.redis.Set(bgCtx, pc.listKey(version, filterKey, page, limit), payload, pc.ttl).Err(); err != nil {
			pc.logger.Warn("Failed to cache product list", zap.Error(err))
		}
	}()
}

// InvalidateProduct drops a product's detail entries and bumps the list
// version so every cached page is orphaned at once. staleSlugs covers slugs
// the product no longer carries, such as the one before a rename; without it
// the old-slug entry would keep serving until its TTL ran out.
func (pc *ProductCache) InvalidateProduct(ctx context.Context, product *models.Product, staleSlugs ...string) {
	if !pc.enabled() {
		return
	}
	if err := pc.redis.Incr(ctx, cacheVersionKey).Err(); err != nil {
		pc.logger.Error("Failed to bump product cache version", zap.Error(err))
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		keys := []string{
			productCachePrefix + product.ID.String(),
			productCachePrefix + product.Slug,
		}
		for _, slug := range staleSlugs {
			if slug != "" && slug != product.Slug {
				keys = append(keys, productCachePrefix+slug)
			}
		}
		if err := pc.redis.Del(bgCtx, keys...).Err(); err != nil {
			pc.logger.Warn("Failed to delete product cache entries",
				zap.String("product_id", product.ID.String()),
				zap.Error(err),
			)
		}
	}()
}

func (pc *ProductCache) cacheVersion(ctx context.Context) (int64, error) {
	ver, err := pc.redis.Get(ctx, cacheVersionKey).Int64()
	if err == nil && ver > 0 {
		return ver, nil
	}
	if err == redis.Nil {
		if err := pc.redis.Set(ctx, cacheVersionKey, 1, 0).Err(); err == nil {
			return 1, nil
		}
	}
	return 0, fmt.Errorf("product cache version unavailable: %w", err)
}

func (pc *ProductCache) listKey(version int64, filterKey string, page, limit int) string {
	return fmt.Sprintf("%s%d:p:%d:l:%d:f:%s", productListCachePrefix, version, page, limit, filterKey)
}
