// AngelaMos | 2026
// cache.go

package product

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/catalog-backend/internal/core"
)

const categoriesCacheKey = "catalog:categories"

type CategoryCache interface {
	Get(ctx context.Context) ([]string, bool, error)
	Set(ctx context.Context, categories []string) error
	Invalidate(ctx context.Context) error
}

type redisCategoryCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisCategoryCache(rdb redis.Cmdable, ttl time.Duration) CategoryCache {
	return &redisCategoryCache{rdb: rdb, ttl: ttl}
}

func (c *redisCategoryCache) Get(ctx context.Context) ([]string, bool, error) {
	var categories []string
	found, err := core.GetJSON(ctx, c.rdb, categoriesCacheKey, &categories)
	if err != nil || !found {
		return nil, false, err
	}
	return categories, true, nil
}

func (c *redisCategoryCache) Set(ctx context.Context, categories []string) error {
	return core.SetJSON(ctx, c.rdb, categoriesCacheKey, categories, c.ttl)
}

func (c *redisCategoryCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, categoriesCacheKey).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", categoriesCacheKey, err)
	}
	return nil
}
