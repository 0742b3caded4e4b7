package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/cache"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

var _ domain.ItemRepository = (*CachedItemRepository)(nil)

// CachedItemRepository caches the full catalog in Redis. Filtered reads go
// to the wrapped repository; every mutation drops the cached catalog.
type CachedItemRepository struct {
	next   domain.ItemRepository
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
}

func NewCachedItemRepository(next domain.ItemRepository, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedItemRepository {
	return &CachedItemRepository{
		next:   next,
		cache:  rdb,
		ttl:    ttl,
		logger: logger.Named("item-cache"),
	}
}

var itemsCacheKey = cache.Key("items", "all")

// Invalidate drops the cached catalog.
func (r *CachedItemRepository) Invalidate(ctx context.Context) {
	cache.Invalidate(ctx, r.cache, r.logger, itemsCacheKey)
}

func (r *CachedItemRepository) GetAll(ctx context.Context) ([]*domain.Item, error) {
	return readThrough(ctx, r.cache, &r.group, r.logger, itemsCacheKey, r.ttl, r.next.GetAll)
}

func (r *CachedItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedItemRepository) Create(ctx context.Context, in domain.CreateItemInput) (*domain.Item, error) {
	item, err := r.next.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	r.Invalidate(ctx)
	return item, nil
}

func (r *CachedItemRepository) Update(ctx context.Context, id string, in domain.UpdateItemInput) (*domain.Item, error) {
	item, err := r.next.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	r.Invalidate(ctx)
	return item, nil
}

func (r *CachedItemRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.Invalidate(ctx)
	return nil
}

func (r *CachedItemRepository) Search(ctx context.Context, query string) ([]*domain.Item, error) {
	return r.next.Search(ctx, query)
}

func (r *CachedItemRepository) GetByTag(ctx context.Context, tag string) ([]*domain.Item, error) {
	return r.next.GetByTag(ctx, tag)
}

func (r *CachedItemRepository) GetByTags(ctx context.Context, tags []string) ([]*domain.Item, error) {
	return r.next.GetByTags(ctx, tags)
}
