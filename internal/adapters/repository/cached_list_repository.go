package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/cache"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

var _ domain.ListRepository = (*CachedListRepository)(nil)

// CachedListRepository caches GetAll and GetByID in Redis.
type CachedListRepository struct {
	next   domain.ListRepository
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
}

func NewCachedListRepository(next domain.ListRepository, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedListRepository {
	return &CachedListRepository{
		next:   next,
		cache:  rdb,
		ttl:    ttl,
		logger: logger.Named("list-cache"),
	}
}

var listsCacheKey = cache.Key("lists", "all")

func listCacheKey(id string) string {
	return cache.Key("lists", "id", id)
}

func (r *CachedListRepository) invalidate(ctx context.Context, id string) {
	cache.Invalidate(ctx, r.cache, r.logger, listsCacheKey, listCacheKey(id))
}

// Invalidate drops every cached list.
func (r *CachedListRepository) Invalidate(ctx context.Context) {
	if _, err := cache.DeletePattern(ctx, r.cache, cache.Key("lists", "*")); err != nil {
		r.logger.Warn("Failed to invalidate list cache", zap.Error(err))
	}
}

func (r *CachedListRepository) GetAll(ctx context.Context) ([]*domain.ShoppingList, error) {
	return readThrough(ctx, r.cache, &r.group, r.logger, listsCacheKey, r.ttl, r.next.GetAll)
}

// GetByID caches hits only; a missing list is always looked up again.
func (r *CachedListRepository) GetByID(ctx context.Context, id string) (*domain.ShoppingList, error) {
	l, err := readThrough(ctx, r.cache, &r.group, r.logger, listCacheKey(id), r.ttl,
		func(ctx context.Context) (*domain.ShoppingList, error) {
			l, err := r.next.GetByID(ctx, id)
			if err == nil && l == nil {
				return nil, errListMiss
			}
			return l, err
		})
	if errors.Is(err, errListMiss) {
		return nil, nil
	}
	return l, err
}

// errListMiss keeps a nil lookup out of the cache.
var errListMiss = domain.NotFoundf(domain.EntityList, "list not found")

func (r *CachedListRepository) Create(ctx context.Context, in domain.CreateListInput) (*domain.ShoppingList, error) {
	l, err := r.next.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, l.ID)
	return l, nil
}

// after invalidates id once a mutation on it has succeeded.
func (r *CachedListRepository) after(ctx context.Context, id string, l *domain.ShoppingList, err error) (*domain.ShoppingList, error) {
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return l, nil
}

func (r *CachedListRepository) Update(ctx context.Context, id string, in domain.UpdateListInput) (*domain.ShoppingList, error) {
	l, err := r.next.Update(ctx, id, in)
	return r.after(ctx, id, l, err)
}

func (r *CachedListRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedListRepository) AddItem(ctx context.Context, listID string, entry domain.ListEntry) (*domain.ShoppingList, error) {
	l, err := r.next.AddItem(ctx, listID, entry)
	return r.after(ctx, listID, l, err)
}

func (r *CachedListRepository) RemoveItem(ctx context.Context, listID, itemID string) (*domain.ShoppingList, error) {
	l, err := r.next.RemoveItem(ctx, listID, itemID)
	return r.after(ctx, listID, l, err)
}

func (r *CachedListRepository) UpdateItem(ctx context.Context, listID, itemID string, in domain.UpdateEntryInput) (*domain.ShoppingList, error) {
	l, err := r.next.UpdateItem(ctx, listID, itemID, in)
	return r.after(ctx, listID, l, err)
}

func (r *CachedListRepository) ToggleItemCollected(ctx context.Context, listID, itemID string) (*domain.ShoppingList, error) {
	l, err := r.next.ToggleItemCollected(ctx, listID, itemID)
	return r.after(ctx, listID, l, err)
}

func (r *CachedListRepository) ClearCompletedItems(ctx context.Context, listID string) (*domain.ShoppingList, error) {
	l, err := r.next.ClearCompletedItems(ctx, listID)
	return r.after(ctx, listID, l, err)
}

func (r *CachedListRepository) DuplicateList(ctx context.Context, id, newName string) (*domain.ShoppingList, error) {
	l, err := r.next.DuplicateList(ctx, id, newName)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, l.ID)
	return l, nil
}

// PurgeDeleted forwards to the wrapped repository when it supports purging.
func (r *CachedListRepository) PurgeDeleted(ctx context.Context, olderThan time.Time) (int64, error) {
	purger, ok := r.next.(domain.ListPurger)
	if !ok {
		return 0, nil
	}
	return purger.PurgeDeleted(ctx, olderThan)
}
