package repository

import (
	"context"
	"fmt"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/recordstore"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

const ItemsDocument = "items.json"

type itemsDoc struct {
	Items []*domain.Item `json:"items"`
}

var _ domain.ItemRepository = (*DocumentItemRepository)(nil)

// DocumentItemRepository keeps the whole catalog in one record store
// document. Every mutation, uniqueness check included, runs inside a single
// Store.Update critical section.
type DocumentItemRepository struct {
	store recordstore.Store
}

func NewDocumentItemRepository(store recordstore.Store) *DocumentItemRepository {
	return &DocumentItemRepository{store: store}
}

func (r *DocumentItemRepository) load(ctx context.Context) ([]*domain.Item, error) {
	doc, err := recordstore.ReadOr(ctx, r.store, ItemsDocument, itemsDoc{})
	if err != nil {
		return nil, err
	}
	if doc.Items == nil {
		return []*domain.Item{}, nil
	}
	return doc.Items, nil
}

func findItem(items []*domain.Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// itemNameTaken reports whether another item than exceptID uses name.
func itemNameTaken(items []*domain.Item, name, exceptID string) bool {
	for _, it := range items {
		if it.ID != exceptID && domain.SameName(it.Name, name) {
			return true
		}
	}
	return false
}

func itemNotFound(id string) error {
	return domain.NotFoundf(domain.EntityItem, "item %s not found", id)
}

func duplicateName(kind, name string) error {
	return domain.NewValidationError(
		fmt.Sprintf("%s %q already exists", kind, name),
		map[string]string{"name": "must be unique"},
	)
}

func (r *DocumentItemRepository) GetAll(ctx context.Context) ([]*domain.Item, error) {
	return r.load(ctx)
}

func (r *DocumentItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	items, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if i := findItem(items, id); i >= 0 {
		return items[i], nil
	}
	return nil, nil
}

func (r *DocumentItemRepository) Create(ctx context.Context, in domain.CreateItemInput) (*domain.Item, error) {
	item, err := domain.NewItem(in)
	if err != nil {
		return nil, err
	}

	var doc itemsDoc
	err = r.store.Update(ctx, ItemsDocument, &doc, func(bool) (bool, error) {
		if itemNameTaken(doc.Items, item.Name, "") {
			return false, duplicateName("item", item.Name)
		}
		doc.Items = append(doc.Items, item)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *DocumentItemRepository) Update(ctx context.Context, id string, in domain.UpdateItemInput) (*domain.Item, error) {
	if err := in.Prepare(); err != nil {
		return nil, err
	}

	var (
		doc     itemsDoc
		updated *domain.Item
	)
	err := r.store.Update(ctx, ItemsDocument, &doc, func(bool) (bool, error) {
		i := findItem(doc.Items, id)
		if i < 0 {
			return false, itemNotFound(id)
		}

		item := doc.Items[i]
		if in.Renames(item) && itemNameTaken(doc.Items, *in.Name, id) {
			return false, duplicateName("item", *in.Name)
		}

		item.Apply(in)
		updated = item.Clone()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *DocumentItemRepository) Delete(ctx context.Context, id string) error {
	var doc itemsDoc
	return r.store.Update(ctx, ItemsDocument, &doc, func(bool) (bool, error) {
		i := findItem(doc.Items, id)
		if i < 0 {
			return false, itemNotFound(id)
		}
		doc.Items = append(doc.Items[:i], doc.Items[i+1:]...)
		return true, nil
	})
}

func (r *DocumentItemRepository) Search(ctx context.Context, query string) ([]*domain.Item, error) {
	items, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterItems(items, func(it *domain.Item) bool {
		return it.MatchesQuery(query)
	}), nil
}

func (r *DocumentItemRepository) GetByTag(ctx context.Context, tag string) ([]*domain.Item, error) {
	items, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if domain.NameKey(tag) == "" {
		return items, nil
	}
	return domain.FilterItems(items, func(it *domain.Item) bool {
		return it.HasTag(tag)
	}), nil
}

func (r *DocumentItemRepository) GetByTags(ctx context.Context, tags []string) ([]*domain.Item, error) {
	items, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterItems(items, func(it *domain.Item) bool {
		return it.HasAllTags(tags)
	}), nil
}
