package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

// ListService fronts the list repository and checks that entries point at
// catalog items when they are added.
type ListService struct {
	lists  domain.ListRepository
	items  domain.ItemRepository
	logger *zap.Logger
}

func NewListService(lists domain.ListRepository, items domain.ItemRepository, logger *zap.Logger) *ListService {
	return &ListService{
		lists:  lists,
		items:  items,
		logger: logger.Named("lists"),
	}
}

func (s *ListService) List(ctx context.Context) ([]*domain.ShoppingList, error) {
	return s.lists.GetAll(ctx)
}

func (s *ListService) Get(ctx context.Context, id string) (*domain.ShoppingList, error) {
	l, err := s.lists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.NotFoundf(domain.EntityList, "list %s not found", id)
	}
	return l, nil
}

func (s *ListService) requireItem(ctx context.Context, itemID string) error {
	itemID = strings.TrimSpace(itemID)
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.NotFoundf(domain.EntityItem, "item %s not found", itemID)
	}
	return nil
}

func (s *ListService) Create(ctx context.Context, in domain.CreateListInput) (*domain.ShoppingList, error) {
	for _, e := range in.Items {
		if err := s.requireItem(ctx, e.ItemID); err != nil {
			return nil, err
		}
	}

	l, err := s.lists.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("List created", zap.String("list_id", l.ID), zap.String("name", l.Name))
	return l, nil
}

func (s *ListService) Update(ctx context.Context, id string, in domain.UpdateListInput) (*domain.ShoppingList, error) {
	return s.lists.Update(ctx, id, in)
}

func (s *ListService) Delete(ctx context.Context, id string) error {
	if err := s.lists.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("List deleted", zap.String("list_id", id))
	return nil
}

// AddItem reports a missing list before a missing item.
func (s *ListService) AddItem(ctx context.Context, listID string, entry domain.ListEntry) (*domain.ShoppingList, error) {
	if _, err := s.Get(ctx, listID); err != nil {
		return nil, err
	}
	if err := s.requireItem(ctx, entry.ItemID); err != nil {
		return nil, err
	}
	return s.lists.AddItem(ctx, listID, entry)
}

func (s *ListService) RemoveItem(ctx context.Context, listID, itemID string) (*domain.ShoppingList, error) {
	return s.lists.RemoveItem(ctx, listID, itemID)
}

func (s *ListService) UpdateItem(ctx context.Context, listID, itemID string, in domain.UpdateEntryInput) (*domain.ShoppingList, error) {
	return s.lists.UpdateItem(ctx, listID, itemID, in)
}

func (s *ListService) ToggleItem(ctx context.Context, listID, itemID string) (*domain.ShoppingList, error) {
	return s.lists.ToggleItemCollected(ctx, listID, itemID)
}

func (s *ListService) Duplicate(ctx context.Context, id, newName string) (*domain.ShoppingList, error) {
	dup, err := s.lists.DuplicateList(ctx, id, newName)
	if err != nil {
		return nil, err
	}
	s.logger.Info("List duplicated", zap.String("source_id", id), zap.String("list_id", dup.ID))
	return dup, nil
}

func (s *ListService) ClearCompleted(ctx context.Context, id string) (*domain.ShoppingList, error) {
	return s.lists.ClearCompletedItems(ctx, id)
}
