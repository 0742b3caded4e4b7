package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

type ItemService struct {
	repo   domain.ItemRepository
	logger *zap.Logger
}

func NewItemService(repo domain.ItemRepository, logger *zap.Logger) *ItemService {
	return &ItemService{
		repo:   repo,
		logger: logger.Named("items"),
	}
}

// ItemFilter narrows a catalog listing. Query wins over Tags, Tags over Tag.
type ItemFilter struct {
	Query string
	Tag   string
	Tags  []string
}

func (s *ItemService) List(ctx context.Context, f ItemFilter) ([]*domain.Item, error) {
	switch {
	case f.Query != "":
		return s.repo.Search(ctx, f.Query)
	case len(f.Tags) > 0:
		return s.repo.GetByTags(ctx, f.Tags)
	case f.Tag != "":
		return s.repo.GetByTag(ctx, f.Tag)
	default:
		return s.repo.GetAll(ctx)
	}
}

func (s *ItemService) Get(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFoundf(domain.EntityItem, "item %s not found", id)
	}
	return item, nil
}

func (s *ItemService) Create(ctx context.Context, in domain.CreateItemInput) (*domain.Item, error) {
	item, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Item created", zap.String("item_id", item.ID), zap.String("name", item.Name))
	return item, nil
}

func (s *ItemService) Update(ctx context.Context, id string, in domain.UpdateItemInput) (*domain.Item, error) {
	return s.repo.Update(ctx, id, in)
}

func (s *ItemService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Item deleted", zap.String("item_id", id))
	return nil
}
