package services

import (
	"context"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

type StatsService struct {
	lists domain.ListRepository
	items domain.ItemRepository
}

func NewStatsService(lists domain.ListRepository, items domain.ItemRepository) *StatsService {
	return &StatsService{
		lists: lists,
		items: items,
	}
}

// GetStats reports collection progress per list and across all lists.
func (s *StatsService) GetStats(ctx context.Context) (*domain.Stats, error) {
	lists, err := s.lists.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.items.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return domain.Summarize(lists, len(items)), nil
}
