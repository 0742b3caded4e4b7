package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

// DefaultCatalog is the grocery catalog installed by "superlist seed".
var DefaultCatalog = []domain.CreateItemInput{
	{Name: "Milk", Emoji: "🥛", Tags: []string{"dairy"}},
	{Name: "Butter", Emoji: "🧈", Tags: []string{"dairy"}},
	{Name: "Cheese", Emoji: "🧀", Tags: []string{"dairy"}},
	{Name: "Eggs", Emoji: "🥚", Tags: []string{"dairy", "protein"}},
	{Name: "Bread", Emoji: "🍞", Tags: []string{"bakery"}},
	{Name: "Croissant", Emoji: "🥐", Tags: []string{"bakery"}},
	{Name: "Apples", Emoji: "🍎", Tags: []string{"fruit", "fresh"}},
	{Name: "Bananas", Emoji: "🍌", Tags: []string{"fruit", "fresh"}},
	{Name: "Lemons", Emoji: "🍋", Tags: []string{"fruit", "fresh"}},
	{Name: "Tomatoes", Emoji: "🍅", Tags: []string{"vegetables", "fresh"}},
	{Name: "Carrots", Emoji: "🥕", Tags: []string{"vegetables", "fresh"}},
	{Name: "Potatoes", Emoji: "🥔", Tags: []string{"vegetables"}},
	{Name: "Onions", Emoji: "🧅", Tags: []string{"vegetables"}},
	{Name: "Chicken", Emoji: "🍗", Tags: []string{"meat", "protein"}},
	{Name: "Fish", Emoji: "🐟", Tags: []string{"seafood", "protein"}},
	{Name: "Rice", Emoji: "🍚", Tags: []string{"pantry"}},
	{Name: "Pasta", Emoji: "🍝", Tags: []string{"pantry"}},
	{Name: "Olive Oil", Emoji: "🫒", Tags: []string{"pantry"}},
	{Name: "Coffee", Emoji: "☕", Tags: []string{"drinks"}},
	{Name: "Water", Emoji: "💧", Tags: []string{"drinks"}},
}

// SeedCatalog creates every item of catalog whose name is not taken yet and
// returns how many were added. Running it twice adds nothing the second time.
func (s *ItemService) SeedCatalog(ctx context.Context, catalog []domain.CreateItemInput) (int, error) {
	existing, err := s.repo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: load catalog: %w", err)
	}

	taken := make(map[string]bool, len(existing))
	for _, it := range existing {
		taken[domain.NameKey(it.Name)] = true
	}

	added := 0
	for _, in := range catalog {
		key := domain.NameKey(in.Name)
		if taken[key] {
			continue
		}
		if _, err := s.repo.Create(ctx, in); err != nil {
			return added, fmt.Errorf("seed: create %q: %w", in.Name, err)
		}
		taken[key] = true
		added++
	}

	s.logger.Info("Catalog seeded", zap.Int("added", added), zap.Int("skipped", len(catalog)-added))
	return added, nil
}
