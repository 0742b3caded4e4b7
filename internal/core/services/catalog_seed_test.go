package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

func TestItemService_SeedCatalog(t *testing.T) {
	ctx := context.Background()
	catalog := []domain.CreateItemInput{
		{Name: "Milk", Emoji: "🥛"},
		{Name: "Bread", Emoji: "🍞"},
		{Name: " bread ", Emoji: "🥖"},
		{Name: "Eggs", Emoji: "🥚"},
	}

	t.Run("Success: Skips names already in the catalog", func(t *testing.T) {
		repo := new(MockItemRepository)
		repo.On("GetAll", ctx).Return([]*domain.Item{{ID: "item_1", Name: "MILK"}}, nil)
		repo.On("Create", ctx, mock.AnythingOfType("domain.CreateItemInput")).Return(&domain.Item{}, nil)

		added, err := NewItemService(repo, zap.NewNop()).SeedCatalog(ctx, catalog)
		require.NoError(t, err)
		assert.Equal(t, 2, added)

		repo.AssertNumberOfCalls(t, "Create", 2)
		repo.AssertCalled(t, "Create", ctx, catalog[1])
		repo.AssertCalled(t, "Create", ctx, catalog[3])
	})

	t.Run("Success: Nothing to add", func(t *testing.T) {
		repo := new(MockItemRepository)
		repo.On("GetAll", ctx).Return([]*domain.Item{{Name: "milk"}, {Name: "bread"}, {Name: "eggs"}}, nil)

		added, err := NewItemService(repo, zap.NewNop()).SeedCatalog(ctx, catalog)
		require.NoError(t, err)
		assert.Zero(t, added)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Fail: Create error stops the seed", func(t *testing.T) {
		repo := new(MockItemRepository)
		repo.On("GetAll", ctx).Return([]*domain.Item{}, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil, errors.New("disk full")).Once()

		added, err := NewItemService(repo, zap.NewNop()).SeedCatalog(ctx, catalog)
		assert.ErrorContains(t, err, `create "Milk"`)
		assert.Zero(t, added)
	})

	t.Run("Success: Default catalog has unique valid names", func(t *testing.T) {
		seen := map[string]bool{}
		for _, in := range DefaultCatalog {
			key := domain.NameKey(in.Name)
			assert.False(t, seen[key], in.Name)
			seen[key] = true
			assert.NoError(t, in.Prepare(), in.Name)
		}
	})
}
