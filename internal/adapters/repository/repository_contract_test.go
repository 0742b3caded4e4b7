package repository

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

func ptr[T any](v T) *T { return &v }

func itemNames(items []*domain.Item) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	sort.Strings(names)
	return names
}

func assertValidation(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// runItemRepositoryContract checks the behavior shared by every
// ItemRepository implementation.
func runItemRepositoryContract(t *testing.T, newRepo func(t *testing.T) domain.ItemRepository) {
	ctx := context.Background()

	seed := func(t *testing.T, repo domain.ItemRepository) {
		t.Helper()
		for _, in := range []domain.CreateItemInput{
			{Name: "Whole Milk", Emoji: "🥛", Tags: []string{"Dairy", "fridge"}},
			{Name: "Cheddar", Emoji: "🧀", Tags: []string{"dairy"}},
			{Name: "Bread", Emoji: "🍞", Tags: []string{"bakery"}},
			{Name: "Milkshake Powder", Emoji: "🥤"},
		} {
			_, err := repo.Create(ctx, in)
			require.NoError(t, err)
		}
	}

	t.Run("Success: Create then GetByID", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, domain.CreateItemInput{Name: "Milk", Emoji: "🥛", Tags: []string{"dairy"}})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)

		fetched, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, "Milk", fetched.Name)
		assert.Equal(t, []string{"dairy"}, fetched.Tags)
		assert.True(t, created.UpdatedAt.Equal(fetched.UpdatedAt))
	})

	t.Run("Fail: Duplicate name in another case", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(ctx, domain.CreateItemInput{Name: "Milk", Emoji: "🥛", Tags: []string{"dairy"}})
		require.NoError(t, err)

		_, err = repo.Create(ctx, domain.CreateItemInput{Name: "milk", Emoji: "🥛"})
		assertValidation(t, err)
		assert.EqualError(t, err, `item "milk" already exists`)

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("Fail: Invalid input never reaches storage", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Create(ctx, domain.CreateItemInput{Name: "", Emoji: "🥛"})
		assertValidation(t, err)
	})

	t.Run("Success: GetByID of unknown id is empty, not an error", func(t *testing.T) {
		repo := newRepo(t)

		got, err := repo.GetByID(ctx, "item-missing")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Success: Update merges fields and advances UpdatedAt", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, domain.CreateItemInput{Name: "Milk", Emoji: "🥛", Tags: []string{"dairy"}})
		require.NoError(t, err)

		updated, err := repo.Update(ctx, created.ID, domain.UpdateItemInput{Tags: []string{"fridge", "Dairy"}})
		require.NoError(t, err)
		assert.Equal(t, "Milk", updated.Name)
		assert.Equal(t, []string{"fridge", "Dairy"}, updated.Tags)
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

		fetched, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"fridge", "Dairy"}, fetched.Tags)
	})

	t.Run("Success: Renaming to own name in another case", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, domain.CreateItemInput{Name: "Milk", Emoji: "🥛"})
		require.NoError(t, err)

		updated, err := repo.Update(ctx, created.ID, domain.UpdateItemInput{Name: ptr("MILK")})
		require.NoError(t, err)
		assert.Equal(t, "MILK", updated.Name)
	})

	t.Run("Fail: Renaming onto another item", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(ctx, domain.CreateItemInput{Name: "Milk", Emoji: "🥛"})
		require.NoError(t, err)
		bread, err := repo.Create(ctx, domain.CreateItemInput{Name: "Bread", Emoji: "🍞"})
		require.NoError(t, err)

		_, err = repo.Update(ctx, bread.ID, domain.UpdateItemInput{Name: ptr(" milk ")})
		assertValidation(t, err)

		fetched, _ := repo.GetByID(ctx, bread.ID)
		assert.Equal(t, "Bread", fetched.Name)
	})

	t.Run("Fail: Update and Delete of unknown id", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Update(ctx, "item-missing", domain.UpdateItemInput{Emoji: ptr("🥛")})
		assert.ErrorIs(t, err, domain.ErrItemNotFound)

		err = repo.Delete(ctx, "item-missing")
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	t.Run("Success: Delete removes the item", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, domain.CreateItemInput{Name: "Milk", Emoji: "🥛", Tags: []string{"dairy"}})
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, created.ID))

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		_, err = repo.Create(ctx, domain.CreateItemInput{Name: "Milk", Emoji: "🥛"})
		assert.NoError(t, err, "a deleted name can be reused")
	})

	t.Run("Success: Search", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		got, err := repo.Search(ctx, "  MILK ")
		require.NoError(t, err)
		assert.Equal(t, []string{"Milkshake Powder", "Whole Milk"}, itemNames(got))

		got, err = repo.Search(ctx, "dairy")
		require.NoError(t, err)
		assert.Equal(t, []string{"Cheddar", "Whole Milk"}, itemNames(got))

		got, err = repo.Search(ctx, "dai")
		require.NoError(t, err)
		assert.Empty(t, got, "tags only match exactly")

		got, err = repo.Search(ctx, "")
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})

	t.Run("Success: Search treats wildcards literally", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		got, err := repo.Search(ctx, "%")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Success: GetByTag and GetByTags", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		got, err := repo.GetByTag(ctx, "DAIRY")
		require.NoError(t, err)
		assert.Equal(t, []string{"Cheddar", "Whole Milk"}, itemNames(got))

		got, err = repo.GetByTags(ctx, []string{"dairy", "Fridge"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Whole Milk"}, itemNames(got))

		got, err = repo.GetByTags(ctx, []string{"dairy", "bakery"})
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = repo.GetByTags(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, got, 4)

		got, err = repo.GetByTag(ctx, "")
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})
}

// runListRepositoryContract checks the behavior shared by every
// ListRepository implementation.
func runListRepositoryContract(t *testing.T, newRepo func(t *testing.T) domain.ListRepository) {
	ctx := context.Background()

	create := func(t *testing.T, repo domain.ListRepository, name string) *domain.ShoppingList {
		t.Helper()
		l, err := repo.Create(ctx, domain.CreateListInput{Name: name})
		require.NoError(t, err)
		return l
	}

	t.Run("Success: Create with initial entries", func(t *testing.T) {
		repo := newRepo(t)

		l, err := repo.Create(ctx, domain.CreateListInput{Name: "Groceries", Items: []domain.ListEntry{
			{ItemID: "milk-id", Quantity: 1},
			{ItemID: "milk-id", Quantity: 4},
			{ItemID: "bread-id", Quantity: 2},
		}})
		require.NoError(t, err)

		fetched, err := repo.GetByID(ctx, l.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, []domain.ListEntry{
			{ItemID: "milk-id", Quantity: 4},
			{ItemID: "bread-id", Quantity: 2},
		}, fetched.Items)
	})

	t.Run("Fail: Duplicate list name", func(t *testing.T) {
		repo := newRepo(t)
		create(t, repo, "Groceries")

		_, err := repo.Create(ctx, domain.CreateListInput{Name: "GROCERIES"})
		assertValidation(t, err)
		assert.EqualError(t, err, `list "GROCERIES" already exists`)
	})

	t.Run("Success: Rename", func(t *testing.T) {
		repo := newRepo(t)
		l := create(t, repo, "Groceries")
		create(t, repo, "Party")

		_, err := repo.Update(ctx, l.ID, domain.UpdateListInput{Name: ptr("party")})
		assertValidation(t, err)

		renamed, err := repo.Update(ctx, l.ID, domain.UpdateListInput{Name: ptr("groceries")})
		require.NoError(t, err)
		assert.Equal(t, "groceries", renamed.Name)
		assert.True(t, renamed.UpdatedAt.After(l.UpdatedAt))
	})

	t.Run("Success: AddItem twice keeps one entry", func(t *testing.T) {
		repo := newRepo(t)
		l := create(t, repo, "Groceries")

		l, err := repo.AddItem(ctx, l.ID, domain.ListEntry{ItemID: "milk-id", Quantity: 2})
		require.NoError(t, err)
		require.Len(t, l.Items, 1)
		assert.Equal(t, 2, l.Items[0].Quantity)

		l, err = repo.AddItem(ctx, l.ID, domain.ListEntry{ItemID: "milk-id", Quantity: 5})
		require.NoError(t, err)

		fetched, err := repo.GetByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, []domain.ListEntry{{ItemID: "milk-id", Quantity: 5}}, fetched.Items)
	})

	t.Run("Fail: AddItem with invalid quantity", func(t *testing.T) {
		repo := newRepo(t)
		l := create(t, repo, "Groceries")

		_, err := repo.AddItem(ctx, l.ID, domain.ListEntry{ItemID: "milk-id", Quantity: 0})
		assertValidation(t, err)
	})

	t.Run("Success: Toggle twice restores collected", func(t *testing.T) {
		repo := newRepo(t)
		l := create(t, repo, "Groceries")
		_, err := repo.AddItem(ctx, l.ID, domain.ListEntry{ItemID: "milk-id", Quantity: 1})
		require.NoError(t, err)

		once, err := repo.ToggleItemCollected(ctx, l.ID, "milk-id")
		require.NoError(t, err)
		assert.True(t, once.Items[0].Collected)

		twice, err := repo.ToggleItemCollected(ctx, l.ID, "milk-id")
		require.NoError(t, err)
		assert.False(t, twice.Items[0].Collected)
	})

	t.Run("Success: UpdateItem and RemoveItem", func(t *testing.T) {
		repo := newRepo(t)
		l := create(t, repo, "Groceries")
		_, err := repo.AddItem(ctx, l.ID, domain.ListEntry{ItemID: "milk-id", Quantity: 1})
		require.NoError(t, err)
		_, err = repo.AddItem(ctx, l.ID, domain.ListEntry{ItemID: "bread-id", Quantity: 1})
		require.NoError(t, err)

		l, err = repo.UpdateItem(ctx, l.ID, "milk-id", domain.UpdateEntryInput{Quantity: ptr(3)})
		require.NoError(t, err)
		assert.Equal(t, domain.ListEntry{ItemID: "milk-id", Quantity: 3}, l.Items[0])

		l, err = repo.RemoveItem(ctx, l.ID, "milk-id")
		require.NoError(t, err)
		assert.Equal(t, []domain.ListEntry{{ItemID: "bread-id", Quantity: 1}}, l.Items)

		_, err = repo.UpdateItem(ctx, l.ID, "bread-id", domain.UpdateEntryInput{Quantity: ptr(1000)})
		assertValidation(t, err)
	})

	t.Run("Success: ClearCompletedItems without collected entries does not write", func(t *testing.T) {
		repo := newRepo(t)
		l := create(t, repo, "Groceries")
		l, err := repo.AddItem(ctx, l.ID, domain.ListEntry{ItemID: "milk-id", Quantity: 1})
		require.NoError(t, err)

		cleared, err := repo.ClearCompletedItems(ctx, l.ID)
		require.NoError(t, err)
		assert.True(t, cleared.UpdatedAt.Equal(l.UpdatedAt))
		assert.Len(t, cleared.Items, 1)

		fetched, err := repo.GetByID(ctx, l.ID)
		require.NoError(t, err)
		assert.True(t, fetched.UpdatedAt.Equal(l.UpdatedAt))
	})

	t.Run("Success: ClearCompletedItems drops collected entries", func(t *testing.T) {
		repo := newRepo(t)
		l, err := repo.Create(ctx, domain.CreateListInput{Name: "Groceries", Items: []domain.ListEntry{
			{ItemID: "milk-id", Quantity: 1, Collected: true},
			{ItemID: "bread-id", Quantity: 1},
		}})
		require.NoError(t, err)

		cleared, err := repo.ClearCompletedItems(ctx, l.ID)
		require.NoError(t, err)
		assert.True(t, cleared.UpdatedAt.After(l.UpdatedAt))

		fetched, err := repo.GetByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, []domain.ListEntry{{ItemID: "bread-id", Quantity: 1}}, fetched.Items)
	})

	t.Run("Success: DuplicateList copies independently", func(t *testing.T) {
		repo := newRepo(t)
		src, err := repo.Create(ctx, domain.CreateListInput{Name: "Groceries", Items: []domain.ListEntry{
			{ItemID: "milk-id", Quantity: 2},
		}})
		require.NoError(t, err)

		dup, err := repo.DuplicateList(ctx, src.ID, "")
		require.NoError(t, err)
		assert.Equal(t, "Groceries (Copy)", dup.Name)
		assert.NotEqual(t, src.ID, dup.ID)
		assert.Equal(t, src.Items, dup.Items)

		_, err = repo.ToggleItemCollected(ctx, src.ID, "milk-id")
		require.NoError(t, err)

		fetched, err := repo.GetByID(ctx, dup.ID)
		require.NoError(t, err)
		assert.False(t, fetched.Items[0].Collected)

		second, err := repo.DuplicateList(ctx, src.ID, "")
		require.NoError(t, err)
		assert.Equal(t, "Groceries (Copy 2)", second.Name)

		named, err := repo.DuplicateList(ctx, src.ID, "  Weekend ")
		require.NoError(t, err)
		assert.Equal(t, "Weekend", named.Name)

		_, err = repo.DuplicateList(ctx, src.ID, "weekend")
		assertValidation(t, err)

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("Fail: Unknown list", func(t *testing.T) {
		repo := newRepo(t)
		const id = "list-missing"

		got, err := repo.GetByID(ctx, id)
		assert.NoError(t, err)
		assert.Nil(t, got)

		_, err = repo.Update(ctx, id, domain.UpdateListInput{Name: ptr("x")})
		assert.ErrorIs(t, err, domain.ErrListNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, id), domain.ErrListNotFound)
		_, err = repo.AddItem(ctx, id, domain.ListEntry{ItemID: "milk-id", Quantity: 1})
		assert.ErrorIs(t, err, domain.ErrListNotFound)
		_, err = repo.RemoveItem(ctx, id, "milk-id")
		assert.ErrorIs(t, err, domain.ErrListNotFound)
		_, err = repo.UpdateItem(ctx, id, "milk-id", domain.UpdateEntryInput{Collected: ptr(true)})
		assert.ErrorIs(t, err, domain.ErrListNotFound)
		_, err = repo.ToggleItemCollected(ctx, id, "milk-id")
		assert.ErrorIs(t, err, domain.ErrListNotFound)
		_, err = repo.DuplicateList(ctx, id, "")
		assert.ErrorIs(t, err, domain.ErrListNotFound)
		_, err = repo.ClearCompletedItems(ctx, id)
		assert.ErrorIs(t, err, domain.ErrListNotFound)
	})

	t.Run("Fail: Unknown entry is distinct from unknown list", func(t *testing.T) {
		repo := newRepo(t)
		l := create(t, repo, "Groceries")

		_, err := repo.RemoveItem(ctx, l.ID, "ghost")
		assert.ErrorIs(t, err, domain.ErrEntryNotFound)
		assert.NotErrorIs(t, err, domain.ErrListNotFound)

		_, err = repo.ToggleItemCollected(ctx, l.ID, "ghost")
		assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	})

	t.Run("Success: Every mutation advances UpdatedAt", func(t *testing.T) {
		repo := newRepo(t)
		l := create(t, repo, "Groceries")
		last := l.UpdatedAt

		steps := []func() (*domain.ShoppingList, error){
			func() (*domain.ShoppingList, error) {
				return repo.AddItem(ctx, l.ID, domain.ListEntry{ItemID: "milk-id", Quantity: 1})
			},
			func() (*domain.ShoppingList, error) { return repo.ToggleItemCollected(ctx, l.ID, "milk-id") },
			func() (*domain.ShoppingList, error) {
				return repo.UpdateItem(ctx, l.ID, "milk-id", domain.UpdateEntryInput{Quantity: ptr(2)})
			},
			func() (*domain.ShoppingList, error) {
				return repo.Update(ctx, l.ID, domain.UpdateListInput{Name: ptr("Weekly")})
			},
			func() (*domain.ShoppingList, error) { return repo.ClearCompletedItems(ctx, l.ID) },
		}
		for i, step := range steps {
			got, err := step()
			require.NoError(t, err)
			assert.True(t, got.UpdatedAt.After(last), "step %d did not advance UpdatedAt", i)
			last = got.UpdatedAt
		}
	})

	t.Run("Success: Delete hides the list and frees its name", func(t *testing.T) {
		repo := newRepo(t)
		l := create(t, repo, "Groceries")
		create(t, repo, "Party")

		require.NoError(t, repo.Delete(ctx, l.ID))

		got, err := repo.GetByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Party", all[0].Name)

		create(t, repo, "Groceries")
		assert.ErrorIs(t, repo.Delete(ctx, l.ID), domain.ErrListNotFound)
	})
}
