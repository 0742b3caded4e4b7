package domain_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newList(t *testing.T, name string, entries ...domain.ListEntry) *domain.ShoppingList {
	t.Helper()
	l, err := domain.NewShoppingList(domain.CreateListInput{Name: name, Items: entries})
	require.NoError(t, err)
	return l
}

func TestNewShoppingList(t *testing.T) {
	t.Run("Success: Empty list", func(t *testing.T) {
		l := newList(t, "  Groceries ")

		assert.Equal(t, "Groceries", l.Name)
		assert.True(t, strings.HasPrefix(l.ID, "list-"))
		assert.NotNil(t, l.Items)
		assert.Empty(t, l.Items)
		assert.Nil(t, l.DeletedAt)
	})

	t.Run("Success: Initial entries collapse per item, last wins", func(t *testing.T) {
		l := newList(t, "Groceries",
			domain.ListEntry{ItemID: "milk", Quantity: 1},
			domain.ListEntry{ItemID: "bread", Quantity: 2},
			domain.ListEntry{ItemID: "milk", Quantity: 3, Collected: true},
		)

		assert.Equal(t, []domain.ListEntry{
			{ItemID: "milk", Quantity: 3, Collected: true},
			{ItemID: "bread", Quantity: 2},
		}, l.Items)
	})

	t.Run("Fail: Invalid entry quantity", func(t *testing.T) {
		_, err := domain.NewShoppingList(domain.CreateListInput{
			Name:  "Groceries",
			Items: []domain.ListEntry{{ItemID: "milk", Quantity: 1000}},
		})

		verr, ok := domain.AsError(err)
		require.True(t, ok)
		assert.Equal(t, domain.CodeValidation, verr.Code)
		assert.Contains(t, verr.Details, "items[0].quantity")
	})

	t.Run("Fail: Blank name", func(t *testing.T) {
		_, err := domain.NewShoppingList(domain.CreateListInput{Name: " "})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestShoppingList_EntryOperations(t *testing.T) {
	t.Run("Success: AddEntry twice keeps one entry with the latest fields", func(t *testing.T) {
		l := newList(t, "Groceries")

		require.NoError(t, l.AddEntry(domain.ListEntry{ItemID: "milk", Quantity: 2}))
		require.NoError(t, l.AddEntry(domain.ListEntry{ItemID: "milk", Quantity: 5}))

		require.Len(t, l.Items, 1)
		assert.Equal(t, 5, l.Items[0].Quantity)
	})

	t.Run("Fail: AddEntry beyond capacity", func(t *testing.T) {
		l := newList(t, "Big")
		for i := 0; i < domain.MaxListEntries; i++ {
			require.NoError(t, l.AddEntry(domain.ListEntry{ItemID: strings.Repeat("i", i+1), Quantity: 1}))
		}

		err := l.AddEntry(domain.ListEntry{ItemID: "one-too-many", Quantity: 1})
		assert.ErrorIs(t, err, domain.ErrValidation)

		// Replacing an existing entry is still allowed on a full list.
		assert.NoError(t, l.AddEntry(domain.ListEntry{ItemID: "i", Quantity: 9}))
	})

	t.Run("Success: Toggle twice restores the original state", func(t *testing.T) {
		l := newList(t, "Groceries", domain.ListEntry{ItemID: "milk", Quantity: 1})

		require.NoError(t, l.ToggleEntry("milk"))
		e, _ := l.Entry("milk")
		assert.True(t, e.Collected)

		require.NoError(t, l.ToggleEntry("milk"))
		e, _ = l.Entry("milk")
		assert.False(t, e.Collected)
	})

	t.Run("Success: UpdateEntry merges partial fields", func(t *testing.T) {
		l := newList(t, "Groceries", domain.ListEntry{ItemID: "milk", Quantity: 1})

		require.NoError(t, l.UpdateEntry("milk", domain.UpdateEntryInput{Collected: ptr(true)}))

		e, _ := l.Entry("milk")
		assert.Equal(t, domain.ListEntry{ItemID: "milk", Quantity: 1, Collected: true}, e)
	})

	t.Run("Fail: Missing entry is an entry-level not found", func(t *testing.T) {
		l := newList(t, "Groceries")

		for _, err := range []error{
			l.RemoveEntry("ghost"),
			l.ToggleEntry("ghost"),
			l.UpdateEntry("ghost", domain.UpdateEntryInput{Quantity: ptr(2)}),
		} {
			assert.ErrorIs(t, err, domain.ErrEntryNotFound)
			assert.ErrorIs(t, err, domain.ErrNotFound)
			assert.NotErrorIs(t, err, domain.ErrListNotFound)
		}
	})

	t.Run("Success: Every mutation strictly increases UpdatedAt", func(t *testing.T) {
		l := newList(t, "Groceries")
		last := l.UpdatedAt

		steps := []func() error{
			func() error { return l.AddEntry(domain.ListEntry{ItemID: "milk", Quantity: 1}) },
			func() error { return l.ToggleEntry("milk") },
			func() error { return l.UpdateEntry("milk", domain.UpdateEntryInput{Quantity: ptr(4)}) },
			func() error { l.Apply(domain.UpdateListInput{Name: ptr("Weekly")}); return nil },
			func() error { return l.RemoveEntry("milk") },
		}
		for i, step := range steps {
			require.NoError(t, step())
			assert.True(t, l.UpdatedAt.After(last), "step %d did not advance UpdatedAt", i)
			last = l.UpdatedAt
		}
	})
}

func TestShoppingList_ClearCollected(t *testing.T) {
	t.Run("Success: Nothing collected leaves the list untouched", func(t *testing.T) {
		l := newList(t, "Groceries", domain.ListEntry{ItemID: "milk", Quantity: 1})
		before := l.UpdatedAt

		assert.False(t, l.ClearCollected())
		assert.Equal(t, before, l.UpdatedAt)
		assert.Len(t, l.Items, 1)
	})

	t.Run("Success: Collected entries are dropped", func(t *testing.T) {
		l := newList(t, "Groceries",
			domain.ListEntry{ItemID: "milk", Quantity: 1, Collected: true},
			domain.ListEntry{ItemID: "bread", Quantity: 1},
		)

		assert.True(t, l.ClearCollected())
		assert.Equal(t, []domain.ListEntry{{ItemID: "bread", Quantity: 1}}, l.Items)
	})
}

func TestShoppingList_Duplicate(t *testing.T) {
	t.Run("Success: Copy is independent of the source", func(t *testing.T) {
		src := newList(t, "Groceries", domain.ListEntry{ItemID: "milk", Quantity: 2})

		cp, err := src.Duplicate("Groceries (Copy)")
		require.NoError(t, err)
		require.NoError(t, src.ToggleEntry("milk"))

		assert.NotEqual(t, src.ID, cp.ID)
		assert.False(t, cp.Items[0].Collected)
	})
}

func TestDuplicateName(t *testing.T) {
	taken := func(names ...string) func(string) bool {
		return func(candidate string) bool {
			for _, n := range names {
				if domain.SameName(n, candidate) {
					return true
				}
			}
			return false
		}
	}

	t.Run("Success: Default copy name", func(t *testing.T) {
		assert.Equal(t, "Groceries (Copy)", domain.DuplicateName("Groceries", taken("Groceries")))
	})

	t.Run("Success: Numbered when the copy name is taken", func(t *testing.T) {
		got := domain.DuplicateName("Groceries", taken("Groceries", "groceries (copy)", "Groceries (Copy 2)"))
		assert.Equal(t, "Groceries (Copy 3)", got)
	})

	t.Run("Success: Long names are shortened to fit", func(t *testing.T) {
		got := domain.DuplicateName(strings.Repeat("é", 100), taken())

		assert.Equal(t, 100, utf8.RuneCountInString(got))
		assert.True(t, strings.HasSuffix(got, " (Copy)"))
	})
}
