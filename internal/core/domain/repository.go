package domain

import (
	"context"
	"time"
)

// ItemRepository persists the global item catalog.
type ItemRepository interface {
	// GetAll returns every catalog item.
	GetAll(ctx context.Context) ([]*Item, error)

	// GetByID returns (nil, nil) when no item has the given id.
	GetByID(ctx context.Context, id string) (*Item, error)

	// Create rejects names that collide case-insensitively with an existing item.
	Create(ctx context.Context, in CreateItemInput) (*Item, error)

	Update(ctx context.Context, id string, in UpdateItemInput) (*Item, error)

	Delete(ctx context.Context, id string) error

	// Search matches a case-insensitive substring of the name or an exact tag.
	// An empty query returns everything.
	Search(ctx context.Context, query string) ([]*Item, error)

	GetByTag(ctx context.Context, tag string) ([]*Item, error)

	// GetByTags returns the items carrying all of tags.
	GetByTags(ctx context.Context, tags []string) ([]*Item, error)
}

// ListRepository persists shopping lists and their entries.
type ListRepository interface {
	GetAll(ctx context.Context) ([]*ShoppingList, error)

	// GetByID returns (nil, nil) when no live list has the given id.
	GetByID(ctx context.Context, id string) (*ShoppingList, error)

	Create(ctx context.Context, in CreateListInput) (*ShoppingList, error)

	Update(ctx context.Context, id string, in UpdateListInput) (*ShoppingList, error)

	Delete(ctx context.Context, id string) error

	// AddItem replaces the entry for the same item in place, or appends it.
	AddItem(ctx context.Context, listID string, entry ListEntry) (*ShoppingList, error)

	RemoveItem(ctx context.Context, listID, itemID string) (*ShoppingList, error)

	UpdateItem(ctx context.Context, listID, itemID string, in UpdateEntryInput) (*ShoppingList, error)

	ToggleItemCollected(ctx context.Context, listID, itemID string) (*ShoppingList, error)

	// DuplicateList copies a list under newName, or a generated "(Copy)" name
	// when newName is empty. The source list is never modified.
	DuplicateList(ctx context.Context, id, newName string) (*ShoppingList, error)

	// ClearCompletedItems drops collected entries. Nothing is written when no
	// entry is collected.
	ClearCompletedItems(ctx context.Context, listID string) (*ShoppingList, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error

	// GetByEmail returns ErrUserNotFound when the email is unknown.
	GetByEmail(ctx context.Context, email string) (*User, error)

	GetByID(ctx context.Context, id string) (*User, error)
}

// ListPurger hard-deletes lists that were soft-deleted before a cutoff.
type ListPurger interface {
	PurgeDeleted(ctx context.Context, olderThan time.Time) (int64, error)
}
