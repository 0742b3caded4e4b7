package repository

import (
	"context"
	"strings"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/recordstore"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

const ListsDocument = "lists.json"

type listsDoc struct {
	Lists []*domain.ShoppingList `json:"lists"`
}

var _ domain.ListRepository = (*DocumentListRepository)(nil)

// DocumentListRepository stores every list in one record store document.
// Deletes are hard deletes.
type DocumentListRepository struct {
	store recordstore.Store
}

func NewDocumentListRepository(store recordstore.Store) *DocumentListRepository {
	return &DocumentListRepository{store: store}
}

func (r *DocumentListRepository) load(ctx context.Context) ([]*domain.ShoppingList, error) {
	doc, err := recordstore.ReadOr(ctx, r.store, ListsDocument, listsDoc{})
	if err != nil {
		return nil, err
	}

	lists := make([]*domain.ShoppingList, 0, len(doc.Lists))
	for _, l := range doc.Lists {
		if l.DeletedAt == nil {
			lists = append(lists, l)
		}
	}
	return lists, nil
}

func findList(lists []*domain.ShoppingList, id string) int {
	for i, l := range lists {
		if l.ID == id && l.DeletedAt == nil {
			return i
		}
	}
	return -1
}

func listNameTaken(lists []*domain.ShoppingList, name, exceptID string) bool {
	for _, l := range lists {
		if l.ID != exceptID && l.DeletedAt == nil && domain.SameName(l.Name, name) {
			return true
		}
	}
	return false
}

func listNotFound(id string) error {
	return domain.NotFoundf(domain.EntityList, "list %s not found", id)
}

// mutate applies fn to list id inside the document's critical section. fn
// reports whether anything changed; unchanged lists are not written back.
func (r *DocumentListRepository) mutate(ctx context.Context, id string, fn func(l *domain.ShoppingList, all []*domain.ShoppingList) (bool, error)) (*domain.ShoppingList, error) {
	var (
		doc    listsDoc
		result *domain.ShoppingList
	)
	err := r.store.Update(ctx, ListsDocument, &doc, func(bool) (bool, error) {
		i := findList(doc.Lists, id)
		if i < 0 {
			return false, listNotFound(id)
		}

		l := doc.Lists[i]
		changed, err := fn(l, doc.Lists)
		if err != nil {
			return false, err
		}
		result = l.Clone()
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *DocumentListRepository) GetAll(ctx context.Context) ([]*domain.ShoppingList, error) {
	return r.load(ctx)
}

func (r *DocumentListRepository) GetByID(ctx context.Context, id string) (*domain.ShoppingList, error) {
	lists, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if i := findList(lists, id); i >= 0 {
		return lists[i], nil
	}
	return nil, nil
}

func (r *DocumentListRepository) Create(ctx context.Context, in domain.CreateListInput) (*domain.ShoppingList, error) {
	list, err := domain.NewShoppingList(in)
	if err != nil {
		return nil, err
	}

	var doc listsDoc
	err = r.store.Update(ctx, ListsDocument, &doc, func(bool) (bool, error) {
		if listNameTaken(doc.Lists, list.Name, "") {
			return false, duplicateName("list", list.Name)
		}
		doc.Lists = append(doc.Lists, list)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *DocumentListRepository) Update(ctx context.Context, id string, in domain.UpdateListInput) (*domain.ShoppingList, error) {
	if err := in.Prepare(); err != nil {
		return nil, err
	}

	return r.mutate(ctx, id, func(l *domain.ShoppingList, all []*domain.ShoppingList) (bool, error) {
		if in.Renames(l) && listNameTaken(all, *in.Name, id) {
			return false, duplicateName("list", *in.Name)
		}
		l.Apply(in)
		return true, nil
	})
}

func (r *DocumentListRepository) Delete(ctx context.Context, id string) error {
	var doc listsDoc
	return r.store.Update(ctx, ListsDocument, &doc, func(bool) (bool, error) {
		i := findList(doc.Lists, id)
		if i < 0 {
			return false, listNotFound(id)
		}
		doc.Lists = append(doc.Lists[:i], doc.Lists[i+1:]...)
		return true, nil
	})
}

func (r *DocumentListRepository) AddItem(ctx context.Context, listID string, entry domain.ListEntry) (*domain.ShoppingList, error) {
	if err := domain.PrepareEntry(&entry); err != nil {
		return nil, err
	}

	return r.mutate(ctx, listID, func(l *domain.ShoppingList, _ []*domain.ShoppingList) (bool, error) {
		return true, l.AddEntry(entry)
	})
}

func (r *DocumentListRepository) RemoveItem(ctx context.Context, listID, itemID string) (*domain.ShoppingList, error) {
	return r.mutate(ctx, listID, func(l *domain.ShoppingList, _ []*domain.ShoppingList) (bool, error) {
		return true, l.RemoveEntry(itemID)
	})
}

func (r *DocumentListRepository) UpdateItem(ctx context.Context, listID, itemID string, in domain.UpdateEntryInput) (*domain.ShoppingList, error) {
	if err := in.Prepare(); err != nil {
		return nil, err
	}

	return r.mutate(ctx, listID, func(l *domain.ShoppingList, _ []*domain.ShoppingList) (bool, error) {
		return true, l.UpdateEntry(itemID, in)
	})
}

func (r *DocumentListRepository) ToggleItemCollected(ctx context.Context, listID, itemID string) (*domain.ShoppingList, error) {
	return r.mutate(ctx, listID, func(l *domain.ShoppingList, _ []*domain.ShoppingList) (bool, error) {
		return true, l.ToggleEntry(itemID)
	})
}

func (r *DocumentListRepository) ClearCompletedItems(ctx context.Context, listID string) (*domain.ShoppingList, error) {
	return r.mutate(ctx, listID, func(l *domain.ShoppingList, _ []*domain.ShoppingList) (bool, error) {
		return l.ClearCollected(), nil
	})
}

func (r *DocumentListRepository) DuplicateList(ctx context.Context, id, newName string) (*domain.ShoppingList, error) {
	newName, err := prepareCopyName(newName)
	if err != nil {
		return nil, err
	}

	var (
		doc listsDoc
		dup *domain.ShoppingList
	)
	err = r.store.Update(ctx, ListsDocument, &doc, func(bool) (bool, error) {
		i := findList(doc.Lists, id)
		if i < 0 {
			return false, listNotFound(id)
		}

		taken := func(name string) bool { return listNameTaken(doc.Lists, name, "") }
		name, err := copyName(doc.Lists[i].Name, newName, taken)
		if err != nil {
			return false, err
		}

		dup, err = doc.Lists[i].Duplicate(name)
		if err != nil {
			return false, err
		}
		doc.Lists = append(doc.Lists, dup)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return dup, nil
}

// prepareCopyName validates an explicit duplicate name. Empty means "pick
// one for me".
func prepareCopyName(newName string) (string, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return "", nil
	}
	in := domain.UpdateListInput{Name: &newName}
	if err := in.Prepare(); err != nil {
		return "", err
	}
	return newName, nil
}

func copyName(original, requested string, taken func(string) bool) (string, error) {
	if requested == "" {
		return domain.DuplicateName(original, taken), nil
	}
	if taken(requested) {
		return "", duplicateName("list", requested)
	}
	return requested, nil
}
