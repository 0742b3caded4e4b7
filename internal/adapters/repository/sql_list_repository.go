package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

var (
	_ domain.ListRepository = (*SQLListRepository)(nil)
	_ domain.ListPurger     = (*SQLListRepository)(nil)
)

// SQLListRepository stores lists in shopping_lists and their entries in
// list_entries. Deletes are soft: deleted_at is set and the row disappears
// from every read until PurgeDeleted removes it.
type SQLListRepository struct {
	db      *sqlx.DB
	dialect Dialect
}

func NewSQLListRepository(db *sqlx.DB) *SQLListRepository {
	return &SQLListRepository{db: db, dialect: DialectOf(db)}
}

const listColumns = `l.id, l.name, l.created_at, l.updated_at, l.deleted_at`

type entryRow struct {
	ListID string `db:"list_id"`
	domain.ListEntry
}

func (r *SQLListRepository) selectLists(ctx context.Context, q sqlx.QueryerContext, where string, args ...any) ([]*domain.ShoppingList, error) {
	query := `SELECT ` + listColumns + ` FROM shopping_lists l WHERE l.deleted_at IS NULL`
	if where != "" {
		query += ` AND ` + where
	}
	query += ` ORDER BY l.created_at, l.id`

	lists := []*domain.ShoppingList{}
	if err := sqlx.SelectContext(ctx, q, &lists, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("repository: select lists failed: %w", err)
	}
	if len(lists) == 0 {
		return lists, nil
	}

	ids := make([]string, len(lists))
	byID := make(map[string]*domain.ShoppingList, len(lists))
	for i, l := range lists {
		ids[i] = l.ID
		l.Items = []domain.ListEntry{}
		byID[l.ID] = l
	}

	entryQuery, entryArgs, err := sqlx.In(`
		SELECT list_id, item_id, quantity, collected FROM list_entries
		WHERE list_id IN (?) ORDER BY list_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("repository: build entry query: %w", err)
	}

	var entries []entryRow
	if err := sqlx.SelectContext(ctx, q, &entries, r.db.Rebind(entryQuery), entryArgs...); err != nil {
		return nil, fmt.Errorf("repository: select entries failed: %w", err)
	}
	for _, e := range entries {
		if l, ok := byID[e.ListID]; ok {
			l.Items = append(l.Items, e.ListEntry)
		}
	}
	return lists, nil
}

func (r *SQLListRepository) GetAll(ctx context.Context) ([]*domain.ShoppingList, error) {
	return r.selectLists(ctx, r.db, "")
}

func (r *SQLListRepository) GetByID(ctx context.Context, id string) (*domain.ShoppingList, error) {
	lists, err := r.selectLists(ctx, r.db, "l.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return nil, nil
	}
	return lists[0], nil
}

func (r *SQLListRepository) insert(ctx context.Context, tx *sqlx.Tx, l *domain.ShoppingList) error {
	_, err := tx.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO shopping_lists (id, name, name_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`),
		l.ID, l.Name, domain.NameKey(l.Name), l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return r.replaceEntries(ctx, tx, l)
}

func (r *SQLListRepository) replaceEntries(ctx context.Context, tx *sqlx.Tx, l *domain.ShoppingList) error {
	if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM list_entries WHERE list_id = ?`), l.ID); err != nil {
		return err
	}
	for pos, e := range l.Items {
		_, err := tx.ExecContext(ctx, r.db.Rebind(`
			INSERT INTO list_entries (list_id, item_id, quantity, collected, position)
			VALUES (?, ?, ?, ?, ?)`),
			l.ID, e.ItemID, e.Quantity, e.Collected, pos,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLListRepository) Create(ctx context.Context, in domain.CreateListInput) (*domain.ShoppingList, error) {
	list, err := domain.NewShoppingList(in)
	if err != nil {
		return nil, err
	}

	err = withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return r.insert(ctx, tx, list)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, duplicateName("list", list.Name)
		}
		return nil, fmt.Errorf("repository: create list failed: %w", err)
	}
	return list, nil
}

// mutate loads list id with its row locked, applies fn and, when fn reports
// a change, writes the list and its entries back in the same transaction.
func (r *SQLListRepository) mutate(ctx context.Context, id string, fn func(l *domain.ShoppingList) (bool, error)) (*domain.ShoppingList, error) {
	var result *domain.ShoppingList
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var lockedIDs []string
		err := tx.SelectContext(ctx, &lockedIDs, r.db.Rebind(
			`SELECT id FROM shopping_lists WHERE id = ? AND deleted_at IS NULL`+r.dialect.forUpdate()), id)
		if err != nil {
			return err
		}
		if len(lockedIDs) == 0 {
			return listNotFound(id)
		}

		lists, err := r.selectLists(ctx, tx, "l.id = ?", id)
		if err != nil {
			return err
		}
		l := lists[0]

		changed, err := fn(l)
		if err != nil {
			return err
		}
		if changed {
			_, err := tx.ExecContext(ctx, r.db.Rebind(`
				UPDATE shopping_lists SET name = ?, name_key = ?, updated_at = ? WHERE id = ?`),
				l.Name, domain.NameKey(l.Name), l.UpdatedAt, l.ID,
			)
			if err != nil {
				return err
			}
			if err := r.replaceEntries(ctx, tx, l); err != nil {
				return err
			}
		}

		result = l
		return nil
	})
	if err != nil {
		if _, ok := domain.AsError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("repository: update list %s failed: %w", id, err)
	}
	return result, nil
}

func (r *SQLListRepository) Update(ctx context.Context, id string, in domain.UpdateListInput) (*domain.ShoppingList, error) {
	if err := in.Prepare(); err != nil {
		return nil, err
	}

	l, err := r.mutate(ctx, id, func(l *domain.ShoppingList) (bool, error) {
		l.Apply(in)
		return true, nil
	})
	if err != nil && isUniqueViolation(err) && in.Name != nil {
		return nil, duplicateName("list", *in.Name)
	}
	return l, err
}

func (r *SQLListRepository) Delete(ctx context.Context, id string) error {
	now := domain.Now()
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE shopping_lists SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`),
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("repository: delete list failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return listNotFound(id)
	}
	return nil
}

func (r *SQLListRepository) AddItem(ctx context.Context, listID string, entry domain.ListEntry) (*domain.ShoppingList, error) {
	if err := domain.PrepareEntry(&entry); err != nil {
		return nil, err
	}

	return r.mutate(ctx, listID, func(l *domain.ShoppingList) (bool, error) {
		return true, l.AddEntry(entry)
	})
}

func (r *SQLListRepository) RemoveItem(ctx context.Context, listID, itemID string) (*domain.ShoppingList, error) {
	return r.mutate(ctx, listID, func(l *domain.ShoppingList) (bool, error) {
		return true, l.RemoveEntry(itemID)
	})
}

func (r *SQLListRepository) UpdateItem(ctx context.Context, listID, itemID string, in domain.UpdateEntryInput) (*domain.ShoppingList, error) {
	if err := in.Prepare(); err != nil {
		return nil, err
	}

	return r.mutate(ctx, listID, func(l *domain.ShoppingList) (bool, error) {
		return true, l.UpdateEntry(itemID, in)
	})
}

func (r *SQLListRepository) ToggleItemCollected(ctx context.Context, listID, itemID string) (*domain.ShoppingList, error) {
	return r.mutate(ctx, listID, func(l *domain.ShoppingList) (bool, error) {
		return true, l.ToggleEntry(itemID)
	})
}

func (r *SQLListRepository) ClearCompletedItems(ctx context.Context, listID string) (*domain.ShoppingList, error) {
	return r.mutate(ctx, listID, func(l *domain.ShoppingList) (bool, error) {
		return l.ClearCollected(), nil
	})
}

func (r *SQLListRepository) DuplicateList(ctx context.Context, id, newName string) (*domain.ShoppingList, error) {
	newName, err := prepareCopyName(newName)
	if err != nil {
		return nil, err
	}

	var dup *domain.ShoppingList
	err = withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		lists, err := r.selectLists(ctx, tx, "l.id = ?", id)
		if err != nil {
			return err
		}
		if len(lists) == 0 {
			return listNotFound(id)
		}

		var keys []string
		if err := tx.SelectContext(ctx, &keys,
			`SELECT name_key FROM shopping_lists WHERE deleted_at IS NULL`); err != nil {
			return err
		}
		live := make(map[string]bool, len(keys))
		for _, k := range keys {
			live[k] = true
		}
		taken := func(name string) bool { return live[domain.NameKey(name)] }

		name, err := copyName(lists[0].Name, newName, taken)
		if err != nil {
			return err
		}

		dup, err = lists[0].Duplicate(name)
		if err != nil {
			return err
		}
		return r.insert(ctx, tx, dup)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, duplicateName("list", dup.Name)
		}
		if _, ok := domain.AsError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("repository: duplicate list failed: %w", err)
	}
	return dup, nil
}

// PurgeDeleted hard-deletes lists soft-deleted before olderThan and returns
// how many were removed.
func (r *SQLListRepository) PurgeDeleted(ctx context.Context, olderThan time.Time) (int64, error) {
	var purged int64
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, r.db.Rebind(`
			DELETE FROM list_entries WHERE list_id IN (
				SELECT id FROM shopping_lists WHERE deleted_at IS NOT NULL AND deleted_at < ?)`),
			olderThan.UTC(),
		)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, r.db.Rebind(`
			DELETE FROM shopping_lists WHERE deleted_at IS NOT NULL AND deleted_at < ?`),
			olderThan.UTC(),
		)
		if err != nil {
			return err
		}
		purged, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("repository: purge deleted lists failed: %w", err)
	}
	return purged, nil
}
