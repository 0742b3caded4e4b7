package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

var _ domain.ItemRepository = (*SQLItemRepository)(nil)

// SQLItemRepository stores items in the items and item_tags tables. Name
// uniqueness is enforced by the items_name_key_idx index.
type SQLItemRepository struct {
	db      *sqlx.DB
	dialect Dialect
}

func NewSQLItemRepository(db *sqlx.DB) *SQLItemRepository {
	return &SQLItemRepository{db: db, dialect: DialectOf(db)}
}

const itemColumns = `i.id, i.name, i.emoji, i.created_at, i.updated_at`

type tagRow struct {
	ItemID string `db:"item_id"`
	Tag    string `db:"tag"`
}

// selectItems runs an item query and attaches each item's tags in order.
func (r *SQLItemRepository) selectItems(ctx context.Context, q sqlx.QueryerContext, where string, args ...any) ([]*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items i`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY i.created_at, i.id`

	items := []*domain.Item{}
	if err := sqlx.SelectContext(ctx, q, &items, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("repository: select items failed: %w", err)
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]string, len(items))
	byID := make(map[string]*domain.Item, len(items))
	for i, it := range items {
		ids[i] = it.ID
		it.Tags = []string{}
		byID[it.ID] = it
	}

	tagQuery, tagArgs, err := sqlx.In(`SELECT item_id, tag FROM item_tags WHERE item_id IN (?) ORDER BY item_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("repository: build tag query: %w", err)
	}

	var tags []tagRow
	if err := sqlx.SelectContext(ctx, q, &tags, r.db.Rebind(tagQuery), tagArgs...); err != nil {
		return nil, fmt.Errorf("repository: select tags failed: %w", err)
	}
	for _, t := range tags {
		if it, ok := byID[t.ItemID]; ok {
			it.Tags = append(it.Tags, t.Tag)
		}
	}
	return items, nil
}

func (r *SQLItemRepository) GetAll(ctx context.Context) ([]*domain.Item, error) {
	return r.selectItems(ctx, r.db, "")
}

func (r *SQLItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	items, err := r.selectItems(ctx, r.db, "i.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

func (r *SQLItemRepository) Create(ctx context.Context, in domain.CreateItemInput) (*domain.Item, error) {
	item, err := domain.NewItem(in)
	if err != nil {
		return nil, err
	}

	err = withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, r.db.Rebind(`
			INSERT INTO items (id, name, name_key, emoji, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`),
			item.ID, item.Name, domain.NameKey(item.Name), item.Emoji, item.CreatedAt, item.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return r.replaceTags(ctx, tx, item)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, duplicateName("item", item.Name)
		}
		return nil, fmt.Errorf("repository: create item failed: %w", err)
	}
	return item, nil
}

func (r *SQLItemRepository) replaceTags(ctx context.Context, tx *sqlx.Tx, item *domain.Item) error {
	if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM item_tags WHERE item_id = ?`), item.ID); err != nil {
		return err
	}
	for pos, tag := range item.Tags {
		_, err := tx.ExecContext(ctx, r.db.Rebind(`
			INSERT INTO item_tags (item_id, tag, tag_key, position) VALUES (?, ?, ?, ?)`),
			item.ID, tag, domain.NameKey(tag), pos,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLItemRepository) Update(ctx context.Context, id string, in domain.UpdateItemInput) (*domain.Item, error) {
	if err := in.Prepare(); err != nil {
		return nil, err
	}

	var updated *domain.Item
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var lockedID string
		err := tx.GetContext(ctx, &lockedID, r.db.Rebind(
			`SELECT id FROM items WHERE id = ?`+r.dialect.forUpdate()), id)
		if errors.Is(err, sql.ErrNoRows) {
			return itemNotFound(id)
		}
		if err != nil {
			return err
		}

		found, err := r.selectItems(ctx, tx, "i.id = ?", id)
		if err != nil {
			return err
		}
		item := found[0]

		item.Apply(in)
		_, err = tx.ExecContext(ctx, r.db.Rebind(`
			UPDATE items SET name = ?, name_key = ?, emoji = ?, updated_at = ? WHERE id = ?`),
			item.Name, domain.NameKey(item.Name), item.Emoji, item.UpdatedAt, item.ID,
		)
		if err != nil {
			return err
		}
		if in.Tags != nil {
			if err := r.replaceTags(ctx, tx, item); err != nil {
				return err
			}
		}

		updated = item
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) && in.Name != nil {
			return nil, duplicateName("item", *in.Name)
		}
		if _, ok := domain.AsError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("repository: update item failed: %w", err)
	}
	return updated, nil
}

func (r *SQLItemRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM item_tags WHERE item_id = ?`), id); err != nil {
			return fmt.Errorf("repository: delete item tags failed: %w", err)
		}

		res, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM items WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("repository: delete item failed: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return itemNotFound(id)
		}
		return nil
	})
}

// escapeLike makes s safe to embed in a LIKE pattern with ESCAPE '\'.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

const hasTagClause = `EXISTS (SELECT 1 FROM item_tags t WHERE t.item_id = i.id AND t.tag_key = ?)`

func (r *SQLItemRepository) Search(ctx context.Context, query string) ([]*domain.Item, error) {
	key := domain.NameKey(query)
	if key == "" {
		return r.GetAll(ctx)
	}
	return r.selectItems(ctx, r.db,
		`(i.name_key LIKE ? ESCAPE '\' OR `+hasTagClause+`)`,
		"%"+escapeLike(key)+"%", key,
	)
}

func (r *SQLItemRepository) GetByTag(ctx context.Context, tag string) ([]*domain.Item, error) {
	key := domain.NameKey(tag)
	if key == "" {
		return r.GetAll(ctx)
	}
	return r.selectItems(ctx, r.db, hasTagClause, key)
}

func (r *SQLItemRepository) GetByTags(ctx context.Context, tags []string) ([]*domain.Item, error) {
	seen := make(map[string]bool, len(tags))
	keys := make([]string, 0, len(tags))
	for _, tag := range tags {
		key := domain.NameKey(tag)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return r.GetAll(ctx)
	}

	where, args, err := sqlx.In(`i.id IN (
		SELECT t.item_id FROM item_tags t WHERE t.tag_key IN (?)
		GROUP BY t.item_id HAVING COUNT(*) = ?)`, keys, len(keys))
	if err != nil {
		return nil, fmt.Errorf("repository: build tags query: %w", err)
	}
	return r.selectItems(ctx, r.db, where, args...)
}
