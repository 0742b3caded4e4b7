package domain

import (
	"strings"
	"time"

	"github.com/TomerHalfon/SuperList-sub000/internal/id"
)

const (
	ItemIDPrefix = "item"
	MaxNameLen   = 100
	MaxEmojiLen  = 10
	MaxItemTags  = 20
)

// Item is an entry of the global catalog.
type Item struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Emoji     string    `json:"emoji" db:"emoji"`
	Tags      []string  `json:"tags" db:"-"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type CreateItemInput struct {
	Name  string   `json:"name" validate:"required,max=100"`
	Emoji string   `json:"emoji" validate:"required,max=10"`
	Tags  []string `json:"tags" validate:"max=20,dive,required"`
}

// Prepare trims the input and checks it against its schema.
func (in *CreateItemInput) Prepare() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Emoji = strings.TrimSpace(in.Emoji)
	in.Tags = normalizeTags(in.Tags)
	return Validate(in)
}

// UpdateItemInput is a partial update; nil fields are left unchanged.
type UpdateItemInput struct {
	Name  *string  `json:"name,omitempty" validate:"omitnil,min=1,max=100"`
	Emoji *string  `json:"emoji,omitempty" validate:"omitnil,min=1,max=10"`
	Tags  []string `json:"tags,omitempty" validate:"omitnil,max=20,dive,required"`
}

func (in *UpdateItemInput) Prepare() error {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if in.Emoji != nil {
		trimmed := strings.TrimSpace(*in.Emoji)
		in.Emoji = &trimmed
	}
	in.Tags = normalizeTags(in.Tags)
	return Validate(in)
}

// NewItem validates in and builds an item with a fresh identifier.
func NewItem(in CreateItemInput) (*Item, error) {
	if err := in.Prepare(); err != nil {
		return nil, err
	}

	itemID, err := id.Generate(ItemIDPrefix)
	if err != nil {
		return nil, err
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	now := Now()
	return &Item{
		ID:        itemID,
		Name:      in.Name,
		Emoji:     in.Emoji,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Apply merges a prepared update into the item.
func (it *Item) Apply(in UpdateItemInput) {
	if in.Name != nil {
		it.Name = *in.Name
	}
	if in.Emoji != nil {
		it.Emoji = *in.Emoji
	}
	if in.Tags != nil {
		it.Tags = in.Tags
	}
	it.UpdatedAt = NextTimestamp(it.UpdatedAt)
}

// Renames reports whether applying in would give the item a different name
// under the uniqueness rule.
func (in UpdateItemInput) Renames(it *Item) bool {
	return in.Name != nil && !SameName(*in.Name, it.Name)
}

func (it *Item) HasTag(tag string) bool {
	key := NameKey(tag)
	for _, t := range it.Tags {
		if NameKey(t) == key {
			return true
		}
	}
	return false
}

func (it *Item) HasAllTags(tags []string) bool {
	for _, tag := range tags {
		if !it.HasTag(tag) {
			return false
		}
	}
	return true
}

// MatchesQuery is the search predicate: a case-insensitive substring of the
// name, or an exact case-insensitive tag.
func (it *Item) MatchesQuery(query string) bool {
	key := NameKey(query)
	if key == "" {
		return true
	}
	return strings.Contains(NameKey(it.Name), key) || it.HasTag(query)
}

func (it *Item) Clone() *Item {
	c := *it
	c.Tags = append([]string{}, it.Tags...)
	return &c
}

// FilterItems returns the items for which keep holds, preserving order.
func FilterItems(items []*Item, keep func(*Item) bool) []*Item {
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
