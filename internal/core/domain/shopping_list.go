package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/TomerHalfon/SuperList-sub000/internal/id"
)

const (
	ListIDPrefix   = "list"
	MaxListEntries = 200
	MaxQuantity    = 999
)

// ListEntry references a catalog item from inside a shopping list.
type ListEntry struct {
	ItemID    string `json:"itemId" db:"item_id" validate:"required"`
	Quantity  int    `json:"quantity" db:"quantity" validate:"min=1,max=999"`
	Collected bool   `json:"collected" db:"collected"`
}

type ShoppingList struct {
	ID        string      `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Items     []ListEntry `json:"items" db:"-"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
	DeletedAt *time.Time  `json:"deletedAt,omitempty" db:"deleted_at"`
}

type CreateListInput struct {
	Name  string      `json:"name" validate:"required,max=100"`
	Items []ListEntry `json:"items,omitempty" validate:"max=200,dive"`
}

// Prepare trims the name, collapses repeated items (last one wins) and
// checks the result against the schema.
func (in *CreateListInput) Prepare() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Items != nil {
		var collapsed ShoppingList
		for _, e := range in.Items {
			e.ItemID = strings.TrimSpace(e.ItemID)
			collapsed.upsert(e)
		}
		in.Items = collapsed.Items
	}
	return Validate(in)
}

type UpdateListInput struct {
	Name *string `json:"name,omitempty" validate:"omitnil,min=1,max=100"`
}

func (in *UpdateListInput) Prepare() error {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	return Validate(in)
}

func (in UpdateListInput) Renames(l *ShoppingList) bool {
	return in.Name != nil && !SameName(*in.Name, l.Name)
}

// UpdateEntryInput is a partial update of one list entry.
type UpdateEntryInput struct {
	Quantity  *int  `json:"quantity,omitempty" validate:"omitnil,min=1,max=999"`
	Collected *bool `json:"collected,omitempty"`
}

func (in *UpdateEntryInput) Prepare() error {
	return Validate(in)
}

// PrepareEntry trims and validates an entry about to be added to a list.
func PrepareEntry(e *ListEntry) error {
	e.ItemID = strings.TrimSpace(e.ItemID)
	return Validate(e)
}

func NewShoppingList(in CreateListInput) (*ShoppingList, error) {
	if err := in.Prepare(); err != nil {
		return nil, err
	}

	listID, err := id.Generate(ListIDPrefix)
	if err != nil {
		return nil, err
	}

	items := in.Items
	if items == nil {
		items = []ListEntry{}
	}

	now := Now()
	return &ShoppingList{
		ID:        listID,
		Name:      in.Name,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (l *ShoppingList) touch() {
	l.UpdatedAt = NextTimestamp(l.UpdatedAt)
}

func (l *ShoppingList) indexOf(itemID string) int {
	for i := range l.Items {
		if l.Items[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

func (l *ShoppingList) upsert(e ListEntry) {
	if i := l.indexOf(e.ItemID); i >= 0 {
		l.Items[i] = e
		return
	}
	l.Items = append(l.Items, e)
}

func (l *ShoppingList) entryNotFound(itemID string) error {
	return NotFoundf(EntityEntry, "item %s not found in list %s", itemID, l.ID)
}

// Entry returns a copy of the entry for itemID.
func (l *ShoppingList) Entry(itemID string) (ListEntry, bool) {
	if i := l.indexOf(itemID); i >= 0 {
		return l.Items[i], true
	}
	return ListEntry{}, false
}

// Apply merges a prepared update into the list.
func (l *ShoppingList) Apply(in UpdateListInput) {
	if in.Name != nil {
		l.Name = *in.Name
	}
	l.touch()
}

// AddEntry replaces the entry for e.ItemID in place, or appends it.
func (l *ShoppingList) AddEntry(e ListEntry) error {
	if l.indexOf(e.ItemID) < 0 && len(l.Items) >= MaxListEntries {
		return NewValidationError("list is full", map[string]string{
			"items": fmt.Sprintf("must not contain more than %d entries", MaxListEntries),
		})
	}
	l.upsert(e)
	l.touch()
	return nil
}

func (l *ShoppingList) RemoveEntry(itemID string) error {
	i := l.indexOf(itemID)
	if i < 0 {
		return l.entryNotFound(itemID)
	}
	l.Items = append(l.Items[:i], l.Items[i+1:]...)
	l.touch()
	return nil
}

func (l *ShoppingList) UpdateEntry(itemID string, in UpdateEntryInput) error {
	i := l.indexOf(itemID)
	if i < 0 {
		return l.entryNotFound(itemID)
	}
	if in.Quantity != nil {
		l.Items[i].Quantity = *in.Quantity
	}
	if in.Collected != nil {
		l.Items[i].Collected = *in.Collected
	}
	l.touch()
	return nil
}

func (l *ShoppingList) ToggleEntry(itemID string) error {
	i := l.indexOf(itemID)
	if i < 0 {
		return l.entryNotFound(itemID)
	}
	l.Items[i].Collected = !l.Items[i].Collected
	l.touch()
	return nil
}

// ClearCollected drops every collected entry. It reports false, leaving the
// list untouched, when nothing was collected.
func (l *ShoppingList) ClearCollected() bool {
	kept := make([]ListEntry, 0, len(l.Items))
	for _, e := range l.Items {
		if !e.Collected {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(l.Items) {
		return false
	}
	l.Items = kept
	l.touch()
	return true
}

func (l *ShoppingList) Clone() *ShoppingList {
	c := *l
	c.Items = append([]ListEntry{}, l.Items...)
	if l.DeletedAt != nil {
		d := *l.DeletedAt
		c.DeletedAt = &d
	}
	return &c
}

// Duplicate deep-copies the entries into a new list called name.
func (l *ShoppingList) Duplicate(name string) (*ShoppingList, error) {
	listID, err := id.Generate(ListIDPrefix)
	if err != nil {
		return nil, err
	}

	now := Now()
	return &ShoppingList{
		ID:        listID,
		Name:      name,
		Items:     append([]ListEntry{}, l.Items...),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DuplicateName picks the default name for a copy of original: "<original>
// (Copy)", then "(Copy 2)", "(Copy 3)" and so on until taken reports false.
// The original part is shortened so the result fits MaxNameLen.
func DuplicateName(original string, taken func(name string) bool) string {
	original = strings.TrimSpace(original)
	for n := 1; ; n++ {
		suffix := " (Copy)"
		if n > 1 {
			suffix = fmt.Sprintf(" (Copy %d)", n)
		}
		candidate := truncateRunes(original, MaxNameLen-utf8.RuneCountInString(suffix)) + suffix
		if !taken(candidate) {
			return candidate
		}
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
