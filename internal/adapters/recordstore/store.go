// Package recordstore persists whole named JSON documents, one document per
// entity collection ("items.json", "lists.json", ...).
package recordstore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

// UpdateFunc is called inside the document's critical section after the
// current content has been decoded into the document. Returning write=false
// leaves the stored document as it was.
type UpdateFunc func(found bool) (write bool, err error)

// Store is implemented by every record store backend.
type Store interface {
	// Read decodes the named document into dst. It reports found=false, and
	// leaves dst untouched, when the document does not exist.
	Read(ctx context.Context, name string, dst any) (bool, error)

	// Write replaces the named document with doc, all or nothing.
	Write(ctx context.Context, name string, doc any) error

	Exists(ctx context.Context, name string) (bool, error)

	// Delete removes the named document. A missing document is not an error.
	Delete(ctx context.Context, name string) error

	// Update runs read, fn and write as one critical section on name. Errors
	// returned by fn are passed through unchanged.
	Update(ctx context.Context, name string, doc any, fn UpdateFunc) error
}

// ReadOr returns the named document, or def when it does not exist.
func ReadOr[T any](ctx context.Context, s Store, name string, def T) (T, error) {
	var doc T
	found, err := s.Read(ctx, name, &doc)
	if err != nil {
		return def, err
	}
	if !found {
		return def, nil
	}
	return doc, nil
}

// checkName rejects names that would escape the store's namespace.
func checkName(name string, code domain.ErrorCode) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return domain.NewStorageError(code, "invalid document name", fmt.Errorf("%q", name))
	}
	return nil
}
