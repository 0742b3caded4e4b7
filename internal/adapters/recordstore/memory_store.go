package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

const memoryBackend = "memory"

// MemoryStore keeps encoded documents in a map. Documents are stored as JSON
// so callers never share memory with the store.
type MemoryStore struct {
	docs map[string][]byte

	mu sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string][]byte),
	}
}

func (s *MemoryStore) Read(ctx context.Context, name string, dst any) (found bool, err error) {
	defer func() { observeOp(memoryBackend, "read", err) }()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return decodeDoc(name, s.docs[name], dst)
}

func (s *MemoryStore) Write(ctx context.Context, name string, doc any) (err error) {
	defer func() { observeOp(memoryBackend, "write", err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeDoc(name, doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[name] = data
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.docs[name]
	return ok, nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) (err error) {
	defer func() { observeOp(memoryBackend, "delete", err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, name)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, name string, doc any, fn UpdateFunc) (err error) {
	defer func() { observeOp(memoryBackend, "update", err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := decodeDoc(name, s.docs[name], doc)
	if err != nil {
		return err
	}

	write, err := fn(found)
	if err != nil || !write {
		return err
	}

	data, err := encodeDoc(name, doc)
	if err != nil {
		return err
	}
	s.docs[name] = data
	return nil
}

func decodeDoc(name string, data []byte, dst any) (bool, error) {
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, domain.NewStorageError(domain.CodeInvalidJSON, fmt.Sprintf("decode %s", name), err)
	}
	return true, nil
}

func encodeDoc(name string, doc any) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, domain.NewStorageError(domain.CodeWriteFailed, fmt.Sprintf("encode %s", name), err)
	}
	return data, nil
}
