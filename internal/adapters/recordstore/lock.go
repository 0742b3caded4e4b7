package recordstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

// keyedMutex serializes work per document name inside the process. Waiting
// honors ctx and gives up after a timeout.
type keyedMutex struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{slots: make(map[string]chan struct{})}
}

func (k *keyedMutex) slot(name string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()

	ch, ok := k.slots[name]
	if !ok {
		ch = make(chan struct{}, 1)
		k.slots[name] = ch
	}
	return ch
}

// lock blocks until name is free. The returned func releases it.
func (k *keyedMutex) lock(ctx context.Context, name string, timeout time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, lockTimeout(name, err)
	}

	ch := k.slot(name)

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, lockTimeout(name, ctx.Err())
	case <-timer.C:
		return nil, lockTimeout(name, fmt.Errorf("still held after %s", timeout))
	}
}

func lockTimeout(name string, cause error) error {
	return domain.NewStorageError(domain.CodeLockTimeout, fmt.Sprintf("timed out waiting for lock on %s", name), cause)
}

var errLockContended = errors.New("lock contended")
