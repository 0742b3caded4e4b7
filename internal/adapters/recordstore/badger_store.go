package recordstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

const (
	badgerBackend = "badger"
	docKeyPrefix  = "doc:"

	badgerLockTimeout = 5 * time.Second
)

// BadgerStore keeps each document as one JSON value under "doc:<name>".
type BadgerStore struct {
	db     *badger.DB
	logger *zap.Logger
	locks  *keyedMutex
}

var _ Store = (*BadgerStore)(nil)

// OpenBadgerStore opens (or creates) a Badger database in dir. An empty dir
// opens an in-memory database.
func OpenBadgerStore(dir string, logger *zap.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts = opts.WithSyncWrites(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, domain.NewStorageError(domain.CodeDirectoryCreationFailed,
			fmt.Sprintf("open badger database at %q", dir), err)
	}
	return NewBadgerStore(db, logger), nil
}

func NewBadgerStore(db *badger.DB, logger *zap.Logger) *BadgerStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BadgerStore{
		db:     db,
		logger: logger.Named("recordstore"),
		locks:  newKeyedMutex(),
	}
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func docKey(name string) []byte {
	return []byte(docKeyPrefix + name)
}

func (s *BadgerStore) Read(ctx context.Context, name string, dst any) (found bool, err error) {
	defer func() { observeOp(badgerBackend, "read", err) }()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		var rerr error
		found, rerr = getDoc(txn, name, dst)
		return rerr
	})
	return found, err
}

func (s *BadgerStore) Write(ctx context.Context, name string, doc any) (err error) {
	defer func() { observeOp(badgerBackend, "write", err) }()

	data, err := encodeDoc(name, doc)
	if err != nil {
		return err
	}

	unlock, err := s.lock(ctx, name)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(docKey(name), data)
	}); err != nil {
		return domain.NewStorageError(domain.CodeWriteFailed, fmt.Sprintf("write %s", name), err)
	}
	return nil
}

func (s *BadgerStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	exists := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(docKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, domain.NewStorageError(domain.CodeReadFailed, fmt.Sprintf("stat %s", name), err)
	}
	return exists, nil
}

func (s *BadgerStore) Delete(ctx context.Context, name string) (err error) {
	defer func() { observeOp(badgerBackend, "delete", err) }()

	unlock, err := s.lock(ctx, name)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(docKey(name))
	}); err != nil {
		return domain.NewStorageError(domain.CodeWriteFailed, fmt.Sprintf("delete %s", name), err)
	}
	return nil
}

func (s *BadgerStore) Update(ctx context.Context, name string, doc any, fn UpdateFunc) (err error) {
	defer func() { observeOp(badgerBackend, "update", err) }()

	unlock, err := s.lock(ctx, name)
	if err != nil {
		return err
	}
	defer unlock()

	var fnErr error
	err = s.db.Update(func(txn *badger.Txn) error {
		found, err := getDoc(txn, name, doc)
		if err != nil {
			return err
		}

		write, err := fn(found)
		if err != nil {
			fnErr = err
			return err
		}
		if !write {
			return nil
		}

		data, err := encodeDoc(name, doc)
		if err != nil {
			return err
		}
		return txn.Set(docKey(name), data)
	})
	if err == nil || fnErr != nil {
		return err
	}
	if _, ok := domain.AsError(err); ok {
		return err
	}
	return domain.NewStorageError(domain.CodeWriteFailed, fmt.Sprintf("commit %s", name), err)
}

func (s *BadgerStore) lock(ctx context.Context, name string) (func(), error) {
	start := time.Now()
	unlock, err := s.locks.lock(ctx, name, badgerLockTimeout)
	if err != nil {
		return nil, err
	}
	observeLockWait(badgerBackend, name, start)
	return unlock, nil
}

func getDoc(txn *badger.Txn, name string, dst any) (bool, error) {
	item, err := txn.Get(docKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, domain.NewStorageError(domain.CodeReadFailed, fmt.Sprintf("read %s", name), err)
	}

	var decodeErr error
	err = item.Value(func(val []byte) error {
		_, decodeErr = decodeDoc(name, val, dst)
		return nil
	})
	if err != nil {
		return false, domain.NewStorageError(domain.CodeReadFailed, fmt.Sprintf("read %s", name), err)
	}
	if decodeErr != nil {
		return false, decodeErr
	}
	return true, nil
}
