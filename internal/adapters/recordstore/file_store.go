package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

const fileBackend = "file"

type Options struct {
	// LockRetries bounds how many times a contended sentinel is retried.
	LockRetries int
	// RetryDelay is the pause between two sentinel attempts.
	RetryDelay time.Duration
	// StaleLockAge is the age after which a sentinel is assumed to belong to
	// a crashed process and is removed.
	StaleLockAge time.Duration
}

func DefaultOptions() Options {
	return Options{
		LockRetries:  100,
		RetryDelay:   50 * time.Millisecond,
		StaleLockAge: 30 * time.Second,
	}
}

// FileStore keeps each document as <dir>/<name>. Operations on the same name
// are serialized by an in-process mutex plus a ".<name>.lock" sentinel file;
// the sentinel is advisory and gives no cross-host guarantee.
type FileStore struct {
	dir    string
	opts   Options
	logger *zap.Logger
	locks  *keyedMutex

	rename func(oldpath, newpath string) error
}

var _ Store = (*FileStore)(nil)

func NewFileStore(dir string, opts Options, logger *zap.Logger) (*FileStore, error) {
	defaults := DefaultOptions()
	if opts.LockRetries <= 0 {
		opts.LockRetries = defaults.LockRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaults.RetryDelay
	}
	if opts.StaleLockAge <= 0 {
		opts.StaleLockAge = defaults.StaleLockAge
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &FileStore{
		dir:    dir,
		opts:   opts,
		logger: logger.Named("recordstore"),
		locks:  newKeyedMutex(),
		rename: os.Rename,
	}
	if err := s.ensureDir(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileStore) lockPath(name string) string {
	return filepath.Join(s.dir, "."+name+".lock")
}

func (s *FileStore) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return domain.NewStorageError(domain.CodeDirectoryCreationFailed,
			fmt.Sprintf("create data directory %s", s.dir), err)
	}
	return nil
}

func (s *FileStore) Read(ctx context.Context, name string, dst any) (found bool, err error) {
	defer func() { observeOp(fileBackend, "read", err) }()

	if err := checkName(name, domain.CodeReadFailed); err != nil {
		return false, err
	}

	err = s.withLock(ctx, name, func() error {
		var rerr error
		found, rerr = s.readLocked(name, dst)
		return rerr
	})
	return found, err
}

func (s *FileStore) Write(ctx context.Context, name string, doc any) (err error) {
	defer func() { observeOp(fileBackend, "write", err) }()

	if err := checkName(name, domain.CodeWriteFailed); err != nil {
		return err
	}

	return s.withLock(ctx, name, func() error {
		return s.writeLocked(name, doc)
	})
}

func (s *FileStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := checkName(name, domain.CodeReadFailed); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, domain.NewStorageError(domain.CodeReadFailed, fmt.Sprintf("stat %s", name), err)
	}
	return true, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) (err error) {
	defer func() { observeOp(fileBackend, "delete", err) }()

	if err := checkName(name, domain.CodeWriteFailed); err != nil {
		return err
	}

	return s.withLock(ctx, name, func() error {
		err := os.Remove(s.path(name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return domain.NewStorageError(domain.CodeWriteFailed, fmt.Sprintf("delete %s", name), err)
		}
		return nil
	})
}

func (s *FileStore) Update(ctx context.Context, name string, doc any, fn UpdateFunc) (err error) {
	defer func() { observeOp(fileBackend, "update", err) }()

	if err := checkName(name, domain.CodeWriteFailed); err != nil {
		return err
	}

	return s.withLock(ctx, name, func() error {
		found, err := s.readLocked(name, doc)
		if err != nil {
			return err
		}

		write, err := fn(found)
		if err != nil || !write {
			return err
		}
		return s.writeLocked(name, doc)
	})
}

func (s *FileStore) readLocked(name string, dst any) (bool, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, domain.NewStorageError(domain.CodeReadFailed, fmt.Sprintf("read %s", name), err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, domain.NewStorageError(domain.CodeInvalidJSON, fmt.Sprintf("decode %s", name), err)
	}
	return true, nil
}

// writeLocked replaces the document through a temp sibling, fsync and
// rename. On failure the temp file is removed and the target is untouched.
func (s *FileStore) writeLocked(name string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return domain.NewStorageError(domain.CodeWriteFailed, fmt.Sprintf("encode %s", name), err)
	}
	data = append(data, '\n')

	fail := func(step string, err error) error {
		return domain.NewStorageError(domain.CodeWriteFailed, fmt.Sprintf("%s %s", step, name), err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return fail("create temp file for", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fail("close", err)
	}
	if err := s.rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return fail("rename", err)
	}
	return nil
}

// withLock runs fn while holding both the in-process lock and the sentinel
// file for name. Both are released on every path.
func (s *FileStore) withLock(ctx context.Context, name string, fn func() error) error {
	if err := s.ensureDir(); err != nil {
		return err
	}

	start := time.Now()
	budget := time.Duration(s.opts.LockRetries) * s.opts.RetryDelay
	unlock, err := s.locks.lock(ctx, name, budget)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.acquireSentinel(ctx, name); err != nil {
		return err
	}
	defer s.releaseSentinel(name)

	observeLockWait(fileBackend, name, start)
	return fn()
}

func (s *FileStore) acquireSentinel(ctx context.Context, name string) error {
	path := s.lockPath(name)

	for attempt := 0; attempt < s.opts.LockRetries; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
			f.Close()
			return nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return domain.NewStorageError(domain.CodeLockAcquisitionFailed,
				fmt.Sprintf("create lock file for %s", name), err)
		}

		if s.removeIfStale(path) {
			continue
		}

		select {
		case <-ctx.Done():
			return lockTimeout(name, ctx.Err())
		case <-time.After(s.opts.RetryDelay):
		}
	}

	return lockTimeout(name, fmt.Errorf("%w after %d attempts", errLockContended, s.opts.LockRetries))
}

// removeIfStale deletes a sentinel left behind by a crashed process.
func (s *FileStore) removeIfStale(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		// Released between our attempt and the stat; retry right away.
		return errors.Is(err, fs.ErrNotExist)
	}
	if time.Since(info.ModTime()) < s.opts.StaleLockAge {
		return false
	}

	s.logger.Warn("Removing stale lock file",
		zap.String("path", path),
		zap.Duration("age", time.Since(info.ModTime())))
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Error("Failed to remove stale lock file", zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

func (s *FileStore) releaseSentinel(name string) {
	if err := os.Remove(s.lockPath(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Error("Failed to release lock file", zap.String("document", name), zap.Error(err))
	}
}
