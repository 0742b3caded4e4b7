// Package storage turns configuration into a set of repositories.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/cache"
	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/recordstore"
	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/repository"
	"github.com/TomerHalfon/SuperList-sub000/internal/config"
	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
)

const sqliteFile = "superlist.db"

// Backend is the set of repositories for one storage kind.
type Backend struct {
	Kind  string
	Items domain.ItemRepository
	Lists domain.ListRepository
	Users domain.UserRepository

	// Purger is set for backends that soft-delete lists.
	Purger domain.ListPurger
	// DB is set for the SQL kinds.
	DB *sqlx.DB
	// Redis is set when the cache decorators are active.
	Redis *redis.Client
	// DataDir is the directory watched for external edits, file kind only.
	DataDir string

	itemCache *repository.CachedItemRepository
	listCache *repository.CachedListRepository
	closers   []func() error
}

// Ping reports whether the backing database answers. Document kinds always do.
func (b *Backend) Ping(ctx context.Context) error {
	if b.DB == nil {
		return nil
	}
	return b.DB.PingContext(ctx)
}

// InvalidateCaches drops every cached item and list. It is a no-op without Redis.
func (b *Backend) InvalidateCaches(ctx context.Context) {
	if b.itemCache != nil {
		b.itemCache.Invalidate(ctx)
	}
	if b.listCache != nil {
		b.listCache.Invalidate(ctx)
	}
}

// Cached reports whether reads go through Redis.
func (b *Backend) Cached() bool {
	return b.Redis != nil
}

// Close releases the backend in reverse order of acquisition.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

// Open builds the backend selected by cfg.Storage.Kind. When Redis is enabled
// but unreachable the backend is returned uncached and the failure is logged.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	b := &Backend{Kind: cfg.Storage.Kind}

	if err := b.openKind(ctx, cfg, logger); err != nil {
		_ = b.Close()
		return nil, err
	}

	if cfg.Redis.Enabled {
		b.attachCache(ctx, cfg.Redis, logger)
	}

	logger.Info("Storage ready",
		zap.String("kind", b.Kind),
		zap.Bool("cached", b.Cached()),
	)
	return b, nil
}

func (b *Backend) openKind(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	switch cfg.Storage.Kind {
	case config.StorageFile:
		store, err := recordstore.NewFileStore(cfg.Storage.DataDir, recordstore.Options{
			LockRetries:  cfg.Storage.LockRetries,
			RetryDelay:   cfg.Storage.LockRetryDelay,
			StaleLockAge: cfg.Storage.StaleLockAge,
		}, logger.Named("recordstore"))
		if err != nil {
			return err
		}
		b.DataDir = store.Dir()
		b.useDocuments(store)

	case config.StorageMemory:
		b.useDocuments(recordstore.NewMemoryStore())

	case config.StorageBadger:
		store, err := recordstore.OpenBadgerStore(filepath.Join(cfg.Storage.DataDir, "badger"), logger.Named("recordstore"))
		if err != nil {
			return err
		}
		b.closers = append(b.closers, store.Close)
		b.useDocuments(store)

	case config.StoragePostgres:
		db, err := OpenPostgres(ctx, cfg.DB)
		if err != nil {
			return err
		}
		return b.useSQL(ctx, db, cfg.DB.AutoMigrate, logger)

	case config.StorageSQLite:
		db, err := OpenSQLite(ctx, cfg.Storage.DataDir)
		if err != nil {
			return err
		}
		return b.useSQL(ctx, db, cfg.DB.AutoMigrate, logger)

	default:
		return fmt.Errorf("storage: unknown kind %q", cfg.Storage.Kind)
	}
	return nil
}

func (b *Backend) useDocuments(store recordstore.Store) {
	b.Items = repository.NewDocumentItemRepository(store)
	b.Lists = repository.NewDocumentListRepository(store)
	b.Users = repository.NewDocumentUserRepository(store)
}

func (b *Backend) useSQL(ctx context.Context, db *sqlx.DB, migrate bool, logger *zap.Logger) error {
	b.DB = db
	b.closers = append(b.closers, db.Close)

	if migrate {
		if err := Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("Schema applied", zap.String("dialect", string(repository.DialectOf(db))))
	}

	lists := repository.NewSQLListRepository(db)
	b.Items = repository.NewSQLItemRepository(db)
	b.Lists = lists
	b.Users = repository.NewSQLUserRepository(db)
	b.Purger = lists
	return nil
}

func (b *Backend) attachCache(ctx context.Context, rc config.RedisConfig, logger *zap.Logger) {
	rdb, err := cache.NewRedisClient(ctx, rc.Addr, rc.Password, rc.DB)
	if err != nil {
		logger.Warn("Redis unavailable, running without cache", zap.Error(err))
		return
	}
	b.Redis = rdb
	b.closers = append(b.closers, rdb.Close)

	b.itemCache = repository.NewCachedItemRepository(b.Items, rdb, rc.CacheTTL, logger)
	b.listCache = repository.NewCachedListRepository(b.Lists, rdb, rc.CacheTTL, logger)
	b.Items = b.itemCache
	b.Lists = b.listCache
	if b.Purger != nil {
		b.Purger = b.listCache
	}
}

// OpenPostgres connects with the driver named in cfg ("pgx" or "postgres")
// and applies the pool settings.
func OpenPostgres(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("storage: connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// OpenSQLite opens superlist.db in dir with foreign keys on and a busy
// timeout. SQLite allows one writer, so the pool is a single connection.
func OpenSQLite(ctx context.Context, dir string) (*sqlx.DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.NewStorageError(domain.CodeDirectoryCreationFailed, "failed to create data directory", err)
	}

	dsn := "file:" + filepath.Join(dir, sqliteFile) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	return db, nil
}

// Migrate applies the schema for db's dialect.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if err := repository.Migrate(ctx, db); err != nil {
		return fmt.Errorf("storage: migrate: %w", err)
	}
	return nil
}
