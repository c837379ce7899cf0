package novapay

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// StorageItem is one persisted blob, keyed the way browser local storage
// keys its entries.
type StorageItem struct {
	bun.BaseModel `bun:"table:storage,alias:sto"`
	Key           string     `bun:"key,pk" json:"key"`
	Value         []byte     `bun:"value" json:"value"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// BunStorage persists blobs in a single key/value table through Bun.
type BunStorage struct {
	db *bun.DB
}

var _ Storage = (*BunStorage)(nil)

// NewBunStorage wraps an existing Bun handle.
func NewBunStorage(db *bun.DB) *BunStorage {
	return &BunStorage{db: db}
}

// OpenSQLiteStorage opens dsn through the sqlite shim and ensures the
// storage table exists. Use ":memory:" for throwaway instances.
func OpenSQLiteStorage(ctx context.Context, dsn string) (*BunStorage, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open sqlite storage")
	}

	storage := NewBunStorage(bun.NewDB(sqldb, sqlitedialect.New()))
	if err := storage.Init(ctx); err != nil {
		return nil, err
	}

	return storage, nil
}

// Init creates the storage table if it does not exist.
func (s *BunStorage) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*StorageItem)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create storage table")
	}
	return nil
}

// DB exposes the underlying Bun handle.
func (s *BunStorage) DB() *bun.DB {
	return s.db
}

func (s *BunStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	item := &StorageItem{}
	err := s.db.NewSelect().
		Model(item).
		Where("?TableAlias.key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read storage key").
			WithMetadata(map[string]any{"key": key})
	}

	return item.Value, true, nil
}

func (s *BunStorage) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now()
	item := &StorageItem{
		Key:       key,
		Value:     value,
		UpdatedAt: &now,
	}

	_, err := s.db.NewInsert().
		Model(item).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write storage key").
			WithMetadata(map[string]any{"key": key})
	}

	return nil
}

func (s *BunStorage) Delete(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*StorageItem)(nil)).
		Where("?TableAlias.key = ?", key).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete storage key").
			WithMetadata(map[string]any{"key": key})
	}

	return nil
}
