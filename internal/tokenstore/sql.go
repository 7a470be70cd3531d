package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type tokenRecord struct {
	bun.BaseModel `bun:"table:etims_tokens"`

	CacheKey    string    `bun:"cache_key,pk"`
	AccessToken string    `bun:"access_token,notnull"`
	ExpiresAt   time.Time `bun:"expires_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// SQLStore keeps the token in a bun-managed table keyed by cache key, so
// several processes sharing a database share one token
type SQLStore struct {
	db    *bun.DB
	key   string
	owned bool
}

// NewSQLStore wraps an existing bun database. The caller keeps ownership.
func NewSQLStore(db *bun.DB, key string) *SQLStore {
	if key == "" {
		key = DefaultKey
	}
	return &SQLStore{db: db, key: key}
}

// OpenSQLStore opens a sqlite or postgres database and creates the table
func OpenSQLStore(ctx context.Context, driver, dsn, key string) (*SQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("tokenstore: %s driver needs a dsn", driver)
	}

	var db *bun.DB
	switch driver {
	case DriverPostgres:
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres token store: %w", err)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite token store: %w", err)
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	store := NewSQLStore(db, key)
	store.owned = true
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// EnsureSchema creates the token table if it does not exist
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*tokenRecord)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return fmt.Errorf("create token table: %w", err)
	}
	return nil
}

// Load implements Store
func (s *SQLStore) Load(ctx context.Context) (Record, error) {
	var rec tokenRecord
	err := s.db.NewSelect().
		Model(&rec).
		Where("cache_key = ?", s.key).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load token: %w", err)
	}
	return Record{AccessToken: rec.AccessToken, ExpiresAt: rec.ExpiresAt}, nil
}

// Save upserts the record in a single statement
func (s *SQLStore) Save(ctx context.Context, rec Record) error {
	model := &tokenRecord{
		CacheKey:    s.key,
		AccessToken: rec.AccessToken,
		ExpiresAt:   rec.ExpiresAt.UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (cache_key) DO UPDATE").
		Set("access_token = EXCLUDED.access_token").
		Set("expires_at = EXCLUDED.expires_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Delete implements Store
func (s *SQLStore) Delete(ctx context.Context) error {
	_, err := s.db.NewDelete().
		Model((*tokenRecord)(nil)).
		Where("cache_key = ?", s.key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// Close closes the database when the store opened it
func (s *SQLStore) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}
