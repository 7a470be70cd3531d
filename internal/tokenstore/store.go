// Package tokenstore persists cached access tokens, one slot per client
// identity.
//
// Stores hold one record per cache key. Every implementation replaces the
// record atomically, so a concurrent reader sees either the previous token or
// the new one.
package tokenstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned by Load when the slot is empty
var ErrNotFound = errors.New("tokenstore: no cached token")

// Record is a cached token with its absolute expiry
type Record struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Valid reports whether the record is usable at now
func (r Record) Valid(now time.Time) bool {
	return r.AccessToken != "" && now.Before(r.ExpiresAt)
}

// Store persists one token record
type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
	Delete(ctx context.Context) error
	Close() error
}

// Drivers accepted by Open
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// DefaultKey prefixes every slot name
const DefaultKey = "kra_etims_token"

// Options selects and configures a store. Environment and ConsumerKey name
// the slot when Key or Path is empty, so clients with different identities
// never read each other's token.
type Options struct {
	Driver      string
	Path        string
	DSN         string
	RedisAddr   string
	Key         string
	Environment string
	ConsumerKey string
}

// SlotName derives the cache key of one client identity. The consumer key
// is hashed so it never appears in file names or database rows.
func SlotName(env, consumerKey string) string {
	env = strings.ToLower(strings.TrimSpace(env))
	if env == "" && consumerKey == "" {
		return DefaultKey
	}
	sum := sha256.Sum256([]byte(consumerKey))
	return DefaultKey + "-" + env + "-" + hex.EncodeToString(sum[:6])
}

// DefaultPath is the file cache location of slot when none is configured
func DefaultPath(slot string) string {
	if slot == "" {
		slot = DefaultKey
	}
	return filepath.Join(os.TempDir(), slot+".json")
}

// Open builds the store named by opts.Driver; empty means file
func Open(ctx context.Context, opts Options) (Store, error) {
	key := opts.Key
	if key == "" {
		key = SlotName(opts.Environment, opts.ConsumerKey)
	}

	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverFile:
		path := opts.Path
		if path == "" {
			path = DefaultPath(key)
		}
		return NewFileStore(path), nil
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite, DriverPostgres:
		return OpenSQLStore(ctx, opts.Driver, opts.DSN, key)
	case DriverRedis:
		return NewRedisStore(opts.RedisAddr, key), nil
	default:
		return nil, fmt.Errorf("tokenstore: unknown driver %q", opts.Driver)
	}
}
