package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// fileRecord is the on-disk shape. expires_at is fractional unix seconds.
type fileRecord struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   json.Number `json:"expires_at"`
}

// FileStore keeps the token in a JSON file
type FileStore struct {
	path string
}

// NewFileStore creates a file store at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the cache file location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the cache file. A missing file is ErrNotFound; a corrupt one is
// treated the same so the caller refreshes.
func (s *FileStore) Load(_ context.Context) (Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("read token cache: %w", err)
	}

	var raw fileRecord
	if err := json.Unmarshal(data, &raw); err != nil || raw.AccessToken == "" {
		return Record{}, ErrNotFound
	}
	secs, err := raw.ExpiresAt.Float64()
	if err != nil {
		return Record{}, ErrNotFound
	}

	whole, frac := math.Modf(secs)
	return Record{
		AccessToken: raw.AccessToken,
		ExpiresAt:   time.Unix(int64(whole), int64(frac*1e9)),
	}, nil
}

// Save writes to a temp file in the same directory and renames it over the
// cache file
func (s *FileStore) Save(_ context.Context, rec Record) error {
	secs := float64(rec.ExpiresAt.UnixMilli()) / 1000
	data, err := json.Marshal(fileRecord{
		AccessToken: rec.AccessToken,
		ExpiresAt:   json.Number(fmt.Sprintf("%.3f", secs)),
	})
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create token cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".kra_etims_token-*")
	if err != nil {
		return fmt.Errorf("create temp token cache: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp token cache: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp token cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp token cache: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace token cache: %w", err)
	}
	return nil
}

// Delete removes the cache file; a missing file is not an error
func (s *FileStore) Delete(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete token cache: %w", err)
	}
	return nil
}

// Close implements Store
func (s *FileStore) Close() error { return nil }
