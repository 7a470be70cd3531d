package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisRecord struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at_ms"`
}

// RedisStore keeps the token under one key with a TTL matching its lifetime
type RedisStore struct {
	client *redis.Client
	key    string
	owned  bool
}

// NewRedisStore connects to addr
func NewRedisStore(addr, key string) *RedisStore {
	s := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: addr}), key)
	s.owned = true
	return s
}

// NewRedisStoreWithClient wraps an existing client. The caller keeps ownership.
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

// Load implements Store
func (s *RedisStore) Load(ctx context.Context) (Record, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load token: %w", err)
	}

	var raw redisRecord
	if err := json.Unmarshal(data, &raw); err != nil || raw.AccessToken == "" {
		return Record{}, ErrNotFound
	}
	return Record{AccessToken: raw.AccessToken, ExpiresAt: time.UnixMilli(raw.ExpiresAt)}, nil
}

// Save implements Store. Records that are already expired are deleted.
func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx)
	}

	data, err := json.Marshal(redisRecord{AccessToken: rec.AccessToken, ExpiresAt: rec.ExpiresAt.UnixMilli()})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Delete implements Store
func (s *RedisStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// Close closes the client when the store created it
func (s *RedisStore) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}
