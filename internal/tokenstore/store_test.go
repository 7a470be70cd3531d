package tokenstore_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/etims-client/internal/tokenstore"
)

func exerciseStore(t *testing.T, store tokenstore.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, tokenstore.ErrNotFound)

	expires := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	require.NoError(t, store.Save(ctx, tokenstore.Record{AccessToken: "first", ExpiresAt: expires}))

	rec, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", rec.AccessToken)
	assert.WithinDuration(t, expires, rec.ExpiresAt, time.Second)

	require.NoError(t, store.Save(ctx, tokenstore.Record{AccessToken: "second", ExpiresAt: expires.Add(time.Minute)}))
	rec, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", rec.AccessToken)

	require.NoError(t, store.Delete(ctx))
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, tokenstore.ErrNotFound)

	require.NoError(t, store.Delete(ctx), "deleting an empty slot is not an error")
	require.NoError(t, store.Close())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "token.json")
	exerciseStore(t, tokenstore.NewFileStore(path))
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := tokenstore.NewFileStore(path)

	err := store.Save(context.Background(), tokenstore.Record{AccessToken: "abc", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileStore_ReadsFractionalSeconds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"access_token": "legacy", "expires_at": 1700000000.5}`), 0o600))

	rec, err := tokenstore.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "legacy", rec.AccessToken)
	assert.Equal(t, time.Unix(1700000000, 500_000_000), rec.ExpiresAt)
}

func TestFileStore_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := tokenstore.NewFileStore(path).Load(context.Background())
	assert.ErrorIs(t, err, tokenstore.ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, tokenstore.NewMemoryStore())
}

func TestSQLStore_SQLite(t *testing.T) {
	store, err := tokenstore.OpenSQLStore(context.Background(), tokenstore.DriverSQLite,
		"file:tokenstore-test?mode=memory&cache=shared", "test-key")
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestSQLStore_RequiresDSN(t *testing.T) {
	_, err := tokenstore.OpenSQLStore(context.Background(), tokenstore.DriverPostgres, "", "")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := tokenstore.Open(ctx, tokenstore.Options{Path: filepath.Join(t.TempDir(), "t.json")})
	require.NoError(t, err)
	assert.IsType(t, &tokenstore.FileStore{}, store)

	store, err = tokenstore.Open(ctx, tokenstore.Options{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &tokenstore.MemoryStore{}, store)

	store, err = tokenstore.Open(ctx, tokenstore.Options{Driver: "Redis", RedisAddr: miniredis.RunT(t).Addr()})
	require.NoError(t, err)
	assert.IsType(t, &tokenstore.RedisStore{}, store)
	require.NoError(t, store.Close())

	_, err = tokenstore.Open(ctx, tokenstore.Options{Driver: "etcd"})
	assert.Error(t, err)
}

func TestRecord_Valid(t *testing.T) {
	now := time.Now()
	assert.True(t, tokenstore.Record{AccessToken: "a", ExpiresAt: now.Add(time.Second)}.Valid(now))
	assert.False(t, tokenstore.Record{AccessToken: "a", ExpiresAt: now}.Valid(now))
	assert.False(t, tokenstore.Record{ExpiresAt: now.Add(time.Hour)}.Valid(now))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	exerciseStore(t, tokenstore.NewRedisStore(mr.Addr(), "test-key"))
}

func TestRedisStore_ExpiresWithToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := tokenstore.NewRedisStoreWithClient(client, "slot")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, tokenstore.Record{AccessToken: "abc", ExpiresAt: time.Now().Add(time.Minute)}))
	assert.InDelta(t, time.Minute.Seconds(), mr.TTL("slot").Seconds(), 2)

	mr.FastForward(2 * time.Minute)
	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, tokenstore.ErrNotFound)

	require.NoError(t, store.Save(ctx, tokenstore.Record{AccessToken: "old", ExpiresAt: time.Now().Add(-time.Second)}))
	assert.False(t, mr.Exists("slot"))
}

func TestSlotName(t *testing.T) {
	sbx := tokenstore.SlotName("SBX", "key")
	prod := tokenstore.SlotName("prod", "key")
	other := tokenstore.SlotName("sbx", "other-key")

	assert.True(t, strings.HasPrefix(sbx, tokenstore.DefaultKey+"-sbx-"))
	assert.Equal(t, sbx, tokenstore.SlotName("sbx", "key"))
	assert.NotEqual(t, sbx, prod)
	assert.NotEqual(t, sbx, other)
	assert.NotContains(t, sbx, "key")
	assert.Equal(t, tokenstore.DefaultKey, tokenstore.SlotName("", ""))
}

func TestOpen_DefaultFileSlotPerIdentity(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)
	ctx := context.Background()

	sbx, err := tokenstore.Open(ctx, tokenstore.Options{Environment: "sbx", ConsumerKey: "key"})
	require.NoError(t, err)
	prod, err := tokenstore.Open(ctx, tokenstore.Options{Environment: "prod", ConsumerKey: "other-key"})
	require.NoError(t, err)

	require.NoError(t, sbx.Save(ctx, tokenstore.Record{AccessToken: "sbx-token", ExpiresAt: time.Now().Add(time.Hour)}))

	_, err = prod.Load(ctx)
	assert.ErrorIs(t, err, tokenstore.ErrNotFound)
	require.NoError(t, prod.Delete(ctx))

	rec, err := sbx.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sbx-token", rec.AccessToken)

	_, err = os.Stat(filepath.Join(dir, tokenstore.SlotName("sbx", "key")+".json"))
	assert.NoError(t, err)
}
