package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-logger/glog"
	"golang.org/x/sync/singleflight"

	"github.com/rezonia/etims-client/internal/model"
	"github.com/rezonia/etims-client/internal/tokenstore"
)

// TokenCache hands out a valid token, refreshing through the Fetcher when the
// cached one is missing, expired, forgotten or a refresh is forced.
// Concurrent refreshes are coalesced into one exchange.
type TokenCache struct {
	fetcher Fetcher
	store   tokenstore.Store
	now     func() time.Time
	logger  glog.Logger

	mu      sync.RWMutex
	current *Token
	stale   bool

	group singleflight.Group
}

// CacheOption configures a TokenCache
type CacheOption func(*TokenCache)

// WithCacheClock overrides time.Now
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *TokenCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCacheLogger sets the logger
func WithCacheLogger(logger glog.Logger) CacheOption {
	return func(c *TokenCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewTokenCache creates a cache over store; nil store keeps tokens in memory
func NewTokenCache(fetcher Fetcher, store tokenstore.Store, opts ...CacheOption) *TokenCache {
	if store == nil {
		store = tokenstore.NewMemoryStore()
	}
	c := &TokenCache{
		fetcher: fetcher,
		store:   store,
		now:     time.Now,
		logger:  glog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetToken returns a token valid at the current instant. With force the
// cached token is ignored.
func (c *TokenCache) GetToken(ctx context.Context, force bool) (Token, error) {
	if !force {
		if tok, ok := c.cached(ctx); ok {
			return tok, nil
		}
	}

	v, err, shared := c.group.Do("token", func() (any, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return Token{}, err
	}
	if shared {
		c.logger.Debug("token refresh coalesced")
	}
	return v.(Token), nil
}

func (c *TokenCache) cached(ctx context.Context) (Token, bool) {
	now := c.now()

	c.mu.RLock()
	cur, stale := c.current, c.stale
	c.mu.RUnlock()

	if stale {
		return Token{}, false
	}
	if cur != nil && now.Before(cur.ExpiresAt) {
		return *cur, true
	}

	// another process sharing the store may have refreshed already
	rec, err := c.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, tokenstore.ErrNotFound) {
			c.logger.Warn("token store load failed", "error", err)
		}
		return Token{}, false
	}
	if !rec.Valid(now) {
		return Token{}, false
	}

	tok := Token{AccessToken: rec.AccessToken, ExpiresAt: rec.ExpiresAt}
	c.mu.Lock()
	if !c.stale {
		c.current = &tok
	}
	c.mu.Unlock()
	return tok, true
}

func (c *TokenCache) refresh(ctx context.Context) (Token, error) {
	tok, err := c.fetcher.Fetch(ctx)
	if err != nil {
		c.logger.Error("token refresh failed", "error", err)
		return Token{}, err
	}
	if !c.now().Before(tok.ExpiresAt) {
		c.logger.Error("token refresh returned an expired token", "expires_at", tok.ExpiresAt)
		return Token{}, model.NewAuthenticationError("identity endpoint issued an expired token", 0, nil, nil)
	}

	if err := c.store.Save(ctx, tokenstore.Record{AccessToken: tok.AccessToken, ExpiresAt: tok.ExpiresAt}); err != nil {
		c.logger.Warn("token store save failed", "error", err)
	}

	c.mu.Lock()
	c.current = &tok
	c.stale = false
	c.mu.Unlock()

	c.logger.Info("access token refreshed", "expires_at", tok.ExpiresAt)
	return tok, nil
}

// Forget invalidates the cached token; the next GetToken refreshes whatever
// force says
func (c *TokenCache) Forget(ctx context.Context) error {
	c.mu.Lock()
	c.current = nil
	c.stale = true
	c.mu.Unlock()

	c.logger.Debug("access token forgotten")
	return c.store.Delete(ctx)
}

// Close releases the backing store
func (c *TokenCache) Close() error {
	return c.store.Close()
}
