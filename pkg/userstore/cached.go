package userstore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedStore puts a bounded, expiring LRU in front of another Store for the
// two lookups on the login and resolve paths. Only hits are cached; records
// are immutable, so a cached entry is never stale, only evicted.
type CachedStore struct {
	Store
	byID  *expirable.LRU[string, Record]
	byKey *expirable.LRU[string, Record]
}

// NewCached wraps next. A size <= 0 disables caching and returns next as is.
func NewCached(next Store, size int, ttl time.Duration) Store {
	if size <= 0 {
		return next
	}
	return &CachedStore{
		Store: next,
		byID:  expirable.NewLRU[string, Record](size, nil, ttl),
		byKey: expirable.NewLRU[string, Record](size, nil, ttl),
	}
}

func (c *CachedStore) Create(ctx context.Context, username, email, passwordHash string) (Record, error) {
	rec, err := c.Store.Create(ctx, username, email, passwordHash)
	if err != nil {
		return Record{}, err
	}
	c.remember(rec)
	return rec, nil
}

func (c *CachedStore) FindByUsername(ctx context.Context, username string) (Record, error) {
	if rec, ok := c.byKey.Get(Key(username)); ok {
		return rec, nil
	}
	rec, err := c.Store.FindByUsername(ctx, username)
	if err != nil {
		return Record{}, err
	}
	c.remember(rec)
	return rec, nil
}

func (c *CachedStore) FindByID(ctx context.Context, id string) (Record, error) {
	if rec, ok := c.byID.Get(id); ok {
		return rec, nil
	}
	rec, err := c.Store.FindByID(ctx, id)
	if err != nil {
		return Record{}, err
	}
	c.remember(rec)
	return rec, nil
}

// Ping forwards to the wrapped store when it has a remote dependency.
func (c *CachedStore) Ping(ctx context.Context) error {
	if p, ok := c.Store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Purge drops every cached entry.
func (c *CachedStore) Purge() {
	c.byID.Purge()
	c.byKey.Purge()
}

func (c *CachedStore) remember(rec Record) {
	c.byID.Add(rec.ID, rec)
	c.byKey.Add(Key(rec.Username), rec)
}
