// Package medcache keeps users' medication lists in memory for a bounded
// time so that every parse request does not hit the database.
package medcache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/MrWong99/painvoice/internal/observe"
	"github.com/MrWong99/painvoice/internal/resilience"
	"github.com/MrWong99/painvoice/pkg/types"
)

// Source loads a user's medication list. *postgres.Store implements it.
type Source interface {
	ListMedications(ctx context.Context, userID string) ([]types.UserMedication, error)
}

// Cache is a read-through TTL cache in front of a [Source]. Concurrent
// misses for the same user share a single load. It is safe for concurrent use.
type Cache struct {
	src     Source
	items   *gocache.Cache
	ttl     atomic.Int64
	group   singleflight.Group
	breaker *resilience.Breaker
	metrics *observe.Metrics
}

// Option configures a [Cache].
type Option func(*Cache)

// WithBreaker guards source loads with b.
func WithBreaker(b *resilience.Breaker) Option {
	return func(c *Cache) { c.breaker = b }
}

// WithMetrics records hits and misses to m.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New returns a Cache holding lists for ttl.
func New(src Source, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		src:   src,
		items: gocache.New(ttl, 2*ttl),
	}
	c.ttl.Store(int64(ttl))
	for _, o := range opts {
		o(c)
	}
	return c
}

// ListMedications returns the cached list of userID, loading it from the
// source on a miss. Failed loads are not cached.
func (c *Cache) ListMedications(ctx context.Context, userID string) ([]types.UserMedication, error) {
	if v, ok := c.items.Get(userID); ok {
		c.record(ctx, true)
		return clone(v.([]types.UserMedication)), nil
	}
	c.record(ctx, false)

	v, err, _ := c.group.Do(userID, func() (any, error) {
		meds, err := c.load(ctx, userID)
		if err != nil {
			return nil, err
		}
		c.items.Set(userID, meds, time.Duration(c.ttl.Load()))
		return meds, nil
	})
	if err != nil {
		return nil, fmt.Errorf("medcache: load %s: %w", userID, err)
	}
	return clone(v.([]types.UserMedication)), nil
}

// Invalidate drops the cached list of userID.
func (c *Cache) Invalidate(userID string) {
	c.items.Delete(userID)
}

// SetTTL changes the lifetime of lists cached from now on.
func (c *Cache) SetTTL(ttl time.Duration) {
	c.ttl.Store(int64(ttl))
}

// Len returns the number of cached lists, including expired ones not yet
// purged.
func (c *Cache) Len() int {
	return c.items.ItemCount()
}

func (c *Cache) load(ctx context.Context, userID string) ([]types.UserMedication, error) {
	if c.breaker == nil {
		return c.src.ListMedications(ctx, userID)
	}
	var meds []types.UserMedication
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		meds, err = c.src.ListMedications(ctx, userID)
		return err
	})
	return meds, err
}

func (c *Cache) record(ctx context.Context, hit bool) {
	if c.metrics != nil {
		c.metrics.RecordCacheLookup(ctx, hit)
	}
}

// clone keeps callers from mutating the cached slice.
func clone(meds []types.UserMedication) []types.UserMedication {
	out := make([]types.UserMedication, len(meds))
	copy(out, meds)
	return out
}
