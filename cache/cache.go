// Package cache is a small generic TTL cache used in front of slow commitment
// stores, contract lookups and key loaders.
package cache

import (
	"time"

	"github.com/karlseguin/ccache/v3"
)

// ICache stores values of type T by string key. Entries expire after the
// cache's default TTL unless an entry option says otherwise.
type ICache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T, opts ...Option)
	// Fetch returns the live entry for key, or calls load and stores its
	// result. Nothing is stored when load fails.
	Fetch(key string, load func() (T, error), opts ...Option) (T, error)
	Delete(key string)
	Clear()
	Len() int
}

type entryOptions struct {
	ttl time.Duration
}

// Option configures a single cache entry.
type Option func(*entryOptions)

// WithTTL overrides the default TTL for one entry. Non-positive values are
// ignored.
func WithTTL(ttl time.Duration) Option {
	return func(o *entryOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

type ttlCache[T any] struct {
	items *ccache.Cache[T]
	ttl   time.Duration
}

// NewInMemoryCache creates a cache holding at most maxSize entries that live
// for ttl by default.
func NewInMemoryCache[T any](maxSize int64, ttl time.Duration) ICache[T] {
	return &ttlCache[T]{
		items: ccache.New(ccache.Configure[T]().MaxSize(maxSize)),
		ttl:   ttl,
	}
}

func (c *ttlCache[T]) entryTTL(opts []Option) time.Duration {
	o := entryOptions{ttl: c.ttl}
	for _, opt := range opts {
		opt(&o)
	}
	return o.ttl
}

func (c *ttlCache[T]) Get(key string) (value T, ok bool) {
	item := c.items.Get(key)
	if item == nil || item.Expired() {
		return value, false
	}
	return item.Value(), true
}

func (c *ttlCache[T]) Set(key string, value T, opts ...Option) {
	c.items.Set(key, value, c.entryTTL(opts))
}

func (c *ttlCache[T]) Fetch(key string, load func() (T, error), opts ...Option) (value T, err error) {
	item, err := c.items.Fetch(key, c.entryTTL(opts), load)
	if err != nil {
		return value, err
	}
	return item.Value(), nil
}

func (c *ttlCache[T]) Delete(key string) {
	c.items.Delete(key)
}

func (c *ttlCache[T]) Clear() {
	c.items.Clear()
}

func (c *ttlCache[T]) Len() int {
	return c.items.ItemCount()
}
