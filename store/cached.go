package store

import (
	"context"
	"math/big"

	"github.com/iden3/go-anonymous-data/cache"
	"github.com/iden3/go-anonymous-data/constants"
)

const storedKey = "stored"

// CachedStore serves Read from a short-lived cache in front of a slow store,
// such as a contract behind an RPC endpoint. Publish through the same
// CachedStore refreshes the cache, so a Read after Publish on one instance
// always observes the new value.
type CachedStore struct {
	Store
	cache cache.ICache[*big.Int]
}

// CachedStoreOption configures a CachedStore.
type CachedStoreOption func(*CachedStore)

// WithCache replaces the default in-memory cache.
func WithCache(c cache.ICache[*big.Int]) CachedStoreOption {
	return func(s *CachedStore) {
		s.cache = c
	}
}

// NewCachedStore wraps s.
func NewCachedStore(s Store, opts ...CachedStoreOption) *CachedStore {
	cs := &CachedStore{Store: s}
	for _, opt := range opts {
		opt(cs)
	}
	if cs.cache == nil {
		cs.cache = cache.NewInMemoryCache[*big.Int](
			constants.StoredHashCacheOptions.MaxSize,
			constants.StoredHashCacheOptions.DefaultTTL,
		)
	}
	return cs
}

// Publish writes through and refreshes the cached value.
func (s *CachedStore) Publish(ctx context.Context, commitment *big.Int) error {
	if err := s.Store.Publish(ctx, commitment); err != nil {
		s.cache.Delete(storedKey)
		return err
	}
	s.cache.Set(storedKey, new(big.Int).Set(commitment))
	return nil
}

// Read returns the cached commitment or reads through.
func (s *CachedStore) Read(ctx context.Context) (*big.Int, error) {
	v, err := s.cache.Fetch(storedKey, func() (*big.Int, error) {
		return s.Store.Read(ctx)
	})
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(v), nil
}

// Invalidate drops the cached value.
func (s *CachedStore) Invalidate() {
	s.cache.Delete(storedKey)
}
