package loaders

import (
	"github.com/iden3/go-anonymous-data/cache"
	"github.com/iden3/go-anonymous-data/constants"
	"github.com/pkg/errors"
)

// CachedKeyLoader resolves verification keys through a primary loader and an
// optional fallback, keeping what it loaded in a TTL cache. Only
// ErrKeyNotFound from the primary sends a lookup to the fallback; any other
// error is returned as is.
//
//	loader := NewCachedKeyLoader(
//		FSKeyLoader{Dir: "/path/to/keys"},
//		WithFallback(NewMemoryKeyLoader(defaults)),
//	)
type CachedKeyLoader struct {
	primary  VerificationKeyLoader
	fallback VerificationKeyLoader
	keys     cache.ICache[[]byte]
}

// Option configures a CachedKeyLoader.
type Option func(*CachedKeyLoader)

// WithFallback consults loader for keys the primary does not have.
func WithFallback(loader VerificationKeyLoader) Option {
	return func(l *CachedKeyLoader) {
		l.fallback = loader
	}
}

// WithKeyCache replaces the default in-memory key cache.
func WithKeyCache(c cache.ICache[[]byte]) Option {
	return func(l *CachedKeyLoader) {
		l.keys = c
	}
}

// WithCacheDisabled loads every key from the underlying loaders.
func WithCacheDisabled() Option {
	return WithKeyCache(nil)
}

// NewCachedKeyLoader creates a loader over primary. Caching is on by default.
func NewCachedKeyLoader(primary VerificationKeyLoader, opts ...Option) *CachedKeyLoader {
	l := &CachedKeyLoader{
		primary: primary,
		keys: cache.NewInMemoryCache[[]byte](
			constants.KeyCacheOptions.MaxSize,
			constants.KeyCacheOptions.DefaultTTL,
		),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the key for id.
func (l *CachedKeyLoader) Load(id string) ([]byte, error) {
	if l.keys == nil {
		return l.load(id)
	}
	return l.keys.Fetch(id, func() ([]byte, error) {
		return l.load(id)
	})
}

func (l *CachedKeyLoader) load(id string) ([]byte, error) {
	err := error(ErrKeyNotFound)
	if l.primary != nil {
		var key []byte
		if key, err = l.primary.Load(id); err == nil {
			return key, nil
		}
	}
	if l.fallback == nil || !errors.Is(err, ErrKeyNotFound) {
		return nil, err
	}
	return l.fallback.Load(id)
}
