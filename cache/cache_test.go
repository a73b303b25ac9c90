package cache_test

import (
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/iden3/go-anonymous-data/cache"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetWithDefaultTTL(t *testing.T) {
	c := cache.NewInMemoryCache[*big.Int](10, 2*time.Second)

	c.Set("stored", big.NewInt(42))

	val, ok := c.Get("stored")
	require.True(t, ok, "expected 'stored' to be set")
	require.Equal(t, "42", val.String())
}

func TestSetAndGetWithCustomTTL(t *testing.T) {
	c := cache.NewInMemoryCache[string](10, 10*time.Second)

	c.Set("short", "life", cache.WithTTL(100*time.Millisecond))
	c.Set("long", "life", cache.WithTTL(0))

	time.Sleep(200 * time.Millisecond)

	_, ok := c.Get("short")
	require.False(t, ok, "expected 'short' to be expired")
	_, ok = c.Get("long")
	require.True(t, ok, "non-positive TTL falls back to the default")
}

func TestRemoval(t *testing.T) {
	tests := []struct {
		name    string
		remove  func(c cache.ICache[string])
		removed []string
		kept    []string
	}{
		{
			name:    "delete one entry",
			remove:  func(c cache.ICache[string]) { c.Delete("stored") },
			removed: []string{"stored"},
			kept:    []string{"verifier"},
		},
		{
			name:    "clear everything",
			remove:  func(c cache.ICache[string]) { c.Clear() },
			removed: []string{"stored", "verifier"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cache.NewInMemoryCache[string](10, 10*time.Second)
			c.Set("stored", "42")
			c.Set("verifier", "0xab")
			tt.remove(c)

			for _, k := range tt.removed {
				_, ok := c.Get(k)
				require.False(t, ok, k)
			}
			for _, k := range tt.kept {
				_, ok := c.Get(k)
				require.True(t, ok, k)
			}
			require.Equal(t, len(tt.kept), c.Len())
		})
	}
}

func TestOverwriteValue(t *testing.T) {
	c := cache.NewInMemoryCache[*big.Int](10, 5*time.Second)

	c.Set("stored", big.NewInt(1))
	c.Set("stored", big.NewInt(2))
	val, ok := c.Get("stored")
	require.True(t, ok)
	require.Equal(t, "2", val.String())
}

func TestFetch(t *testing.T) {
	c := cache.NewInMemoryCache[*big.Int](10, 5*time.Second)

	calls := 0
	load := func() (*big.Int, error) {
		calls++
		return big.NewInt(7), nil
	}
	for i := 0; i < 3; i++ {
		v, err := c.Fetch("stored", load)
		require.NoError(t, err)
		require.Equal(t, "7", v.String())
	}
	require.Equal(t, 1, calls)

	errRPC := errors.New("rpc unavailable")
	_, err := c.Fetch("missing", func() (*big.Int, error) { return nil, errRPC })
	require.ErrorIs(t, err, errRPC)
	_, ok := c.Get("missing")
	require.False(t, ok, "failed loads are not cached")
}

func TestFetchExpired(t *testing.T) {
	c := cache.NewInMemoryCache[int](10, 5*time.Second)

	calls := 0
	load := func() (int, error) {
		calls++
		return calls, nil
	}
	v, err := c.Fetch("k", load, cache.WithTTL(50*time.Millisecond))
	require.NoError(t, err)
	require.Equal(t, 1, v)

	time.Sleep(100 * time.Millisecond)

	v, err = c.Fetch("k", load)
	require.NoError(t, err)
	require.Equal(t, 2, v)
}

func TestExpiredEntriesAreCleanedUp(t *testing.T) {
	c := cache.NewInMemoryCache[string](10, 100*time.Millisecond)

	for i := 0; i < 20; i++ {
		c.Set(fmt.Sprintf("key-%d", i), "value", cache.WithTTL(50*time.Millisecond))
	}

	time.Sleep(200 * time.Millisecond)

	for i := 0; i < 20; i++ {
		c.Get(fmt.Sprintf("key-%d", i))
	}

	require.LessOrEqual(t, c.Len(), 10, "expected cache to have <= 10 active items")
}
