package loaders

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iden3/go-anonymous-data/cache"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLoader implements VerificationKeyLoader for testing
type countingLoader struct {
	keys  map[string][]byte
	err   error
	calls int
}

func (m *countingLoader) Load(id string) ([]byte, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if key, ok := m.keys[id]; ok {
		return key, nil
	}
	return nil, ErrKeyNotFound
}

func TestNewCachedKeyLoader(t *testing.T) {
	t.Run("default configuration", func(t *testing.T) {
		loader := NewCachedKeyLoader(nil)
		assert.NotNil(t, loader.keys)
		assert.Nil(t, loader.fallback)
	})

	t.Run("multiple options", func(t *testing.T) {
		fallback := &countingLoader{}
		loader := NewCachedKeyLoader(nil, WithFallback(fallback), WithCacheDisabled())
		assert.Nil(t, loader.keys)
		assert.Equal(t, fallback, loader.fallback)
	})

	t.Run("custom cache", func(t *testing.T) {
		c := cache.NewInMemoryCache[[]byte](1, time.Minute)
		loader := NewCachedKeyLoader(nil, WithKeyCache(c))
		assert.Equal(t, c, loader.keys)
	})
}

func TestCachedKeyLoader_Load(t *testing.T) {
	testKey := []byte(`{"protocol":"groth16"}`)
	testID := "knowledge"

	t.Run("load from cache", func(t *testing.T) {
		primary := &countingLoader{keys: map[string][]byte{testID: testKey}}
		loader := NewCachedKeyLoader(primary)

		for i := 0; i < 3; i++ {
			key, err := loader.Load(testID)
			require.NoError(t, err)
			assert.Equal(t, testKey, key)
		}
		assert.Equal(t, 1, primary.calls)
		cached, ok := loader.keys.Get(testID)
		require.True(t, ok)
		assert.Equal(t, testKey, cached)
	})

	t.Run("fallback on not found", func(t *testing.T) {
		primary := &countingLoader{}
		fallback := &countingLoader{keys: map[string][]byte{testID: testKey}}
		loader := NewCachedKeyLoader(primary, WithFallback(fallback))

		key, err := loader.Load(testID)
		require.NoError(t, err)
		assert.Equal(t, testKey, key)
		assert.Equal(t, 1, fallback.calls)
	})

	t.Run("no fallback on other errors", func(t *testing.T) {
		errIO := errors.New("disk failure")
		primary := &countingLoader{err: errIO}
		fallback := &countingLoader{keys: map[string][]byte{testID: testKey}}
		loader := NewCachedKeyLoader(primary, WithFallback(fallback))

		_, err := loader.Load(testID)
		require.ErrorIs(t, err, errIO)
		assert.Equal(t, 0, fallback.calls)
	})

	t.Run("no cache", func(t *testing.T) {
		primary := &countingLoader{keys: map[string][]byte{testID: testKey}}
		loader := NewCachedKeyLoader(primary, WithCacheDisabled())

		_, err := loader.Load(testID)
		require.NoError(t, err)
		_, err = loader.Load(testID)
		require.NoError(t, err)
		assert.Equal(t, 2, primary.calls)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		primary := &countingLoader{}
		loader := NewCachedKeyLoader(primary)

		_, err := loader.Load(testID)
		require.ErrorIs(t, err, ErrKeyNotFound)
		primary.keys = map[string][]byte{testID: testKey}
		key, err := loader.Load(testID)
		require.NoError(t, err)
		assert.Equal(t, testKey, key)
		assert.Equal(t, 2, primary.calls)
	})

	t.Run("not found anywhere", func(t *testing.T) {
		loader := NewCachedKeyLoader(&countingLoader{}, WithFallback(NewMemoryKeyLoader(nil)))
		_, err := loader.Load("missing")
		require.ErrorIs(t, err, ErrKeyNotFound)
	})
}

func TestFSKeyLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "knowledge.json"), []byte("{}"), 0o600))

	l := FSKeyLoader{Dir: dir}
	key, err := l.Load("knowledge")
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), key)

	_, err = l.Load("missing")
	require.ErrorIs(t, err, ErrKeyNotFound)

	for _, id := range []string{"", "../knowledge", "a/b"} {
		_, err = l.Load(id)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrKeyNotFound), id)
	}
}

func TestMemoryKeyLoader(t *testing.T) {
	m := NewMemoryKeyLoader(map[string][]byte{"a": []byte("1")})
	key, err := m.Load("a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), key)

	m.Add("b", []byte("2"))
	key, err = m.Load("b")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), key)

	_, err = m.Load("c")
	require.ErrorIs(t, err, ErrKeyNotFound)
}
