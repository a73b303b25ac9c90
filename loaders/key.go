package loaders

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ErrKeyNotFound is returned when key is not found
var ErrKeyNotFound = errors.New("key not found")

// VerificationKeyLoader load verification key bytes by key id
type VerificationKeyLoader interface {
	Load(id string) ([]byte, error)
}

// FSKeyLoader read keys from filesystem, <Dir>/<id>.json
type FSKeyLoader struct {
	Dir string
}

// Load reads the key file. A missing file is reported as ErrKeyNotFound.
func (m FSKeyLoader) Load(id string) ([]byte, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, errors.Errorf("invalid key id %q", id)
	}
	b, err := os.ReadFile(filepath.Join(m.Dir, id+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(ErrKeyNotFound, "%s", id)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}

// MemoryKeyLoader serves keys registered at runtime.
type MemoryKeyLoader struct {
	mu   sync.RWMutex
	keys map[string][]byte
}

// NewMemoryKeyLoader creates a loader with the given keys.
func NewMemoryKeyLoader(keys map[string][]byte) *MemoryKeyLoader {
	m := &MemoryKeyLoader{keys: make(map[string][]byte, len(keys))}
	for id, k := range keys {
		m.keys[id] = k
	}
	return m
}

// Add registers or replaces a key.
func (m *MemoryKeyLoader) Add(id string, key []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[id] = key
}

// Load implements VerificationKeyLoader.
func (m *MemoryKeyLoader) Load(id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	k, ok := m.keys[id]
	if !ok {
		return nil, errors.Wrapf(ErrKeyNotFound, "%s", id)
	}
	return k, nil
}
