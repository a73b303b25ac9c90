// Package store keeps the currently published commitment.
//
// A Store holds exactly one value. It starts at zero, Publish overwrites it
// unconditionally and Read returns the latest published value. Zero is a
// legitimate field element, so callers must not treat it as "unset".
package store

import (
	"context"
	"math/big"
	"sync"

	"github.com/iden3/go-anonymous-data/field"
	"github.com/pkg/errors"
)

// Store is the single-slot commitment register.
type Store interface {
	Publish(ctx context.Context, commitment *big.Int) error
	Read(ctx context.Context) (*big.Int, error)
}

// ErrUnauthorizedPublish is returned when the caller may not publish.
var ErrUnauthorizedPublish = errors.New("caller is not allowed to publish")

// MemoryStore is an in-process Store. The zero value is ready to use and
// holds the commitment 0.
type MemoryStore struct {
	mu    sync.RWMutex
	value big.Int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Publish replaces the stored commitment.
func (s *MemoryStore) Publish(_ context.Context, commitment *big.Int) error {
	if err := checkCommitment(commitment); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value.Set(commitment)
	return nil
}

// Read returns a copy of the stored commitment. It never fails.
func (s *MemoryStore) Read(_ context.Context) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return new(big.Int).Set(&s.value), nil
}

func checkCommitment(c *big.Int) error {
	if c == nil {
		return errors.Wrap(field.ErrNotInField, "commitment is nil")
	}
	if !field.InField(c) {
		return errors.Wrapf(field.ErrNotInField, "commitment %s", c)
	}
	return nil
}
