// Package commitment derives field-element commitments from arbitrary data.
//
// Data is first pre-hashed with keccak256 and reduced modulo the scalar field,
// because the arithmetic hashes only absorb fixed-width field elements. The
// resulting element is then hashed with Poseidon (default) or MiMC.
package commitment

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iden3/go-anonymous-data/field"
	"github.com/pkg/errors"
)

// ErrInvalidInput is returned when data can not be mapped into the field.
var ErrInvalidInput = errors.New("invalid commitment input")

// Derivation is the result of committing to data: the pre-hashed field
// element a prover uses as its secret witness, and the public commitment.
type Derivation struct {
	Input      *big.Int
	Commitment *big.Int
}

// Generator derives commitments. The zero value is not usable, use
// NewGenerator.
type Generator struct {
	hasher Hasher
}

// Option configures a Generator.
type Option func(*Generator)

// WithHasher replaces the default Poseidon hasher.
func WithHasher(h Hasher) Option {
	return func(g *Generator) {
		g.hasher = h
	}
}

// NewGenerator creates a generator, Poseidon by default.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{hasher: Poseidon{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Hasher returns the configured hasher.
func (g *Generator) Hasher() Hasher {
	return g.hasher
}

// PreHash maps arbitrary bytes to a field element: keccak256(data) mod R.
func PreHash(data []byte) (*big.Int, error) {
	digest := new(big.Int).SetBytes(crypto.Keccak256(data))
	input := field.Reduce(digest)
	if !field.InField(input) {
		return nil, errors.Wrap(ErrInvalidInput, "pre-hash out of field")
	}
	return input, nil
}

// Derive computes the pre-hash of data and its commitment.
func (g *Generator) Derive(data []byte) (*Derivation, error) {
	input, err := PreHash(data)
	if err != nil {
		return nil, err
	}
	c, err := g.hasher.Hash(input)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidInput, err.Error())
	}
	return &Derivation{Input: input, Commitment: c}, nil
}

// Generate returns the commitment to data.
func (g *Generator) Generate(data []byte) (*big.Int, error) {
	d, err := g.Derive(data)
	if err != nil {
		return nil, err
	}
	return d.Commitment, nil
}

// HashElements commits directly to already-reduced field elements.
func (g *Generator) HashElements(inputs ...*big.Int) (*big.Int, error) {
	for i, in := range inputs {
		if !field.InField(in) {
			return nil, errors.Wrapf(ErrInvalidInput, "element %d is not in the field", i)
		}
	}
	c, err := g.hasher.Hash(inputs...)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidInput, err.Error())
	}
	return c, nil
}

var defaultGenerator = NewGenerator()

// Generate commits to data with Poseidon.
func Generate(data []byte) (*big.Int, error) {
	return defaultGenerator.Generate(data)
}
