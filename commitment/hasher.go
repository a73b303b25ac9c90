package commitment

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/iden3/go-anonymous-data/field"
	"github.com/iden3/go-iden3-crypto/poseidon"
	"github.com/pkg/errors"
)

const (
	// PoseidonHasherName names the circomlib compatible Poseidon hasher.
	PoseidonHasherName = "poseidon"
	// MiMCHasherName names the gnark compatible MiMC hasher.
	MiMCHasherName = "mimc"
)

// Hasher is an arithmetic-friendly hash over the BN254 scalar field.
type Hasher interface {
	Name() string
	Hash(inputs ...*big.Int) (*big.Int, error)
}

// Poseidon hashes with the circomlib Poseidon permutation, so the result
// matches circomlibjs buildPoseidon and the circom Poseidon template.
type Poseidon struct{}

// Name implements Hasher.
func (Poseidon) Name() string { return PoseidonHasherName }

// Hash accepts between 1 and 16 field elements.
func (Poseidon) Hash(inputs ...*big.Int) (*big.Int, error) {
	h, err := poseidon.Hash(inputs)
	if err != nil {
		return nil, errors.Wrap(err, "poseidon")
	}
	return h, nil
}

// MiMC hashes with gnark-crypto's BN254 MiMC, the native twin of gnark's
// std/hash/mimc gadget.
type MiMC struct{}

// Name implements Hasher.
func (MiMC) Name() string { return MiMCHasherName }

// Hash absorbs every input as one 32-byte big-endian block.
func (MiMC) Hash(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) == 0 {
		return nil, errors.New("mimc: no inputs")
	}
	h := mimc.NewMiMC()
	for i, in := range inputs {
		if !field.InField(in) {
			return nil, errors.Wrapf(field.ErrNotInField, "mimc input %d", i)
		}
		var e fr.Element
		e.SetBigInt(in)
		b := e.Bytes()
		if _, err := h.Write(b[:]); err != nil {
			return nil, errors.Wrap(err, "mimc")
		}
	}
	return new(big.Int).SetBytes(h.Sum(nil)), nil
}

// HasherByName returns the hasher registered under name.
func HasherByName(name string) (Hasher, error) {
	switch name {
	case PoseidonHasherName, "":
		return Poseidon{}, nil
	case MiMCHasherName:
		return MiMC{}, nil
	default:
		return nil, errors.Errorf("hasher %q is not supported", name)
	}
}
