// Package pairing evaluates the Groth16 verification equation
//
//	e(A, B) * e(-alpha, beta) * e(-vkX, gamma) * e(-C, delta) == 1
//
// over BN254, where vkX = IC[0] + sum(inputs[i] * IC[i+1]). Points are taken
// in verifier (EIP-197) order, see types.G2Point.
package pairing

import (
	"math/big"

	"github.com/iden3/go-anonymous-data/field"
	"github.com/iden3/go-anonymous-data/types"
	"github.com/pkg/errors"
)

// Engine names.
const (
	BN256EngineName = "bn256"
	BN254EngineName = "bn254"
)

// Engine prepares verifying keys for a pairing backend.
type Engine interface {
	Name() string
	Prepare(vk *types.VerifyingKey) (PreparedKey, error)
}

// PreparedKey is a verifying key decoded into backend points.
//
// Verify returns (false, nil) when the equation does not hold and an error
// wrapping types.ErrMalformedProof when the proof or inputs can not be
// decoded.
type PreparedKey interface {
	NPublic() int
	Verify(proof *types.Proof, inputs []*big.Int) (bool, error)
}

// EngineByName returns the engine registered under name. An empty name
// selects the bn256 engine.
func EngineByName(name string) (Engine, error) {
	switch name {
	case "", BN256EngineName:
		return BN256(), nil
	case BN254EngineName:
		return BN254(), nil
	default:
		return nil, errors.Errorf("unknown pairing engine %q", name)
	}
}

func checkInputs(nPublic int, inputs []*big.Int) error {
	if len(inputs) != nPublic {
		return errors.Wrapf(types.ErrMalformedProof,
			"expected %d public inputs, got %d", nPublic, len(inputs))
	}
	for i, in := range inputs {
		if !field.InField(in) {
			return errors.Wrapf(types.ErrMalformedProof, "public input %d is not in the field", i)
		}
	}
	return nil
}

func checkKey(vk *types.VerifyingKey) error {
	if vk == nil || len(vk.IC) == 0 {
		return errors.New("verifying key has no IC points")
	}
	return nil
}
