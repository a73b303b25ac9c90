// Package verifier checks Groth16 proofs against one fixed verifying key.
package verifier

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iden3/go-anonymous-data/pairing"
	"github.com/iden3/go-anonymous-data/proofs"
	"github.com/iden3/go-anonymous-data/types"
	"github.com/pkg/errors"
)

// ErrMalformedProof is returned for proofs and inputs that can not be decoded.
var ErrMalformedProof = types.ErrMalformedProof

// Verifier is bound to a single verifying key. It holds no mutable state and
// is safe for concurrent use.
type Verifier struct {
	engine pairing.Engine
	key    pairing.PreparedKey
	id     common.Hash
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithEngine selects the pairing backend, bn256 by default.
func WithEngine(e pairing.Engine) Option {
	return func(v *Verifier) {
		v.engine = e
	}
}

// New parses a snarkjs verification_key.json document.
func New(vkJSON []byte, opts ...Option) (*Verifier, error) {
	vk, err := proofs.ParseVerificationKey(vkJSON)
	if err != nil {
		return nil, err
	}
	return NewFromKey(vk, opts...)
}

// NewFromKey creates a verifier for a key already in verifier order.
func NewFromKey(vk *types.VerifyingKey, opts ...Option) (*Verifier, error) {
	if vk == nil {
		return nil, errors.New("verifying key is nil")
	}
	v := &Verifier{engine: pairing.BN256()}
	for _, opt := range opts {
		opt(v)
	}
	key, err := v.engine.Prepare(vk)
	if err != nil {
		return nil, errors.WithMessage(err, "invalid verifying key")
	}
	v.key = key
	v.id = keyID(vk)
	return v, nil
}

// Verify reports whether proof is valid for publicSignals. A proof that does
// not satisfy the pairing equation yields (false, nil); undecodable points,
// a wrong number of signals or signals outside the scalar field yield an
// error wrapping ErrMalformedProof.
func (v *Verifier) Verify(proof *types.Proof, publicSignals []*big.Int) (bool, error) {
	if proof == nil {
		return false, errors.Wrap(ErrMalformedProof, "proof is nil")
	}
	return v.key.Verify(proof, publicSignals)
}

// NPublic returns the number of public signals the key expects.
func (v *Verifier) NPublic() int {
	return v.key.NPublic()
}

// Address identifies the verifying key the way a deployed verifier contract
// would be referenced: the last 20 bytes of KeyID.
func (v *Verifier) Address() common.Address {
	return common.BytesToAddress(v.id[12:])
}

// KeyID is keccak256 over the 32-byte big-endian coordinates of alpha, beta,
// gamma, delta and every IC point, in that order.
func (v *Verifier) KeyID() common.Hash {
	return v.id
}

// Engine returns the name of the pairing backend.
func (v *Verifier) Engine() string {
	return v.engine.Name()
}

func keyID(vk *types.VerifyingKey) common.Hash {
	var buf []byte
	g1 := func(p types.G1Point) {
		for _, c := range p {
			buf = append(buf, common.LeftPadBytes(c.Bytes(), 32)...)
		}
	}
	g2 := func(p types.G2Point) {
		for _, pair := range p {
			for _, c := range pair {
				buf = append(buf, common.LeftPadBytes(c.Bytes(), 32)...)
			}
		}
	}
	g1(vk.Alpha)
	g2(vk.Beta)
	g2(vk.Gamma)
	g2(vk.Delta)
	for _, p := range vk.IC {
		g1(p)
	}
	return crypto.Keccak256Hash(buf)
}
