package types

import (
	"encoding/json"
	"math/big"

	rapidsnark "github.com/iden3/go-rapidsnark/types"
	"github.com/pkg/errors"
)

// ProofData is the snarkjs proof document (pi_a, pi_b, pi_c) in the natural
// coordinate order produced by the proving toolchain.
type ProofData = rapidsnark.ProofData

// ZKProof is a snarkjs proof together with its public signals.
type ZKProof = rapidsnark.ZKProof

// ErrMalformedProof is returned when a proof or its public inputs are not
// well formed: wrong shape, coordinates out of range, or points off the curve.
var ErrMalformedProof = errors.New("malformed proof")

// G1Point is an affine point (x, y) on the BN254 curve.
type G1Point [2]*big.Int

// G2Point is an affine point on the BN254 twist, in the order the EVM pairing
// precompile and generated Solidity verifiers expect:
//
//	[[x.c1, x.c0], [y.c1, y.c0]]
//
// i.e. the imaginary coefficient of each Fq2 coordinate comes first. snarkjs
// writes the opposite order, see proofs.ReverseG2.
type G2Point [2][2]*big.Int

// Proof is a Groth16 proof in verifier (calldata) order.
type Proof struct {
	A G1Point
	B G2Point
	C G1Point
}

// VerifyingKey is a Groth16 verifying key in verifier (calldata) order.
// IC has one more element than the number of public inputs.
type VerifyingKey struct {
	Alpha G1Point
	Beta  G2Point
	Gamma G2Point
	Delta G2Point
	IC    []G1Point
}

// NPublic returns the number of public inputs the key was generated for.
func (vk *VerifyingKey) NPublic() int {
	if len(vk.IC) == 0 {
		return 0
	}
	return len(vk.IC) - 1
}

// VerificationKeyJSON is the snarkjs verification_key.json layout.
type VerificationKeyJSON struct {
	Protocol string     `json:"protocol"`
	Curve    string     `json:"curve"`
	NPublic  int        `json:"nPublic"`
	Alpha    []string   `json:"vk_alpha_1"`
	Beta     [][]string `json:"vk_beta_2"`
	Gamma    [][]string `json:"vk_gamma_2"`
	Delta    [][]string `json:"vk_delta_2"`
	IC       [][]string `json:"IC"`
}

// proofJSON is the JSON form of Proof, the same arrays snarkjs generatecall
// prints, with decimal string coordinates.
type proofJSON struct {
	A [2]string    `json:"a"`
	B [2][2]string `json:"b"`
	C [2]string    `json:"c"`
}

// MarshalJSON encodes the proof with decimal string coordinates.
func (p Proof) MarshalJSON() ([]byte, error) {
	var out proofJSON
	for i := 0; i < 2; i++ {
		out.A[i] = intString(p.A[i])
		out.C[i] = intString(p.C[i])
		for j := 0; j < 2; j++ {
			out.B[i][j] = intString(p.B[i][j])
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes decimal string coordinates. Range checks happen at
// verification time.
func (p *Proof) UnmarshalJSON(b []byte) error {
	var in proofJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	var err error
	for i := 0; i < 2; i++ {
		if p.A[i], err = parseCoordinate(in.A[i]); err != nil {
			return err
		}
		if p.C[i], err = parseCoordinate(in.C[i]); err != nil {
			return err
		}
		for j := 0; j < 2; j++ {
			if p.B[i][j], err = parseCoordinate(in.B[i][j]); err != nil {
				return err
			}
		}
	}
	return nil
}

func intString(x *big.Int) string {
	if x == nil {
		return "0"
	}
	return x.String()
}

func parseCoordinate(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Wrapf(ErrMalformedProof, "invalid coordinate %q", s)
	}
	return n, nil
}
