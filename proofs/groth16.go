package proofs

import (
	"encoding/json"
	"math/big"

	"github.com/iden3/go-anonymous-data/constants"
	"github.com/iden3/go-anonymous-data/field"
	"github.com/iden3/go-anonymous-data/types"
	"github.com/pkg/errors"
)

// ParseProof decodes a snarkjs proof.json document and checks its shape.
func ParseProof(b []byte) (*types.ProofData, error) {
	var p types.ProofData
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, errors.Wrap(types.ErrMalformedProof, err.Error())
	}
	if err := CheckProofData(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ParsePublicSignals decodes a snarkjs public.json document.
func ParsePublicSignals(b []byte) ([]*big.Int, error) {
	var signals []string
	if err := json.Unmarshal(b, &signals); err != nil {
		return nil, errors.Wrap(types.ErrMalformedProof, err.Error())
	}
	return PublicSignals(signals)
}

// PublicSignals converts decimal public signals into field elements.
func PublicSignals(signals []string) ([]*big.Int, error) {
	out, err := field.ParseElements(signals)
	if err != nil {
		return nil, errors.Wrap(types.ErrMalformedProof, err.Error())
	}
	return out, nil
}

// ParseZKProof decodes the pair of documents the proving toolchain writes.
func ParseZKProof(proofJSON, publicJSON []byte) (*types.ZKProof, error) {
	p, err := ParseProof(proofJSON)
	if err != nil {
		return nil, err
	}
	var signals []string
	if err := json.Unmarshal(publicJSON, &signals); err != nil {
		return nil, errors.Wrap(types.ErrMalformedProof, err.Error())
	}
	return &types.ZKProof{Proof: p, PubSignals: signals}, nil
}

// CheckProofData validates the shape of a snarkjs proof: G1 points have two
// affine coordinates plus an optional projective "1", G2 points have two Fq2
// pairs plus an optional ["1","0"].
func CheckProofData(p *types.ProofData) error {
	if p == nil {
		return errors.Wrap(types.ErrMalformedProof, "proof is empty")
	}
	if p.Protocol != "" && p.Protocol != constants.Groth16Protocol {
		return errors.Wrapf(types.ErrMalformedProof, "%s protocol is not supported", p.Protocol)
	}
	if err := checkG1(p.A); err != nil {
		return errors.WithMessage(err, "pi_a")
	}
	if err := checkG2(p.B); err != nil {
		return errors.WithMessage(err, "pi_b")
	}
	if err := checkG1(p.C); err != nil {
		return errors.WithMessage(err, "pi_c")
	}
	return nil
}

// ParseVerificationKey decodes a snarkjs verification_key.json document into
// a verifier-ordered key.
func ParseVerificationKey(b []byte) (*types.VerifyingKey, error) {
	var vkStr types.VerificationKeyJSON
	if err := json.Unmarshal(b, &vkStr); err != nil {
		return nil, errors.Wrap(err, "verification key")
	}
	return VerifyingKeyFromJSON(&vkStr)
}

// VerifyingKeyFromJSON converts snarkjs key material to verifier order. The
// G2 points go through the same ReverseG2 transform as a proof's pi_b.
func VerifyingKeyFromJSON(vkStr *types.VerificationKeyJSON) (*types.VerifyingKey, error) {
	if vkStr.Protocol != "" && vkStr.Protocol != constants.Groth16Protocol {
		return nil, errors.Errorf("%s protocol is not supported", vkStr.Protocol)
	}
	if vkStr.Curve != "" && vkStr.Curve != constants.CurveBN128 {
		return nil, errors.Errorf("%s curve is not supported", vkStr.Curve)
	}
	if len(vkStr.IC) == 0 {
		return nil, errors.New("verification key has no IC points")
	}
	if vkStr.NPublic != 0 && vkStr.NPublic+1 != len(vkStr.IC) {
		return nil, errors.Errorf("nPublic+1 != len(IC): %d+1 != %d", vkStr.NPublic, len(vkStr.IC))
	}

	var (
		vk  types.VerifyingKey
		err error
	)
	if vk.Alpha, err = toG1(vkStr.Alpha); err != nil {
		return nil, errors.WithMessage(err, "vk_alpha_1")
	}
	if vk.Beta, err = toG2(vkStr.Beta); err != nil {
		return nil, errors.WithMessage(err, "vk_beta_2")
	}
	if vk.Gamma, err = toG2(vkStr.Gamma); err != nil {
		return nil, errors.WithMessage(err, "vk_gamma_2")
	}
	if vk.Delta, err = toG2(vkStr.Delta); err != nil {
		return nil, errors.WithMessage(err, "vk_delta_2")
	}
	for i := range vkStr.IC {
		p, err := toG1(vkStr.IC[i])
		if err != nil {
			return nil, errors.WithMessagef(err, "IC[%d]", i)
		}
		vk.IC = append(vk.IC, p)
	}
	return &vk, nil
}

// VerificationKeyToJSON renders a verifier-ordered key as snarkjs JSON.
func VerificationKeyToJSON(vk *types.VerifyingKey) *types.VerificationKeyJSON {
	out := &types.VerificationKeyJSON{
		Protocol: constants.Groth16Protocol,
		Curve:    constants.CurveBN128,
		NPublic:  vk.NPublic(),
		Alpha:    fromG1(vk.Alpha),
		Beta:     fromG2(vk.Beta),
		Gamma:    fromG2(vk.Gamma),
		Delta:    fromG2(vk.Delta),
	}
	for _, p := range vk.IC {
		out.IC = append(out.IC, fromG1(p))
	}
	return out
}

func checkG1(p []string) error {
	switch len(p) {
	case 2:
	case 3:
		if p[2] != "1" {
			return errors.Wrap(types.ErrMalformedProof, "projective point is not normalized")
		}
	default:
		return errors.Wrapf(types.ErrMalformedProof, "G1 point has %d coordinates", len(p))
	}
	return nil
}

func checkG2(p [][]string) error {
	switch len(p) {
	case 2:
	case 3:
		if len(p[2]) != 2 || p[2][0] != "1" || p[2][1] != "0" {
			return errors.Wrap(types.ErrMalformedProof, "projective point is not normalized")
		}
	default:
		return errors.Wrapf(types.ErrMalformedProof, "G2 point has %d coordinates", len(p))
	}
	for i := 0; i < 2; i++ {
		if len(p[i]) != 2 {
			return errors.Wrapf(types.ErrMalformedProof, "G2 coordinate %d has %d components", i, len(p[i]))
		}
	}
	return nil
}

func toG1(p []string) (types.G1Point, error) {
	var out types.G1Point
	if err := checkG1(p); err != nil {
		return out, err
	}
	for i := 0; i < 2; i++ {
		n, err := coordinate(p[i])
		if err != nil {
			return out, err
		}
		out[i] = n
	}
	return out, nil
}

func toG2(p [][]string) (types.G2Point, error) {
	var out types.G2Point
	reversed, err := ReverseG2(p)
	if err != nil {
		return out, err
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			n, err := coordinate(reversed[i][j])
			if err != nil {
				return out, err
			}
			out[i][j] = n
		}
	}
	return out, nil
}

func fromG1(p types.G1Point) []string {
	return []string{p[0].String(), p[1].String(), "1"}
}

func fromG2(p types.G2Point) [][]string {
	// undo ReverseG2: [c1, c0] -> [c0, c1]
	return [][]string{
		{p[0][1].String(), p[0][0].String()},
		{p[1][1].String(), p[1][0].String()},
		{"1", "0"},
	}
}

// coordinate parses a base field coordinate.
func coordinate(s string) (*big.Int, error) {
	n, err := field.ParseInt(s)
	if err != nil {
		return nil, errors.Wrap(types.ErrMalformedProof, err.Error())
	}
	if !field.InBaseField(n) {
		return nil, errors.Wrapf(types.ErrMalformedProof, "coordinate %s is not in the base field", s)
	}
	return n, nil
}
