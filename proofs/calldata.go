package proofs

import (
	"github.com/iden3/go-anonymous-data/types"
	"github.com/pkg/errors"
)

// ReverseG2 swaps the two Fq2 components of each coordinate of a snarkjs G2
// point.
//
// snarkjs writes an Fq2 element c0 + c1*u as [c0, c1]. The verification
// equation is evaluated with the EVM pairing convention (EIP-197), which
// encodes the same element as [c1, c0]. The swap is applied exactly once, to
// pi_b of every proof and to the G2 points of the verifying key. Feeding an
// unswapped point to the verifier yields a different, almost always invalid,
// point and the proof is rejected.
//
// Only the two affine coordinates are returned; a trailing projective
// ["1","0"] entry is accepted and dropped.
func ReverseG2(b [][]string) ([2][2]string, error) {
	var out [2][2]string
	if err := checkG2(b); err != nil {
		return out, err
	}
	out[0] = [2]string{b[0][1], b[0][0]}
	out[1] = [2]string{b[1][1], b[1][0]}
	return out, nil
}

// ToCalldata converts a snarkjs proof into the verifier order: pi_a and pi_c
// keep their affine coordinates, pi_b goes through ReverseG2. Every
// coordinate must be below the base field modulus.
func ToCalldata(p *types.ProofData) (*types.Proof, error) {
	if err := CheckProofData(p); err != nil {
		return nil, err
	}
	var (
		out types.Proof
		err error
	)
	if out.A, err = toG1(p.A); err != nil {
		return nil, errors.WithMessage(err, "pi_a")
	}
	if out.B, err = toG2(p.B); err != nil {
		return nil, errors.WithMessage(err, "pi_b")
	}
	if out.C, err = toG1(p.C); err != nil {
		return nil, errors.WithMessage(err, "pi_c")
	}
	return &out, nil
}

// FromCalldata converts a verifier-ordered proof back to a snarkjs document.
func FromCalldata(p *types.Proof) *types.ProofData {
	return &types.ProofData{
		A:        fromG1(p.A),
		B:        fromG2(p.B),
		C:        fromG1(p.C),
		Protocol: "groth16",
	}
}
