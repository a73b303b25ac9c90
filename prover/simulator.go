package prover

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/iden3/go-anonymous-data/constants"
	"github.com/iden3/go-anonymous-data/field"
	"github.com/iden3/go-anonymous-data/types"
	"github.com/pkg/errors"
)

// Simulator is a Groth16 setup that keeps its toxic waste. Knowing alpha,
// beta, gamma and delta it can produce a valid proof for any public inputs,
// which makes it a fast fixture generator for circuits of any size. Never use
// it outside tests and local tooling.
type Simulator struct {
	alpha, beta, gamma, delta fr.Element
	ic                        []fr.Element
	vk                        *types.VerificationKeyJSON
}

// NewSimulator samples a random trapdoor for nPublic public inputs.
func NewSimulator(nPublic int) (*Simulator, error) {
	if nPublic < 0 {
		return nil, errors.Errorf("invalid number of public inputs %d", nPublic)
	}
	s := &Simulator{ic: make([]fr.Element, nPublic+1)}
	for _, e := range []*fr.Element{&s.alpha, &s.beta, &s.gamma, &s.delta} {
		if err := nonZero(e); err != nil {
			return nil, err
		}
	}
	for i := range s.ic {
		if _, err := s.ic[i].SetRandom(); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	s.vk = &types.VerificationKeyJSON{
		Protocol: constants.Groth16Protocol,
		Curve:    constants.CurveBN128,
		NPublic:  nPublic,
		Alpha:    g1Strings(g1Mul(&s.alpha)),
		Beta:     g2Strings(g2Mul(&s.beta)),
		Gamma:    g2Strings(g2Mul(&s.gamma)),
		Delta:    g2Strings(g2Mul(&s.delta)),
	}
	for i := range s.ic {
		s.vk.IC = append(s.vk.IC, g1Strings(g1Mul(&s.ic[i])))
	}
	return s, nil
}

// VerificationKeyJSON returns the snarkjs verification key of the setup.
func (s *Simulator) VerificationKeyJSON() *types.VerificationKeyJSON {
	return s.vk
}

// Prove returns a valid snarkjs proof for publicSignals.
//
// With a = b chosen at random, C is solved from
// a*b = alpha*beta + x*gamma + c*delta, x being the IC combination.
func (s *Simulator) Prove(publicSignals []*big.Int) (*types.ZKProof, error) {
	if len(publicSignals) != len(s.ic)-1 {
		return nil, errors.Errorf("expected %d public signals, got %d", len(s.ic)-1, len(publicSignals))
	}
	x := s.ic[0]
	for i, in := range publicSignals {
		if !field.InField(in) {
			return nil, errors.Wrapf(field.ErrNotInField, "public signal %d", i)
		}
		var e, t fr.Element
		e.SetBigInt(in)
		t.Mul(&e, &s.ic[i+1])
		x.Add(&x, &t)
	}

	var a, b fr.Element
	if err := nonZero(&a); err != nil {
		return nil, err
	}
	if err := nonZero(&b); err != nil {
		return nil, err
	}
	var c, ab, alphaBeta, xGamma, deltaInv fr.Element
	ab.Mul(&a, &b)
	alphaBeta.Mul(&s.alpha, &s.beta)
	xGamma.Mul(&x, &s.gamma)
	deltaInv.Inverse(&s.delta)
	c.Sub(&ab, &alphaBeta).Sub(&c, &xGamma).Mul(&c, &deltaInv)

	return &types.ZKProof{
		Proof: &types.ProofData{
			A:        g1Strings(g1Mul(&a)),
			B:        g2Strings(g2Mul(&b)),
			C:        g1Strings(g1Mul(&c)),
			Protocol: constants.Groth16Protocol,
		},
		PubSignals: field.Strings(publicSignals),
	}, nil
}

func nonZero(e *fr.Element) error {
	for e.IsZero() {
		if _, err := e.SetRandom(); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func g1Mul(s *fr.Element) bn254.G1Affine {
	_, _, g1, _ := bn254.Generators()
	var p bn254.G1Affine
	p.ScalarMultiplication(&g1, s.BigInt(new(big.Int)))
	return p
}

func g2Mul(s *fr.Element) bn254.G2Affine {
	_, _, _, g2 := bn254.Generators()
	var p bn254.G2Affine
	p.ScalarMultiplication(&g2, s.BigInt(new(big.Int)))
	return p
}

// g1Strings renders a point the way snarkjs does: projective with z = 1.
func g1Strings(p bn254.G1Affine) []string {
	return []string{
		p.X.BigInt(new(big.Int)).String(),
		p.Y.BigInt(new(big.Int)).String(),
		"1",
	}
}

// g2Strings renders a twist point in snarkjs order, real coefficient first.
func g2Strings(p bn254.G2Affine) [][]string {
	return [][]string{
		{p.X.A0.BigInt(new(big.Int)).String(), p.X.A1.BigInt(new(big.Int)).String()},
		{p.Y.A0.BigInt(new(big.Int)).String(), p.Y.A1.BigInt(new(big.Int)).String()},
		{"1", "0"},
	}
}
