package pairing

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/iden3/go-anonymous-data/field"
	"github.com/iden3/go-anonymous-data/types"
	"github.com/pkg/errors"
)

type bn254Engine struct{}

// BN254 returns the engine backed by gnark-crypto. Unlike BN256 it also
// rejects G2 points outside the prime order subgroup.
func BN254() Engine {
	return bn254Engine{}
}

func (bn254Engine) Name() string {
	return BN254EngineName
}

type bn254Key struct {
	nAlpha bn254.G1Affine
	beta   bn254.G2Affine
	gamma  bn254.G2Affine
	delta  bn254.G2Affine
	ic     []bn254.G1Jac
}

func (bn254Engine) Prepare(vk *types.VerifyingKey) (PreparedKey, error) {
	if err := checkKey(vk); err != nil {
		return nil, err
	}
	var k bn254Key
	alpha, err := g1Affine(vk.Alpha)
	if err != nil {
		return nil, errors.WithMessage(err, "alpha")
	}
	k.nAlpha.Neg(&alpha)
	if k.beta, err = g2Affine(vk.Beta); err != nil {
		return nil, errors.WithMessage(err, "beta")
	}
	if k.gamma, err = g2Affine(vk.Gamma); err != nil {
		return nil, errors.WithMessage(err, "gamma")
	}
	if k.delta, err = g2Affine(vk.Delta); err != nil {
		return nil, errors.WithMessage(err, "delta")
	}
	k.ic = make([]bn254.G1Jac, len(vk.IC))
	for i, p := range vk.IC {
		aff, err := g1Affine(p)
		if err != nil {
			return nil, errors.WithMessagef(err, "IC[%d]", i)
		}
		k.ic[i].FromAffine(&aff)
	}
	return &k, nil
}

func (k *bn254Key) NPublic() int {
	return len(k.ic) - 1
}

func (k *bn254Key) Verify(proof *types.Proof, inputs []*big.Int) (bool, error) {
	if err := checkInputs(k.NPublic(), inputs); err != nil {
		return false, err
	}
	a, err := g1Affine(proof.A)
	if err != nil {
		return false, errors.WithMessage(err, "A")
	}
	b, err := g2Affine(proof.B)
	if err != nil {
		return false, errors.WithMessage(err, "B")
	}
	c, err := g1Affine(proof.C)
	if err != nil {
		return false, errors.WithMessage(err, "C")
	}

	var acc, term bn254.G1Jac
	acc.Set(&k.ic[0])
	for i, in := range inputs {
		term.ScalarMultiplication(&k.ic[i+1], in)
		acc.AddAssign(&term)
	}
	var vkX, nVkX, nC bn254.G1Affine
	vkX.FromJacobian(&acc)
	nVkX.Neg(&vkX)
	nC.Neg(&c)

	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{a, k.nAlpha, nVkX, nC},
		[]bn254.G2Affine{b, k.beta, k.gamma, k.delta},
	)
	if err != nil {
		return false, errors.Wrap(types.ErrMalformedProof, err.Error())
	}
	return ok, nil
}

func g1Affine(p types.G1Point) (bn254.G1Affine, error) {
	var out bn254.G1Affine
	if err := setFp(&out.X, p[0]); err != nil {
		return out, err
	}
	if err := setFp(&out.Y, p[1]); err != nil {
		return out, err
	}
	if !out.IsOnCurve() {
		return out, errors.Wrap(types.ErrMalformedProof, "G1 point is not on the curve")
	}
	return out, nil
}

// g2Affine reads [[x.c1, x.c0], [y.c1, y.c0]]. In gnark-crypto A0 is the
// real coefficient and A1 the imaginary one.
func g2Affine(p types.G2Point) (bn254.G2Affine, error) {
	var out bn254.G2Affine
	for _, set := range []struct {
		dst *fp.Element
		src *big.Int
	}{
		{&out.X.A1, p[0][0]},
		{&out.X.A0, p[0][1]},
		{&out.Y.A1, p[1][0]},
		{&out.Y.A0, p[1][1]},
	} {
		if err := setFp(set.dst, set.src); err != nil {
			return out, err
		}
	}
	if !out.IsOnCurve() {
		return out, errors.Wrap(types.ErrMalformedProof, "G2 point is not on the curve")
	}
	if !out.IsInSubGroup() {
		return out, errors.Wrap(types.ErrMalformedProof, "G2 point is not in the subgroup")
	}
	return out, nil
}

func setFp(dst *fp.Element, c *big.Int) error {
	if c == nil {
		return errors.Wrap(types.ErrMalformedProof, "missing coordinate")
	}
	if !field.InBaseField(c) {
		return errors.Wrap(types.ErrMalformedProof, "coordinate is not in the base field")
	}
	dst.SetBigInt(c)
	return nil
}
