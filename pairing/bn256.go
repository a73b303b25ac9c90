package pairing

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	bn256 "github.com/ethereum/go-ethereum/crypto/bn256/cloudflare"
	"github.com/iden3/go-anonymous-data/field"
	"github.com/iden3/go-anonymous-data/types"
	"github.com/pkg/errors"
)

type bn256Engine struct{}

// BN256 returns the engine backed by go-ethereum's bn256 implementation, the
// same code that serves the ecPairing precompile.
func BN256() Engine {
	return bn256Engine{}
}

func (bn256Engine) Name() string {
	return BN256EngineName
}

type bn256Key struct {
	alpha  *bn256.G1
	beta   *bn256.G2
	gamma  *bn256.G2
	delta  *bn256.G2
	ic     []*bn256.G1
	nAlpha *bn256.G1
}

func (bn256Engine) Prepare(vk *types.VerifyingKey) (PreparedKey, error) {
	if err := checkKey(vk); err != nil {
		return nil, err
	}
	var (
		k   bn256Key
		err error
	)
	if k.alpha, err = g1FromPoint(vk.Alpha); err != nil {
		return nil, errors.WithMessage(err, "alpha")
	}
	if k.beta, err = g2FromPoint(vk.Beta); err != nil {
		return nil, errors.WithMessage(err, "beta")
	}
	if k.gamma, err = g2FromPoint(vk.Gamma); err != nil {
		return nil, errors.WithMessage(err, "gamma")
	}
	if k.delta, err = g2FromPoint(vk.Delta); err != nil {
		return nil, errors.WithMessage(err, "delta")
	}
	for i, p := range vk.IC {
		ic, err := g1FromPoint(p)
		if err != nil {
			return nil, errors.WithMessagef(err, "IC[%d]", i)
		}
		k.ic = append(k.ic, ic)
	}
	k.nAlpha = new(bn256.G1).Neg(k.alpha)
	return &k, nil
}

func (k *bn256Key) NPublic() int {
	return len(k.ic) - 1
}

func (k *bn256Key) Verify(proof *types.Proof, inputs []*big.Int) (bool, error) {
	if err := checkInputs(k.NPublic(), inputs); err != nil {
		return false, err
	}
	a, err := g1FromPoint(proof.A)
	if err != nil {
		return false, errors.WithMessage(err, "A")
	}
	b, err := g2FromPoint(proof.B)
	if err != nil {
		return false, errors.WithMessage(err, "B")
	}
	c, err := g1FromPoint(proof.C)
	if err != nil {
		return false, errors.WithMessage(err, "C")
	}

	// vkX = IC0 + sum(in_i * IC_{i+1})
	vkX := new(bn256.G1).Set(k.ic[0])
	for i, in := range inputs {
		term := new(bn256.G1).ScalarMult(k.ic[i+1], in)
		vkX.Add(vkX, term)
	}

	return bn256.PairingCheck(
		[]*bn256.G1{a, k.nAlpha, new(bn256.G1).Neg(vkX), new(bn256.G1).Neg(c)},
		[]*bn256.G2{b, k.beta, k.gamma, k.delta},
	), nil
}

func g1FromPoint(p types.G1Point) (*bn256.G1, error) {
	buf := make([]byte, 0, 64)
	for _, c := range p {
		b, err := coordinateBytes(c)
		if err != nil {
			return nil, err
		}
		buf = append(buf, b...)
	}
	g := new(bn256.G1)
	if _, err := g.Unmarshal(buf); err != nil {
		return nil, errors.Wrap(types.ErrMalformedProof, err.Error())
	}
	return g, nil
}

// g2FromPoint encodes x.c1 || x.c0 || y.c1 || y.c0, which is both the
// EIP-197 calldata layout and what bn256.G2.Unmarshal reads.
func g2FromPoint(p types.G2Point) (*bn256.G2, error) {
	buf := make([]byte, 0, 128)
	for _, pair := range p {
		for _, c := range pair {
			b, err := coordinateBytes(c)
			if err != nil {
				return nil, err
			}
			buf = append(buf, b...)
		}
	}
	g := new(bn256.G2)
	if _, err := g.Unmarshal(buf); err != nil {
		return nil, errors.Wrap(types.ErrMalformedProof, err.Error())
	}
	return g, nil
}

func coordinateBytes(c *big.Int) ([]byte, error) {
	if c == nil {
		return nil, errors.Wrap(types.ErrMalformedProof, "missing coordinate")
	}
	if !field.InBaseField(c) {
		return nil, errors.Wrap(types.ErrMalformedProof, "coordinate is not in the base field")
	}
	return common.LeftPadBytes(c.Bytes(), 32), nil
}
