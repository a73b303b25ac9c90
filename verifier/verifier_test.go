package verifier

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iden3/go-anonymous-data/pairing"
	"github.com/iden3/go-anonymous-data/proofs"
	"github.com/iden3/go-anonymous-data/prover"
	"github.com/iden3/go-anonymous-data/types"
	rapidsnark "github.com/iden3/go-rapidsnark/verifier"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, nPublic int) (*prover.Simulator, []byte) {
	t.Helper()
	s, err := prover.NewSimulator(nPublic)
	require.NoError(t, err)
	vk, err := json.Marshal(s.VerificationKeyJSON())
	require.NoError(t, err)
	return s, vk
}

func calldata(t *testing.T, zkp *types.ZKProof) (*types.Proof, []*big.Int) {
	t.Helper()
	p, err := proofs.ToCalldata(zkp.Proof)
	require.NoError(t, err)
	in, err := proofs.PublicSignals(zkp.PubSignals)
	require.NoError(t, err)
	return p, in
}

func TestVerify_AgreesWithRapidsnark(t *testing.T) {
	s, vkJSON := setup(t, 2)
	for _, e := range []pairing.Engine{pairing.BN256(), pairing.BN254()} {
		t.Run(e.Name(), func(t *testing.T) {
			v, err := New(vkJSON, WithEngine(e))
			require.NoError(t, err)
			assert.Equal(t, e.Name(), v.Engine())
			assert.Equal(t, 2, v.NPublic())

			zkp, err := s.Prove([]*big.Int{big.NewInt(11), big.NewInt(12)})
			require.NoError(t, err)
			require.NoError(t, rapidsnark.VerifyGroth16(*zkp, vkJSON))

			p, in := calldata(t, zkp)
			ok, err := v.Verify(p, in)
			require.NoError(t, err)
			assert.True(t, ok)

			zkp.PubSignals[1] = "13"
			require.Error(t, rapidsnark.VerifyGroth16(*zkp, vkJSON))
			p, in = calldata(t, zkp)
			ok, err = v.Verify(p, in)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestVerify_ProofFromOtherKey(t *testing.T) {
	_, vkJSON := setup(t, 1)
	other, _ := setup(t, 1)

	v, err := New(vkJSON)
	require.NoError(t, err)
	zkp, err := other.Prove([]*big.Int{big.NewInt(5)})
	require.NoError(t, err)

	p, in := calldata(t, zkp)
	ok, err := v.Verify(p, in)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_Malformed(t *testing.T) {
	s, vkJSON := setup(t, 1)
	v, err := New(vkJSON)
	require.NoError(t, err)
	zkp, err := s.Prove([]*big.Int{big.NewInt(5)})
	require.NoError(t, err)
	p, in := calldata(t, zkp)

	_, err = v.Verify(nil, in)
	assert.True(t, errors.Is(err, ErrMalformedProof))

	_, err = v.Verify(p, nil)
	assert.True(t, errors.Is(err, ErrMalformedProof))

	_, err = v.Verify(p, []*big.Int{big.NewInt(5), big.NewInt(6)})
	assert.True(t, errors.Is(err, ErrMalformedProof))
}

// proofBytes lays out A, B and C as eight 32-byte big-endian words.
func proofBytes(p *types.Proof) []byte {
	words := []*big.Int{
		p.A[0], p.A[1],
		p.B[0][0], p.B[0][1], p.B[1][0], p.B[1][1],
		p.C[0], p.C[1],
	}
	var buf []byte
	for _, w := range words {
		buf = append(buf, common.LeftPadBytes(w.Bytes(), 32)...)
	}
	return buf
}

func proofFromBytes(buf []byte) *types.Proof {
	w := func(i int) *big.Int { return new(big.Int).SetBytes(buf[i*32 : (i+1)*32]) }
	return &types.Proof{
		A: types.G1Point{w(0), w(1)},
		B: types.G2Point{{w(2), w(3)}, {w(4), w(5)}},
		C: types.G1Point{w(6), w(7)},
	}
}

func TestVerify_SingleByteMutation(t *testing.T) {
	s, vkJSON := setup(t, 1)
	zkp, err := s.Prove([]*big.Int{big.NewInt(42)})
	require.NoError(t, err)
	p, in := calldata(t, zkp)
	orig := proofBytes(p)
	require.Len(t, orig, 256)

	for _, e := range []pairing.Engine{pairing.BN256(), pairing.BN254()} {
		t.Run(e.Name(), func(t *testing.T) {
			v, err := New(vkJSON, WithEngine(e))
			require.NoError(t, err)
			ok, err := v.Verify(proofFromBytes(orig), in)
			require.NoError(t, err)
			require.True(t, ok)

			for i := range orig {
				mutated := append([]byte{}, orig...)
				mutated[i] ^= 0xff
				ok, err := v.Verify(proofFromBytes(mutated), in)
				if err != nil {
					assert.True(t, errors.Is(err, ErrMalformedProof), "byte %d: %v", i, err)
				}
				assert.False(t, ok, "byte %d accepted", i)
			}
		})
	}
}

func TestNew_InvalidKey(t *testing.T) {
	_, err := New([]byte(`{}`))
	require.Error(t, err)

	_, err = New([]byte(`not json`))
	require.Error(t, err)

	_, err = NewFromKey(nil)
	require.Error(t, err)
}

func TestAddress(t *testing.T) {
	_, vkA := setup(t, 1)
	_, vkB := setup(t, 1)

	a1, err := New(vkA)
	require.NoError(t, err)
	a2, err := New(vkA, WithEngine(pairing.BN254()))
	require.NoError(t, err)
	b, err := New(vkB)
	require.NoError(t, err)

	assert.Equal(t, a1.Address(), a2.Address())
	assert.Equal(t, a1.KeyID(), a2.KeyID())
	assert.NotEqual(t, a1.Address(), b.Address())
	assert.NotEqual(t, common.Address{}, a1.Address())
	assert.Equal(t, a1.KeyID().Bytes()[12:], a1.Address().Bytes())
}
