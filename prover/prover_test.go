package prover

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/frontend"
	"github.com/iden3/go-anonymous-data/commitment"
	rapidsnark "github.com/iden3/go-rapidsnark/verifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vkBytes(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestSimulator_ProofsVerify(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		s, err := NewSimulator(n)
		require.NoError(t, err)
		vk := vkBytes(t, s.VerificationKeyJSON())

		signals := make([]*big.Int, n)
		for i := range signals {
			signals[i] = big.NewInt(int64(1000 + i))
		}
		zkp, err := s.Prove(signals)
		require.NoError(t, err)
		assert.Len(t, zkp.PubSignals, n)
		require.NoError(t, rapidsnark.VerifyGroth16(*zkp, vk))

		// same proof, different signals
		zkp.PubSignals[0] = "1"
		require.Error(t, rapidsnark.VerifyGroth16(*zkp, vk))
	}
}

func TestSimulator_InvalidSignals(t *testing.T) {
	s, err := NewSimulator(1)
	require.NoError(t, err)

	_, err = s.Prove(nil)
	require.Error(t, err)

	_, err = s.Prove([]*big.Int{big.NewInt(-1)})
	require.Error(t, err)

	_, err = NewSimulator(-1)
	require.Error(t, err)
}

func TestKnowledgeCircuit_Prove(t *testing.T) {
	keys, err := Setup()
	require.NoError(t, err)

	d, err := commitment.NewGenerator(commitment.WithHasher(commitment.MiMC{})).Derive([]byte("my data"))
	require.NoError(t, err)

	zkp, err := keys.ProveData([]byte("my data"))
	require.NoError(t, err)
	require.Len(t, zkp.PubSignals, 1)
	assert.Equal(t, d.Commitment.String(), zkp.PubSignals[0])

	vkJSON, err := keys.VerificationKeyJSON()
	require.NoError(t, err)
	assert.Equal(t, 1, vkJSON.NPublic)
	require.NoError(t, rapidsnark.VerifyGroth16(*zkp, vkBytes(t, vkJSON)))

	t.Run("wrong preimage is not provable", func(t *testing.T) {
		_, err := groth16.Prove(keys.CCS, keys.PK, mustWitness(t, d.Commitment, big.NewInt(1)))
		require.Error(t, err)
	})
}

func mustWitness(t *testing.T, c, preimage *big.Int) witness.Witness {
	t.Helper()
	w, err := frontend.NewWitness(&KnowledgeCircuit{Commitment: c, Preimage: preimage}, ecc.BN254.ScalarField())
	require.NoError(t, err)
	return w
}

func TestKeys_SaveLoad(t *testing.T) {
	keys, err := Setup()
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, keys.Save(dir))
	for _, name := range []string{CircuitFile, ProvingKeyFile, VerifyingKeyFile, VerificationKeyJSON} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}

	loaded, err := LoadKeys(dir)
	require.NoError(t, err)

	zkp, err := loaded.Prove(big.NewInt(42))
	require.NoError(t, err)

	vk, err := os.ReadFile(filepath.Join(dir, VerificationKeyJSON))
	require.NoError(t, err)
	require.NoError(t, rapidsnark.VerifyGroth16(*zkp, vk))

	_, err = LoadKeys(t.TempDir())
	require.Error(t, err)
}
