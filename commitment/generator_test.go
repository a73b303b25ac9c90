package commitment

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iden3/go-anonymous-data/field"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoseidonVectors(t *testing.T) {
	g := NewGenerator()

	h, err := g.HashElements(big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, "18586133768512220936620570745912940619677854269274689475585506675881198879027", h.String())

	h, err = g.HashElements(big.NewInt(1), big.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, "7853200120776062878684798364095072458815029376092732009249414926327459813530", h.String())
}

func TestPreHash(t *testing.T) {
	in, err := PreHash([]byte("my data"))
	require.NoError(t, err)

	digest := new(big.Int).SetBytes(crypto.Keccak256([]byte("my data")))
	assert.Equal(t, 0, new(big.Int).Mod(digest, field.R).Cmp(in))
	assert.True(t, field.InField(in))

	empty, err := PreHash(nil)
	require.NoError(t, err)
	assert.True(t, field.InField(empty))
}

func TestGenerate_MatchesCircomlibFlow(t *testing.T) {
	// keccak256("my data") -> BigInt -> poseidon([x]) with circomlibjs.
	d, err := NewGenerator().Derive([]byte("my data"))
	require.NoError(t, err)
	assert.Equal(t, "20473638419302760989449530946409886331433199567136042047720126855855942053167", d.Input.String())
	assert.Equal(t, "18109157522940068184081813510637317864605593149208014046583719981753370927176", d.Commitment.String())

	c, err := Generate([]byte("my data"))
	require.NoError(t, err)
	assert.Equal(t, d.Commitment, c)
}

func TestGenerate_Deterministic(t *testing.T) {
	for _, h := range []Hasher{Poseidon{}, MiMC{}} {
		t.Run(h.Name(), func(t *testing.T) {
			g := NewGenerator(WithHasher(h))
			first, err := g.Generate([]byte("my data"))
			require.NoError(t, err)
			for i := 0; i < 5; i++ {
				again, err := g.Generate([]byte("my data"))
				require.NoError(t, err)
				assert.Equal(t, first.Bytes(), again.Bytes())
			}
		})
	}
}

func TestGenerate_DistinctInputs(t *testing.T) {
	for _, h := range []Hasher{Poseidon{}, MiMC{}} {
		t.Run(h.Name(), func(t *testing.T) {
			g := NewGenerator(WithHasher(h))
			seen := map[string]string{}
			inputs := []string{"", "my data", "my data ", "My data", "my dat", "a", "b"}
			for i := 0; i < 32; i++ {
				inputs = append(inputs, fmt.Sprintf("input-%d", i))
			}
			for _, in := range inputs {
				c, err := g.Generate([]byte(in))
				require.NoError(t, err)
				prev, dup := seen[c.String()]
				require.False(t, dup, "collision between %q and %q", prev, in)
				seen[c.String()] = in
				assert.True(t, field.InField(c))
			}
		})
	}
}

func TestHasherDisagreement(t *testing.T) {
	p, err := NewGenerator(WithHasher(Poseidon{})).Generate([]byte("my data"))
	require.NoError(t, err)
	m, err := NewGenerator(WithHasher(MiMC{})).Generate([]byte("my data"))
	require.NoError(t, err)
	assert.NotEqual(t, p.String(), m.String())
}

func TestHashElements_InvalidInput(t *testing.T) {
	g := NewGenerator()

	_, err := g.HashElements(field.R)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	// circomlib Poseidon has no parameters for more than 16 inputs.
	tooMany := make([]*big.Int, 17)
	for i := range tooMany {
		tooMany[i] = big.NewInt(int64(i))
	}
	_, err = g.HashElements(tooMany...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = NewGenerator(WithHasher(MiMC{})).HashElements()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestHasherByName(t *testing.T) {
	h, err := HasherByName("poseidon")
	require.NoError(t, err)
	assert.Equal(t, PoseidonHasherName, h.Name())

	h, err = HasherByName("mimc")
	require.NoError(t, err)
	assert.Equal(t, MiMCHasherName, h.Name())

	_, err = HasherByName("sha256")
	require.Error(t, err)
}
