package proofs

import (
	"encoding/json"
	"testing"

	"github.com/iden3/go-anonymous-data/field"
	"github.com/iden3/go-anonymous-data/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const proofDoc = `{
  "pi_a": ["1", "2", "1"],
  "pi_b": [["11", "12"], ["21", "22"], ["1", "0"]],
  "pi_c": ["3", "4", "1"],
  "protocol": "groth16"
}`

func TestReverseG2(t *testing.T) {
	got, err := ReverseG2([][]string{{"11", "12"}, {"21", "22"}, {"1", "0"}})
	require.NoError(t, err)
	assert.Equal(t, [2][2]string{{"12", "11"}, {"22", "21"}}, got)

	got, err = ReverseG2([][]string{{"a", "b"}, {"c", "d"}})
	require.NoError(t, err)
	assert.Equal(t, [2][2]string{{"b", "a"}, {"d", "c"}}, got)
}

func TestReverseG2_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   [][]string
	}{
		{"empty", nil},
		{"one coordinate", [][]string{{"1", "2"}}},
		{"short pair", [][]string{{"1"}, {"2", "3"}}},
		{"bad projective", [][]string{{"1", "2"}, {"3", "4"}, {"0", "1"}}},
		{"four coordinates", [][]string{{"1", "2"}, {"3", "4"}, {"1", "0"}, {"1", "0"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReverseG2(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrMalformedProof))
		})
	}
}

func TestToCalldata(t *testing.T) {
	p, err := ParseProof([]byte(proofDoc))
	require.NoError(t, err)

	cd, err := ToCalldata(p)
	require.NoError(t, err)
	assert.Equal(t, "1", cd.A[0].String())
	assert.Equal(t, "2", cd.A[1].String())
	assert.Equal(t, "12", cd.B[0][0].String())
	assert.Equal(t, "11", cd.B[0][1].String())
	assert.Equal(t, "22", cd.B[1][0].String())
	assert.Equal(t, "21", cd.B[1][1].String())
	assert.Equal(t, "3", cd.C[0].String())
	assert.Equal(t, "4", cd.C[1].String())

	back := FromCalldata(cd)
	assert.Equal(t, p.A, back.A)
	assert.Equal(t, p.B, back.B)
	assert.Equal(t, p.C, back.C)
}

func TestToCalldata_CoordinateOutOfRange(t *testing.T) {
	p, err := ParseProof([]byte(proofDoc))
	require.NoError(t, err)
	p.B[1][0] = field.Q.String()

	_, err = ToCalldata(p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrMalformedProof))
}

func TestParseProof_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"missing pi_b", `{"pi_a":["1","2"],"pi_c":["3","4"]}`},
		{"short pi_a", `{"pi_a":["1"],"pi_b":[["1","2"],["3","4"]],"pi_c":["3","4"]}`},
		{"unnormalized pi_c", `{"pi_a":["1","2"],"pi_b":[["1","2"],["3","4"]],"pi_c":["3","4","2"]}`},
		{"plonk", `{"pi_a":["1","2"],"pi_b":[["1","2"],["3","4"]],"pi_c":["3","4"],"protocol":"plonk"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProof([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrMalformedProof))
		})
	}
}

func TestParsePublicSignals(t *testing.T) {
	in, err := ParsePublicSignals([]byte(`["7", "0x10"]`))
	require.NoError(t, err)
	require.Len(t, in, 2)
	assert.Equal(t, "7", in[0].String())
	assert.Equal(t, "16", in[1].String())

	_, err = ParsePublicSignals([]byte(`["` + field.R.String() + `"]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrMalformedProof))

	_, err = ParsePublicSignals([]byte(`[1]`))
	require.Error(t, err)
}

func TestParseZKProof(t *testing.T) {
	zkp, err := ParseZKProof([]byte(proofDoc), []byte(`["5"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, zkp.PubSignals)
	assert.Equal(t, "groth16", zkp.Proof.Protocol)
}

func TestVerificationKey_RoundTrip(t *testing.T) {
	doc := types.VerificationKeyJSON{
		Protocol: "groth16",
		Curve:    "bn128",
		NPublic:  1,
		Alpha:    []string{"1", "2", "1"},
		Beta:     [][]string{{"3", "4"}, {"5", "6"}, {"1", "0"}},
		Gamma:    [][]string{{"7", "8"}, {"9", "10"}, {"1", "0"}},
		Delta:    [][]string{{"11", "12"}, {"13", "14"}, {"1", "0"}},
		IC:       [][]string{{"15", "16", "1"}, {"17", "18", "1"}},
	}
	b, err := json.Marshal(doc)
	require.NoError(t, err)

	vk, err := ParseVerificationKey(b)
	require.NoError(t, err)
	assert.Equal(t, 1, vk.NPublic())
	// G2 points are stored imaginary part first.
	assert.Equal(t, "4", vk.Beta[0][0].String())
	assert.Equal(t, "3", vk.Beta[0][1].String())

	assert.Equal(t, &doc, VerificationKeyToJSON(vk))
}

func TestParseVerificationKey_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `[]`},
		{"plonk", `{"protocol":"plonk","IC":[["1","2"]]}`},
		{"bls", `{"protocol":"groth16","curve":"bls12381","IC":[["1","2"]]}`},
		{"no IC", `{"protocol":"groth16"}`},
		{"nPublic mismatch", `{"nPublic":2,"vk_alpha_1":["1","2"],"vk_beta_2":[["1","2"],["3","4"]],"vk_gamma_2":[["1","2"],["3","4"]],"vk_delta_2":[["1","2"],["3","4"]],"IC":[["1","2"]]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVerificationKey([]byte(tt.doc))
			require.Error(t, err)
		})
	}
}
