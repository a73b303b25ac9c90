package prover

import (
	"encoding/json"
	"io"
	"math/big"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/iden3/go-anonymous-data/commitment"
	"github.com/iden3/go-anonymous-data/constants"
	"github.com/iden3/go-anonymous-data/field"
	"github.com/iden3/go-anonymous-data/types"
	"github.com/pkg/errors"
)

// File names used by Save and LoadKeys.
const (
	CircuitFile         = "knowledge.ccs"
	ProvingKeyFile      = "knowledge.pk"
	VerifyingKeyFile    = "knowledge.vk"
	VerificationKeyJSON = "verification_key.json"
)

// Keys holds the compiled circuit and its Groth16 key pair.
type Keys struct {
	CCS constraint.ConstraintSystem
	PK  groth16.ProvingKey
	VK  groth16.VerifyingKey
}

// Setup compiles KnowledgeCircuit and runs a local (single party) Groth16
// setup.
func Setup() (*Keys, error) {
	var c KnowledgeCircuit
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &c)
	if err != nil {
		return nil, errors.Wrap(err, "circuit compilation failed")
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, errors.Wrap(err, "groth16 setup failed")
	}
	return &Keys{CCS: ccs, PK: pk, VK: vk}, nil
}

// Prove proves knowledge of preimage. The public signal is MiMC(preimage).
func (k *Keys) Prove(preimage *big.Int) (*types.ZKProof, error) {
	if !field.InField(preimage) {
		return nil, errors.Wrap(field.ErrNotInField, "preimage")
	}
	c, err := commitment.MiMC{}.Hash(preimage)
	if err != nil {
		return nil, err
	}
	w, err := frontend.NewWitness(&KnowledgeCircuit{
		Commitment: c,
		Preimage:   preimage,
	}, ecc.BN254.ScalarField())
	if err != nil {
		return nil, errors.Wrap(err, "witness creation failed")
	}
	proof, err := groth16.Prove(k.CCS, k.PK, w)
	if err != nil {
		return nil, errors.Wrap(err, "proof generation failed")
	}
	p, ok := proof.(*groth16bn254.Proof)
	if !ok {
		return nil, errors.Errorf("unexpected proof type %T", proof)
	}
	return &types.ZKProof{
		Proof: &types.ProofData{
			A:        g1Strings(p.Ar),
			B:        g2Strings(p.Bs),
			C:        g1Strings(p.Krs),
			Protocol: constants.Groth16Protocol,
		},
		PubSignals: []string{c.String()},
	}, nil
}

// ProveData pre-hashes data and proves knowledge of the pre-hash.
func (k *Keys) ProveData(data []byte) (*types.ZKProof, error) {
	d, err := commitment.NewGenerator(commitment.WithHasher(commitment.MiMC{})).Derive(data)
	if err != nil {
		return nil, err
	}
	return k.Prove(d.Input)
}

// VerificationKeyJSON exports the verifying key in snarkjs layout.
func (k *Keys) VerificationKeyJSON() (*types.VerificationKeyJSON, error) {
	vk, ok := k.VK.(*groth16bn254.VerifyingKey)
	if !ok {
		return nil, errors.Errorf("unexpected verifying key type %T", k.VK)
	}
	out := &types.VerificationKeyJSON{
		Protocol: constants.Groth16Protocol,
		Curve:    constants.CurveBN128,
		NPublic:  len(vk.G1.K) - 1,
		Alpha:    g1Strings(vk.G1.Alpha),
		Beta:     g2Strings(vk.G2.Beta),
		Gamma:    g2Strings(vk.G2.Gamma),
		Delta:    g2Strings(vk.G2.Delta),
	}
	for _, p := range vk.G1.K {
		out.IC = append(out.IC, g1Strings(p))
	}
	return out, nil
}

// Save writes the circuit, both keys and verification_key.json to dir.
func (k *Keys) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WithStack(err)
	}
	for name, w := range map[string]io.WriterTo{
		CircuitFile:      k.CCS,
		ProvingKeyFile:   k.PK,
		VerifyingKeyFile: k.VK,
	} {
		if err := writeTo(filepath.Join(dir, name), w); err != nil {
			return err
		}
	}
	vkJSON, err := k.VerificationKeyJSON()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(vkJSON, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(filepath.Join(dir, VerificationKeyJSON), b, 0o644))
}

// LoadKeys reads keys written by Save.
func LoadKeys(dir string) (*Keys, error) {
	k := &Keys{
		CCS: groth16.NewCS(ecc.BN254),
		PK:  groth16.NewProvingKey(ecc.BN254),
		VK:  groth16.NewVerifyingKey(ecc.BN254),
	}
	for name, r := range map[string]io.ReaderFrom{
		CircuitFile:      k.CCS,
		ProvingKeyFile:   k.PK,
		VerifyingKeyFile: k.VK,
	} {
		if err := readFrom(filepath.Join(dir, name), r); err != nil {
			return nil, err
		}
	}
	return k, nil
}

func writeTo(path string, w io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	if _, err := w.WriteTo(f); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}

func readFrom(path string, r io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	if _, err := r.ReadFrom(f); err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	return nil
}
