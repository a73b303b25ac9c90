// Package prover is the development prover for the knowledge-of-preimage
// statement: a gnark Groth16 circuit over BN254 plus a trapdoor simulator for
// fixtures. Proofs are exported as snarkjs documents so they travel through
// the same parsing and coordinate transform as externally generated proofs.
package prover

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// KnowledgeCircuit proves knowledge of Preimage such that
// MiMC(Preimage) == Commitment. Commitment is the single public input, so
// publicSignals[0] of every proof is the commitment.
type KnowledgeCircuit struct {
	Commitment frontend.Variable `gnark:",public"`
	Preimage   frontend.Variable
}

func (c *KnowledgeCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Write(c.Preimage)
	api.AssertIsEqual(h.Sum(), c.Commitment)
	return nil
}
