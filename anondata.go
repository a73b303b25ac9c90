// Package anondata binds Groth16 proofs of knowledge to a published
// commitment.
//
// A data owner publishes commitment = Hash(keccak256(data) mod r) with
// SetHash. Later a prover shows knowledge of the committed data with a proof
// whose first public signal is the commitment. VerifyKnowledge accepts the
// proof only if the pairing equation holds and publicSignals[0] equals the
// currently stored commitment.
package anondata

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iden3/go-anonymous-data/commitment"
	"github.com/iden3/go-anonymous-data/field"
	"github.com/iden3/go-anonymous-data/proofs"
	"github.com/iden3/go-anonymous-data/store"
	"github.com/iden3/go-anonymous-data/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	// ErrVerifierRequired is returned by New without a proof verifier.
	ErrVerifierRequired = errors.New("proof verifier is required")
	// ErrMalformedProof is returned for undecodable proofs or public signals.
	ErrMalformedProof = types.ErrMalformedProof
	// ErrInvalidInput is returned when data can not be committed to.
	ErrInvalidInput = commitment.ErrInvalidInput
	// ErrNotInField is returned for commitments outside the scalar field.
	ErrNotInField = field.ErrNotInField
	// ErrUnauthorizedPublish is returned when an authorizer rejects SetHash.
	ErrUnauthorizedPublish = store.ErrUnauthorizedPublish
)

// Reasons a well-formed proof is rejected.
const (
	ReasonPairingCheckFailed = "pairing check failed"
	ReasonCommitmentMismatch = "commitment mismatch"
)

// ProofVerifier checks a proof in calldata order. *verifier.Verifier
// implements it.
type ProofVerifier interface {
	Verify(proof *types.Proof, publicSignals []*big.Int) (bool, error)
	Address() common.Address
}

// Result is the outcome of a verification.
type Result struct {
	Valid bool
	// Reason is empty when Valid. A failed pairing check takes precedence
	// over a commitment mismatch.
	Reason           string
	PublicCommitment *big.Int
	StoredCommitment *big.Int
}

// AnonymousData is the verification orchestrator. It is safe for concurrent
// use: SetHash is serialized against verifications, so every verification
// compares against one consistent stored value.
type AnonymousData struct {
	mu       sync.RWMutex
	verifier ProofVerifier
	store    store.Store
	recorder store.Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures AnonymousData.
type Option func(*AnonymousData)

// WithLogger sets the logger, zerolog.Nop by default.
func WithLogger(l zerolog.Logger) Option {
	return func(a *AnonymousData) {
		a.logger = l
	}
}

// WithRecorder keeps a receipt of every non-dry-run verification.
func WithRecorder(r store.Recorder) Option {
	return func(a *AnonymousData) {
		a.recorder = r
	}
}

// New creates an orchestrator over v and s. A nil store is replaced by a
// fresh MemoryStore holding zero.
func New(v ProofVerifier, s store.Store, opts ...Option) (*AnonymousData, error) {
	if v == nil {
		return nil, ErrVerifierRequired
	}
	if s == nil {
		s = store.NewMemoryStore()
	}
	a := &AnonymousData{
		verifier: v,
		store:    s,
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Verifier returns the address identifying the configured verifying key.
func (a *AnonymousData) Verifier() common.Address {
	return a.verifier.Address()
}

// SetHash publishes commitment, replacing the previous one. Use
// store.ContextWithCaller to identify the publisher to an authorizing store.
func (a *AnonymousData) SetHash(ctx context.Context, c *big.Int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.store.Publish(ctx, c); err != nil {
		return err
	}
	a.logger.Info().Str("commitment", c.String()).Msg("commitment published")
	return nil
}

// StoredHash returns the currently published commitment.
func (a *AnonymousData) StoredHash(ctx context.Context) (*big.Int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.store.Read(ctx)
}

// Check verifies proof against publicSignals and the stored commitment
// without side effects. Malformed input is an error; a proof that is merely
// invalid yields a Result with Valid false.
func (a *AnonymousData) Check(ctx context.Context, proof *types.Proof, publicSignals []*big.Int) (*Result, error) {
	if len(publicSignals) == 0 {
		return nil, errors.Wrap(ErrMalformedProof, "no public signals")
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	stored, err := a.store.Read(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "read stored commitment")
	}
	ok, err := a.verifier.Verify(proof, publicSignals)
	if err != nil {
		return nil, err
	}

	res := &Result{
		PublicCommitment: new(big.Int).Set(publicSignals[0]),
		StoredCommitment: stored,
	}
	switch {
	case !ok:
		res.Reason = ReasonPairingCheckFailed
	case !field.Equal(publicSignals[0], stored):
		res.Reason = ReasonCommitmentMismatch
	default:
		res.Valid = true
	}

	a.logger.Debug().
		Bool("valid", res.Valid).
		Str("reason", res.Reason).
		Str("public", res.PublicCommitment.String()).
		Str("stored", stored.String()).
		Msg("proof checked")
	return res, nil
}

// StaticVerifyKnowledge is the dry run of VerifyKnowledge: same decision,
// nothing is recorded.
func (a *AnonymousData) StaticVerifyKnowledge(ctx context.Context, proof *types.Proof, publicSignals []*big.Int) (bool, error) {
	res, err := a.Check(ctx, proof, publicSignals)
	if err != nil {
		return false, err
	}
	return res.Valid, nil
}

// VerifyKnowledge returns true only if the proof is valid and
// publicSignals[0] equals the stored commitment. With a Recorder configured
// a receipt is appended. The stored commitment is never modified.
func (a *AnonymousData) VerifyKnowledge(ctx context.Context, proof *types.Proof, publicSignals []*big.Int) (bool, error) {
	res, err := a.verify(ctx, proof, publicSignals, false)
	if err != nil {
		return false, err
	}
	return res.Valid, nil
}

// VerifyDocuments verifies snarkjs proof.json and public.json documents.
// pi_b is reversed into verifier order before verification.
func (a *AnonymousData) VerifyDocuments(ctx context.Context, proofJSON, publicJSON []byte, dryRun bool) (*Result, error) {
	p, err := proofs.ParseProof(proofJSON)
	if err != nil {
		return nil, err
	}
	signals, err := proofs.ParsePublicSignals(publicJSON)
	if err != nil {
		return nil, err
	}
	return a.VerifyZKProof(ctx, p, signals, dryRun)
}

// VerifyZKProof verifies a parsed snarkjs proof.
func (a *AnonymousData) VerifyZKProof(ctx context.Context, p *types.ProofData, publicSignals []*big.Int, dryRun bool) (*Result, error) {
	proof, err := proofs.ToCalldata(p)
	if err != nil {
		return nil, err
	}
	return a.verify(ctx, proof, publicSignals, dryRun)
}

func (a *AnonymousData) verify(ctx context.Context, proof *types.Proof, publicSignals []*big.Int, dryRun bool) (*Result, error) {
	res, err := a.Check(ctx, proof, publicSignals)
	if err != nil {
		return nil, err
	}
	if dryRun || a.recorder == nil {
		return res, nil
	}
	err = a.recorder.RecordVerification(ctx, &store.Verification{
		PublicCommitment: res.PublicCommitment,
		StoredCommitment: res.StoredCommitment,
		Valid:            res.Valid,
		Reason:           res.Reason,
		VerifierAddress:  a.verifier.Address(),
		CreatedAt:        a.now(),
	})
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to record verification")
		return nil, errors.WithMessage(err, "record verification")
	}
	return res, nil
}
