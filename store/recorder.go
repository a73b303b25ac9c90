package store

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Verification is the receipt of one non-dry-run verification.
type Verification struct {
	ID               uuid.UUID
	PublicCommitment *big.Int
	StoredCommitment *big.Int
	Valid            bool
	Reason           string
	VerifierAddress  common.Address
	CreatedAt        time.Time
}

// Recorder appends verification receipts.
type Recorder interface {
	RecordVerification(ctx context.Context, v *Verification) error
}
