package constants

import "time"

// R is the order of the BN254 scalar field. Every FieldElement lives in [0, R).
const R string = "21888242871839275222246405745257275088548364400416034343698204186575808495617"

// Q is the order of the BN254 base field. Curve point coordinates live in [0, Q).
const Q string = "21888242871839275222246405745257275088696311157297823662689037894645226208583"

const (
	// Groth16Protocol is the protocol name snarkjs writes into proofs and keys.
	Groth16Protocol = "groth16"
	// CurveBN128 is the curve name snarkjs uses for BN254.
	CurveBN128 = "bn128"
)

const (
	// StoredHashTTL bounds how stale a cached on-chain commitment may get
	// when another party publishes through the contract directly.
	StoredHashTTL = 15 * time.Second
	// VerifierAddressTTL is used for the contract's verifier() lookup, which
	// never changes after deployment.
	VerifierAddressTTL = time.Hour
	// KeyCacheTTL bounds how long a loaded verification key is reused before
	// it is read again.
	KeyCacheTTL = 24 * time.Hour
)

var (
	StoredHashCacheOptions = CacheTTLOptions{
		DefaultTTL: StoredHashTTL,
		MaxSize:    1,
	}

	VerifierCacheOptions = CacheTTLOptions{
		DefaultTTL: VerifierAddressTTL,
		MaxSize:    1,
	}

	KeyCacheOptions = CacheTTLOptions{
		DefaultTTL: KeyCacheTTL,
		MaxSize:    100,
	}
)

// CacheTTLOptions defines the TTL options for cache entries.
type CacheTTLOptions struct {
	DefaultTTL time.Duration
	MaxSize    int64
}
