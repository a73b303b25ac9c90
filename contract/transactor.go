package contract

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// TxBackend is the part of an Ethereum client a KeyTransactor needs.
// *ethclient.Client implements it.
type TxBackend interface {
	bind.ContractTransactor
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// KeyTransactor sends transactions signed with a local private key through
// a bind.BoundContract.
type KeyTransactor struct {
	backend TxBackend
	key     *ecdsa.PrivateKey
	from    common.Address

	mu   sync.Mutex
	auth *bind.TransactOpts
}

// NewKeyTransactor creates a transactor sending from the address of key.
func NewKeyTransactor(backend TxBackend, key *ecdsa.PrivateKey) *KeyTransactor {
	return &KeyTransactor{
		backend: backend,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
	}
}

// NewKeyTransactorFromHex parses a hex private key, with or without 0x.
func NewKeyTransactorFromHex(backend TxBackend, hexKey string) (*KeyTransactor, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimPrefix(hexKey, "0x"), "0X"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	return NewKeyTransactor(backend, key), nil
}

// From returns the sending address.
func (t *KeyTransactor) From() common.Address {
	return t.from
}

// transactOpts must be called with mu held. The chain ID is fetched once.
func (t *KeyTransactor) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	if t.auth == nil {
		chainID, err := t.backend.ChainID(ctx)
		if err != nil {
			return nil, errors.WithMessage(err, "chain id")
		}
		auth, err := bind.NewKeyedTransactorWithChainID(t.key, chainID)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		t.auth = auth
	}
	opts := *t.auth
	opts.Context = ctx
	return &opts, nil
}

// Transact implements Transactor. Sends are serialized so that each one
// picks up the pending nonce left by the previous one.
func (t *KeyTransactor) Transact(ctx context.Context, to common.Address, data []byte) (*ethtypes.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	opts, err := t.transactOpts(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := bind.NewBoundContract(to, AnonymousDataABI, nil, t.backend, nil).RawTransact(opts, data)
	if err != nil {
		return nil, errors.WithMessage(err, "send transaction")
	}
	return tx, nil
}

// WaitMined implements Transactor. It blocks until tx has a receipt or ctx
// is done.
func (t *KeyTransactor) WaitMined(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, t.backend, tx)
	if err != nil {
		return nil, errors.WithMessagef(err, "wait for %s", tx.Hash().Hex())
	}
	return receipt, nil
}
