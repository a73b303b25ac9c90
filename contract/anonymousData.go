// Package contract binds the on-chain AnonymousData contract: a commitment
// register (setHash/storedHash) in front of a Groth16 verifier contract.
package contract

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/iden3/go-anonymous-data/cache"
	"github.com/iden3/go-anonymous-data/constants"
	"github.com/iden3/go-anonymous-data/field"
	"github.com/iden3/go-anonymous-data/store"
	"github.com/iden3/go-anonymous-data/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

//go:generate mockgen -destination=mock/blockchainCallerMock.go . BlockchainCaller,Transactor

const errCallArgumentEncodedErrorMessage = "wrong arguments were provided"

// ErrReadOnly is returned by state-changing calls on a binding without a
// Transactor.
var ErrReadOnly = errors.New("contract binding is read only")

// ErrTransactionFailed is returned for transactions mined with a failed
// status.
var ErrTransactionFailed = errors.New("transaction failed")

// ErrNotStored is returned when a mined setHash left a different value in
// storedHash.
var ErrNotStored = errors.New("commitment not stored")

// BlockchainCaller is an interface to call smart contract
type BlockchainCaller interface {
	// Call smart contract. For read operation.
	CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error)
}

// Transactor signs, sends and tracks transactions. Key management lives with
// the implementation.
type Transactor interface {
	Transact(ctx context.Context, to common.Address, data []byte) (*ethtypes.Transaction, error)
	WaitMined(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error)
}

// AnonymousData is a binding to one deployed contract.
type AnonymousData struct {
	address       common.Address
	caller        BlockchainCaller
	transactor    Transactor
	logger        zerolog.Logger
	verifierCache cache.ICache[common.Address]
	close         func()
}

// Option configures the binding.
type Option func(*AnonymousData)

// WithTransactor enables setHash and verifyKnowledge transactions.
func WithTransactor(t Transactor) Option {
	return func(c *AnonymousData) {
		c.transactor = t
	}
}

// WithLogger sets the logger, zerolog.Nop by default.
func WithLogger(l zerolog.Logger) Option {
	return func(c *AnonymousData) {
		c.logger = l
	}
}

// New creates a binding to the contract at address.
func New(address common.Address, caller BlockchainCaller, opts ...Option) *AnonymousData {
	c := &AnonymousData{
		address: address,
		caller:  caller,
		logger:  zerolog.Nop(),
		verifierCache: cache.NewInMemoryCache[common.Address](
			constants.VerifierCacheOptions.MaxSize,
			constants.VerifierCacheOptions.DefaultTTL,
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dial connects to rpcURL and binds the contract at address. With a
// non-empty privateKey the binding can send transactions signed by it.
func Dial(ctx context.Context, rpcURL string, address common.Address, privateKey string, opts ...Option) (*AnonymousData, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to RPC")
	}
	if privateKey != "" {
		t, err := NewKeyTransactorFromHex(client, privateKey)
		if err != nil {
			client.Close()
			return nil, err
		}
		opts = append([]Option{WithTransactor(t)}, opts...)
	}
	c := New(address, client, opts...)
	c.close = client.Close
	return c, nil
}

// Close releases the RPC connection opened by Dial.
func (c *AnonymousData) Close() {
	if c.close != nil {
		c.close()
	}
}

// Address returns the contract address.
func (c *AnonymousData) Address() common.Address {
	return c.address
}

// StoredHash reads the published commitment.
func (c *AnonymousData) StoredHash(ctx context.Context) (*big.Int, error) {
	out := &Uint256{}
	if err := c.call(ctx, storedHashMethod, out); err != nil {
		return nil, err
	}
	return out.Int, nil
}

// Verifier returns the address of the Groth16 verifier the contract was
// deployed with. The value is immutable and cached.
func (c *AnonymousData) Verifier(ctx context.Context) (common.Address, error) {
	return c.verifierCache.Fetch(c.address.Hex(), func() (common.Address, error) {
		out := &Address{}
		if err := c.call(ctx, verifierMethod, out); err != nil {
			return common.Address{}, err
		}
		return out.Address, nil
	})
}

// StaticVerifyKnowledge runs verifyKnowledge as an eth_call, nothing is
// recorded on chain. proof must be in calldata order.
func (c *AnonymousData) StaticVerifyKnowledge(ctx context.Context, proof *types.Proof) (bool, error) {
	if proof == nil {
		return false, errors.Wrap(types.ErrMalformedProof, "proof is nil")
	}
	out := &Bool{}
	err := c.call(ctx, verifyKnowledgeMethod, out,
		[2]*big.Int(proof.A), [2][2]*big.Int(proof.B), [2]*big.Int(proof.C))
	if err != nil {
		return false, err
	}
	return out.Value, nil
}

// VerifyKnowledge sends verifyKnowledge as a transaction.
func (c *AnonymousData) VerifyKnowledge(ctx context.Context, proof *types.Proof) (*ethtypes.Transaction, error) {
	if proof == nil {
		return nil, errors.Wrap(types.ErrMalformedProof, "proof is nil")
	}
	return c.transact(ctx, verifyKnowledgeMethod,
		[2]*big.Int(proof.A), [2][2]*big.Int(proof.B), [2]*big.Int(proof.C))
}

// SetHash sends a setHash transaction for commitment. The new value is not
// visible through StoredHash until the transaction is mined.
func (c *AnonymousData) SetHash(ctx context.Context, commitment *big.Int) (*ethtypes.Transaction, error) {
	if !field.InField(commitment) {
		return nil, errors.Wrap(field.ErrNotInField, "commitment")
	}
	return c.transact(ctx, setHashMethod, commitment)
}

// WaitMined blocks until tx is mined and fails unless it succeeded.
func (c *AnonymousData) WaitMined(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error) {
	if c.transactor == nil {
		return nil, errors.WithStack(ErrReadOnly)
	}
	receipt, err := c.transactor.WaitMined(ctx, tx)
	if err != nil {
		return nil, err
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return receipt, errors.Wrapf(ErrTransactionFailed, "%s in block %v", tx.Hash().Hex(), receipt.BlockNumber)
	}
	c.logger.Debug().Str("tx", tx.Hash().Hex()).Stringer("block", receipt.BlockNumber).Msg("transaction mined")
	return receipt, nil
}

// PublishHash sends setHash, waits for it to be mined and checks that
// storedHash now holds commitment.
func (c *AnonymousData) PublishHash(ctx context.Context, commitment *big.Int) (*ethtypes.Receipt, error) {
	tx, err := c.SetHash(ctx, commitment)
	if err != nil {
		return nil, err
	}
	receipt, err := c.WaitMined(ctx, tx)
	if err != nil {
		return receipt, err
	}
	stored, err := c.StoredHash(ctx)
	if err != nil {
		return receipt, err
	}
	if stored.Cmp(commitment) != 0 {
		return receipt, errors.Wrapf(ErrNotStored, "storedHash is %s after %s", stored, tx.Hash().Hex())
	}
	return receipt, nil
}

func (c *AnonymousData) transact(ctx context.Context, method string, params ...interface{}) (*ethtypes.Transaction, error) {
	if c.transactor == nil {
		return nil, errors.Wrapf(ErrReadOnly, "%s", method)
	}
	data, err := AnonymousDataABI.Pack(method, params...)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s function: %s", errCallArgumentEncodedErrorMessage, method)
	}
	tx, err := c.transactor.Transact(ctx, c.address, data)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s transaction", method)
	}
	c.logger.Info().Str("method", method).Str("tx", tx.Hash().Hex()).Msg("transaction sent")
	return tx, nil
}

func (c *AnonymousData) call(ctx context.Context, method string, result Unmarshaler, params ...interface{}) error {
	data, err := AnonymousDataABI.Pack(method, params...)
	if err != nil {
		return errors.WithMessagef(err, "%s function: %s", errCallArgumentEncodedErrorMessage, method)
	}
	res, err := c.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &c.address,
		Data: data,
	}, nil)
	if err != nil {
		return errors.WithMessagef(err, "%s call", method)
	}

	outputs, err := AnonymousDataABI.Unpack(method, res)
	if err != nil {
		return errors.WithMessagef(err, "%s output", method)
	}
	return result.Unmarshal(outputs)
}

// Store adapts the contract to store.Store. Publish requires a Transactor
// and returns once setHash is mined and storedHash reads back the new value.
func (c *AnonymousData) Store() store.Store {
	return contractStore{c}
}

type contractStore struct {
	c *AnonymousData
}

func (s contractStore) Publish(ctx context.Context, commitment *big.Int) error {
	_, err := s.c.PublishHash(ctx, commitment)
	return err
}

func (s contractStore) Read(ctx context.Context) (*big.Int, error) {
	return s.c.StoredHash(ctx)
}
