package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	anondata "github.com/iden3/go-anonymous-data"
	"github.com/iden3/go-anonymous-data/api"
	"github.com/iden3/go-anonymous-data/commitment"
	"github.com/iden3/go-anonymous-data/contract"
	"github.com/iden3/go-anonymous-data/loaders"
	"github.com/iden3/go-anonymous-data/pairing"
	"github.com/iden3/go-anonymous-data/proofs"
	"github.com/iden3/go-anonymous-data/prover"
	"github.com/iden3/go-anonymous-data/store"
	"github.com/iden3/go-anonymous-data/types"
	"github.com/iden3/go-anonymous-data/verifier"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

var logger = zerolog.Nop()

var (
	label = color.New(color.FgHiBlack).SprintFunc()
	good  = color.New(color.FgHiGreen, color.Bold).SprintFunc()
	bad   = color.New(color.FgRed, color.Bold).SprintFunc()
)

func setupLogger(c *cli.Context) error {
	lvl, err := zerolog.ParseLevel(c.String("log-level"))
	if err != nil {
		return errors.Wrap(err, "log-level")
	}
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    color.NoColor,
	}).Level(lvl).With().Timestamp().Logger()
	return nil
}

func runHash(c *cli.Context) error {
	h, err := commitment.HasherByName(c.String("hasher"))
	if err != nil {
		return err
	}
	d, err := commitment.NewGenerator(commitment.WithHasher(h)).Derive([]byte(c.String("data")))
	if err != nil {
		return err
	}
	fmt.Println(label("hasher:    "), h.Name())
	fmt.Println(label("input:     "), d.Input)
	fmt.Println(label("commitment:"), good(d.Commitment))
	return nil
}

func runSetup(c *cli.Context) error {
	dir := c.String("dir")
	logger.Info().Msg("compiling circuit and running setup")
	keys, err := prover.Setup()
	if err != nil {
		return err
	}
	if err := keys.Save(dir); err != nil {
		return err
	}
	logger.Info().Str("dir", dir).Int("constraints", keys.CCS.GetNbConstraints()).Msg("keys written")
	fmt.Println(label("verification key:"), filepath.Join(dir, prover.VerificationKeyJSON))
	return nil
}

func runProve(c *cli.Context) error {
	keys, err := prover.LoadKeys(c.String("dir"))
	if err != nil {
		return err
	}
	zkp, err := keys.ProveData([]byte(c.String("data")))
	if err != nil {
		return err
	}

	out := c.String("out")
	proofPath := filepath.Join(out, "proof.json")
	publicPath := filepath.Join(out, "public.json")
	if err := writeJSONFile(proofPath, zkp.Proof); err != nil {
		return err
	}
	if err := writeJSONFile(publicPath, zkp.PubSignals); err != nil {
		return err
	}
	fmt.Println(label("proof: "), proofPath)
	fmt.Println(label("public:"), publicPath)
	fmt.Println(label("commitment:"), good(zkp.PubSignals[0]))
	return nil
}

func runVerify(c *cli.Context) error {
	ctx := c.Context
	proofJSON, err := os.ReadFile(c.String("proof"))
	if err != nil {
		return errors.WithStack(err)
	}
	publicJSON, err := os.ReadFile(c.String("public"))
	if err != nil {
		return errors.WithStack(err)
	}
	p, err := proofs.ParseProof(proofJSON)
	if err != nil {
		return err
	}
	signals, err := proofs.ParsePublicSignals(publicJSON)
	if err != nil {
		return err
	}
	if len(signals) == 0 {
		return errors.Wrap(types.ErrMalformedProof, "no public signals")
	}
	calldata, err := proofs.ToCalldata(p)
	if err != nil {
		return err
	}
	if err := printCalldata(calldata, signals); err != nil {
		return err
	}

	if c.IsSet(rpcFlag.Name) || c.IsSet(contractFlag.Name) {
		return verifyOnChain(ctx, c, calldata, signals)
	}
	return verifyLocally(ctx, c, calldata, signals)
}

func verifyLocally(ctx context.Context, c *cli.Context, proof *types.Proof, signals []*big.Int) error {
	v, err := loadVerifier(c)
	if err != nil {
		return err
	}
	s, rec, closeStore, err := openStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := []anondata.Option{anondata.WithLogger(logger)}
	if rec != nil {
		opts = append(opts, anondata.WithRecorder(rec))
	}
	a, err := anondata.New(v, s, opts...)
	if err != nil {
		return err
	}

	if c.Bool("set-hash") {
		if err := a.SetHash(ctx, signals[0]); err != nil {
			return err
		}
		fmt.Println(label("published:"), signals[0])
	}
	static, err := a.StaticVerifyKnowledge(ctx, proof, signals)
	if err != nil {
		return err
	}
	printVerdict("static call", static)

	ok, err := a.VerifyKnowledge(ctx, proof, signals)
	if err != nil {
		return err
	}
	printVerdict("verification", ok)
	if !ok {
		return cli.Exit("", 2)
	}
	return nil
}

func verifyOnChain(ctx context.Context, c *cli.Context, proof *types.Proof, signals []*big.Int) error {
	binding, err := dialContract(ctx, c)
	if err != nil {
		return err
	}
	defer binding.Close()

	if c.Bool("set-hash") {
		receipt, err := binding.PublishHash(ctx, signals[0])
		if err != nil {
			return err
		}
		fmt.Println(label("setHash tx:"), receipt.TxHash.Hex(), "block", receipt.BlockNumber)
	} else {
		// the contract compares against its own stored commitment, not public[0]
		stored, err := binding.StoredHash(ctx)
		if err != nil {
			return err
		}
		if stored.Cmp(signals[0]) != 0 {
			logger.Warn().Str("stored", stored.String()).Str("public", signals[0].String()).
				Msg("public signal differs from the stored commitment")
		}
	}

	ok, err := binding.StaticVerifyKnowledge(ctx, proof)
	if err != nil {
		return err
	}
	printVerdict("static call", ok)

	if c.IsSet(privateKeyFlag.Name) {
		tx, err := binding.VerifyKnowledge(ctx, proof)
		if err != nil {
			return err
		}
		fmt.Println(label("verifyKnowledge tx:"), tx.Hash().Hex())
		receipt, err := binding.WaitMined(ctx, tx)
		if err != nil {
			return err
		}
		fmt.Println(label("mined in block:"), receipt.BlockNumber)
	}
	if !ok {
		return cli.Exit("", 2)
	}
	return nil
}

func runServe(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, err := loadVerifier(c)
	if err != nil {
		return err
	}
	s, rec, closeStore, err := openStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	if publishers := c.StringSlice("publisher"); len(publishers) > 0 {
		s = store.WithAuthorizer(s, store.NewAllowList(publishers...))
	}
	opts := []anondata.Option{anondata.WithLogger(logger)}
	if rec != nil {
		opts = append(opts, anondata.WithRecorder(rec))
	}
	a, err := anondata.New(v, s, opts...)
	if err != nil {
		return err
	}

	logger.Info().
		Str("verifier", v.Address().Hex()).
		Str("engine", v.Engine()).
		Int("n_public", v.NPublic()).
		Msg("verifier loaded")
	return api.NewServer(a, v, api.WithLogger(logger)).ListenAndServe(ctx, c.String("addr"))
}

// loadVerifier reads --vk through the key loaders, <dir>/<id>.json.
func loadVerifier(c *cli.Context) (*verifier.Verifier, error) {
	path := c.String(vkFlag.Name)
	id := strings.TrimSuffix(filepath.Base(path), ".json")
	loader := loaders.NewCachedKeyLoader(loaders.FSKeyLoader{Dir: filepath.Dir(path)})
	vkJSON, err := loader.Load(id)
	if err != nil {
		return nil, errors.WithMessagef(err, "verification key %s", path)
	}
	engine, err := pairing.EngineByName(c.String(engineFlag.Name))
	if err != nil {
		return nil, err
	}
	return verifier.New(vkJSON, verifier.WithEngine(engine))
}

// openStore selects where the commitment lives: a contract with --rpc and
// --contract, the sqlite database with --db, memory otherwise. Receipts are
// recorded whenever --db is set.
func openStore(ctx context.Context, c *cli.Context) (store.Store, store.Recorder, func(), error) {
	var (
		s       store.Store
		rec     store.Recorder
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if db := c.String(dbFlag.Name); db != "" {
		sqlStore, err := store.OpenSQLStore(db, store.WithSQLLogger(logger))
		if err != nil {
			return nil, nil, nil, err
		}
		closers = append(closers, func() { _ = sqlStore.Close() })
		s, rec = sqlStore, sqlStore
	}

	if c.IsSet(rpcFlag.Name) || c.IsSet(contractFlag.Name) {
		binding, err := dialContract(ctx, c)
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		closers = append(closers, binding.Close)
		s = store.NewCachedStore(binding.Store())
	}

	if s == nil {
		s = store.NewMemoryStore()
	}
	return s, rec, closeAll, nil
}

func dialContract(ctx context.Context, c *cli.Context) (*contract.AnonymousData, error) {
	rpc, addr := c.String(rpcFlag.Name), c.String(contractFlag.Name)
	if rpc == "" || addr == "" {
		return nil, errors.New("--rpc and --contract are required together")
	}
	if !common.IsHexAddress(addr) {
		return nil, errors.Errorf("invalid contract address %q", addr)
	}
	return contract.Dial(ctx, rpc, common.HexToAddress(addr), c.String(privateKeyFlag.Name),
		contract.WithLogger(logger))
}

func printCalldata(p *types.Proof, signals []*big.Int) error {
	b, err := json.MarshalIndent(struct {
		Proof   *types.Proof `json:"proof"`
		Signals []string     `json:"public_signals"`
	}{p, bigStrings(signals)}, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	fmt.Println(label("calldata:"))
	fmt.Println(string(b))
	return nil
}

func printVerdict(name string, ok bool) {
	if ok {
		fmt.Println(label(name+":"), good("valid"))
		return
	}
	fmt.Println(label(name+":"), bad("invalid"))
}

func bigStrings(in []*big.Int) []string {
	out := make([]string, len(in))
	for i, x := range in {
		out[i] = x.String()
	}
	return out
}

func writeJSONFile(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, b, 0o644))
}
