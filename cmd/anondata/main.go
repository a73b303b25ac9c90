package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/iden3/go-anonymous-data/commitment"
	"github.com/iden3/go-anonymous-data/pairing"
	"github.com/urfave/cli/v2"
)

const envPrefix = "ANONDATA_"

func env(name string) []string {
	return []string{envPrefix + name}
}

var (
	vkFlag = &cli.StringFlag{
		Name:    "vk",
		Usage:   "path to verification_key.json",
		Value:   "verification_key.json",
		EnvVars: env("VK"),
	}
	engineFlag = &cli.StringFlag{
		Name:    "engine",
		Usage:   "pairing engine: " + pairing.BN256EngineName + " or " + pairing.BN254EngineName,
		Value:   pairing.BN256EngineName,
		EnvVars: env("ENGINE"),
	}
	dbFlag = &cli.StringFlag{
		Name:    "db",
		Usage:   "sqlite database keeping the commitment and verification receipts, in memory if empty",
		EnvVars: env("DB"),
	}
	rpcFlag = &cli.StringFlag{
		Name:    "rpc",
		Usage:   "Ethereum RPC URL; with --contract the commitment lives on chain",
		EnvVars: env("RPC"),
	}
	contractFlag = &cli.StringFlag{
		Name:    "contract",
		Usage:   "AnonymousData contract address",
		EnvVars: env("CONTRACT"),
	}
	privateKeyFlag = &cli.StringFlag{
		Name:    "private-key",
		Usage:   "hex key signing contract transactions",
		EnvVars: env("PRIVATE_KEY"),
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:                 "anondata",
		Usage:                "commit to data and verify zero-knowledge proofs of knowing it",
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Value:   "info",
				EnvVars: env("LOG_LEVEL"),
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "hash",
				Usage:  "derive the commitment to some data",
				Action: runHash,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Usage:    "data to commit to",
						Required: true,
						EnvVars:  env("DATA"),
					},
					&cli.StringFlag{
						Name:    "hasher",
						Usage:   commitment.PoseidonHasherName + " or " + commitment.MiMCHasherName,
						Value:   commitment.PoseidonHasherName,
						EnvVars: env("HASHER"),
					},
				},
			},
			{
				Name:   "setup",
				Usage:  "run a development trusted setup of the knowledge circuit",
				Action: runSetup,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Usage:   "output directory for the circuit and keys",
						Value:   "keys",
						EnvVars: env("KEYS_DIR"),
					},
				},
			},
			{
				Name:   "prove",
				Usage:  "prove knowledge of data committed to with MiMC",
				Action: runProve,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Usage:   "directory written by setup",
						Value:   "keys",
						EnvVars: env("KEYS_DIR"),
					},
					&cli.StringFlag{
						Name:     "data",
						Usage:    "the committed data",
						Required: true,
						EnvVars:  env("DATA"),
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "directory for proof.json and public.json",
						Value: ".",
					},
				},
			},
			{
				Name:   "verify",
				Usage:  "verify proof.json and public.json against the stored commitment",
				Action: runVerify,
				Flags: []cli.Flag{
					vkFlag,
					engineFlag,
					&cli.StringFlag{
						Name:  "proof",
						Usage: "path to proof.json",
						Value: "proof.json",
					},
					&cli.StringFlag{
						Name:  "public",
						Usage: "path to public.json",
						Value: "public.json",
					},
					&cli.BoolFlag{
						Name:  "set-hash",
						Usage: "publish public[0] as the commitment first",
					},
					dbFlag,
					rpcFlag,
					contractFlag,
					privateKeyFlag,
				},
			},
			{
				Name:   "serve",
				Usage:  "serve the HTTP API",
				Action: runServe,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "listen address",
						Value:   ":8080",
						EnvVars: env("ADDR"),
					},
					vkFlag,
					engineFlag,
					dbFlag,
					rpcFlag,
					contractFlag,
					privateKeyFlag,
					&cli.StringSliceFlag{
						Name:    "publisher",
						Usage:   "bearer token allowed to publish; anyone may publish if unset",
						EnvVars: env("PUBLISHERS"),
					},
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
