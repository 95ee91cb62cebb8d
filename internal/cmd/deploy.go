// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stellar/go/xdr"

	"github.com/solrane/sorokit/internal/errors"
	"github.com/solrane/sorokit/internal/watch"
	"github.com/solrane/sorokit/rpc"
	"github.com/solrane/sorokit/soroban"
)

var (
	deployArgs     []string
	deployArgsJSON string
	deploySalt     string
	deployFee      int64
	deployTimeout  time.Duration
)

var deployCmd = &cobra.Command{
	Use:     "deploy <wasm-hash>",
	GroupID: "contract",
	Short:   "Deploy a contract instance from an installed module",
	Long: `Create a contract instance from a module previously uploaded with
'sorokit install', identified by its hex hash.

Constructor arguments are given like 'sorokit invoke' arguments; their
types come from the module's constructor signature. The deployed address
is derived from the deployer and a salt, so --salt makes deployments
repeatable while the default random salt gives a fresh address each time.

Examples:
  sorokit deploy 8a9cfcf493b04fcdcd3018a4b5cbf6113be034a5fb54e38b53d65119d038f1d2
  sorokit deploy 8a9c...f1d2 --arg admin=GDIY...AV72 --arg decimals=7
  sorokit deploy 8a9c...f1d2 --salt 0000000000000000000000000000000000000000000000000000000000000001`,
	Args: cobra.ExactArgs(1),
	RunE: deployExec,
}

func deployExec(cmd *cobra.Command, args []string) error {
	hashBytes, err := hex.DecodeString(args[0])
	if err != nil || len(hashBytes) != len(xdr.Hash{}) {
		return errors.WrapValidationError(fmt.Sprintf("%q is not a hex WASM hash", args[0]))
	}
	var wasmHash xdr.Hash
	copy(wasmHash[:], hashBytes)

	var salt *xdr.Uint256
	if deploySalt != "" {
		saltBytes, err := hex.DecodeString(deploySalt)
		if err != nil || len(saltBytes) != len(xdr.Uint256{}) {
			return errors.WrapValidationError(fmt.Sprintf("%q is not a 32-byte hex salt", deploySalt))
		}
		salt = new(xdr.Uint256)
		copy(salt[:], saltBytes)
	}

	ctorArgs, err := parseMethodArgs(deployArgs, deployArgsJSON)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	cleanup, err := setupTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	client, err := rpcClient(cfg)
	if err != nil {
		return err
	}
	kp, err := sourceKeypair(cfg)
	if err != nil {
		return err
	}

	// Typed constructor values need the module's interface, which only
	// matters when arguments were given at all.
	var scArgs []xdr.ScVal
	if len(ctorArgs) > 0 {
		var code []byte
		err = watch.Run(ctx, "Fetching module interface", func(ctx context.Context) error {
			var fetchErr error
			code, fetchErr = rpc.FetchContractCodeByHash(ctx, client, wasmHash)
			return fetchErr
		})
		if err != nil {
			return err
		}
		info, err := soroban.ParseContractByteCode(code)
		if err != nil {
			return err
		}
		scArgs, err = info.Spec.FuncArgsToXdrSCValues("__constructor", ctorArgs)
		if err != nil {
			return err
		}
	}

	opts := soroban.TransactionOptions{
		Client: soroban.ClientOptions{
			SourceAccount:     kp,
			NetworkPassphrase: client.GetNetworkPassphrase(),
			RPC:               client,
		},
		Method: soroban.MethodOptions{
			BaseFee: deployFee,
			Timeout: deployTimeout,
		},
	}

	var deployed *soroban.Client
	err = watch.Run(ctx, "Deploying contract", func(ctx context.Context) error {
		var deployErr error
		deployed, deployErr = soroban.Deploy(ctx, opts, soroban.DeployOptions{
			WasmHash:        wasmHash,
			ConstructorArgs: scArgs,
			Salt:            salt,
		})
		return deployErr
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", color.New(color.Bold).Sprint("Contract:"), deployed.Options().ContractID)
	return nil
}

func init() {
	deployCmd.Flags().StringArrayVar(&deployArgs, "arg", nil, "Constructor argument as name=value (repeatable, value is JSON)")
	deployCmd.Flags().StringVar(&deployArgsJSON, "args-json", "", "All constructor arguments as one JSON object")
	deployCmd.Flags().StringVar(&deploySalt, "salt", "", "32-byte hex salt for a deterministic contract address")
	deployCmd.Flags().Int64Var(&deployFee, "fee", 0, "Base fee in stroops (0 uses the default)")
	deployCmd.Flags().DurationVar(&deployTimeout, "timeout", 0, "How long to wait for a terminal status (0 uses the default)")
	rootCmd.AddCommand(deployCmd)
}
