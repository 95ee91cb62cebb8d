// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stellar/go/xdr"

	"github.com/solrane/sorokit/internal/errors"
	"github.com/solrane/sorokit/internal/watch"
	"github.com/solrane/sorokit/soroban"
)

var (
	installFee     int64
	installTimeout time.Duration
)

var installCmd = &cobra.Command{
	Use:     "install <wasm-file>",
	GroupID: "contract",
	Short:   "Install a compiled WASM module on the network",
	Long: `Upload a compiled contract module to the ledger and print its hash.

Installing stores the byte code without creating a contract instance; the
printed hash is what 'sorokit deploy' instantiates. Installing the same
module twice is free, the existing hash is reported without a submission.

Examples:
  sorokit install ./target/wasm32-unknown-unknown/release/token.wasm
  sorokit install --network testnet ./token.wasm`,
	Args: cobra.ExactArgs(1),
	RunE: installExec,
}

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

func installExec(cmd *cobra.Command, args []string) error {
	wasm, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading WASM file: %w", err)
	}
	if len(wasm) < len(wasmMagic) || !bytes.Equal(wasm[:len(wasmMagic)], wasmMagic) {
		return errors.WrapValidationError(fmt.Sprintf("%s is not a WASM module", args[0]))
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

	opts := soroban.TransactionOptions{
		Client: soroban.ClientOptions{
			SourceAccount:     kp,
			NetworkPassphrase: client.GetNetworkPassphrase(),
			RPC:               client,
		},
		Method: soroban.MethodOptions{
			BaseFee: installFee,
			Timeout: installTimeout,
		},
	}

	var hash xdr.Hash
	err = watch.Run(ctx, "Installing module", func(ctx context.Context) error {
		var installErr error
		hash, installErr = soroban.Install(ctx, opts, wasm)
		return installErr
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", color.New(color.Bold).Sprint("Wasm hash:"), hex.EncodeToString(hash[:]))
	return nil
}

func init() {
	installCmd.Flags().Int64Var(&installFee, "fee", 0, "Base fee in stroops (0 uses the default)")
	installCmd.Flags().DurationVar(&installTimeout, "timeout", 0, "How long to wait for a terminal status (0 uses the default)")
	rootCmd.AddCommand(installCmd)
}
