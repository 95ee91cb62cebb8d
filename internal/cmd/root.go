// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// Persistent flag variables, applied on top of the file and environment
// configuration by loadConfig.
var (
	networkFlag       string
	rpcURLFlag        string
	authTokenFlag     string
	sourceAccountFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sorokit",
	Short: "Soroban smart contract client and signing toolkit",
	Long: `Sorokit is a command-line client for Soroban smart contracts on the
Stellar network. It reads contract interfaces straight from on-chain or
on-disk WASM, converts plain JSON arguments into typed contract values,
and drives invocations through simulation, signing, and submission.

Key features:
  - Inspect contract functions, types, events, and metadata
  - Invoke contract methods with JSON arguments
  - Install WASM modules and deploy contract instances
  - Collect authorization signatures from a remote signing daemon
  - Cache parsed contract interfaces for fast repeat lookups

Examples:
  sorokit inspect CA7QYNF7SOWQ3GLR2BGMZEHXAVIRZA4KVWLTJJFC7MGXUA74P7UJUWDA
  sorokit inspect ./target/wasm32-unknown-unknown/release/token.wasm
  sorokit invoke CA7Q...UWDA balance --arg 'id="GDIY...AV72"'
  sorokit deploy 8a9c...f1d2 --arg admin='"GDIY...AV72"'
  sorokit signerd --port 8317 --token secret123

Get started with 'sorokit inspect --help' or visit the documentation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "contract", Title: "Contract Commands:"},
		&cobra.Group{ID: "service", Title: "Service Commands:"},
		&cobra.Group{ID: "utility", Title: "Utility Commands:"},
	)

	rootCmd.PersistentFlags().StringVarP(
		&networkFlag,
		"network",
		"n",
		"",
		"Stellar network to use (testnet, mainnet, futurenet, or a saved custom network)",
	)

	rootCmd.PersistentFlags().StringVar(
		&rpcURLFlag,
		"rpc-url",
		"",
		"Custom Soroban RPC URL to use",
	)

	rootCmd.PersistentFlags().StringVar(
		&authTokenFlag,
		"auth-token",
		"",
		"Bearer token sent to the RPC server",
	)

	rootCmd.PersistentFlags().StringVar(
		&sourceAccountFlag,
		"source-account",
		"",
		"Transaction source account (S... seed or G... address)",
	)
}
