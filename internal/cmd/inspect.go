// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solrane/sorokit/internal/errors"
	"github.com/solrane/sorokit/internal/speccache"
	"github.com/solrane/sorokit/internal/specfmt"
	"github.com/solrane/sorokit/internal/watch"
	"github.com/solrane/sorokit/soroban"
)

var (
	inspectFormat  string
	inspectSEPs    bool
	inspectNoCache bool
)

var inspectCmd = &cobra.Command{
	Use:     "inspect <contract-id | wasm-file>",
	GroupID: "contract",
	Short:   "Show a contract's interface, metadata, and supported SEPs",
	Long: `Parse a Soroban contract and pretty-print its interface: functions,
structs, enums, unions, error enums, events, and metadata.

The target is either a deployed contract (C... address, fetched over RPC
and cached locally) or a compiled WASM file on disk. The interface is
read from the spec sections that Soroban compilers embed automatically.

Examples:
  sorokit inspect CA7QYNF7SOWQ3GLR2BGMZEHXAVIRZA4KVWLTJJFC7MGXUA74P7UJUWDA
  sorokit inspect --format json CA7Q...UWDA
  sorokit inspect ./target/wasm32-unknown-unknown/release/token.wasm
  sorokit inspect --sep CA7Q...UWDA`,
	Args: cobra.ExactArgs(1),
	RunE: inspectExec,
}

func inspectExec(cmd *cobra.Command, args []string) error {
	target := args[0]

	var info *soroban.ContractInfo
	var err error
	switch {
	case isWasmFile(target):
		info, err = inspectFile(target)
	case strings.HasPrefix(target, "C"):
		info, err = inspectContract(cmd, target)
	default:
		return errors.WrapValidationError(fmt.Sprintf("%q is neither a WASM file nor a contract address", target))
	}
	if err != nil {
		return err
	}

	if inspectSEPs {
		if len(info.SupportedSEPs) > 0 {
			fmt.Println(strings.Join(info.SupportedSEPs, "\n"))
		}
		return nil
	}

	switch inspectFormat {
	case "json":
		output, err := specfmt.FormatJSON(info)
		if err != nil {
			return err
		}
		fmt.Println(output)
	case "text":
		fmt.Print(specfmt.FormatText(info))
	default:
		return errors.WrapValidationError(fmt.Sprintf("unsupported format: %s (use: text, json)", inspectFormat))
	}

	return nil
}

func inspectFile(path string) (*soroban.ContractInfo, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading WASM file: %w", err)
	}
	return soroban.ParseContractByteCode(code)
}

func inspectContract(cmd *cobra.Command, contractID string) (*soroban.ContractInfo, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cleanup, err := setupTelemetry(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	client, err := rpcClient(cfg)
	if err != nil {
		return nil, err
	}
	store := openSpecStore(inspectNoCache)
	defer closeSpecStore(store)

	var info *soroban.ContractInfo
	err = watch.Run(cmd.Context(), "Fetching contract interface", func(ctx context.Context) error {
		var fetchErr error
		info, _, fetchErr = speccache.FetchInfo(ctx, client, store, contractID)
		return fetchErr
	})
	return info, err
}

// isWasmFile reports whether the target names a readable regular file.
// Contract addresses never collide with paths in practice, but files are
// checked first so a local ./C... artifact still wins.
func isWasmFile(target string) bool {
	fi, err := os.Stat(target)
	return err == nil && fi.Mode().IsRegular()
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format: text or json")
	inspectCmd.Flags().BoolVar(&inspectSEPs, "sep", false, "Print only the declared SEP numbers, one per line")
	inspectCmd.Flags().BoolVar(&inspectNoCache, "no-cache", false, "Bypass the local interface cache")
	rootCmd.AddCommand(inspectCmd)
}
