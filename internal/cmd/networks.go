// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solrane/sorokit/internal/config"
	"github.com/solrane/sorokit/internal/errors"
	"github.com/solrane/sorokit/rpc"
)

var (
	networksAddRPCURL     string
	networksAddPassphrase string
	networksAddHorizon    string
)

var networksCmd = &cobra.Command{
	Use:     "networks",
	GroupID: "utility",
	Short:   "Manage saved custom networks",
	Long: `List, add, and remove custom network definitions.

Custom networks live in networks.json next to the main configuration and
are referenced by name, the same way the built-in testnet, mainnet,
futurenet, and local presets are.

Examples:
  sorokit networks list
  sorokit networks add staging --rpc-url https://rpc.staging.example.com --passphrase 'Staging ; July 2025'
  sorokit networks remove staging
  sorokit invoke --network staging CA7Q...UWDA balance --arg id=GDIY...AV72`,
}

var networksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved custom networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := config.ListCustomNetworks()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No custom networks saved.")
			return nil
		}
		for _, name := range names {
			nc, err := config.GetCustomNetwork(name)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\n", name, nc.SorobanRPCURL)
		}
		return nil
	},
}

var networksAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or replace a custom network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if networksAddRPCURL == "" || networksAddPassphrase == "" {
			return errors.WrapValidationError("--rpc-url and --passphrase are required")
		}
		err := config.AddCustomNetwork(name, rpc.NetworkConfig{
			SorobanRPCURL:     networksAddRPCURL,
			NetworkPassphrase: networksAddPassphrase,
			HorizonURL:        networksAddHorizon,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Saved network %q.\n", name)
		return nil
	},
}

var networksRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a custom network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.RemoveCustomNetwork(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed network %q.\n", args[0])
		return nil
	},
}

func init() {
	networksAddCmd.Flags().StringVar(&networksAddRPCURL, "rpc-url", "", "Soroban RPC endpoint of the network")
	networksAddCmd.Flags().StringVar(&networksAddPassphrase, "passphrase", "", "Network passphrase used for transaction signatures")
	networksAddCmd.Flags().StringVar(&networksAddHorizon, "horizon-url", "", "Horizon endpoint (optional)")

	networksCmd.AddCommand(networksListCmd)
	networksCmd.AddCommand(networksAddCmd)
	networksCmd.AddCommand(networksRemoveCmd)
	rootCmd.AddCommand(networksCmd)
}
