// Copyright (c) 2026 Sorokit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solrane/sorokit/internal/daemon"
	"github.com/solrane/sorokit/internal/signer"
)

var (
	signerdPort  string
	signerdToken string
)

var signerdCmd = &cobra.Command{
	Use:     "signerd",
	GroupID: "service",
	Short:   "Start a JSON-RPC authorization signing daemon",
	Long: `Start a JSON-RPC 2.0 server that signs Soroban authorization entries
with a locally held key, so the key never has to leave this machine.

The signing seed is read from SOROKIT_SIGNER_SEED. Signatures are bound
to the configured network's passphrase; a daemon started against testnet
cannot authorize mainnet calls.

Endpoints:
  - signer.SignAuthEntry: sign one authorization entry
  - signer.PublicKey: report the signing account
  - signer.Health: liveness probe

Example:
  sorokit signerd --port 8317 --network testnet
  sorokit signerd --port 8317 --token secret123`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		nc, err := cfg.ResolveNetwork()
		if err != nil {
			return err
		}

		sgn, err := signer.FromEnv()
		if err != nil {
			return err
		}

		server, err := daemon.NewServer(sgn, daemon.Config{
			NetworkPassphrase: nc.NetworkPassphrase,
			AuthToken:         signerdToken,
		})
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		// Setup graceful shutdown
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			fmt.Println("\nReceived interrupt signal, shutting down...")
			cancel()
		}()

		fmt.Printf("Starting sorokit signing daemon on port %s\n", signerdPort)
		fmt.Printf("Network: %s\n", nc.Name)
		fmt.Printf("Signer: %s\n", sgn.Keypair().Address())
		if signerdToken != "" {
			fmt.Println("Authentication: enabled")
		}

		return server.Start(ctx, signerdPort)
	},
}

func init() {
	signerdCmd.Flags().StringVarP(&signerdPort, "port", "p", "8317", "Port to listen on")
	signerdCmd.Flags().StringVar(&signerdToken, "token", "", "Bearer token callers must present")
	rootCmd.AddCommand(signerdCmd)
}
