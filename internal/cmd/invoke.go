// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/stellar/go/xdr"

	"github.com/solrane/sorokit/internal/daemon"
	"github.com/solrane/sorokit/internal/errors"
	"github.com/solrane/sorokit/internal/speccache"
	"github.com/solrane/sorokit/internal/specfmt"
	"github.com/solrane/sorokit/internal/watch"
	"github.com/solrane/sorokit/rpc"
	"github.com/solrane/sorokit/soroban"
)

var (
	invokeArgs        []string
	invokeArgsJSON    string
	invokeForce       bool
	invokeSimOnly     bool
	invokeRestore     bool
	invokeNoCache     bool
	invokeFee         int64
	invokeTimeout     time.Duration
	invokeSignerURL   string
	invokeSignerToken string
)

var invokeCmd = &cobra.Command{
	Use:     "invoke <contract-id> <method>",
	GroupID: "contract",
	Short:   "Invoke a contract method",
	Long: `Invoke a method on a deployed Soroban contract.

Arguments are given as repeated --arg name=value pairs, where the value is
JSON (quoted strings, numbers, booleans, arrays, objects). Unquoted values
that are not valid JSON pass through as strings, so bare addresses work
without shell-escaped quotes. The method's signature from the contract
interface decides the on-chain types.

Read-only calls return the simulated result without submitting anything.
Calls that write state or need authorization are signed with the source
account and submitted, then polled until they reach a terminal status.
When other parties must authorize the call, --signer-url asks a sorokit
signing daemon for their signatures first.

Examples:
  sorokit invoke CA7Q...UWDA balance --arg id=GDIY...AV72
  sorokit invoke CA7Q...UWDA transfer --args-json '{"from":"GDIY...","to":"GCRX...","amount":100}'
  sorokit invoke CA7Q...UWDA submit --arg amount=5 --signer-url http://localhost:8317
  sorokit invoke CA7Q...UWDA config --simulate-only`,
	Args: cobra.ExactArgs(2),
	RunE: invokeExec,
}

func invokeExec(cmd *cobra.Command, args []string) error {
	contractID, method := args[0], args[1]

	methodArgs, err := parseMethodArgs(invokeArgs, invokeArgsJSON)
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

	store := openSpecStore(invokeNoCache)
	defer closeSpecStore(store)

	var info *soroban.ContractInfo
	err = watch.Run(ctx, "Fetching contract interface", func(ctx context.Context) error {
		var fetchErr error
		info, _, fetchErr = speccache.FetchInfo(ctx, client, store, contractID)
		return fetchErr
	})
	if err != nil {
		return err
	}

	c, err := soroban.NewClientWithSpec(soroban.ClientOptions{
		SourceAccount:     kp,
		ContractID:        contractID,
		NetworkPassphrase: client.GetNetworkPassphrase(),
		RPC:               client,
	}, info.Spec)
	if err != nil {
		return err
	}

	mopts := soroban.MethodOptions{
		BaseFee: invokeFee,
		Timeout: invokeTimeout,
		Restore: invokeRestore,
	}

	if invokeSimOnly {
		return simulateOnly(ctx, c, method, methodArgs, mopts)
	}
	if invokeSignerURL != "" {
		return invokeWithRemoteSigner(ctx, c, client, method, methodArgs, mopts)
	}

	var result xdr.ScVal
	err = watch.Run(ctx, fmt.Sprintf("Invoking %s", method), func(ctx context.Context) error {
		var invErr error
		result, invErr = c.InvokeMethod(ctx, method, methodArgs, soroban.InvokeOptions{
			Method: mopts,
			Force:  invokeForce,
		})
		return invErr
	})
	if err != nil {
		return err
	}

	fmt.Println(specfmt.FormatScVal(result))
	return nil
}

// simulateOnly runs the simulation and reports what a submission would
// need, without signing or sending anything.
func simulateOnly(ctx context.Context, c *soroban.Client, method string, args map[string]soroban.Native, mopts soroban.MethodOptions) error {
	var tx *soroban.AssembledTransaction
	err := watch.Run(ctx, fmt.Sprintf("Simulating %s", method), func(ctx context.Context) error {
		var buildErr error
		tx, buildErr = c.BuildInvokeMethodTx(ctx, method, args, mopts)
		return buildErr
	})
	if err != nil {
		return err
	}

	data, err := tx.GetSimulationData()
	if err != nil {
		return err
	}
	fmt.Println(specfmt.FormatScVal(data.ReturnValue))

	readOnly, err := tx.IsReadCall()
	if err != nil {
		return err
	}
	if readOnly {
		fmt.Println("Read-only call, nothing to submit.")
		return nil
	}
	if needs := tx.NeedsNonInvokerSigningBy(false); len(needs) > 0 {
		fmt.Printf("Requires authorization from: %s\n", strings.Join(needs, ", "))
	}
	return nil
}

// invokeWithRemoteSigner collects outstanding authorization signatures
// from a signing daemon before submitting.
func invokeWithRemoteSigner(ctx context.Context, c *soroban.Client, client *rpc.Client, method string, args map[string]soroban.Native, mopts soroban.MethodOptions) error {
	var tx *soroban.AssembledTransaction
	err := watch.Run(ctx, fmt.Sprintf("Simulating %s", method), func(ctx context.Context) error {
		var buildErr error
		tx, buildErr = c.BuildInvokeMethodTx(ctx, method, args, mopts)
		return buildErr
	})
	if err != nil {
		return err
	}

	if pending := tx.NeedsNonInvokerSigningBy(false); len(pending) > 0 {
		remote := daemon.NewRemoteSigner(invokeSignerURL, invokeSignerToken)
		signerAddr, err := remote.PublicKey(ctx)
		if err != nil {
			return fmt.Errorf("reaching signing daemon: %w", err)
		}
		err = watch.Run(ctx, fmt.Sprintf("Collecting signature from %s", signerAddr), func(ctx context.Context) error {
			return tx.SignAuthEntries(ctx, soroban.SignAuthEntriesOptions{
				Address:  signerAddr,
				Delegate: remote.AuthEntrySigner(),
			})
		})
		if err != nil {
			return err
		}
	}

	var resp rpc.GetTransactionResponse
	err = watch.Run(ctx, "Submitting transaction", func(ctx context.Context) error {
		var sendErr error
		resp, sendErr = tx.SignAndSend(ctx, invokeForce)
		return sendErr
	})
	if err != nil {
		return err
	}
	if resp.Status != rpc.TransactionStatusSuccess {
		hash, _ := tx.SignedTransaction().HashHex(client.GetNetworkPassphrase())
		return &soroban.TransactionFailedError{Hash: hash, Status: resp.Status}
	}

	result, err := resp.ReturnValue()
	if err != nil {
		return err
	}
	fmt.Println(specfmt.FormatScVal(result))
	return nil
}

// parseMethodArgs merges --args-json with repeated --arg pairs, the pairs
// winning on key collisions. Each pair's value is parsed as JSON first;
// values that are not valid JSON pass through as plain strings.
func parseMethodArgs(pairs []string, argsJSON string) (map[string]soroban.Native, error) {
	args := map[string]soroban.Native{}
	if argsJSON != "" {
		parsed, err := soroban.ArgsFromJSON([]byte(argsJSON))
		if err != nil {
			return nil, err
		}
		args = parsed
	}
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, errors.WrapValidationError(fmt.Sprintf("malformed --arg %q (want name=value)", pair))
		}
		val, err := soroban.FromJSON([]byte(raw))
		if err != nil {
			val = soroban.String(raw)
		}
		args[name] = val
	}
	return args, nil
}

func init() {
	invokeCmd.Flags().StringArrayVar(&invokeArgs, "arg", nil, "Method argument as name=value (repeatable, value is JSON)")
	invokeCmd.Flags().StringVar(&invokeArgsJSON, "args-json", "", "All method arguments as one JSON object")
	invokeCmd.Flags().BoolVar(&invokeForce, "force", false, "Sign and submit even if the simulation says a read suffices")
	invokeCmd.Flags().BoolVar(&invokeSimOnly, "simulate-only", false, "Stop after simulation and print the result")
	invokeCmd.Flags().BoolVar(&invokeRestore, "restore", false, "Restore archived ledger entries before invoking")
	invokeCmd.Flags().BoolVar(&invokeNoCache, "no-cache", false, "Bypass the local interface cache")
	invokeCmd.Flags().Int64Var(&invokeFee, "fee", 0, "Base fee in stroops (0 uses the default)")
	invokeCmd.Flags().DurationVar(&invokeTimeout, "timeout", 0, "How long to wait for a terminal status (0 uses the default)")
	invokeCmd.Flags().StringVar(&invokeSignerURL, "signer-url", "", "URL of a sorokit signing daemon for third-party authorization")
	invokeCmd.Flags().StringVar(&invokeSignerToken, "signer-token", "", "Bearer token for the signing daemon")
	rootCmd.AddCommand(invokeCmd)
}
