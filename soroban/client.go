// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package soroban

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/stellar/go/xdr"
	"go.opentelemetry.io/otel/attribute"

	"github.com/solrane/sorokit/internal/logger"
	"github.com/solrane/sorokit/internal/telemetry"
	"github.com/solrane/sorokit/rpc"
)

// Client invokes a deployed contract through its parsed interface.
// Method arguments are converted against the contract's own type
// declarations, so callers pass native values instead of hand-built
// contract values.
type Client struct {
	options ClientOptions
	spec    *ContractSpec
}

// NewClient fetches the contract's compiled module from the ledger,
// parses the interface embedded in it, and returns a bound client.
func NewClient(ctx context.Context, options ClientOptions) (*Client, error) {
	if err := options.validate(); err != nil {
		return nil, err
	}
	if options.ContractID == "" {
		return nil, fmt.Errorf("client options: contract ID is required")
	}

	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "soroban_client_new")
	defer span.End()
	span.SetAttributes(attribute.String("contract.id", options.ContractID))

	wasm, _, err := rpc.FetchContractCode(ctx, options.RPC, options.ContractID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	info, err := ParseContractByteCode(wasm)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Logger.Info("Contract client ready",
		"contract_id", options.ContractID,
		"functions", len(info.Spec.Funcs()),
	)
	return &Client{options: options, spec: info.Spec}, nil
}

// NewClientWithSpec binds a client to an interface the caller already
// holds, skipping the network fetch.
func NewClientWithSpec(options ClientOptions, spec *ContractSpec) (*Client, error) {
	if err := options.validate(); err != nil {
		return nil, err
	}
	if options.ContractID == "" {
		return nil, fmt.Errorf("client options: contract ID is required")
	}
	if spec == nil {
		return nil, fmt.Errorf("client options: contract spec is required")
	}
	return &Client{options: options, spec: spec}, nil
}

// Spec returns the parsed contract interface.
func (c *Client) Spec() *ContractSpec {
	return c.spec
}

// Options returns the connection settings the client was built with.
func (c *Client) Options() ClientOptions {
	return c.options
}

// BuildInvokeMethodTx converts the named arguments and assembles (and,
// unless disabled, simulates) an invocation of the given method without
// signing or submitting it. The caller stays in charge of collecting
// authorization signatures and sending.
func (c *Client) BuildInvokeMethodTx(ctx context.Context, method string, args map[string]Native, opts MethodOptions) (*AssembledTransaction, error) {
	if _, err := c.spec.GetFunc(method); err != nil {
		return nil, &MethodNotFoundError{Method: method, Contract: c.options.ContractID}
	}
	scArgs, err := c.spec.FuncArgsToXdrSCValues(method, args)
	if err != nil {
		return nil, err
	}

	addr, err := ContractAddress(c.options.ContractID)
	if err != nil {
		return nil, err
	}
	sc, err := addr.ToXdr()
	if err != nil {
		return nil, err
	}
	fn := xdr.HostFunction{
		Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
		InvokeContract: &xdr.InvokeContractArgs{
			ContractAddress: sc,
			FunctionName:    xdr.ScSymbol(method),
			Args:            scArgs,
		},
	}
	return NewAssembledTransaction(ctx, TransactionOptions{Client: c.options, Method: opts}, fn)
}

// InvokeOptions tune a single InvokeMethod call.
type InvokeOptions struct {
	// Method tunes fees, timeouts, and restore behavior.
	Method MethodOptions

	// Force signs and submits even when simulation classifies the call
	// as read-only.
	Force bool
}

// InvokeMethod invokes a contract method end to end. Read calls return
// the simulated value without touching the ledger; state-changing calls
// are signed with the source account's key, submitted, and polled to a
// terminal status, returning the on-chain result.
//
// Invocations that need authorization from accounts other than the
// source fail with NeedsMoreSignaturesError; use BuildInvokeMethodTx and
// SignAuthEntries for those flows.
func (c *Client) InvokeMethod(ctx context.Context, method string, args map[string]Native, opts InvokeOptions) (xdr.ScVal, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "soroban_invoke_method")
	defer span.End()
	span.SetAttributes(
		attribute.String("contract.id", c.options.ContractID),
		attribute.String("contract.method", method),
	)

	tx, err := c.BuildInvokeMethodTx(ctx, method, args, opts.Method)
	if err != nil {
		span.RecordError(err)
		return xdr.ScVal{}, err
	}
	data, err := tx.GetSimulationData()
	if err != nil {
		span.RecordError(err)
		return xdr.ScVal{}, err
	}

	readCall, err := tx.IsReadCall()
	if err != nil {
		return xdr.ScVal{}, err
	}
	if readCall && !opts.Force {
		logger.Logger.Debug("Read call resolved from simulation",
			"contract_id", c.options.ContractID,
			"method", method,
		)
		return data.ReturnValue, nil
	}

	final, err := tx.SignAndSend(ctx, opts.Force)
	if err != nil {
		span.RecordError(err)
		return xdr.ScVal{}, err
	}
	if final.Status != rpc.TransactionStatusSuccess {
		failed := &TransactionFailedError{
			Hash:   signedTxHash(tx, c.options.NetworkPassphrase),
			Status: final.Status,
		}
		span.RecordError(failed)
		return xdr.ScVal{}, failed
	}
	return final.ReturnValue()
}

// signedTxHash identifies a submitted transaction for error reporting.
// It degrades to an empty string rather than masking the real failure.
func signedTxHash(tx *AssembledTransaction, networkPassphrase string) string {
	signed := tx.SignedTransaction()
	if signed == nil {
		return ""
	}
	hash, err := signed.HashHex(networkPassphrase)
	if err != nil {
		return ""
	}
	return hash
}

// Install uploads a compiled contract module and returns its wasm hash.
// Re-uploading an already installed module simulates as a read call; the
// hash then comes straight from simulation and nothing is submitted.
func Install(ctx context.Context, options TransactionOptions, wasm []byte) (xdr.Hash, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "soroban_install")
	defer span.End()
	span.SetAttributes(attribute.Int("wasm.size_bytes", len(wasm)))

	fn := xdr.HostFunction{
		Type: xdr.HostFunctionTypeHostFunctionTypeUploadContractWasm,
		Wasm: &wasm,
	}
	tx, err := NewAssembledTransaction(ctx, options, fn)
	if err != nil {
		span.RecordError(err)
		return xdr.Hash{}, err
	}
	data, err := tx.GetSimulationData()
	if err != nil {
		span.RecordError(err)
		return xdr.Hash{}, err
	}

	readCall, err := tx.IsReadCall()
	if err != nil {
		return xdr.Hash{}, err
	}
	if readCall {
		logger.Logger.Info("Module already installed, skipping submission")
		return wasmHashFromVal(data.ReturnValue)
	}

	final, err := tx.SignAndSend(ctx, false)
	if err != nil {
		span.RecordError(err)
		return xdr.Hash{}, err
	}
	if final.Status != rpc.TransactionStatusSuccess {
		return xdr.Hash{}, &TransactionFailedError{
			Hash:   signedTxHash(tx, options.Client.NetworkPassphrase),
			Status: final.Status,
		}
	}
	ret, err := final.ReturnValue()
	if err != nil {
		return xdr.Hash{}, err
	}
	hash, err := wasmHashFromVal(ret)
	if err != nil {
		return xdr.Hash{}, err
	}
	logger.Logger.Info("Module installed", "wasm_hash", hex.EncodeToString(hash[:]))
	return hash, nil
}

func wasmHashFromVal(val xdr.ScVal) (xdr.Hash, error) {
	if val.Type != xdr.ScValTypeScvBytes || val.Bytes == nil {
		return xdr.Hash{}, fmt.Errorf("upload returned %s, want bytes", val.Type.String())
	}
	raw := *val.Bytes
	if len(raw) != 32 {
		return xdr.Hash{}, fmt.Errorf("wasm hash must be 32 bytes, got %d", len(raw))
	}
	var hash xdr.Hash
	copy(hash[:], raw)
	return hash, nil
}

// DeployOptions configure a contract deployment.
type DeployOptions struct {
	// WasmHash identifies the installed module to instantiate.
	WasmHash xdr.Hash

	// ConstructorArgs are passed to the contract's constructor, already
	// converted to contract values.
	ConstructorArgs []xdr.ScVal

	// Salt disambiguates repeated deployments by the same deployer. Nil
	// means a random salt.
	Salt *xdr.Uint256
}

// Deploy instantiates an installed module and returns a client bound to
// the freshly created contract. The returned client carries the parsed
// interface fetched from the ledger.
func Deploy(ctx context.Context, options TransactionOptions, deploy DeployOptions) (*Client, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "soroban_deploy")
	defer span.End()
	span.SetAttributes(attribute.String("wasm.hash", hex.EncodeToString(deploy.WasmHash[:])))

	deployer, err := AccountAddress(options.Client.SourceAccount.Address())
	if err != nil {
		return nil, err
	}
	scDeployer, err := deployer.ToXdr()
	if err != nil {
		return nil, err
	}

	var salt xdr.Uint256
	if deploy.Salt != nil {
		salt = *deploy.Salt
	} else if _, err := rand.Read(salt[:]); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	fn := xdr.HostFunction{
		Type: xdr.HostFunctionTypeHostFunctionTypeCreateContractV2,
		CreateContractV2: &xdr.CreateContractArgsV2{
			ContractIdPreimage: xdr.ContractIdPreimage{
				Type: xdr.ContractIdPreimageTypeContractIdPreimageFromAddress,
				FromAddress: &xdr.ContractIdPreimageFromAddress{
					Address: scDeployer,
					Salt:    salt,
				},
			},
			Executable: xdr.ContractExecutable{
				Type:     xdr.ContractExecutableTypeContractExecutableWasm,
				WasmHash: &deploy.WasmHash,
			},
			ConstructorArgs: deploy.ConstructorArgs,
		},
	}
	tx, err := NewAssembledTransaction(ctx, options, fn)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	final, err := tx.SignAndSend(ctx, false)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if final.Status != rpc.TransactionStatusSuccess {
		return nil, &TransactionFailedError{
			Hash:   signedTxHash(tx, options.Client.NetworkPassphrase),
			Status: final.Status,
		}
	}

	ret, err := final.ReturnValue()
	if err != nil {
		return nil, err
	}
	if ret.Type != xdr.ScValTypeScvAddress || ret.Address == nil {
		return nil, fmt.Errorf("deploy returned %s, want address", ret.Type.String())
	}
	created, err := AddressFromXdr(*ret.Address)
	if err != nil {
		return nil, err
	}

	logger.Logger.Info("Contract deployed",
		"contract_id", created.String(),
		"wasm_hash", hex.EncodeToString(deploy.WasmHash[:]),
	)
	clientOptions := options.Client
	clientOptions.ContractID = created.String()
	return NewClient(ctx, clientOptions)
}
