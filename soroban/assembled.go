// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package soroban

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"go.opentelemetry.io/otel/attribute"

	ierrors "github.com/solrane/sorokit/internal/errors"
	"github.com/solrane/sorokit/internal/logger"
	"github.com/solrane/sorokit/internal/telemetry"
	"github.com/solrane/sorokit/rpc"
)

const (
	// DefaultBaseFee is the per-operation fee in stroops before the
	// simulated resource fee is added on top.
	DefaultBaseFee int64 = txnbuild.MinBaseFee

	// DefaultTimeout bounds the transaction's validity window and the
	// polling loop.
	DefaultTimeout = 300 * time.Second

	// DefaultPollInterval is the fixed wait between status polls.
	DefaultPollInterval = 3 * time.Second

	// defaultValidUntilOffset is how many ledgers past the current one an
	// authorization signature stays valid when the caller does not pick.
	defaultValidUntilOffset = 100

	// timeBoundsBuffer backdates the lower time bound to tolerate clock
	// skew against the validators.
	timeBoundsBuffer = 10 * time.Second
)

// RPCService is the slice of the RPC client the transaction engine
// consumes. *rpc.Client satisfies it.
type RPCService interface {
	GetAccount(ctx context.Context, address string) (*txnbuild.SimpleAccount, error)
	GetLatestLedger(ctx context.Context) (rpc.LatestLedgerResponse, error)
	GetLedgerEntries(ctx context.Context, keys []string) (rpc.GetLedgerEntriesResponse, error)
	SimulateTransaction(ctx context.Context, txBase64 string) (rpc.SimulateTransactionResponse, error)
	SendTransaction(ctx context.Context, txBase64 string) (rpc.SendTransactionResponse, error)
	GetTransaction(ctx context.Context, hash string) (rpc.GetTransactionResponse, error)
}

// ClientOptions configure access to a deployed contract.
type ClientOptions struct {
	// SourceAccount provides the transaction source and, when it is a
	// *keypair.Full, the envelope signing key.
	SourceAccount keypair.KP

	// ContractID is the C... address of the bound contract.
	ContractID string

	// NetworkPassphrase domain-separates every signature.
	NetworkPassphrase string

	// RPC performs all network round trips.
	RPC RPCService
}

func (o ClientOptions) validate() error {
	if o.RPC == nil {
		return fmt.Errorf("client options: RPC service is required")
	}
	if o.SourceAccount == nil {
		return fmt.Errorf("client options: source account is required")
	}
	if o.NetworkPassphrase == "" {
		return fmt.Errorf("client options: network passphrase is required")
	}
	return nil
}

// MethodOptions tune a single invocation.
type MethodOptions struct {
	// BaseFee is the per-operation fee in stroops. Zero means
	// DefaultBaseFee.
	BaseFee int64

	// Timeout bounds the transaction's validity window and the polling
	// loop. Zero means DefaultTimeout.
	Timeout time.Duration

	// PollInterval is the fixed wait between status polls. Zero means
	// DefaultPollInterval.
	PollInterval time.Duration

	// SkipSimulate builds the transaction without simulating it. The
	// caller must run Simulate before signing.
	SkipSimulate bool

	// Restore opts into automatic footprint restoration when simulation
	// reports expired ledger entries.
	Restore bool
}

func (o MethodOptions) withDefaults() MethodOptions {
	if o.BaseFee == 0 {
		o.BaseFee = DefaultBaseFee
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.PollInterval == 0 {
		o.PollInterval = DefaultPollInterval
	}
	return o
}

// TransactionOptions bundle the connection settings and per-invocation
// tuning for one assembled transaction.
type TransactionOptions struct {
	Client ClientOptions
	Method MethodOptions
}

// SimulationData is the distilled outcome of a successful simulation.
type SimulationData struct {
	Auth            []xdr.SorobanAuthorizationEntry
	TransactionData xdr.SorobanTransactionData
	ReturnValue     xdr.ScVal
}

// AssembledTransaction drives one contract invocation from build through
// simulation, signing, submission, and status polling.
//
// The zero value is not usable; construct through NewAssembledTransaction
// or NewAssembledTransactionWithOp. Instances are not safe for concurrent
// use.
type AssembledTransaction struct {
	options TransactionOptions
	op      *txnbuild.InvokeHostFunction

	// account holds the fetched source account with its pre-increment
	// sequence number, so the envelope can be rebuilt without refetching.
	account txnbuild.SimpleAccount

	// tx is the unsigned transaction in its current state. It survives
	// signing so the caller can resimulate or inspect it.
	tx *txnbuild.Transaction

	// signed is the signed clone produced by Sign.
	signed *txnbuild.Transaction

	simulation     *rpc.SimulateTransactionResponse
	simulationData *SimulationData

	// restoreTried caps footprint restoration at one attempt per
	// transaction, so a persistent preamble cannot loop.
	restoreTried bool
}

// NewAssembledTransaction builds and, unless disabled, simulates a
// transaction invoking the given host function.
func NewAssembledTransaction(ctx context.Context, options TransactionOptions, fn xdr.HostFunction) (*AssembledTransaction, error) {
	return NewAssembledTransactionWithOp(ctx, options, &txnbuild.InvokeHostFunction{HostFunction: fn})
}

// NewAssembledTransactionWithOp wraps a caller-supplied operation, for
// flows that prepared the invocation (and possibly its authorization
// entries) elsewhere.
func NewAssembledTransactionWithOp(ctx context.Context, options TransactionOptions, op *txnbuild.InvokeHostFunction) (*AssembledTransaction, error) {
	if err := options.Client.validate(); err != nil {
		return nil, err
	}
	options.Method = options.Method.withDefaults()

	t := &AssembledTransaction{options: options, op: op}
	if err := t.build(ctx); err != nil {
		return nil, err
	}
	if !options.Method.SkipSimulate {
		if err := t.Simulate(ctx); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// build fetches the source account's current sequence number and
// assembles the unsigned envelope.
func (t *AssembledTransaction) build(ctx context.Context) error {
	account, err := t.options.Client.RPC.GetAccount(ctx, t.options.Client.SourceAccount.Address())
	if err != nil {
		return err
	}
	t.account = *account
	logger.Logger.Debug("Transaction source fetched",
		"account", t.account.AccountID,
		"sequence", t.account.Sequence,
	)
	return t.rebuildTx()
}

// rebuildTx reassembles the unsigned envelope from the operation's
// current state without touching the network. The stored sequence number
// is reused, so rebuilding after auth changes keeps the same sequence.
func (t *AssembledTransaction) rebuildTx() error {
	account := t.account
	now := time.Now()

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &account,
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{t.op},
		BaseFee:              t.fee(),
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimebounds(
				now.Add(-timeBoundsBuffer).Unix(),
				now.Add(t.options.Method.Timeout).Unix(),
			),
		},
	})
	if err != nil {
		return fmt.Errorf("building transaction: %w", err)
	}
	t.tx = tx
	return nil
}

// fee returns the per-operation fee, including the simulated resource
// fee once simulation has succeeded.
func (t *AssembledTransaction) fee() int64 {
	fee := t.options.Method.BaseFee
	if t.simulation != nil && t.simulation.Error == "" {
		fee += t.simulation.MinResourceFee
	}
	return fee
}

// Simulate submits the unsigned transaction for simulation and merges
// the resulting footprint, resource fee, and authorization entries into
// the pending transaction.
//
// When simulation reports expired ledger entries and the Restore option
// is set, a separate restore-footprint transaction is submitted first;
// on its success the transaction is rebuilt with a fresh sequence number
// and simulated again. Simulation failures are recorded, not returned:
// they surface on the first call that needs the simulation outcome.
func (t *AssembledTransaction) Simulate(ctx context.Context) error {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "soroban_simulate")
	defer span.End()

	t.simulation = nil
	t.simulationData = nil
	t.signed = nil

	txBase64, err := t.tx.Base64()
	if err != nil {
		return ierrors.WrapMarshalFailed(err)
	}
	resp, err := t.options.Client.RPC.SimulateTransaction(ctx, txBase64)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if resp.Error == "" && resp.RestorePreamble != nil && t.options.Method.Restore && !t.restoreTried {
		if kp, ok := t.options.Client.SourceAccount.(*keypair.Full); ok {
			t.restoreTried = true
			span.SetAttributes(attribute.Bool("restore.attempted", true))
			if err := t.restoreFootprint(ctx, *resp.RestorePreamble, kp); err != nil {
				span.RecordError(err)
				return err
			}
			// Fresh sequence number and time bounds for the retry.
			if err := t.build(ctx); err != nil {
				return err
			}
			return t.Simulate(ctx)
		}
		logger.Logger.Warn("Restore needed but no signing key available",
			"account", t.options.Client.SourceAccount.Address(),
		)
	}

	t.simulation = &resp
	if resp.Error != "" || resp.RestorePreamble != nil {
		return nil
	}

	txData, err := resp.SorobanTransactionData()
	if err != nil {
		return err
	}
	auth, err := resp.AuthEntries()
	if err != nil {
		return err
	}
	// Entries set before simulation (possibly already signed) win over
	// the simulated ones.
	if len(t.op.Auth) == 0 {
		t.op.Auth = auth
	}
	ext, err := xdr.NewTransactionExt(1, txData)
	if err != nil {
		return err
	}
	t.op.Ext = ext

	logger.Logger.Debug("Simulation merged into transaction",
		"min_resource_fee", resp.MinResourceFee,
		"auth_entries", len(t.op.Auth),
	)
	return t.rebuildTx()
}

// restoreFootprint submits a restore-footprint transaction built from
// the simulation's restore preamble and waits for it to complete.
func (t *AssembledTransaction) restoreFootprint(ctx context.Context, preamble rpc.RestorePreamble, kp *keypair.Full) error {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "soroban_restore_footprint")
	defer span.End()

	logger.Logger.Info("Restoring archived ledger entries",
		"account", kp.Address(),
		"min_resource_fee", preamble.MinResourceFee,
	)

	txData, err := preamble.SorobanTransactionData()
	if err != nil {
		return err
	}
	op := &txnbuild.RestoreFootprint{}
	op.Ext, err = xdr.NewTransactionExt(1, txData)
	if err != nil {
		return err
	}

	account, err := t.options.Client.RPC.GetAccount(ctx, kp.Address())
	if err != nil {
		return err
	}
	now := time.Now()
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        account,
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{op},
		BaseFee:              t.options.Method.BaseFee + preamble.MinResourceFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimebounds(
				now.Add(-timeBoundsBuffer).Unix(),
				now.Add(t.options.Method.Timeout).Unix(),
			),
		},
	})
	if err != nil {
		return fmt.Errorf("building restore transaction: %w", err)
	}
	signed, err := tx.Sign(t.options.Client.NetworkPassphrase, kp)
	if err != nil {
		return err
	}
	signedBase64, err := signed.Base64()
	if err != nil {
		return ierrors.WrapMarshalFailed(err)
	}

	sendResp, err := t.options.Client.RPC.SendTransaction(ctx, signedBase64)
	if err != nil {
		return err
	}
	if sendResp.Status == rpc.SendStatusError || sendResp.Status == rpc.SendStatusDuplicate {
		return &RestoreFailedError{Status: sendResp.Status}
	}

	final, err := t.pollStatus(ctx, sendResp.Hash)
	if err != nil {
		return err
	}
	if final.Status != rpc.TransactionStatusSuccess {
		return &RestoreFailedError{Status: final.Status}
	}
	logger.Logger.Info("Ledger entries restored", "hash", sendResp.Hash)
	return nil
}

// GetSimulationData returns the simulation outcome, memoized across
// calls. It fails before simulation, when simulation recorded an error,
// or while a restore precondition is outstanding.
func (t *AssembledTransaction) GetSimulationData() (*SimulationData, error) {
	if t.simulationData != nil {
		return t.simulationData, nil
	}
	if t.simulation == nil {
		return nil, &NotYetSimulatedError{}
	}
	if t.simulation.Error != "" {
		return nil, &SimulationFailedError{Message: t.simulation.Error}
	}
	if t.simulation.RestorePreamble != nil {
		return nil, &RestoreRequiredError{}
	}

	txData, err := t.simulation.SorobanTransactionData()
	if err != nil {
		return nil, err
	}
	auth, err := t.simulation.AuthEntries()
	if err != nil {
		return nil, err
	}
	returnValue, err := t.simulation.ReturnValue()
	if err != nil {
		return nil, err
	}
	t.simulationData = &SimulationData{
		Auth:            auth,
		TransactionData: txData,
		ReturnValue:     returnValue,
	}
	return t.simulationData, nil
}

// IsReadCall reports whether the simulated invocation needs no signing
// or submission at all: no authorization entries and an empty write
// footprint.
func (t *AssembledTransaction) IsReadCall() (bool, error) {
	data, err := t.GetSimulationData()
	if err != nil {
		return false, err
	}
	footprint := data.TransactionData.Resources.Footprint
	return len(data.Auth) == 0 && len(footprint.ReadWrite) == 0, nil
}

// NeedsNonInvokerSigningBy lists the addresses whose authorization
// entries still need a signature. With includeAlreadySigned, signed
// entries are listed too. Addresses appear in entry order and are not
// deduplicated; callers should treat the result as a set.
func (t *AssembledTransaction) NeedsNonInvokerSigningBy(includeAlreadySigned bool) []string {
	var out []string
	for _, entry := range t.op.Auth {
		addr, ok := AuthEntryAddress(entry)
		if !ok {
			continue
		}
		if !includeAlreadySigned && authEntrySigned(entry) {
			continue
		}
		out = append(out, addr.String())
	}
	return out
}

// SignAuthEntriesOptions control which authorization entries get signed
// and by whom.
type SignAuthEntriesOptions struct {
	// Signer signs matching entries in process. Defaults to the client's
	// source account when it holds a secret key.
	Signer *keypair.Full

	// Address selects the entries to sign. Defaults to the signer's
	// address.
	Address string

	// Delegate signs instead of Signer when set, enabling signing in
	// another process or on another machine. The expiration ledger is
	// filled in before the entry is handed over.
	Delegate AuthEntrySigner

	// ValidUntilLedger is the last ledger the signatures stay valid for.
	// Zero means the current ledger plus a default offset.
	ValidUntilLedger uint32
}

// SignAuthEntries signs every unsigned authorization entry belonging to
// one address. Entries for other addresses are left untouched.
func (t *AssembledTransaction) SignAuthEntries(ctx context.Context, opts SignAuthEntriesOptions) error {
	signer := opts.Signer
	if signer == nil {
		if kp, ok := t.options.Client.SourceAccount.(*keypair.Full); ok {
			signer = kp
		}
	}
	if signer == nil && opts.Delegate == nil {
		return &MissingSignerError{}
	}
	address := opts.Address
	if address == "" {
		if signer == nil {
			return &MissingSignerError{}
		}
		address = signer.Address()
	}

	pending := false
	for _, a := range t.NeedsNonInvokerSigningBy(false) {
		if a == address {
			pending = true
			break
		}
	}
	if !pending {
		return &NothingToSignError{Address: address}
	}

	validUntil := opts.ValidUntilLedger
	if validUntil == 0 {
		latest, err := t.options.Client.RPC.GetLatestLedger(ctx)
		if err != nil {
			return err
		}
		validUntil = latest.Sequence + defaultValidUntilOffset
	}

	for i := range t.op.Auth {
		entry := &t.op.Auth[i]
		addr, ok := AuthEntryAddress(*entry)
		if !ok || addr.String() != address || authEntrySigned(*entry) {
			continue
		}
		if opts.Delegate != nil {
			entry.Credentials.Address.SignatureExpirationLedger = xdr.Uint32(validUntil)
			signedEntry, err := opts.Delegate(ctx, *entry)
			if err != nil {
				return fmt.Errorf("auth entry signing delegate: %w", err)
			}
			t.op.Auth[i] = signedEntry
		} else {
			if err := SignAuthorizationEntry(entry, signer, validUntil, t.options.Client.NetworkPassphrase); err != nil {
				return err
			}
		}
	}
	logger.Logger.Debug("Authorization entries signed",
		"address", address,
		"valid_until_ledger", validUntil,
	)
	return t.rebuildTx()
}

// Sign signs the assembled envelope with the source account's key.
//
// It refuses to sign a read call unless force is set, and refuses while
// any other non-contract address still needs to sign its authorization
// entries. The unsigned transaction is kept; the signature goes onto a
// clone decoded from the encoded form.
func (t *AssembledTransaction) Sign(force bool) error {
	readCall, err := t.IsReadCall()
	if err != nil {
		return err
	}
	if readCall && !force {
		return &NoSignatureNeededError{}
	}

	source := t.options.Client.SourceAccount.Address()
	var outstanding []string
	for _, addr := range t.NeedsNonInvokerSigningBy(false) {
		if addr == source || strings.HasPrefix(addr, "C") {
			continue
		}
		outstanding = append(outstanding, addr)
	}
	if len(outstanding) > 0 {
		return &NeedsMoreSignaturesError{Addresses: outstanding}
	}

	kp, ok := t.options.Client.SourceAccount.(*keypair.Full)
	if !ok {
		return &MissingSignerError{}
	}

	txBase64, err := t.tx.Base64()
	if err != nil {
		return ierrors.WrapMarshalFailed(err)
	}
	generic, err := txnbuild.TransactionFromXDR(txBase64)
	if err != nil {
		return ierrors.WrapUnmarshalFailed(err, txBase64)
	}
	clone, ok := generic.Transaction()
	if !ok {
		return fmt.Errorf("envelope is not a simple transaction")
	}
	signed, err := clone.Sign(t.options.Client.NetworkPassphrase, kp)
	if err != nil {
		return err
	}
	t.signed = signed
	return nil
}

// Send submits the signed transaction and polls it to a terminal status.
// The final response is returned even when the transaction failed;
// callers decide how to treat a FAILED status.
func (t *AssembledTransaction) Send(ctx context.Context) (rpc.GetTransactionResponse, error) {
	if t.signed == nil {
		return rpc.GetTransactionResponse{}, &NotYetSignedError{}
	}

	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "soroban_send")
	defer span.End()

	signedBase64, err := t.signed.Base64()
	if err != nil {
		return rpc.GetTransactionResponse{}, ierrors.WrapMarshalFailed(err)
	}
	resp, err := t.options.Client.RPC.SendTransaction(ctx, signedBase64)
	if err != nil {
		span.RecordError(err)
		return rpc.GetTransactionResponse{}, err
	}
	span.SetAttributes(attribute.String("transaction.hash", resp.Hash))

	if resp.Status == rpc.SendStatusError || resp.Status == rpc.SendStatusDuplicate {
		sendErr := &SendFailedError{Status: resp.Status, ErrorResultXDR: resp.ErrorResultXDR}
		span.RecordError(sendErr)
		return rpc.GetTransactionResponse{}, sendErr
	}

	final, err := t.pollStatus(ctx, resp.Hash)
	if err != nil {
		span.RecordError(err)
		return rpc.GetTransactionResponse{}, err
	}
	logger.Logger.Info("Transaction reached terminal status",
		"hash", resp.Hash,
		"status", final.Status,
	)
	return final, nil
}

// SignAndSend signs the envelope unless already signed, then submits it.
func (t *AssembledTransaction) SignAndSend(ctx context.Context, force bool) (rpc.GetTransactionResponse, error) {
	if t.signed == nil {
		if err := t.Sign(force); err != nil {
			return rpc.GetTransactionResponse{}, err
		}
	}
	return t.Send(ctx)
}

// pollStatus fetches the transaction status at a fixed interval until it
// leaves NOT_FOUND, bounded by the configured timeout.
func (t *AssembledTransaction) pollStatus(ctx context.Context, hash string) (rpc.GetTransactionResponse, error) {
	interval := t.options.Method.PollInterval
	timeout := t.options.Method.Timeout
	start := time.Now()

	var resp rpc.GetTransactionResponse
	operation := func() error {
		var err error
		resp, err = t.options.Client.RPC.GetTransaction(ctx, hash)
		if err != nil {
			return backoff.Permanent(err)
		}
		if resp.Status != rpc.TransactionStatusNotFound {
			return nil
		}
		if elapsed := time.Since(start); elapsed > timeout {
			return backoff.Permanent(&TransactionStillPendingError{Hash: hash, Elapsed: elapsed})
		}
		return fmt.Errorf("transaction %s not yet included", hash)
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(interval), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return rpc.GetTransactionResponse{}, err
	}
	return resp, nil
}

// Transaction returns the unsigned transaction in its current state.
func (t *AssembledTransaction) Transaction() *txnbuild.Transaction {
	return t.tx
}

// SignedTransaction returns the signed envelope, or nil before Sign.
func (t *AssembledTransaction) SignedTransaction() *txnbuild.Transaction {
	return t.signed
}
