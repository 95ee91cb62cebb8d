// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"fmt"

	"github.com/stellar/go/xdr"
)

// JSON-RPC method names exposed by Soroban RPC.
const (
	MethodGetHealth           = "getHealth"
	MethodGetVersionInfo      = "getVersionInfo"
	MethodGetNetwork          = "getNetwork"
	MethodGetLatestLedger     = "getLatestLedger"
	MethodGetLedgerEntries    = "getLedgerEntries"
	MethodSimulateTransaction = "simulateTransaction"
	MethodSendTransaction     = "sendTransaction"
	MethodGetTransaction      = "getTransaction"
)

// Terminal and in-flight statuses reported by getTransaction.
const (
	TransactionStatusSuccess  = "SUCCESS"
	TransactionStatusNotFound = "NOT_FOUND"
	TransactionStatusFailed   = "FAILED"
)

// Statuses reported by sendTransaction.
const (
	SendStatusPending       = "PENDING"
	SendStatusDuplicate     = "DUPLICATE"
	SendStatusTryAgainLater = "TRY_AGAIN_LATER"
	SendStatusError         = "ERROR"
)

// HealthResponse is the result of getHealth.
type HealthResponse struct {
	Status                string `json:"status"`
	LatestLedger          uint32 `json:"latestLedger"`
	OldestLedger          uint32 `json:"oldestLedger"`
	LedgerRetentionWindow uint32 `json:"ledgerRetentionWindow"`
}

// VersionInfoResponse is the result of getVersionInfo.
type VersionInfoResponse struct {
	Version            string `json:"version"`
	CommitHash         string `json:"commitHash"`
	BuildTimestamp     string `json:"buildTimestamp"`
	CaptiveCoreVersion string `json:"captiveCoreVersion"`
	ProtocolVersion    uint32 `json:"protocolVersion"`
}

// NetworkResponse is the result of getNetwork.
type NetworkResponse struct {
	FriendbotURL    string `json:"friendbotUrl,omitempty"`
	Passphrase      string `json:"passphrase"`
	ProtocolVersion uint32 `json:"protocolVersion"`
}

// LatestLedgerResponse is the result of getLatestLedger.
type LatestLedgerResponse struct {
	ID              string `json:"id"`
	ProtocolVersion uint32 `json:"protocolVersion"`
	Sequence        uint32 `json:"sequence"`
}

// GetLedgerEntriesRequest asks for the current state of a set of ledger
// entries, identified by base64-encoded XDR LedgerKeys.
type GetLedgerEntriesRequest struct {
	Keys []string `json:"keys"`
}

// LedgerEntryResult is one entry in a getLedgerEntries result.
type LedgerEntryResult struct {
	KeyXDR             string  `json:"key"`
	DataXDR            string  `json:"xdr"`
	LastModifiedLedger uint32  `json:"lastModifiedLedgerSeq"`
	LiveUntilLedger    *uint32 `json:"liveUntilLedgerSeq,omitempty"`
}

// LedgerEntry decodes the entry payload.
func (r LedgerEntryResult) LedgerEntry() (xdr.LedgerEntryData, error) {
	var data xdr.LedgerEntryData
	if err := xdr.SafeUnmarshalBase64(r.DataXDR, &data); err != nil {
		return xdr.LedgerEntryData{}, fmt.Errorf("unmarshal ledger entry data: %w", err)
	}
	return data, nil
}

// GetLedgerEntriesResponse is the result of getLedgerEntries. Entries absent
// from the ledger are simply omitted from the list.
type GetLedgerEntriesResponse struct {
	Entries      []LedgerEntryResult `json:"entries"`
	LatestLedger uint32              `json:"latestLedger"`
}

// ResourceConfig tunes simulation resource estimation.
type ResourceConfig struct {
	InstructionLeeway uint64 `json:"instructionLeeway"`
}

// SimulateTransactionRequest is the params object for simulateTransaction.
type SimulateTransactionRequest struct {
	Transaction    string          `json:"transaction"`
	ResourceConfig *ResourceConfig `json:"resourceConfig,omitempty"`
}

// SimulateHostFunctionResult carries the simulated return value and the
// authorization entries the host function requires.
type SimulateHostFunctionResult struct {
	AuthXDR        []string `json:"auth"`
	ReturnValueXDR string   `json:"xdr"`
}

// ReturnValue decodes the simulated return value.
func (r SimulateHostFunctionResult) ReturnValue() (xdr.ScVal, error) {
	var val xdr.ScVal
	if err := xdr.SafeUnmarshalBase64(r.ReturnValueXDR, &val); err != nil {
		return xdr.ScVal{}, fmt.Errorf("unmarshal return value: %w", err)
	}
	return val, nil
}

// AuthEntries decodes the required authorization entries.
func (r SimulateHostFunctionResult) AuthEntries() ([]xdr.SorobanAuthorizationEntry, error) {
	entries := make([]xdr.SorobanAuthorizationEntry, 0, len(r.AuthXDR))
	for i, raw := range r.AuthXDR {
		var entry xdr.SorobanAuthorizationEntry
		if err := xdr.SafeUnmarshalBase64(raw, &entry); err != nil {
			return nil, fmt.Errorf("unmarshal auth entry %d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// RestorePreamble signals that simulation hit archived ledger entries. The
// carried transaction data describes the restoreFootprint operation needed
// before the original transaction can run.
type RestorePreamble struct {
	TransactionDataXDR string `json:"transactionData"`
	MinResourceFee     int64  `json:"minResourceFee,string"`
}

// SorobanTransactionData decodes the restore operation's resource data.
func (p RestorePreamble) SorobanTransactionData() (xdr.SorobanTransactionData, error) {
	var data xdr.SorobanTransactionData
	if err := xdr.SafeUnmarshalBase64(p.TransactionDataXDR, &data); err != nil {
		return xdr.SorobanTransactionData{}, fmt.Errorf("unmarshal restore transaction data: %w", err)
	}
	return data, nil
}

// SimulateTransactionResponse is the result of simulateTransaction.
type SimulateTransactionResponse struct {
	Error              string                       `json:"error,omitempty"`
	TransactionDataXDR string                       `json:"transactionData,omitempty"`
	MinResourceFee     int64                        `json:"minResourceFee,string,omitempty"`
	EventsXDR          []string                     `json:"events,omitempty"`
	Results            []SimulateHostFunctionResult `json:"results,omitempty"`
	RestorePreamble    *RestorePreamble             `json:"restorePreamble,omitempty"`
	LatestLedger       uint32                       `json:"latestLedger"`
}

// SorobanTransactionData decodes the simulated footprint and resource data.
func (r SimulateTransactionResponse) SorobanTransactionData() (xdr.SorobanTransactionData, error) {
	var data xdr.SorobanTransactionData
	if err := xdr.SafeUnmarshalBase64(r.TransactionDataXDR, &data); err != nil {
		return xdr.SorobanTransactionData{}, fmt.Errorf("unmarshal transaction data: %w", err)
	}
	return data, nil
}

// AuthEntries decodes the authorization entries of the sole host function
// result. Simulations of non-Soroban transactions have no results and yield
// an empty list.
func (r SimulateTransactionResponse) AuthEntries() ([]xdr.SorobanAuthorizationEntry, error) {
	if len(r.Results) == 0 {
		return nil, nil
	}
	return r.Results[0].AuthEntries()
}

// ReturnValue decodes the simulated return value of the sole host function
// result.
func (r SimulateTransactionResponse) ReturnValue() (xdr.ScVal, error) {
	if len(r.Results) == 0 {
		return xdr.ScVal{}, fmt.Errorf("simulation has no host function result")
	}
	return r.Results[0].ReturnValue()
}

// SendTransactionRequest is the params object for sendTransaction.
type SendTransactionRequest struct {
	Transaction string `json:"transaction"`
}

// SendTransactionResponse is the result of sendTransaction.
type SendTransactionResponse struct {
	Status                string   `json:"status"`
	Hash                  string   `json:"hash"`
	LatestLedger          uint32   `json:"latestLedger"`
	LatestLedgerCloseTime string   `json:"latestLedgerCloseTime,omitempty"`
	ErrorResultXDR        string   `json:"errorResultXdr,omitempty"`
	DiagnosticEventsXDR   []string `json:"diagnosticEventsXdr,omitempty"`
}

// GetTransactionRequest is the params object for getTransaction.
type GetTransactionRequest struct {
	Hash string `json:"hash"`
}

// GetTransactionResponse is the result of getTransaction.
type GetTransactionResponse struct {
	Status                string `json:"status"`
	LatestLedger          uint32 `json:"latestLedger"`
	LatestLedgerCloseTime string `json:"latestLedgerCloseTime,omitempty"`
	OldestLedger          uint32 `json:"oldestLedger"`
	OldestLedgerCloseTime string `json:"oldestLedgerCloseTime,omitempty"`
	ApplicationOrder      int32  `json:"applicationOrder,omitempty"`
	FeeBump               bool   `json:"feeBump,omitempty"`
	EnvelopeXDR           string `json:"envelopeXdr,omitempty"`
	ResultXDR             string `json:"resultXdr,omitempty"`
	ResultMetaXDR         string `json:"resultMetaXdr,omitempty"`
	Ledger                uint32 `json:"ledger,omitempty"`
	CreatedAt             int64  `json:"createdAt,string,omitempty"`
}

// TransactionEnvelope decodes the transaction envelope.
func (r GetTransactionResponse) TransactionEnvelope() (xdr.TransactionEnvelope, error) {
	var env xdr.TransactionEnvelope
	if err := xdr.SafeUnmarshalBase64(r.EnvelopeXDR, &env); err != nil {
		return xdr.TransactionEnvelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, nil
}

// TransactionResult decodes the transaction result.
func (r GetTransactionResponse) TransactionResult() (xdr.TransactionResult, error) {
	var res xdr.TransactionResult
	if err := xdr.SafeUnmarshalBase64(r.ResultXDR, &res); err != nil {
		return xdr.TransactionResult{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return res, nil
}

// ResultMeta decodes the transaction meta.
func (r GetTransactionResponse) ResultMeta() (xdr.TransactionMeta, error) {
	var meta xdr.TransactionMeta
	if err := xdr.SafeUnmarshalBase64(r.ResultMetaXDR, &meta); err != nil {
		return xdr.TransactionMeta{}, fmt.Errorf("unmarshal result meta: %w", err)
	}
	return meta, nil
}

// ReturnValue extracts the host function return value from the transaction
// meta. Only Soroban transactions carry one.
func (r GetTransactionResponse) ReturnValue() (xdr.ScVal, error) {
	meta, err := r.ResultMeta()
	if err != nil {
		return xdr.ScVal{}, err
	}
	switch meta.V {
	case 3:
		if meta.V3 == nil || meta.V3.SorobanMeta == nil {
			return xdr.ScVal{}, fmt.Errorf("transaction meta has no soroban section")
		}
		return meta.V3.SorobanMeta.ReturnValue, nil
	case 4:
		if meta.V4 == nil || meta.V4.SorobanMeta == nil || meta.V4.SorobanMeta.ReturnValue == nil {
			return xdr.ScVal{}, fmt.Errorf("transaction meta has no soroban return value")
		}
		return *meta.V4.SorobanMeta.ReturnValue, nil
	default:
		return xdr.ScVal{}, fmt.Errorf("unsupported transaction meta version %d", meta.V)
	}
}
