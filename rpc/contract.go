// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"

	ierrors "github.com/solrane/sorokit/internal/errors"
	"github.com/solrane/sorokit/internal/logger"
)

// ContractInstanceLedgerKey builds the LedgerKey for a contract's instance
// entry. The instance holds the executable reference (wasm hash).
func ContractInstanceLedgerKey(contractID xdr.ContractId) xdr.LedgerKey {
	addr := xdr.ScAddress{
		Type:       xdr.ScAddressTypeScAddressTypeContract,
		ContractId: &contractID,
	}
	// The instance entry is keyed by the reserved ScvLedgerKeyContractInstance value.
	key := xdr.ScVal{
		Type: xdr.ScValTypeScvLedgerKeyContractInstance,
	}
	return xdr.LedgerKey{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.LedgerKeyContractData{
			Contract:   addr,
			Key:        key,
			Durability: xdr.ContractDataDurabilityPersistent,
		},
	}
}

// ContractCodeLedgerKey builds the LedgerKey for a contract code entry.
func ContractCodeLedgerKey(wasmHash xdr.Hash) xdr.LedgerKey {
	return xdr.LedgerKey{
		Type:         xdr.LedgerEntryTypeContractCode,
		ContractCode: &xdr.LedgerKeyContractCode{Hash: wasmHash},
	}
}

// contractCodeHashFromInstance extracts the wasm hash from a contract
// instance entry. Built-in (Stellar Asset) contracts have no wasm executable
// and are rejected.
func contractCodeHashFromInstance(data xdr.LedgerEntryData) (xdr.Hash, error) {
	if data.Type != xdr.LedgerEntryTypeContractData || data.ContractData == nil {
		return xdr.Hash{}, fmt.Errorf("not a contract data entry")
	}
	val := data.ContractData.Val
	if val.Type != xdr.ScValTypeScvContractInstance || val.Instance == nil {
		return xdr.Hash{}, fmt.Errorf("contract data is not a contract instance")
	}
	exec := val.Instance.Executable
	switch exec.Type {
	case xdr.ContractExecutableTypeContractExecutableWasm:
		if exec.WasmHash == nil {
			return xdr.Hash{}, fmt.Errorf("instance executable has nil wasm hash")
		}
		return *exec.WasmHash, nil
	default:
		return xdr.Hash{}, fmt.Errorf("executable type %v is not WASM", exec.Type)
	}
}

// DecodeContractID decodes a contract ID from strkey (C...) or 32-byte hex.
func DecodeContractID(contractIDStr string) (xdr.ContractId, error) {
	s := strings.TrimSpace(contractIDStr)
	if len(s) == 0 {
		return xdr.ContractId{}, fmt.Errorf("empty contract id")
	}
	if s[0] == 'C' {
		decoded, err := strkey.Decode(strkey.VersionByteContract, s)
		if err != nil {
			return xdr.ContractId{}, fmt.Errorf("decode strkey contract id: %w", err)
		}
		if len(decoded) != 32 {
			return xdr.ContractId{}, fmt.Errorf("contract id must be 32 bytes, got %d", len(decoded))
		}
		var cid xdr.ContractId
		copy(cid[:], decoded)
		return cid, nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return xdr.ContractId{}, fmt.Errorf("decode hex contract id: %w", err)
	}
	if len(raw) != 32 {
		return xdr.ContractId{}, fmt.Errorf("contract id must be 32 bytes, got %d", len(raw))
	}
	var cid xdr.ContractId
	copy(cid[:], raw)
	return cid, nil
}

// LedgerEntryGetter is the slice of the client needed to resolve ledger
// entries by key. *Client satisfies it.
type LedgerEntryGetter interface {
	GetLedgerEntries(ctx context.Context, keys []string) (GetLedgerEntriesResponse, error)
}

// FetchContractWasmHash resolves a contract ID to the hash of its installed
// code via the instance entry. contractIDStr can be a strkey (C...) or
// 32-byte hex.
func FetchContractWasmHash(ctx context.Context, svc LedgerEntryGetter, contractIDStr string) (xdr.Hash, error) {
	cid, err := DecodeContractID(contractIDStr)
	if err != nil {
		return xdr.Hash{}, err
	}

	instanceKeyB64, err := xdr.MarshalBase64(ContractInstanceLedgerKey(cid))
	if err != nil {
		return xdr.Hash{}, fmt.Errorf("encode instance key: %w", err)
	}

	instanceResp, err := svc.GetLedgerEntries(ctx, []string{instanceKeyB64})
	if err != nil {
		return xdr.Hash{}, fmt.Errorf("get ledger entries (instance): %w", err)
	}
	if len(instanceResp.Entries) == 0 {
		return xdr.Hash{}, ierrors.WrapContractCodeNotFound(contractIDStr)
	}

	instanceData, err := instanceResp.Entries[0].LedgerEntry()
	if err != nil {
		return xdr.Hash{}, err
	}
	wasmHash, err := contractCodeHashFromInstance(instanceData)
	if err != nil {
		return xdr.Hash{}, fmt.Errorf("get code hash from instance: %w", err)
	}
	return wasmHash, nil
}

// FetchContractCodeByHash fetches the compiled WASM stored under the given
// code hash.
func FetchContractCodeByHash(ctx context.Context, svc LedgerEntryGetter, wasmHash xdr.Hash) ([]byte, error) {
	codeKeyB64, err := xdr.MarshalBase64(ContractCodeLedgerKey(wasmHash))
	if err != nil {
		return nil, fmt.Errorf("encode code key: %w", err)
	}

	codeResp, err := svc.GetLedgerEntries(ctx, []string{codeKeyB64})
	if err != nil {
		return nil, fmt.Errorf("get ledger entries (code): %w", err)
	}
	if len(codeResp.Entries) == 0 {
		return nil, ierrors.WrapContractCodeNotFound(hex.EncodeToString(wasmHash[:]))
	}

	codeData, err := codeResp.Entries[0].LedgerEntry()
	if err != nil {
		return nil, err
	}
	if codeData.Type != xdr.LedgerEntryTypeContractCode || codeData.ContractCode == nil {
		return nil, fmt.Errorf("not a contract code entry")
	}
	return codeData.ContractCode.Code, nil
}

// FetchContractCode fetches the compiled WASM for the given contract ID via
// getLedgerEntries: the instance entry yields the wasm hash, the code entry
// yields the bytes. contractIDStr can be a strkey (C...) or 32-byte hex.
func FetchContractCode(ctx context.Context, svc LedgerEntryGetter, contractIDStr string) ([]byte, xdr.Hash, error) {
	wasmHash, err := FetchContractWasmHash(ctx, svc, contractIDStr)
	if err != nil {
		return nil, xdr.Hash{}, err
	}

	wasm, err := FetchContractCodeByHash(ctx, svc, wasmHash)
	if err != nil {
		return nil, xdr.Hash{}, err
	}

	logger.Logger.Debug("Fetched contract code", "contract_id", contractIDStr, "size_bytes", len(wasm))
	return wasm, wasmHash, nil
}

// FetchContractCode fetches the compiled WASM for the given contract ID.
func (c *Client) FetchContractCode(ctx context.Context, contractIDStr string) ([]byte, xdr.Hash, error) {
	return FetchContractCode(ctx, c, contractIDStr)
}
