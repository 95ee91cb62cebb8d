// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"testing"

	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u32ScVal(n uint32) xdr.ScVal {
	v := xdr.Uint32(n)
	return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &v}
}

func metaV3B64(t *testing.T, ret xdr.ScVal) string {
	t.Helper()
	meta := xdr.TransactionMeta{
		V: 3,
		V3: &xdr.TransactionMetaV3{
			SorobanMeta: &xdr.SorobanTransactionMeta{
				ReturnValue: ret,
			},
		},
	}
	b64, err := xdr.MarshalBase64(meta)
	require.NoError(t, err)
	return b64
}

func TestGetTransactionResponse_ReturnValueV3(t *testing.T) {
	resp := GetTransactionResponse{
		Status:        TransactionStatusSuccess,
		ResultMetaXDR: metaV3B64(t, u32ScVal(7)),
	}

	val, err := resp.ReturnValue()
	require.NoError(t, err)
	require.Equal(t, xdr.ScValTypeScvU32, val.Type)
	assert.Equal(t, xdr.Uint32(7), *val.U32)
}

func TestGetTransactionResponse_ReturnValueMissingMeta(t *testing.T) {
	meta := xdr.TransactionMeta{V: 3, V3: &xdr.TransactionMetaV3{}}
	b64, err := xdr.MarshalBase64(meta)
	require.NoError(t, err)

	resp := GetTransactionResponse{ResultMetaXDR: b64}
	_, err = resp.ReturnValue()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no soroban section")
}

func TestSimulateHostFunctionResult_Decode(t *testing.T) {
	retB64, err := xdr.MarshalBase64(u32ScVal(99))
	require.NoError(t, err)

	entry := xdr.SorobanAuthorizationEntry{
		Credentials: xdr.SorobanCredentials{
			Type: xdr.SorobanCredentialsTypeSorobanCredentialsSourceAccount,
		},
	}
	entryB64, err := xdr.MarshalBase64(entry)
	require.NoError(t, err)

	res := SimulateHostFunctionResult{
		AuthXDR:        []string{entryB64},
		ReturnValueXDR: retB64,
	}

	val, err := res.ReturnValue()
	require.NoError(t, err)
	assert.Equal(t, xdr.Uint32(99), *val.U32)

	entries, err := res.AuthEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, xdr.SorobanCredentialsTypeSorobanCredentialsSourceAccount, entries[0].Credentials.Type)
}

func TestSimulateTransactionResponse_NoResults(t *testing.T) {
	resp := SimulateTransactionResponse{LatestLedger: 1}

	entries, err := resp.AuthEntries()
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = resp.ReturnValue()
	assert.Error(t, err)
}
