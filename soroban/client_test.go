// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package soroban

import (
	"context"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solrane/sorokit/rpc"
)

// tokenWasm builds a minimal contract binary declaring a read-only
// balance method and a state-changing transfer method.
func tokenWasm(t *testing.T) []byte {
	t.Helper()
	return contractCode(
		[]byte("\x00asm\x01\x00\x00\x00"),
		[]byte(envMetaMarker), envMetaBytes(t, 23, 0),
		[]byte(specMarker),
		xdrBytes(t, funcEntry("balance")),
		xdrBytes(t, funcEntry("transfer", xdr.ScSpecFunctionInputV0{
			Name: "amount",
			Type: simpleType(xdr.ScSpecTypeScSpecTypeU32),
		})),
	)
}

func tokenSpec(t *testing.T) *ContractSpec {
	t.Helper()
	return NewContractSpec([]xdr.ScSpecEntry{
		funcEntry("balance"),
		funcEntry("transfer", xdr.ScSpecFunctionInputV0{
			Name: "amount",
			Type: simpleType(xdr.ScSpecTypeScSpecTypeU32),
		}),
	})
}

// queueContractFetch primes the mock with the two ledger entry lookups a
// contract code fetch performs: instance first, then code.
func queueContractFetch(t *testing.T, ms *rpc.MockServer, contractID string, wasm []byte) {
	t.Helper()
	cid, err := rpc.DecodeContractID(contractID)
	require.NoError(t, err)
	wasmHash := testHash(t, 0x42)

	instance := xdr.LedgerEntryData{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.ContractDataEntry{
			Contract: xdr.ScAddress{
				Type:       xdr.ScAddressTypeScAddressTypeContract,
				ContractId: &cid,
			},
			Key:        xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance},
			Durability: xdr.ContractDataDurabilityPersistent,
			Val: xdr.ScVal{
				Type: xdr.ScValTypeScvContractInstance,
				Instance: &xdr.ScContractInstance{
					Executable: xdr.ContractExecutable{
						Type:     xdr.ContractExecutableTypeContractExecutableWasm,
						WasmHash: &wasmHash,
					},
				},
			},
		},
	}
	code := xdr.LedgerEntryData{
		Type: xdr.LedgerEntryTypeContractCode,
		ContractCode: &xdr.ContractCodeEntry{
			Hash: wasmHash,
			Code: wasm,
		},
	}
	ms.QueueResponse(rpc.MethodGetLedgerEntries, rpc.SuccessRoute(rpc.GetLedgerEntriesResponse{
		Entries: []rpc.LedgerEntryResult{{DataXDR: b64XDR(t, instance)}},
	}))
	ms.QueueResponse(rpc.MethodGetLedgerEntries, rpc.SuccessRoute(rpc.GetLedgerEntriesResponse{
		Entries: []rpc.LedgerEntryResult{{DataXDR: b64XDR(t, code)}},
	}))
}

func txMetaB64(t *testing.T, returnValue xdr.ScVal) string {
	t.Helper()
	return b64XDR(t, xdr.TransactionMeta{
		V: 3,
		V3: &xdr.TransactionMetaV3{
			SorobanMeta: &xdr.SorobanTransactionMeta{ReturnValue: returnValue},
		},
	})
}

func scBytesVal(b []byte) xdr.ScVal {
	sb := xdr.ScBytes(b)
	return xdr.ScVal{Type: xdr.ScValTypeScvBytes, Bytes: &sb}
}

func scAddressVal(t *testing.T, s string) xdr.ScVal {
	t.Helper()
	addr, err := AddressFromString(s)
	require.NoError(t, err)
	val, err := addr.ToSCVal()
	require.NoError(t, err)
	return val
}

func TestNewClient(t *testing.T) {
	kp := keypair.MustRandom()
	ms := rpc.NewMockServer(map[string]rpc.MockRoute{})
	defer ms.Close()
	queueContractFetch(t, ms, testContractID, tokenWasm(t))

	client, err := NewClient(context.Background(), ClientOptions{
		SourceAccount:     kp,
		ContractID:        testContractID,
		NetworkPassphrase: rpc.TestnetPassphrase,
		RPC:               ms.Client(),
	})
	require.NoError(t, err)

	assert.Len(t, client.Spec().Funcs(), 2)
	assert.Equal(t, testContractID, client.Options().ContractID)
	assert.Equal(t, 2, ms.CallCount(rpc.MethodGetLedgerEntries))
}

func TestNewClient_RequiresContractID(t *testing.T) {
	ms := rpc.NewMockServer(map[string]rpc.MockRoute{})
	defer ms.Close()

	_, err := NewClient(context.Background(), ClientOptions{
		SourceAccount:     keypair.MustRandom(),
		NetworkPassphrase: rpc.TestnetPassphrase,
		RPC:               ms.Client(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contract ID")
}

func TestNewClient_UnparseableCode(t *testing.T) {
	ms := rpc.NewMockServer(map[string]rpc.MockRoute{})
	defer ms.Close()
	queueContractFetch(t, ms, testContractID, []byte("\x00asm no interface sections here"))

	_, err := NewClient(context.Background(), ClientOptions{
		SourceAccount:     keypair.MustRandom(),
		ContractID:        testContractID,
		NetworkPassphrase: rpc.TestnetPassphrase,
		RPC:               ms.Client(),
	})
	require.Error(t, err)
	assert.True(t, IsParseFailed(err))
}

func testClient(t *testing.T, kp keypair.KP, ms *rpc.MockServer) *Client {
	t.Helper()
	client, err := NewClientWithSpec(ClientOptions{
		SourceAccount:     kp,
		ContractID:        testContractID,
		NetworkPassphrase: rpc.TestnetPassphrase,
		RPC:               ms.Client(),
	}, tokenSpec(t))
	require.NoError(t, err)
	return client
}

func TestClient_InvokeMethod_ReadCall(t *testing.T) {
	kp := keypair.MustRandom()
	ms := rpc.NewMockServer(map[string]rpc.MockRoute{
		rpc.MethodGetLedgerEntries:    accountEntriesRoute(t, kp.Address(), 7),
		rpc.MethodSimulateTransaction: rpc.SuccessRoute(simSuccess(t, u32Val(42), nil, nil, 50)),
	})
	defer ms.Close()
	client := testClient(t, kp, ms)

	val, err := client.InvokeMethod(context.Background(), "balance", nil, InvokeOptions{})
	require.NoError(t, err)
	requireU32(t, val, 42)
	assert.Zero(t, ms.CallCount(rpc.MethodSendTransaction))
}

func TestClient_InvokeMethod_Submits(t *testing.T) {
	kp := keypair.MustRandom()
	rw := []xdr.LedgerKey{accountLedgerKey(t, kp.Address())}
	ms := rpc.NewMockServer(map[string]rpc.MockRoute{
		rpc.MethodGetLedgerEntries:    accountEntriesRoute(t, kp.Address(), 7),
		rpc.MethodSimulateTransaction: rpc.SuccessRoute(simSuccess(t, u32Val(1), nil, rw, 50)),
		rpc.MethodSendTransaction: rpc.SuccessRoute(rpc.SendTransactionResponse{
			Status: rpc.SendStatusPending,
			Hash:   testTxHash,
		}),
		rpc.MethodGetTransaction: rpc.SuccessRoute(rpc.GetTransactionResponse{
			Status:        rpc.TransactionStatusSuccess,
			ResultMetaXDR: txMetaB64(t, u32Val(99)),
		}),
	})
	defer ms.Close()
	client := testClient(t, kp, ms)

	val, err := client.InvokeMethod(context.Background(), "transfer",
		map[string]Native{"amount": Uint(5)},
		InvokeOptions{Method: MethodOptions{PollInterval: pollQuickly}},
	)
	require.NoError(t, err)
	requireU32(t, val, 99)
	assert.Equal(t, 1, ms.CallCount(rpc.MethodSendTransaction))
}

func TestClient_InvokeMethod_MethodNotFound(t *testing.T) {
	kp := keypair.MustRandom()
	ms := rpc.NewMockServer(map[string]rpc.MockRoute{})
	defer ms.Close()
	client := testClient(t, kp, ms)

	_, err := client.InvokeMethod(context.Background(), "burn", nil, InvokeOptions{})
	require.Error(t, err)
	assert.True(t, IsMethodNotFound(err))
	assert.ErrorContains(t, err, testContractID)
	assert.Zero(t, ms.CallCount(rpc.MethodSimulateTransaction))
}

func TestClient_InvokeMethod_MissingArgument(t *testing.T) {
	kp := keypair.MustRandom()
	ms := rpc.NewMockServer(map[string]rpc.MockRoute{})
	defer ms.Close()
	client := testClient(t, kp, ms)

	_, err := client.InvokeMethod(context.Background(), "transfer", nil, InvokeOptions{})
	require.Error(t, err)
	assert.True(t, IsArgumentNotFound(err))
}

func TestClient_InvokeMethod_TransactionFailed(t *testing.T) {
	kp := keypair.MustRandom()
	rw := []xdr.LedgerKey{accountLedgerKey(t, kp.Address())}
	ms := rpc.NewMockServer(map[string]rpc.MockRoute{
		rpc.MethodGetLedgerEntries:    accountEntriesRoute(t, kp.Address(), 7),
		rpc.MethodSimulateTransaction: rpc.SuccessRoute(simSuccess(t, u32Val(1), nil, rw, 50)),
		rpc.MethodSendTransaction: rpc.SuccessRoute(rpc.SendTransactionResponse{
			Status: rpc.SendStatusPending,
			Hash:   testTxHash,
		}),
		rpc.MethodGetTransaction: rpc.SuccessRoute(rpc.GetTransactionResponse{
			Status: rpc.TransactionStatusFailed,
		}),
	})
	defer ms.Close()
	client := testClient(t, kp, ms)

	_, err := client.InvokeMethod(context.Background(), "transfer",
		map[string]Native{"amount": Uint(5)},
		InvokeOptions{Method: MethodOptions{PollInterval: pollQuickly}},
	)
	require.Error(t, err)
	assert.True(t, IsTransactionFailed(err))
	assert.ErrorContains(t, err, rpc.TransactionStatusFailed)
}

func TestInstall(t *testing.T) {
	kp := keypair.MustRandom()
	wasmHash := testHash(t, 0x11)
	rw := []xdr.LedgerKey{accountLedgerKey(t, kp.Address())}
	ms := rpc.NewMockServer(map[string]rpc.MockRoute{
		rpc.MethodGetLedgerEntries:    accountEntriesRoute(t, kp.Address(), 7),
		rpc.MethodSimulateTransaction: rpc.SuccessRoute(simSuccess(t, scBytesVal(wasmHash[:]), nil, rw, 50)),
		rpc.MethodSendTransaction: rpc.SuccessRoute(rpc.SendTransactionResponse{
			Status: rpc.SendStatusPending,
			Hash:   testTxHash,
		}),
		rpc.MethodGetTransaction: rpc.SuccessRoute(rpc.GetTransactionResponse{
			Status:        rpc.TransactionStatusSuccess,
			ResultMetaXDR: txMetaB64(t, scBytesVal(wasmHash[:])),
		}),
	})
	defer ms.Close()

	got, err := Install(context.Background(), testTxOptions(kp, ms), tokenWasm(t))
	require.NoError(t, err)
	assert.Equal(t, wasmHash, got)
	assert.Equal(t, 1, ms.CallCount(rpc.MethodSendTransaction))
}

func TestInstall_AlreadyInstalled(t *testing.T) {
	kp := keypair.MustRandom()
	wasmHash := testHash(t, 0x11)
	ms := rpc.NewMockServer(map[string]rpc.MockRoute{
		rpc.MethodGetLedgerEntries:    accountEntriesRoute(t, kp.Address(), 7),
		rpc.MethodSimulateTransaction: rpc.SuccessRoute(simSuccess(t, scBytesVal(wasmHash[:]), nil, nil, 50)),
	})
	defer ms.Close()

	// The code entry already exists, so simulation sees a read-only
	// footprint and the hash comes back without a submission.
	got, err := Install(context.Background(), testTxOptions(kp, ms), tokenWasm(t))
	require.NoError(t, err)
	assert.Equal(t, wasmHash, got)
	assert.Zero(t, ms.CallCount(rpc.MethodSendTransaction))
}

func TestDeploy(t *testing.T) {
	kp := keypair.MustRandom()
	rw := []xdr.LedgerKey{accountLedgerKey(t, kp.Address())}
	ms := rpc.NewMockServer(map[string]rpc.MockRoute{
		rpc.MethodGetLedgerEntries:    accountEntriesRoute(t, kp.Address(), 7),
		rpc.MethodSimulateTransaction: rpc.SuccessRoute(simSuccess(t, u32Val(0), nil, rw, 50)),
		rpc.MethodSendTransaction: rpc.SuccessRoute(rpc.SendTransactionResponse{
			Status: rpc.SendStatusPending,
			Hash:   testTxHash,
		}),
		rpc.MethodGetTransaction: rpc.SuccessRoute(rpc.GetTransactionResponse{
			Status:        rpc.TransactionStatusSuccess,
			ResultMetaXDR: txMetaB64(t, scAddressVal(t, testContractID)),
		}),
	})
	defer ms.Close()
	// The bound client fetches the new contract's code after deployment.
	// The account lookup for the deploy itself hits the standing route
	// first, so the fetch responses queue behind one account response.
	ms.QueueResponse(rpc.MethodGetLedgerEntries, accountEntriesRoute(t, kp.Address(), 7))
	queueContractFetch(t, ms, testContractID, tokenWasm(t))

	client, err := Deploy(context.Background(), testTxOptions(kp, ms), DeployOptions{
		WasmHash: testHash(t, 0x11),
	})
	require.NoError(t, err)
	assert.Equal(t, testContractID, client.Options().ContractID)
	assert.Len(t, client.Spec().Funcs(), 2)
	assert.Equal(t, 1, ms.CallCount(rpc.MethodSendTransaction))
}

func TestDeploy_Failed(t *testing.T) {
	kp := keypair.MustRandom()
	rw := []xdr.LedgerKey{accountLedgerKey(t, kp.Address())}
	ms := rpc.NewMockServer(map[string]rpc.MockRoute{
		rpc.MethodGetLedgerEntries:    accountEntriesRoute(t, kp.Address(), 7),
		rpc.MethodSimulateTransaction: rpc.SuccessRoute(simSuccess(t, u32Val(0), nil, rw, 50)),
		rpc.MethodSendTransaction: rpc.SuccessRoute(rpc.SendTransactionResponse{
			Status: rpc.SendStatusPending,
			Hash:   testTxHash,
		}),
		rpc.MethodGetTransaction: rpc.SuccessRoute(rpc.GetTransactionResponse{
			Status: rpc.TransactionStatusFailed,
		}),
	})
	defer ms.Close()

	_, err := Deploy(context.Background(), testTxOptions(kp, ms), DeployOptions{
		WasmHash: testHash(t, 0x11),
	})
	require.Error(t, err)
	assert.True(t, IsTransactionFailed(err))
}
