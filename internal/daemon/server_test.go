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

package daemon

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/xdr"

	"github.com/solrane/sorokit/internal/signer"
	"github.com/solrane/sorokit/soroban"
)

const testContractID = "CA3D5KRYM6CB7OWQ6TWYRR3Z4T7GNZLKERYNZGGA5SOAOPIFY6YQGAXE"

func testServer(t *testing.T, kp *keypair.Full, authToken string) *Server {
	t.Helper()
	server, err := NewServer(signer.FromKeypair(kp), Config{
		NetworkPassphrase: network.TestNetworkPassphrase,
		AuthToken:         authToken,
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server
}

func testAuthEntry(t *testing.T, account string) xdr.SorobanAuthorizationEntry {
	t.Helper()

	addr, err := soroban.AccountAddress(account)
	if err != nil {
		t.Fatalf("AccountAddress failed: %v", err)
	}
	sc, err := addr.ToXdr()
	if err != nil {
		t.Fatalf("ToXdr failed: %v", err)
	}

	contract, err := soroban.ContractAddress(testContractID)
	if err != nil {
		t.Fatalf("ContractAddress failed: %v", err)
	}
	contractSc, err := contract.ToXdr()
	if err != nil {
		t.Fatalf("ToXdr failed: %v", err)
	}

	return xdr.SorobanAuthorizationEntry{
		Credentials: xdr.SorobanCredentials{
			Type: xdr.SorobanCredentialsTypeSorobanCredentialsAddress,
			Address: &xdr.SorobanAddressCredentials{
				Address:   sc,
				Nonce:     11,
				Signature: xdr.ScVal{Type: xdr.ScValTypeScvVoid},
			},
		},
		RootInvocation: xdr.SorobanAuthorizedInvocation{
			Function: xdr.SorobanAuthorizedFunction{
				Type: xdr.SorobanAuthorizedFunctionTypeSorobanAuthorizedFunctionTypeContractFn,
				ContractFn: &xdr.InvokeContractArgs{
					ContractAddress: contractSc,
					FunctionName:    "transfer",
				},
			},
		},
	}
}

func TestServer_SignAuthEntry(t *testing.T) {
	kp := keypair.MustRandom()
	server := testServer(t, kp, "")

	entryB64, err := xdr.MarshalBase64(testAuthEntry(t, kp.Address()))
	if err != nil {
		t.Fatalf("MarshalBase64 failed: %v", err)
	}

	req := httptest.NewRequest("POST", "/rpc", nil)
	var resp SignAuthEntryResponse
	err = server.SignAuthEntry(req, &SignAuthEntryRequest{Entry: entryB64, ValidUntilLedger: 432}, &resp)
	if err != nil {
		t.Fatalf("SignAuthEntry failed: %v", err)
	}

	if resp.Signer != kp.Address() {
		t.Errorf("expected signer %s, got %s", kp.Address(), resp.Signer)
	}

	var signed xdr.SorobanAuthorizationEntry
	if err := xdr.SafeUnmarshalBase64(resp.Entry, &signed); err != nil {
		t.Fatalf("signed entry did not decode: %v", err)
	}
	creds := signed.Credentials.Address
	if creds.SignatureExpirationLedger != 432 {
		t.Errorf("expected expiration ledger 432, got %d", creds.SignatureExpirationLedger)
	}
	if creds.Signature.Type != xdr.ScValTypeScvVec || len(**creds.Signature.Vec) != 1 {
		t.Error("expected exactly one wrapped signature")
	}
}

func TestServer_SignAuthEntry_Validation(t *testing.T) {
	kp := keypair.MustRandom()
	server := testServer(t, kp, "")
	req := httptest.NewRequest("POST", "/rpc", nil)

	var resp SignAuthEntryResponse
	err := server.SignAuthEntry(req, &SignAuthEntryRequest{ValidUntilLedger: 1}, &resp)
	if err == nil {
		t.Fatal("expected error for missing entry")
	}
	jsonErr, ok := err.(*json2.Error)
	if !ok || jsonErr.Code != json2.E_BAD_PARAMS {
		t.Errorf("expected E_BAD_PARAMS, got %v", err)
	}

	entryB64, _ := xdr.MarshalBase64(testAuthEntry(t, kp.Address()))
	err = server.SignAuthEntry(req, &SignAuthEntryRequest{Entry: entryB64}, &resp)
	if err == nil {
		t.Fatal("expected error for zero valid_until_ledger")
	}
}

func TestServer_PublicKey(t *testing.T) {
	kp := keypair.MustRandom()
	server := testServer(t, kp, "")

	req := httptest.NewRequest("POST", "/rpc", nil)
	var resp PublicKeyResponse
	if err := server.PublicKey(req, &PublicKeyRequest{}, &resp); err != nil {
		t.Fatalf("PublicKey failed: %v", err)
	}
	if resp.Address != kp.Address() {
		t.Errorf("expected address %s, got %s", kp.Address(), resp.Address)
	}
}

func TestServer_Authentication(t *testing.T) {
	server := testServer(t, keypair.MustRandom(), "secret123")

	// Test without auth token
	req := httptest.NewRequest("POST", "/rpc", nil)
	if server.authenticate(req) {
		t.Error("Expected authentication to fail without token")
	}

	// Test with correct Bearer token
	req.Header.Set("Authorization", "Bearer secret123")
	if !server.authenticate(req) {
		t.Error("Expected authentication to succeed with correct Bearer token")
	}

	// Test with correct direct token
	req.Header.Set("Authorization", "secret123")
	if !server.authenticate(req) {
		t.Error("Expected authentication to succeed with correct direct token")
	}

	// Test with wrong token
	req.Header.Set("Authorization", "wrong-token")
	if server.authenticate(req) {
		t.Error("Expected authentication to fail with wrong token")
	}
}

func TestServer_HealthSkipsAuth(t *testing.T) {
	server := testServer(t, keypair.MustRandom(), "secret123")

	req := httptest.NewRequest("POST", "/rpc", nil)
	var resp HealthResponse
	if err := server.Health(req, &HealthRequest{}, &resp); err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %s", resp.Status)
	}
}

func TestNewServer_Validation(t *testing.T) {
	if _, err := NewServer(nil, Config{NetworkPassphrase: network.TestNetworkPassphrase}); err == nil {
		t.Error("expected error for nil signer")
	}
	sgn := signer.FromKeypair(keypair.MustRandom())
	if _, err := NewServer(sgn, Config{}); err == nil {
		t.Error("expected error for missing network passphrase")
	}
}

func TestRemoteSigner_SignsOverHTTP(t *testing.T) {
	kp := keypair.MustRandom()
	server := testServer(t, kp, "secret123")

	handler, err := server.Handler()
	if err != nil {
		t.Fatalf("Handler failed: %v", err)
	}
	ts := httptest.NewServer(handler)
	defer ts.Close()

	rs := NewRemoteSigner(ts.URL+"/rpc", "secret123")
	ctx := context.Background()

	address, err := rs.PublicKey(ctx)
	if err != nil {
		t.Fatalf("PublicKey failed: %v", err)
	}
	if address != kp.Address() {
		t.Errorf("expected address %s, got %s", kp.Address(), address)
	}
	if err := rs.Health(ctx); err != nil {
		t.Fatalf("Health failed: %v", err)
	}

	entry := testAuthEntry(t, kp.Address())
	entry.Credentials.Address.SignatureExpirationLedger = 700

	signed, err := rs.AuthEntrySigner()(ctx, entry)
	if err != nil {
		t.Fatalf("delegate signing failed: %v", err)
	}
	creds := signed.Credentials.Address
	if creds.SignatureExpirationLedger != 700 {
		t.Errorf("expected expiration ledger 700, got %d", creds.SignatureExpirationLedger)
	}
	if creds.Signature.Type != xdr.ScValTypeScvVec || len(**creds.Signature.Vec) != 1 {
		t.Error("expected exactly one wrapped signature")
	}
}

func TestRemoteSigner_Unauthorized(t *testing.T) {
	kp := keypair.MustRandom()
	server := testServer(t, kp, "secret123")

	handler, err := server.Handler()
	if err != nil {
		t.Fatalf("Handler failed: %v", err)
	}
	ts := httptest.NewServer(handler)
	defer ts.Close()

	rs := NewRemoteSigner(ts.URL+"/rpc", "wrong-token")
	if _, err := rs.PublicKey(context.Background()); err == nil {
		t.Fatal("expected error with wrong token")
	} else if !strings.Contains(err.Error(), "unauthorized") {
		t.Errorf("expected unauthorized error, got %v", err)
	}
}

func TestRemoteSigner_RequiresAddressCredentials(t *testing.T) {
	kp := keypair.MustRandom()
	entry := testAuthEntry(t, kp.Address())
	entry.Credentials = xdr.SorobanCredentials{
		Type: xdr.SorobanCredentialsTypeSorobanCredentialsSourceAccount,
	}

	rs := NewRemoteSigner("http://127.0.0.1:1/rpc", "")
	if _, err := rs.AuthEntrySigner()(context.Background(), entry); err == nil {
		t.Fatal("expected error for source-account credentials")
	}
}

func TestServer_StartStop(t *testing.T) {
	server := testServer(t, keypair.MustRandom(), "")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// Start server (should stop after timeout)
	if err := server.Start(ctx, "0"); err != nil {
		t.Fatalf("Server start failed: %v", err)
	}
}
