// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package signer

import (
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"

	"github.com/solrane/sorokit/soroban"
)

const testContractID = "CA3D5KRYM6CB7OWQ6TWYRR3Z4T7GNZLKERYNZGGA5SOAOPIFY6YQGAXE"

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
				Nonce:     7,
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

func TestSeedSignerFromSeed(t *testing.T) {
	kp := keypair.MustRandom()

	s, err := NewSeedSigner(kp.Seed())
	if err != nil {
		t.Fatalf("NewSeedSigner failed: %v", err)
	}
	if s.Address() != kp.Address() {
		t.Fatalf("address mismatch: got %s, want %s", s.Address(), kp.Address())
	}

	payload := []byte("auth preimage digest")
	sig, err := s.Sign(payload)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if err := kp.Verify(payload, sig); err != nil {
		t.Fatalf("signature verification failed: %v", err)
	}
}

func TestSeedSignerRejectsAddress(t *testing.T) {
	kp := keypair.MustRandom()
	if _, err := NewSeedSigner(kp.Address()); err == nil {
		t.Fatal("expected error for a public address")
	}
}

func TestSeedSignerRejectsGarbage(t *testing.T) {
	if _, err := NewSeedSigner("not-a-seed"); err == nil {
		t.Fatal("expected error for malformed seed")
	}
}

func TestFromKeypair(t *testing.T) {
	kp := keypair.MustRandom()
	s := FromKeypair(kp)
	if s.Address() != kp.Address() {
		t.Fatalf("address mismatch: got %s, want %s", s.Address(), kp.Address())
	}
	if s.Keypair() != kp {
		t.Fatal("Keypair did not return the wrapped keypair")
	}
}

func TestSignAuthEntry(t *testing.T) {
	kp := keypair.MustRandom()
	s := FromKeypair(kp)

	entry := testAuthEntry(t, kp.Address())
	entryB64, err := xdr.MarshalBase64(entry)
	if err != nil {
		t.Fatalf("MarshalBase64 failed: %v", err)
	}

	signedB64, err := s.SignAuthEntry(entryB64, 1234, network.TestNetworkPassphrase)
	if err != nil {
		t.Fatalf("SignAuthEntry failed: %v", err)
	}

	var signed xdr.SorobanAuthorizationEntry
	if err := xdr.SafeUnmarshalBase64(signedB64, &signed); err != nil {
		t.Fatalf("signed entry did not decode: %v", err)
	}

	creds := signed.Credentials.Address
	if creds.SignatureExpirationLedger != 1234 {
		t.Fatalf("expected expiration ledger 1234, got %d", creds.SignatureExpirationLedger)
	}
	if creds.Signature.Type != xdr.ScValTypeScvVec || len(**creds.Signature.Vec) != 1 {
		t.Fatal("expected exactly one wrapped signature")
	}

	sigMap := (**creds.Signature.Vec)[0]
	if sigMap.Type != xdr.ScValTypeScvMap {
		t.Fatalf("expected signature map, got %v", sigMap.Type)
	}
	entries := **sigMap.Map
	rawPub, err := strkey.Decode(strkey.VersionByteAccountID, kp.Address())
	if err != nil {
		t.Fatalf("strkey decode failed: %v", err)
	}
	gotPub := *entries[0].Val.Bytes
	if string(gotPub) != string(rawPub) {
		t.Fatal("signature map does not carry the signer's public key")
	}
}

func TestSignAuthEntryInvalidXDR(t *testing.T) {
	s := FromKeypair(keypair.MustRandom())
	if _, err := s.SignAuthEntry("%%%not-xdr%%%", 1, network.TestNetworkPassphrase); err == nil {
		t.Fatal("expected error for malformed entry")
	}
}

func TestSignAuthEntrySourceCredentials(t *testing.T) {
	kp := keypair.MustRandom()
	s := FromKeypair(kp)

	entry := testAuthEntry(t, kp.Address())
	entry.Credentials = xdr.SorobanCredentials{
		Type: xdr.SorobanCredentialsTypeSorobanCredentialsSourceAccount,
	}
	entryB64, err := xdr.MarshalBase64(entry)
	if err != nil {
		t.Fatalf("MarshalBase64 failed: %v", err)
	}

	if _, err := s.SignAuthEntry(entryB64, 1, network.TestNetworkPassphrase); err == nil {
		t.Fatal("expected error for source-account credentials")
	}
}

func TestFromEnv(t *testing.T) {
	kp := keypair.MustRandom()
	t.Setenv("SOROKIT_SIGNER_SEED", kp.Seed())

	s, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if s.Address() != kp.Address() {
		t.Fatalf("address mismatch: got %s, want %s", s.Address(), kp.Address())
	}
}

func TestFromEnvMissing(t *testing.T) {
	t.Setenv("SOROKIT_SIGNER_SEED", "")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error when SOROKIT_SIGNER_SEED is unset")
	}
}

func TestSignerErrorFormat(t *testing.T) {
	e := &SignerError{Op: "test", Msg: "something failed"}
	if e.Error() != "test: something failed" {
		t.Fatalf("unexpected error string: %s", e.Error())
	}
}

func TestSignerErrorUnwrap(t *testing.T) {
	inner := &SignerError{Op: "inner", Msg: "root cause"}
	outer := &SignerError{Op: "outer", Msg: "wrapping", Err: inner}
	if outer.Unwrap() != inner {
		t.Fatal("Unwrap did not return inner error")
	}
}

func TestSignerInterfaceSatisfied(t *testing.T) {
	var s Signer = FromKeypair(keypair.MustRandom())
	if s.Address() == "" {
		t.Fatal("interface method returned empty address")
	}
}
