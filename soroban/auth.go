// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package soroban

import (
	"context"
	"crypto/sha256"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// AuthEntrySigner produces a signed copy of an authorization entry.
// Implementations may forward the entry to another process or machine
// and return the signed result, which enables signing flows where the
// secret key never enters this process.
type AuthEntrySigner func(ctx context.Context, entry xdr.SorobanAuthorizationEntry) (xdr.SorobanAuthorizationEntry, error)

// SignAuthorizationEntry signs a single authorization entry in place.
//
// The entry must carry address credentials. The signature payload is the
// SHA-256 hash of the authorization preimage over the network id, nonce,
// expiration ledger, and root invocation. The wrapped signature is
// appended to the credentials' signature vector, so one entry can
// accumulate signatures from several signers.
func SignAuthorizationEntry(entry *xdr.SorobanAuthorizationEntry, kp *keypair.Full, validUntilLedger uint32, networkPassphrase string) error {
	if entry.Credentials.Type != xdr.SorobanCredentialsTypeSorobanCredentialsAddress || entry.Credentials.Address == nil {
		return &NoAddressCredentialsError{}
	}
	creds := entry.Credentials.Address
	creds.SignatureExpirationLedger = xdr.Uint32(validUntilLedger)

	preimage := xdr.HashIdPreimage{
		Type: xdr.EnvelopeTypeEnvelopeTypeSorobanAuthorization,
		SorobanAuthorization: &xdr.HashIdPreimageSorobanAuthorization{
			NetworkId:                 xdr.Hash(network.ID(networkPassphrase)),
			Nonce:                     creds.Nonce,
			SignatureExpirationLedger: creds.SignatureExpirationLedger,
			Invocation:                entry.RootInvocation,
		},
	}
	payload, err := preimage.MarshalBinary()
	if err != nil {
		return err
	}
	digest := sha256.Sum256(payload)

	sig, err := kp.Sign(digest[:])
	if err != nil {
		return err
	}
	publicKey, err := strkey.Decode(strkey.VersionByteAccountID, kp.Address())
	if err != nil {
		return err
	}

	appendSignature(creds, signatureMap(publicKey, sig))
	return nil
}

// signatureMap wraps a raw signature and the signer's public key into
// the self-describing structure the host verifies. Map keys must stay
// in lexicographic order.
func signatureMap(publicKey, signature []byte) xdr.ScVal {
	pub := xdr.ScBytes(publicKey)
	sig := xdr.ScBytes(signature)
	return scMap([]xdr.ScMapEntry{
		{Key: symbolVal("public_key"), Val: xdr.ScVal{Type: xdr.ScValTypeScvBytes, Bytes: &pub}},
		{Key: symbolVal("signature"), Val: xdr.ScVal{Type: xdr.ScValTypeScvBytes, Bytes: &sig}},
	})
}

// appendSignature grows the credentials' signature vector, creating it
// on first use. Existing signatures are never replaced.
func appendSignature(creds *xdr.SorobanAddressCredentials, sig xdr.ScVal) {
	if creds.Signature.Type == xdr.ScValTypeScvVec && creds.Signature.Vec != nil && *creds.Signature.Vec != nil {
		**creds.Signature.Vec = append(**creds.Signature.Vec, sig)
		return
	}
	creds.Signature = scVec([]xdr.ScVal{sig})
}

// AuthEntryAddress returns the address whose authorization the entry
// requires. The second return is false for source-account credentials,
// which are covered by the envelope signature instead.
func AuthEntryAddress(entry xdr.SorobanAuthorizationEntry) (Address, bool) {
	if entry.Credentials.Type != xdr.SorobanCredentialsTypeSorobanCredentialsAddress || entry.Credentials.Address == nil {
		return Address{}, false
	}
	addr, err := AddressFromXdr(entry.Credentials.Address.Address)
	if err != nil {
		return Address{}, false
	}
	return addr, true
}

// authEntrySigned reports whether the entry already carries at least one
// signature. Simulation leaves the signature slot void.
func authEntrySigned(entry xdr.SorobanAuthorizationEntry) bool {
	if entry.Credentials.Type != xdr.SorobanCredentialsTypeSorobanCredentialsAddress || entry.Credentials.Address == nil {
		return false
	}
	return entry.Credentials.Address.Signature.Type != xdr.ScValTypeScvVoid
}
