// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package signer

import (
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/xdr"

	"github.com/solrane/sorokit/soroban"
)

// SeedSigner holds a Stellar keypair parsed from an S... secret seed and
// implements the Signer interface. The seed never leaves the process.
type SeedSigner struct {
	kp *keypair.Full
}

// NewSeedSigner creates a SeedSigner from an S... secret seed.
func NewSeedSigner(seed string) (*SeedSigner, error) {
	kp, err := keypair.ParseFull(seed)
	if err != nil {
		return nil, &SignerError{Op: "seed", Msg: "invalid secret seed", Err: err}
	}
	return &SeedSigner{kp: kp}, nil
}

// FromKeypair creates a SeedSigner from an existing keypair.
func FromKeypair(kp *keypair.Full) *SeedSigner {
	return &SeedSigner{kp: kp}
}

// Sign produces an Ed25519 signature over the provided payload.
func (s *SeedSigner) Sign(data []byte) ([]byte, error) {
	return s.kp.Sign(data)
}

// Address returns the G... account address of the signing key.
func (s *SeedSigner) Address() string {
	return s.kp.Address()
}

// Keypair exposes the underlying keypair for callers that sign whole
// transactions rather than raw payloads.
func (s *SeedSigner) Keypair() *keypair.Full {
	return s.kp
}

// SignAuthEntry signs a base64-encoded Soroban authorization entry and
// returns the signed entry, re-encoded. The signature is valid until the
// given ledger on the network named by the passphrase.
func (s *SeedSigner) SignAuthEntry(entryB64 string, validUntilLedger uint32, networkPassphrase string) (string, error) {
	var entry xdr.SorobanAuthorizationEntry
	if err := xdr.SafeUnmarshalBase64(entryB64, &entry); err != nil {
		return "", &SignerError{Op: "auth_entry", Msg: "invalid authorization entry XDR", Err: err}
	}

	if err := soroban.SignAuthorizationEntry(&entry, s.kp, validUntilLedger, networkPassphrase); err != nil {
		return "", &SignerError{Op: "auth_entry", Msg: "signing failed", Err: err}
	}

	signed, err := xdr.MarshalBase64(entry)
	if err != nil {
		return "", &SignerError{Op: "auth_entry", Msg: "failed to encode signed entry", Err: err}
	}
	return signed, nil
}
