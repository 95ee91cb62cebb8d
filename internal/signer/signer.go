// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package signer

import "fmt"

// Signer is the interface for payload signing with a Stellar key.
// Implementations hold the key in memory (SeedSigner) or forward the
// work to a process that does.
type Signer interface {
	// Sign produces a signature over the provided payload.
	Sign(data []byte) ([]byte, error)

	// Address returns the G... account address of the signing key.
	Address() string
}

// SignerError represents an error originating from a signing operation.
type SignerError struct {
	Op  string
	Msg string
	Err error
}

func (e *SignerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *SignerError) Unwrap() error {
	return e.Err
}
