// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package signer

import "os"

// FromEnv creates a SeedSigner from the SOROKIT_SIGNER_SEED environment
// variable. The daemon uses this so the seed stays out of argv and shell
// history.
func FromEnv() (*SeedSigner, error) {
	seed := os.Getenv("SOROKIT_SIGNER_SEED")
	if seed == "" {
		return nil, &SignerError{Op: "env", Msg: "SOROKIT_SIGNER_SEED is not set"}
	}
	return NewSeedSigner(seed)
}
