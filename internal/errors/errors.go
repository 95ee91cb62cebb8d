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

package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparison with errors.Is
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrContractCodeNotFound = errors.New("contract code not found")
	ErrRPCConnectionFailed  = errors.New("RPC connection failed")
	ErrInvalidNetwork       = errors.New("invalid network")
	ErrMarshalFailed        = errors.New("failed to marshal request")
	ErrUnmarshalFailed      = errors.New("failed to unmarshal response")
	ErrSignerUnavailable    = errors.New("signer unavailable")
	ErrInvalidConfig        = errors.New("invalid configuration")
)

// Wrap functions for consistent error wrapping
func WrapAccountNotFound(accountID string) error {
	return fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
}

func WrapContractCodeNotFound(contractID string) error {
	return fmt.Errorf("%w: %s", ErrContractCodeNotFound, contractID)
}

func WrapRPCConnectionFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrRPCConnectionFailed, err)
}

func WrapInvalidNetwork(network string) error {
	return fmt.Errorf("%w: %s. Must be one of: testnet, mainnet, futurenet, local", ErrInvalidNetwork, network)
}

func WrapMarshalFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrMarshalFailed, err)
}

func WrapUnmarshalFailed(err error, output string) error {
	return fmt.Errorf("%w: %w, output: %s", ErrUnmarshalFailed, err, output)
}

func WrapSignerUnavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrSignerUnavailable, err)
}

func WrapConfigError(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, msg, err)
}

func WrapValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}
