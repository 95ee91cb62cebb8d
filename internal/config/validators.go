// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"strings"

	"github.com/stellar/go/keypair"

	"github.com/solrane/sorokit/internal/errors"
)

// Validator validates one aspect of the configuration.
type Validator interface {
	Validate(cfg *Config) error
}

// NetworkValidator checks that a network is named. Unknown names are left
// to resolution time, since they may refer to declared custom networks.
type NetworkValidator struct{}

func (v NetworkValidator) Validate(cfg *Config) error {
	if cfg.Network == "" && cfg.RPCURL == "" {
		return errors.WrapValidationError("either network or rpc_url must be set")
	}
	return nil
}

// RPCValidator checks that an explicit RPC URL, when set, carries a
// usable scheme.
type RPCValidator struct{}

func (v RPCValidator) Validate(cfg *Config) error {
	if cfg.RPCURL == "" {
		return nil
	}
	if !strings.HasPrefix(cfg.RPCURL, "http://") && !strings.HasPrefix(cfg.RPCURL, "https://") {
		return errors.WrapValidationError("rpc_url must use http or https scheme")
	}
	return nil
}

// SourceAccountValidator checks that the configured source account parses
// as a public key or secret seed.
type SourceAccountValidator struct{}

func (v SourceAccountValidator) Validate(cfg *Config) error {
	if cfg.SourceAccount == "" {
		return nil
	}
	if _, err := keypair.Parse(cfg.SourceAccount); err != nil {
		return errors.WrapValidationError("source_account must be a G... address or S... seed")
	}
	return nil
}

// LogLevelValidator checks that the log level is a known value.
type LogLevelValidator struct{}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func (v LogLevelValidator) Validate(cfg *Config) error {
	if cfg.LogLevel == "" {
		return nil
	}
	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return errors.WrapValidationError("log_level must be one of: debug, info, warn, error")
	}
	return nil
}

// DefaultValidators returns the standard validator set.
func DefaultValidators() []Validator {
	return []Validator{
		NetworkValidator{},
		RPCValidator{},
		SourceAccountValidator{},
		LogLevelValidator{},
	}
}

// RunValidators executes each validator against the config, returning the
// first error encountered.
func RunValidators(cfg *Config, validators []Validator) error {
	for _, v := range validators {
		if err := v.Validate(cfg); err != nil {
			return err
		}
	}
	return nil
}
