// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidators(t *testing.T) {
	kp := keypair.MustRandom()

	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{
			name: "preset network",
			cfg:  &Config{Network: "testnet", LogLevel: "info"},
		},
		{
			name: "rpc url without network name",
			cfg:  &Config{RPCURL: "https://rpc.example.com"},
		},
		{
			name: "unknown network name deferred to resolution",
			cfg:  &Config{Network: "devnet"},
		},
		{
			name:    "neither network nor rpc url",
			cfg:     &Config{},
			wantErr: "either network or rpc_url",
		},
		{
			name:    "rpc url without scheme",
			cfg:     &Config{RPCURL: "rpc.example.com"},
			wantErr: "http or https",
		},
		{
			name:    "rpc url with wrong scheme",
			cfg:     &Config{RPCURL: "ftp://rpc.example.com"},
			wantErr: "http or https",
		},
		{
			name: "source account as address",
			cfg:  &Config{Network: "testnet", SourceAccount: kp.Address()},
		},
		{
			name: "source account as seed",
			cfg:  &Config{Network: "testnet", SourceAccount: kp.Seed()},
		},
		{
			name:    "source account garbage",
			cfg:     &Config{Network: "testnet", SourceAccount: "not-a-key"},
			wantErr: "source_account",
		},
		{
			name: "log level case insensitive",
			cfg:  &Config{Network: "testnet", LogLevel: "DEBUG"},
		},
		{
			name:    "log level unknown",
			cfg:     &Config{Network: "testnet", LogLevel: "verbose"},
			wantErr: "log_level",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := RunValidators(tc.cfg, DefaultValidators())
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRunValidators_StopsAtFirstError(t *testing.T) {
	cfg := &Config{LogLevel: "verbose"}

	err := RunValidators(cfg, DefaultValidators())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "either network or rpc_url")
}
