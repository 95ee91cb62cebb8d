// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/solrane/sorokit/internal/errors"
	"github.com/solrane/sorokit/rpc"
)

// Config carries the resolved settings for one CLI or daemon run. It is
// loaded once and passed down into constructors; nothing reads it through
// package state.
type Config struct {
	// Network names a preset (testnet, mainnet, futurenet, local) or an
	// entry from networks.json.
	Network string `json:"network,omitempty"`

	// RPCURL overrides the resolved network's Soroban RPC endpoint.
	RPCURL string `json:"rpc_url,omitempty"`

	// AuthToken is sent as a Bearer token on every RPC request when set.
	AuthToken string `json:"auth_token,omitempty"`

	// SourceAccount is the default transaction source: a G... address for
	// watch-only use or an S... seed for signing.
	SourceAccount string `json:"source_account,omitempty"`

	LogLevel string `json:"log_level,omitempty"`

	// Telemetry enables the OTLP trace exporter.
	Telemetry    bool   `json:"telemetry,omitempty"`
	TelemetryURL string `json:"telemetry_url,omitempty"`

	// CrashReporting opts in to anonymous crash reports. The sink fields
	// are optional; see internal/crashreport for the defaults.
	CrashReporting bool   `json:"crash_reporting,omitempty"`
	CrashSentryDSN string `json:"crash_sentry_dsn,omitempty"`
	CrashEndpoint  string `json:"crash_endpoint,omitempty"`
}

// Default returns the configuration used when no file and no environment
// overrides exist.
func Default() *Config {
	return &Config{
		Network:  string(rpc.Testnet),
		LogLevel: "info",
	}
}

// Dir returns the sorokit configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".sorokit"), nil
}

// Path returns the path of the general configuration file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load resolves the configuration: defaults, then config.json, then
// environment variables, which win.
func Load() (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile() error {
	path, err := Path()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapConfigError("failed to read config file", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return errors.WrapConfigError("failed to parse config file", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Network = getEnv("SOROKIT_NETWORK", c.Network)
	c.RPCURL = getEnv("SOROKIT_RPC_URL", c.RPCURL)
	c.AuthToken = getEnv("SOROKIT_AUTH_TOKEN", c.AuthToken)
	c.SourceAccount = getEnv("SOROKIT_SOURCE_ACCOUNT", c.SourceAccount)
	c.LogLevel = getEnv("SOROKIT_LOG_LEVEL", c.LogLevel)
	c.TelemetryURL = getEnv("SOROKIT_TELEMETRY_URL", c.TelemetryURL)

	switch strings.ToLower(os.Getenv("SOROKIT_TELEMETRY")) {
	case "1", "true", "yes":
		c.Telemetry = true
	case "0", "false", "no":
		c.Telemetry = false
	}
}

// Save writes the configuration to config.json with owner-only
// permissions.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.WrapConfigError("failed to create config directory", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.WrapConfigError("failed to marshal config", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.WrapConfigError("failed to write config file", err)
	}
	return nil
}

// Validate runs the default validator set.
func (c *Config) Validate() error {
	return RunValidators(c, DefaultValidators())
}

// ResolveNetwork resolves the configured network name to connection
// settings. Presets are consulted first, then networks.json. An explicit
// RPCURL overrides the network's RPC endpoint.
func (c *Config) ResolveNetwork() (rpc.NetworkConfig, error) {
	nc, ok := rpc.LookupNetwork(rpc.Network(c.Network))
	if !ok {
		custom, err := GetCustomNetwork(c.Network)
		if err != nil {
			return rpc.NetworkConfig{}, errors.WrapInvalidNetwork(c.Network)
		}
		nc = *custom
	}
	if c.RPCURL != "" {
		nc.SorobanRPCURL = c.RPCURL
	}
	return nc, nil
}

// String renders the non-sensitive fields. The auth token and source
// account never appear in logs.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Network: %s, RPC: %s, LogLevel: %s}",
		c.Network, c.RPCURL, c.LogLevel)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
