// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/stellar/go/keypair"

	"github.com/solrane/sorokit/internal/config"
	"github.com/solrane/sorokit/internal/logger"
	"github.com/solrane/sorokit/internal/speccache"
	"github.com/solrane/sorokit/internal/telemetry"
	"github.com/solrane/sorokit/rpc"
)

// loadConfig resolves the effective configuration: file, then environment,
// then the persistent command-line flags. It also applies the configured
// log level, so commands get consistent logging without extra wiring.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if networkFlag != "" {
		cfg.Network = networkFlag
	}
	if rpcURLFlag != "" {
		cfg.RPCURL = rpcURLFlag
	}
	if authTokenFlag != "" {
		cfg.AuthToken = authTokenFlag
	}
	if sourceAccountFlag != "" {
		cfg.SourceAccount = sourceAccountFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

// rpcClient builds an RPC client for the configured network.
func rpcClient(cfg *config.Config) (*rpc.Client, error) {
	nc, err := cfg.ResolveNetwork()
	if err != nil {
		return nil, err
	}
	return rpc.NewCustomClient(nc, cfg.AuthToken)
}

// sourceKeypair parses the configured source account. A seed yields a
// signing keypair, a public key a watch-only one.
func sourceKeypair(cfg *config.Config) (keypair.KP, error) {
	if cfg.SourceAccount == "" {
		return nil, fmt.Errorf("no source account configured (set SOROKIT_SOURCE_ACCOUNT or --source-account)")
	}
	kp, err := keypair.Parse(cfg.SourceAccount)
	if err != nil {
		return nil, fmt.Errorf("parsing source account: %w", err)
	}
	return kp, nil
}

// setupTelemetry initializes tracing when the configuration enables it.
// The returned cleanup function is always safe to call.
func setupTelemetry(ctx context.Context, cfg *config.Config) (func(), error) {
	cleanup, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry,
		ExporterURL: cfg.TelemetryURL,
		ServiceName: "sorokit",
	})
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}
	return cleanup, nil
}

// openSpecStore opens the on-disk interface cache. Cache trouble is never
// fatal for a command, so failures degrade to uncached fetches with a log
// line instead of an error.
func openSpecStore(noCache bool) *speccache.Store {
	if noCache {
		return nil
	}
	store, err := speccache.Open()
	if err != nil {
		logger.Logger.Warn("Contract interface cache unavailable", "error", err)
		return nil
	}
	return store
}

func closeSpecStore(store *speccache.Store) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		logger.Logger.Warn("Closing interface cache", "error", err)
	}
}
