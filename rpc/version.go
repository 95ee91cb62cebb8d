// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/solrane/sorokit/internal/logger"
)

// MinimumServerVersion is the oldest Soroban RPC release this client is
// tested against. Older servers predate the simulation response fields the
// assembly flow depends on.
const MinimumServerVersion = "21.0.0"

// CheckServerVersion fetches the server's version and fails with a
// VersionMismatchError if it is older than minimum. Dev and unparseable
// server builds are let through with a warning, since private deployments
// often report bare commit hashes.
func (c *Client) CheckServerVersion(ctx context.Context, minimum string) error {
	if minimum == "" {
		minimum = MinimumServerVersion
	}

	info, err := c.GetVersionInfo(ctx)
	if err != nil {
		return err
	}

	serverRaw := normalizeVersion(info.Version)
	if serverRaw == "" || serverRaw == "dev" {
		logger.Logger.Warn("Server reports a dev build, skipping version check", "version", info.Version)
		return nil
	}

	serverVer, err := version.NewVersion(serverRaw)
	if err != nil {
		logger.Logger.Warn("Unparseable server version, skipping version check", "version", info.Version)
		return nil
	}
	minVer, err := version.NewVersion(normalizeVersion(minimum))
	if err != nil {
		return err
	}

	if serverVer.LessThan(minVer) {
		return &VersionMismatchError{
			ServerVersion:  info.Version,
			MinimumVersion: minimum,
		}
	}

	logger.Logger.Debug("Server version check passed", "server", info.Version, "minimum", minimum)
	return nil
}

// normalizeVersion strips the leading v and any commit-hash suffix, e.g.
// "v21.4.0-dcd6c3c4" -> "21.4.0".
func normalizeVersion(v string) string {
	v = strings.TrimSpace(strings.TrimPrefix(v, "v"))
	if i := strings.IndexByte(v, '-'); i > 0 {
		v = v[:i]
	}
	return v
}
