// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solrane/sorokit/rpc"
)

func TestAddAndGetCustomNetwork(t *testing.T) {
	isolateHome(t)

	want := rpc.NetworkConfig{
		HorizonURL:        "http://localhost:8000",
		NetworkPassphrase: "Local Development Network",
		SorobanRPCURL:     "http://localhost:8000/rpc",
	}
	require.NoError(t, AddCustomNetwork("local-dev", want))

	got, err := GetCustomNetwork("local-dev")
	require.NoError(t, err)
	assert.Equal(t, "local-dev", got.Name)
	assert.Equal(t, want.NetworkPassphrase, got.NetworkPassphrase)
	assert.Equal(t, want.SorobanRPCURL, got.SorobanRPCURL)
}

func TestGetCustomNetwork_NotFound(t *testing.T) {
	isolateHome(t)

	_, err := GetCustomNetwork("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestListCustomNetworks_Sorted(t *testing.T) {
	isolateHome(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, AddCustomNetwork(name, rpc.NetworkConfig{
			SorobanRPCURL: "http://example.com/" + name,
		}))
	}

	names, err := ListCustomNetworks()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestRemoveCustomNetwork(t *testing.T) {
	isolateHome(t)

	require.NoError(t, AddCustomNetwork("gone", rpc.NetworkConfig{
		SorobanRPCURL: "http://example.com",
	}))
	require.NoError(t, RemoveCustomNetwork("gone"))

	_, err := GetCustomNetwork("gone")
	assert.Error(t, err)

	err = RemoveCustomNetwork("gone")
	assert.Error(t, err)
}

func TestLoadCustomNetworks_MissingFile(t *testing.T) {
	isolateHome(t)

	networks, err := LoadCustomNetworks()
	require.NoError(t, err)
	assert.NotNil(t, networks.Networks)
	assert.Empty(t, networks.Networks)
}

func TestNetworksFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file permissions are not meaningful on Windows")
	}
	home := isolateHome(t)

	require.NoError(t, AddCustomNetwork("perm-check", rpc.NetworkConfig{
		SorobanRPCURL: "http://example.com",
	}))

	info, err := os.Stat(filepath.Join(home, ".sorokit", "networks.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
