// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/solrane/sorokit/rpc"
)

// CustomNetworks holds user-declared networks, keyed by name. They extend
// the built-in presets and may shadow them.
type CustomNetworks struct {
	Networks map[string]rpc.NetworkConfig `json:"networks"`
}

// NetworksPath returns the path of the custom network declarations file.
func NetworksPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "networks.json"), nil
}

// LoadCustomNetworks loads the declared networks. A missing file yields an
// empty set.
func LoadCustomNetworks() (*CustomNetworks, error) {
	path, err := NetworksPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &CustomNetworks{Networks: make(map[string]rpc.NetworkConfig)}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read networks file: %w", err)
	}

	var networks CustomNetworks
	if err := json.Unmarshal(data, &networks); err != nil {
		return nil, fmt.Errorf("failed to parse networks file: %w", err)
	}
	if networks.Networks == nil {
		networks.Networks = make(map[string]rpc.NetworkConfig)
	}
	return &networks, nil
}

// SaveCustomNetworks writes the declared networks with owner-only
// permissions.
func SaveCustomNetworks(networks *CustomNetworks) error {
	path, err := NetworksPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(networks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal networks: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write networks file: %w", err)
	}
	return nil
}

// AddCustomNetwork adds or replaces a declared network.
func AddCustomNetwork(name string, nc rpc.NetworkConfig) error {
	networks, err := LoadCustomNetworks()
	if err != nil {
		return err
	}
	nc.Name = name
	networks.Networks[name] = nc
	return SaveCustomNetworks(networks)
}

// GetCustomNetwork retrieves a declared network by name.
func GetCustomNetwork(name string) (*rpc.NetworkConfig, error) {
	networks, err := LoadCustomNetworks()
	if err != nil {
		return nil, err
	}
	nc, exists := networks.Networks[name]
	if !exists {
		return nil, fmt.Errorf("custom network %q not found", name)
	}
	return &nc, nil
}

// ListCustomNetworks returns the declared network names, sorted.
func ListCustomNetworks() ([]string, error) {
	networks, err := LoadCustomNetworks()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(networks.Networks))
	for name := range networks.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// RemoveCustomNetwork deletes a declared network.
func RemoveCustomNetwork(name string) error {
	networks, err := LoadCustomNetworks()
	if err != nil {
		return err
	}
	if _, exists := networks.Networks[name]; !exists {
		return fmt.Errorf("custom network %q not found", name)
	}
	delete(networks.Networks, name)
	return SaveCustomNetworks(networks)
}
