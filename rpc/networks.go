// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

// Network names a Stellar network with known endpoints.
type Network string

const (
	Testnet   Network = "testnet"
	Mainnet   Network = "mainnet"
	Futurenet Network = "futurenet"
	Local     Network = "local"
)

// Network passphrases used for transaction and auth-entry domain separation.
const (
	TestnetPassphrase   = "Test SDF Network ; September 2015"
	MainnetPassphrase   = "Public Global Stellar Network ; September 2015"
	FuturenetPassphrase = "Test SDF Future Network ; October 2022"
	LocalPassphrase     = "Standalone Network ; February 2017"
)

// Soroban RPC URLs
const (
	TestnetRPCURL   = "https://soroban-testnet.stellar.org"
	MainnetRPCURL   = "https://mainnet.stellar.validationcloud.io/v1/soroban-rpc-demo" // Public demo endpoint
	FuturenetRPCURL = "https://rpc-futurenet.stellar.org"
	LocalRPCURL     = "http://localhost:8000/soroban/rpc"
)

// Horizon URLs for each network, carried for callers that pair the RPC
// client with Horizon tooling. The client itself never talks to Horizon.
const (
	TestnetHorizonURL   = "https://horizon-testnet.stellar.org/"
	MainnetHorizonURL   = "https://horizon.stellar.org/"
	FuturenetHorizonURL = "https://horizon-futurenet.stellar.org/"
	LocalHorizonURL     = "http://localhost:8000/"
)

// NetworkConfig represents a Stellar network configuration
type NetworkConfig struct {
	Name              string `json:"name"`
	HorizonURL        string `json:"horizon_url"`
	NetworkPassphrase string `json:"network_passphrase"`
	SorobanRPCURL     string `json:"soroban_rpc_url"`
}

// Predefined network configurations
var (
	TestnetConfig = NetworkConfig{
		Name:              "testnet",
		HorizonURL:        TestnetHorizonURL,
		NetworkPassphrase: TestnetPassphrase,
		SorobanRPCURL:     TestnetRPCURL,
	}

	MainnetConfig = NetworkConfig{
		Name:              "mainnet",
		HorizonURL:        MainnetHorizonURL,
		NetworkPassphrase: MainnetPassphrase,
		SorobanRPCURL:     MainnetRPCURL,
	}

	FuturenetConfig = NetworkConfig{
		Name:              "futurenet",
		HorizonURL:        FuturenetHorizonURL,
		NetworkPassphrase: FuturenetPassphrase,
		SorobanRPCURL:     FuturenetRPCURL,
	}

	LocalConfig = NetworkConfig{
		Name:              "local",
		HorizonURL:        LocalHorizonURL,
		NetworkPassphrase: LocalPassphrase,
		SorobanRPCURL:     LocalRPCURL,
	}
)

// LookupNetwork resolves a named network to its configuration.
func LookupNetwork(name Network) (NetworkConfig, bool) {
	switch name {
	case Testnet:
		return TestnetConfig, true
	case Mainnet:
		return MainnetConfig, true
	case Futurenet:
		return FuturenetConfig, true
	case Local:
		return LocalConfig, true
	}
	return NetworkConfig{}, false
}
