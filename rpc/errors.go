// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import "fmt"

// RPCError is a JSON-RPC error object returned by the Soroban RPC server.
type RPCError struct {
	Code    int
	Message string
	Data    string
}

func (e *RPCError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("rpc error: %s (code %d): %s", e.Message, e.Code, e.Data)
	}
	return fmt.Sprintf("rpc error: %s (code %d)", e.Message, e.Code)
}

// RateLimitError indicates that too many requests have been made
// and the client should back off.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// VersionMismatchError indicates the server runs a release older than the
// minimum this client supports.
type VersionMismatchError struct {
	ServerVersion  string
	MinimumVersion string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("server version %s is older than minimum supported %s", e.ServerVersion, e.MinimumVersion)
}

// IsRPCError checks if error is a JSON-RPC error response
func IsRPCError(err error) bool {
	_, ok := err.(*RPCError)
	return ok
}

// IsRateLimitError checks if error is a rate limit error
func IsRateLimitError(err error) bool {
	_, ok := err.(*RateLimitError)
	return ok
}

// IsVersionMismatch checks if error is a server version mismatch
func IsVersionMismatch(err error) bool {
	_, ok := err.(*VersionMismatchError)
	return ok
}
