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

package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"go.opentelemetry.io/otel/attribute"

	ierrors "github.com/solrane/sorokit/internal/errors"
	"github.com/solrane/sorokit/internal/logger"
	"github.com/solrane/sorokit/internal/telemetry"
)

const defaultCallTimeout = 30 * time.Second

// authTransport is a custom HTTP RoundTripper that adds authentication headers
type authTransport struct {
	token     string
	transport http.RoundTripper
}

// RoundTrip implements http.RoundTripper interface
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	return t.transport.RoundTrip(req)
}

// Client talks JSON-RPC 2.0 to a Soroban RPC server.
type Client struct {
	URL     string
	Network Network
	Config  NetworkConfig

	token      string // stored for reference, not logged
	httpClient *http.Client
	nextID     atomic.Int64
}

// NewClient creates a client for a named network. If network is empty,
// defaults to Mainnet. Token can be provided via the token parameter or the
// SOROKIT_RPC_TOKEN environment variable.
func NewClient(net Network, token string) *Client {
	if net == "" {
		net = Mainnet
	}
	if token == "" {
		token = os.Getenv("SOROKIT_RPC_TOKEN")
	}

	config, ok := LookupNetwork(net)
	if !ok {
		config = MainnetConfig
		net = Mainnet
	}

	if token != "" {
		logger.Logger.Debug("RPC client initialized with authentication", "network", net)
	} else {
		logger.Logger.Debug("RPC client initialized without authentication", "network", net)
	}

	return &Client{
		URL:        config.SorobanRPCURL,
		Network:    net,
		Config:     config,
		token:      token,
		httpClient: createHTTPClient(token),
	}
}

// NewCustomClient creates a client for a custom/private network.
func NewCustomClient(config NetworkConfig, token string) (*Client, error) {
	if config.SorobanRPCURL == "" {
		return nil, fmt.Errorf("soroban RPC URL is required for custom network")
	}
	if config.NetworkPassphrase == "" {
		return nil, fmt.Errorf("network passphrase is required for custom network")
	}
	if token == "" {
		token = os.Getenv("SOROKIT_RPC_TOKEN")
	}
	name := Network(config.Name)
	if name == "" {
		name = "custom"
	}
	return &Client{
		URL:        config.SorobanRPCURL,
		Network:    name,
		Config:     config,
		token:      token,
		httpClient: createHTTPClient(token),
	}, nil
}

// WithHTTPClient replaces the underlying HTTP client. The configured Bearer
// token, if any, is preserved.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc == nil {
		return c
	}
	if c.token != "" {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		clone := *hc
		clone.Transport = &authTransport{token: c.token, transport: base}
		c.httpClient = &clone
		return c
	}
	c.httpClient = hc
	return c
}

// createHTTPClient creates an HTTP client with optional authentication
func createHTTPClient(token string) *http.Client {
	if token == "" {
		return http.DefaultClient
	}
	return &http.Client{
		Transport: &authTransport{
			token:     token,
			transport: http.DefaultTransport,
		},
	}
}

// GetNetworkPassphrase returns the network passphrase for this client
func (c *Client) GetNetworkPassphrase() string {
	return c.Config.NetworkPassphrase
}

// GetNetworkName returns the network name for this client
func (c *Client) GetNetworkName() string {
	if c.Config.Name != "" {
		return c.Config.Name
	}
	return "custom"
}

type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcErrorBody struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcErrorBody   `json:"error,omitempty"`
}

// call posts one JSON-RPC request and decodes the result into out.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultCallTimeout)
		defer cancel()
	}

	reqBody := rpcRequest{
		Jsonrpc: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return ierrors.WrapMarshalFailed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ierrors.WrapRPCConnectionFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		logger.Logger.Warn("Rate limit exceeded", "method", method, "url", c.URL)
		return &RateLimitError{Message: "rate limit exceeded, please try again later"}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status %d from %s", resp.StatusCode, c.URL)
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBytes, &rpcResp); err != nil {
		return ierrors.WrapUnmarshalFailed(err, string(respBytes))
	}
	if rpcResp.Error != nil {
		return &RPCError{
			Code:    rpcResp.Error.Code,
			Message: rpcResp.Error.Message,
			Data:    string(rpcResp.Error.Data),
		}
	}
	if out == nil {
		return nil
	}
	if len(rpcResp.Result) == 0 {
		return ierrors.WrapUnmarshalFailed(fmt.Errorf("empty result"), string(respBytes))
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return ierrors.WrapUnmarshalFailed(err, string(rpcResp.Result))
	}
	return nil
}

// GetHealth reports the server's sync status and retention window.
func (c *Client) GetHealth(ctx context.Context) (HealthResponse, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_get_health")
	span.SetAttributes(attribute.String("network", string(c.Network)))
	defer span.End()

	var result HealthResponse
	if err := c.call(ctx, MethodGetHealth, nil, &result); err != nil {
		span.RecordError(err)
		return HealthResponse{}, err
	}
	return result, nil
}

// GetVersionInfo reports the server's release and protocol versions.
func (c *Client) GetVersionInfo(ctx context.Context) (VersionInfoResponse, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_get_version_info")
	span.SetAttributes(attribute.String("network", string(c.Network)))
	defer span.End()

	var result VersionInfoResponse
	if err := c.call(ctx, MethodGetVersionInfo, nil, &result); err != nil {
		span.RecordError(err)
		return VersionInfoResponse{}, err
	}
	return result, nil
}

// GetNetwork reports the passphrase and protocol version the server serves.
func (c *Client) GetNetwork(ctx context.Context) (NetworkResponse, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_get_network")
	span.SetAttributes(attribute.String("network", string(c.Network)))
	defer span.End()

	var result NetworkResponse
	if err := c.call(ctx, MethodGetNetwork, nil, &result); err != nil {
		span.RecordError(err)
		return NetworkResponse{}, err
	}
	return result, nil
}

// GetLatestLedger returns the most recently closed ledger the server knows.
func (c *Client) GetLatestLedger(ctx context.Context) (LatestLedgerResponse, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_get_latest_ledger")
	span.SetAttributes(attribute.String("network", string(c.Network)))
	defer span.End()

	var result LatestLedgerResponse
	if err := c.call(ctx, MethodGetLatestLedger, nil, &result); err != nil {
		span.RecordError(err)
		return LatestLedgerResponse{}, err
	}
	span.SetAttributes(attribute.Int("ledger.sequence", int(result.Sequence)))
	return result, nil
}

// GetLedgerEntries fetches the current state of ledger entries.
// keys should be a list of base64-encoded XDR LedgerKeys.
func (c *Client) GetLedgerEntries(ctx context.Context, keys []string) (GetLedgerEntriesResponse, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_get_ledger_entries")
	span.SetAttributes(
		attribute.String("network", string(c.Network)),
		attribute.Int("keys.count", len(keys)),
	)
	defer span.End()

	if len(keys) == 0 {
		return GetLedgerEntriesResponse{}, nil
	}

	logger.Logger.Debug("Fetching ledger entries", "count", len(keys), "url", c.URL)

	var result GetLedgerEntriesResponse
	if err := c.call(ctx, MethodGetLedgerEntries, GetLedgerEntriesRequest{Keys: keys}, &result); err != nil {
		span.RecordError(err)
		return GetLedgerEntriesResponse{}, err
	}

	logger.Logger.Debug("Ledger entries fetched", "found", len(result.Entries), "requested", len(keys))
	return result, nil
}

// GetAccount fetches an account's current sequence number through its ledger
// entry and returns it in the form the transaction builder consumes.
func (c *Client) GetAccount(ctx context.Context, address string) (*txnbuild.SimpleAccount, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_get_account")
	span.SetAttributes(
		attribute.String("network", string(c.Network)),
		attribute.String("account.address", address),
	)
	defer span.End()

	if !strkey.IsValidEd25519PublicKey(address) {
		return nil, fmt.Errorf("address %s is not a valid Stellar account", address)
	}

	accountID, err := xdr.AddressToAccountId(address)
	if err != nil {
		return nil, fmt.Errorf("parse account id: %w", err)
	}
	lk, err := accountID.LedgerKey()
	if err != nil {
		return nil, fmt.Errorf("build account ledger key: %w", err)
	}
	accountKey, err := xdr.MarshalBase64(lk)
	if err != nil {
		return nil, fmt.Errorf("encode account ledger key: %w", err)
	}

	resp, err := c.GetLedgerEntries(ctx, []string{accountKey})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(resp.Entries) != 1 {
		logger.Logger.Warn("Account not found", "address", address)
		return nil, ierrors.WrapAccountNotFound(address)
	}

	var entry xdr.LedgerEntryData
	if err := xdr.SafeUnmarshalBase64(resp.Entries[0].DataXDR, &entry); err != nil {
		return nil, ierrors.WrapUnmarshalFailed(err, resp.Entries[0].DataXDR)
	}
	if entry.Type != xdr.LedgerEntryTypeAccount || entry.Account == nil {
		return nil, fmt.Errorf("ledger entry for %s is not an account", address)
	}
	seqNum := entry.Account.SeqNum

	logger.Logger.Debug("Account fetched", "address", address, "sequence", int64(seqNum))
	return &txnbuild.SimpleAccount{AccountID: address, Sequence: int64(seqNum)}, nil
}

// SimulateTransaction submits a base64 transaction envelope for simulation.
func (c *Client) SimulateTransaction(ctx context.Context, txBase64 string) (SimulateTransactionResponse, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_simulate_transaction")
	span.SetAttributes(
		attribute.String("network", string(c.Network)),
		attribute.Int("envelope.size_bytes", len(txBase64)),
	)
	defer span.End()

	logger.Logger.Debug("Simulating transaction", "url", c.URL)

	var result SimulateTransactionResponse
	if err := c.call(ctx, MethodSimulateTransaction, SimulateTransactionRequest{Transaction: txBase64}, &result); err != nil {
		span.RecordError(err)
		return SimulateTransactionResponse{}, err
	}

	span.SetAttributes(
		attribute.Bool("simulation.errored", result.Error != ""),
		attribute.Bool("simulation.restore_needed", result.RestorePreamble != nil),
	)
	if result.Error != "" {
		logger.Logger.Warn("Simulation reported an error", "error", result.Error)
	} else {
		logger.Logger.Debug("Simulation succeeded",
			"min_resource_fee", result.MinResourceFee,
			"restore_needed", result.RestorePreamble != nil,
		)
	}
	return result, nil
}

// SendTransaction submits a signed base64 transaction envelope.
func (c *Client) SendTransaction(ctx context.Context, txBase64 string) (SendTransactionResponse, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_send_transaction")
	span.SetAttributes(
		attribute.String("network", string(c.Network)),
		attribute.Int("envelope.size_bytes", len(txBase64)),
	)
	defer span.End()

	logger.Logger.Debug("Sending transaction", "url", c.URL)

	var result SendTransactionResponse
	if err := c.call(ctx, MethodSendTransaction, SendTransactionRequest{Transaction: txBase64}, &result); err != nil {
		span.RecordError(err)
		return SendTransactionResponse{}, err
	}

	span.SetAttributes(
		attribute.String("transaction.hash", result.Hash),
		attribute.String("transaction.status", result.Status),
	)
	logger.Logger.Info("Transaction submitted", "hash", result.Hash, "status", result.Status)
	return result, nil
}

// GetTransaction fetches the status and result of a submitted transaction.
func (c *Client) GetTransaction(ctx context.Context, hash string) (GetTransactionResponse, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_get_transaction")
	span.SetAttributes(
		attribute.String("network", string(c.Network)),
		attribute.String("transaction.hash", hash),
	)
	defer span.End()

	var result GetTransactionResponse
	if err := c.call(ctx, MethodGetTransaction, GetTransactionRequest{Hash: hash}, &result); err != nil {
		span.RecordError(err)
		return GetTransactionResponse{}, err
	}

	span.SetAttributes(attribute.String("transaction.status", result.Status))
	logger.Logger.Debug("Transaction status fetched", "hash", hash, "status", result.Status)
	return result, nil
}
