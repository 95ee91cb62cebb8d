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

package daemon

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/stellar/go/xdr"

	ierrors "github.com/solrane/sorokit/internal/errors"
	"github.com/solrane/sorokit/soroban"
)

const clientTimeout = 30 * time.Second

// RemoteSigner is the client half of the signing daemon protocol. It
// lets a transaction builder collect signatures from a daemon that holds
// the seed, typically on another machine.
type RemoteSigner struct {
	url       string
	authToken string
	client    *http.Client
}

// NewRemoteSigner creates a client for the signing daemon at url. The
// url should point at the daemon's /rpc endpoint.
func NewRemoteSigner(url, authToken string) *RemoteSigner {
	return &RemoteSigner{
		url:       url,
		authToken: authToken,
		client:    &http.Client{Timeout: clientTimeout},
	}
}

// call posts one JSON-RPC request to the daemon and decodes the reply.
func (rs *RemoteSigner) call(ctx context.Context, method string, args, reply interface{}) error {
	body, err := json2.EncodeClientRequest(method, args)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rs.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if rs.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+rs.authToken)
	}

	resp, err := rs.client.Do(req)
	if err != nil {
		return ierrors.WrapSignerUnavailable(fmt.Errorf("signing daemon unreachable: %w", err))
	}
	defer resp.Body.Close()

	// The json2 codec answers RPC-level errors with 200 and an error
	// body, so any other status is a transport problem.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("signing daemon returned HTTP %d", resp.StatusCode)
	}
	return json2.DecodeClientResponse(resp.Body, reply)
}

// PublicKey asks the daemon which account it signs for.
func (rs *RemoteSigner) PublicKey(ctx context.Context) (string, error) {
	var resp PublicKeyResponse
	if err := rs.call(ctx, "signer.PublicKey", &PublicKeyRequest{}, &resp); err != nil {
		return "", err
	}
	return resp.Address, nil
}

// Health checks that the daemon is up and answering.
func (rs *RemoteSigner) Health(ctx context.Context) error {
	var resp HealthResponse
	if err := rs.call(ctx, "signer.Health", &HealthRequest{}, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("signing daemon reported status %q", resp.Status)
	}
	return nil
}

// AuthEntrySigner adapts the daemon into the delegate form the
// transaction layer consumes. The entry's expiration ledger must be set
// before the delegate runs; the daemon signs exactly what it is given.
func (rs *RemoteSigner) AuthEntrySigner() soroban.AuthEntrySigner {
	return func(ctx context.Context, entry xdr.SorobanAuthorizationEntry) (xdr.SorobanAuthorizationEntry, error) {
		if entry.Credentials.Type != xdr.SorobanCredentialsTypeSorobanCredentialsAddress || entry.Credentials.Address == nil {
			return entry, &soroban.NoAddressCredentialsError{}
		}

		entryB64, err := xdr.MarshalBase64(entry)
		if err != nil {
			return entry, fmt.Errorf("failed to encode authorization entry: %w", err)
		}

		req := SignAuthEntryRequest{
			Entry:            entryB64,
			ValidUntilLedger: uint32(entry.Credentials.Address.SignatureExpirationLedger),
		}
		var resp SignAuthEntryResponse
		if err := rs.call(ctx, "signer.SignAuthEntry", &req, &resp); err != nil {
			return entry, err
		}

		var signed xdr.SorobanAuthorizationEntry
		if err := xdr.SafeUnmarshalBase64(resp.Entry, &signed); err != nil {
			return entry, fmt.Errorf("failed to decode signed entry: %w", err)
		}
		return signed, nil
	}
}
