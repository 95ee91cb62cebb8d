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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/solrane/sorokit/internal/logger"
	"github.com/solrane/sorokit/internal/signer"
	"github.com/solrane/sorokit/internal/telemetry"
)

// Server exposes a seed-held signing key as a JSON-RPC service. Clients
// submit simulated authorization entries and get back signed copies, so
// the seed never has to travel to the machine that builds transactions.
type Server struct {
	signer            *signer.SeedSigner
	networkPassphrase string
	authToken         string
}

// Config holds daemon configuration.
type Config struct {
	NetworkPassphrase string
	AuthToken         string
}

// SignAuthEntryRequest represents the signer.SignAuthEntry RPC request.
type SignAuthEntryRequest struct {
	// Entry is the base64-encoded authorization entry XDR to sign.
	Entry string `json:"entry"`

	// ValidUntilLedger is the last ledger the signature is valid for.
	ValidUntilLedger uint32 `json:"valid_until_ledger"`
}

// SignAuthEntryResponse represents the signer.SignAuthEntry RPC response.
type SignAuthEntryResponse struct {
	Entry  string `json:"entry"`
	Signer string `json:"signer"`
}

// PublicKeyRequest represents the signer.PublicKey RPC request.
type PublicKeyRequest struct{}

// PublicKeyResponse represents the signer.PublicKey RPC response.
type PublicKeyResponse struct {
	Address string `json:"address"`
}

// HealthRequest represents the signer.Health RPC request.
type HealthRequest struct{}

// HealthResponse represents the signer.Health RPC response.
type HealthResponse struct {
	Status string `json:"status"`
}

// NewServer creates a signing daemon around the given signer. The network
// passphrase pins which network's authorization preimages this daemon is
// willing to sign.
func NewServer(sgn *signer.SeedSigner, config Config) (*Server, error) {
	if sgn == nil {
		return nil, fmt.Errorf("a signer is required")
	}
	if config.NetworkPassphrase == "" {
		return nil, fmt.Errorf("a network passphrase is required")
	}
	return &Server{
		signer:            sgn,
		networkPassphrase: config.NetworkPassphrase,
		authToken:         config.AuthToken,
	}, nil
}

// authenticate validates the authorization token
func (s *Server) authenticate(r *http.Request) bool {
	if s.authToken == "" {
		return true // No auth required
	}

	auth := r.Header.Get("Authorization")
	if auth == "" {
		return false
	}

	// Support "Bearer <token>" format
	if strings.HasPrefix(auth, "Bearer ") {
		token := strings.TrimPrefix(auth, "Bearer ")
		return token == s.authToken
	}

	return auth == s.authToken
}

// SignAuthEntry handles signer.SignAuthEntry RPC calls.
func (s *Server) SignAuthEntry(r *http.Request, req *SignAuthEntryRequest, resp *SignAuthEntryResponse) error {
	if !s.authenticate(r) {
		return fmt.Errorf("unauthorized")
	}

	ctx := r.Context()
	tracer := telemetry.GetTracer()
	_, span := tracer.Start(ctx, "signerd_sign_auth_entry")
	span.SetAttributes(attribute.Int("auth.valid_until_ledger", int(req.ValidUntilLedger)))
	defer span.End()

	if req.Entry == "" {
		return &json2.Error{Code: json2.E_BAD_PARAMS, Message: "entry is required"}
	}
	if req.ValidUntilLedger == 0 {
		return &json2.Error{Code: json2.E_BAD_PARAMS, Message: "valid_until_ledger is required"}
	}

	logger.Logger.Info("Processing signing request",
		"signer", s.signer.Address(),
		"valid_until_ledger", req.ValidUntilLedger,
	)

	signed, err := s.signer.SignAuthEntry(req.Entry, req.ValidUntilLedger, s.networkPassphrase)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to sign authorization entry: %w", err)
	}

	*resp = SignAuthEntryResponse{
		Entry:  signed,
		Signer: s.signer.Address(),
	}
	return nil
}

// PublicKey handles signer.PublicKey RPC calls.
func (s *Server) PublicKey(r *http.Request, req *PublicKeyRequest, resp *PublicKeyResponse) error {
	if !s.authenticate(r) {
		return fmt.Errorf("unauthorized")
	}

	*resp = PublicKeyResponse{Address: s.signer.Address()}
	return nil
}

// Health handles signer.Health RPC calls. It requires no token so that
// probes can run without credentials.
func (s *Server) Health(r *http.Request, req *HealthRequest, resp *HealthResponse) error {
	*resp = HealthResponse{Status: "ok"}
	return nil
}

// Handler builds the HTTP handler serving the JSON-RPC endpoint and the
// plain health check.
func (s *Server) Handler() (http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json2.NewCodec(), "application/json")
	server.RegisterCodec(json2.NewCodec(), "application/json;charset=UTF-8")

	if err := server.RegisterService(s, "signer"); err != nil {
		return nil, fmt.Errorf("failed to register service: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/rpc", server)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	return mux, nil
}

// Start starts the JSON-RPC server and blocks until the context is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port string) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	logger.Logger.Info("Starting signing daemon",
		"port", port,
		"signer", s.signer.Address(),
		"auth_required", s.authToken != "",
	)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Error("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Logger.Info("Shutting down signing daemon")
	return srv.Shutdown(context.Background())
}
