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
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockServer is a JSON-RPC 2.0 test double for a Soroban RPC server.
// Responses are routed by method name; per-method FIFO queues allow scripted
// sequences such as NOT_FOUND, NOT_FOUND, SUCCESS for polling tests.
type MockServer struct {
	server    *httptest.Server
	routes    map[string]MockRoute
	queues    map[string][]MockRoute
	requests  map[string][]json.RawMessage
	callCount map[string]int
	mu        sync.RWMutex
}

// MockRoute defines the response for one JSON-RPC method.
type MockRoute struct {
	StatusCode int // HTTP status; 0 means 200
	Result     interface{}
	Error      *MockRPCError
}

// MockRPCError is a canned JSON-RPC error object.
type MockRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewMockServer creates a mock server with the given method routes.
func NewMockServer(routes map[string]MockRoute) *MockServer {
	ms := &MockServer{
		routes:    make(map[string]MockRoute),
		queues:    make(map[string][]MockRoute),
		requests:  make(map[string][]json.RawMessage),
		callCount: make(map[string]int),
	}
	for method, route := range routes {
		ms.routes[method] = route
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handleRequest))
	return ms
}

func (ms *MockServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Jsonrpc string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ms.mu.Lock()
	ms.callCount[req.Method]++
	ms.requests[req.Method] = append(ms.requests[req.Method], req.Params)
	route, exists := ms.routes[req.Method]
	if queue := ms.queues[req.Method]; len(queue) > 0 {
		route, exists = queue[0], true
		ms.queues[req.Method] = queue[1:]
	}
	ms.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if !exists {
		writeMockResponse(w, http.StatusOK, req.ID, nil, &MockRPCError{
			Code:    -32601,
			Message: "method not found: " + req.Method,
		})
		return
	}

	status := route.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	writeMockResponse(w, status, req.ID, route.Result, route.Error)
}

func writeMockResponse(w http.ResponseWriter, status int, id json.RawMessage, result interface{}, rpcErr *MockRPCError) {
	w.WriteHeader(status)
	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
	}
	if rpcErr != nil {
		body["error"] = rpcErr
	} else {
		body["result"] = result
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode mock response: %v", err)
	}
}

// URL returns the base URL of the mock server
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close stops the mock server
func (ms *MockServer) Close() {
	if ms.server != nil {
		ms.server.Close()
	}
}

// Client returns an RPC client pointed at the mock, on the test passphrase.
func (ms *MockServer) Client() *Client {
	c, _ := NewCustomClient(NetworkConfig{
		Name:              "mock",
		NetworkPassphrase: TestnetPassphrase,
		SorobanRPCURL:     ms.server.URL,
	}, "")
	return c
}

// AddRoute adds or updates a method route in the running server
func (ms *MockServer) AddRoute(method string, route MockRoute) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.routes[method] = route
}

// QueueResponse appends a one-shot response for a method. Queued responses
// are consumed in order before the standing route applies.
func (ms *MockServer) QueueResponse(method string, route MockRoute) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.queues[method] = append(ms.queues[method], route)
}

// RemoveRoute removes a method route from the running server
func (ms *MockServer) RemoveRoute(method string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.routes, method)
}

// CallCount returns the number of times a method was called
func (ms *MockServer) CallCount(method string) int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.callCount[method]
}

// Requests returns the raw params of every call to a method, in order.
func (ms *MockServer) Requests(method string) []json.RawMessage {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make([]json.RawMessage, len(ms.requests[method]))
	copy(out, ms.requests[method])
	return out
}

// ResetCallCounts resets all call counts and recorded requests
func (ms *MockServer) ResetCallCounts() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.callCount = make(map[string]int)
	ms.requests = make(map[string][]json.RawMessage)
}

// SuccessRoute creates a route with a successful result payload
func SuccessRoute(result interface{}) MockRoute {
	return MockRoute{Result: result}
}

// ErrorRoute creates a route that returns a JSON-RPC error
func ErrorRoute(code int, message string) MockRoute {
	return MockRoute{Error: &MockRPCError{Code: code, Message: message}}
}

// RateLimitRoute creates a route that simulates rate limiting (HTTP 429)
func RateLimitRoute() MockRoute {
	return MockRoute{StatusCode: http.StatusTooManyRequests}
}
