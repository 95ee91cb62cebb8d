// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package crashreport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSink runs an HTTP server that decodes each posted report into last.
func newSink(t *testing.T, status int, last *Report) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if last != nil {
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(raw, last))
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIsEnabledDefaultsOff(t *testing.T) {
	t.Setenv(envOptIn, "")
	assert.False(t, New(Config{}).IsEnabled())
	assert.True(t, New(Config{Enabled: true}).IsEnabled())
}

func TestIsEnabledEnvOverrides(t *testing.T) {
	tests := []struct {
		env     string
		enabled bool
		want    bool
	}{
		{"1", false, true},
		{"true", false, true},
		{"yes", false, true},
		{"0", true, false},
		{"false", true, false},
		{"no", true, false},
		{"sometimes", true, true},
	}
	for _, tc := range tests {
		t.Setenv(envOptIn, tc.env)
		assert.Equal(t, tc.want, New(Config{Enabled: tc.enabled}).IsEnabled(), "env %q", tc.env)
	}
}

func TestNewFallsBackToDefaultEndpoint(t *testing.T) {
	t.Setenv(envEndpoint, "")
	t.Setenv(envSentryDSN, "")

	assert.Equal(t, DefaultEndpoint, New(Config{}).cfg.Endpoint)
	assert.Equal(t, "https://example.com/crash", New(Config{Endpoint: "https://example.com/crash"}).cfg.Endpoint)

	// A DSN alone is a sink, so no endpoint fallback happens.
	r := New(Config{SentryDSN: "https://fakekey@o0.ingest.sentry.io/1"})
	assert.Equal(t, "", r.cfg.Endpoint)
}

func TestNewEnvironmentWins(t *testing.T) {
	t.Setenv(envEndpoint, "https://env.example.com/crash")
	t.Setenv(envSentryDSN, "https://envkey@o0.ingest.sentry.io/2")

	r := New(Config{Endpoint: "https://file.example.com/crash", SentryDSN: "ignored"})
	assert.Equal(t, "https://env.example.com/crash", r.cfg.Endpoint)
	assert.Equal(t, "https://envkey@o0.ingest.sentry.io/2", r.cfg.SentryDSN)
}

func TestSendDisabledDoesNothing(t *testing.T) {
	t.Setenv(envOptIn, "")

	var got Report
	srv := newSink(t, http.StatusOK, &got)

	r := New(Config{Enabled: false, Endpoint: srv.URL})
	require.NoError(t, r.Send(context.Background(), errors.New("boom"), nil, "sorokit invoke"))
	assert.Equal(t, Report{}, got)
}

func TestSendDeliversReport(t *testing.T) {
	t.Setenv(envOptIn, "true")

	var got Report
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &got))
		userAgent = r.Header.Get("User-Agent")
	}))
	t.Cleanup(srv.Close)

	r := New(Config{Endpoint: srv.URL, Version: "1.2.3", CommitSHA: "abc123"})
	require.NoError(t, r.Send(context.Background(), errors.New("boom"), []byte("goroutine 1\n..."), "sorokit invoke"))

	assert.Equal(t, "boom", got.ErrorMessage)
	assert.Equal(t, "goroutine 1\n...", got.StackTrace)
	assert.Equal(t, "sorokit invoke", got.Command)
	assert.Equal(t, "sorokit/1.2.3", userAgent)
	assert.Equal(t, "1.2.3", got.Version)
	assert.Equal(t, "abc123", got.CommitSHA)
	assert.Equal(t, runtime.GOOS, got.OS)
	assert.Equal(t, runtime.GOARCH, got.Arch)
	assert.NotEmpty(t, got.CrashTime)
}

func TestSendNilErrorSendsEmptyMessage(t *testing.T) {
	t.Setenv(envOptIn, "true")

	var got Report
	srv := newSink(t, http.StatusOK, &got)

	r := New(Config{Endpoint: srv.URL})
	require.NoError(t, r.Send(context.Background(), nil, nil, ""))
	assert.Equal(t, "", got.ErrorMessage)
	assert.Equal(t, "", got.StackTrace)
}

func TestSendReportsSinkFailures(t *testing.T) {
	t.Setenv(envOptIn, "true")

	srv := newSink(t, http.StatusInternalServerError, nil)
	r := New(Config{Endpoint: srv.URL})
	err := r.Send(context.Background(), errors.New("x"), nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	r = New(Config{Endpoint: "http://localhost:0/unreachable"})
	require.Error(t, r.Send(context.Background(), errors.New("x"), nil, ""))
}

func TestBadDSNDisablesSentrySinkOnly(t *testing.T) {
	t.Setenv(envOptIn, "true")
	t.Setenv(envSentryDSN, "")

	var got Report
	srv := newSink(t, http.StatusOK, &got)

	r := New(Config{SentryDSN: "not-a-dsn", Endpoint: srv.URL})
	assert.False(t, r.sentryActive)
	require.NoError(t, r.Send(context.Background(), errors.New("still delivered"), nil, ""))
	assert.Equal(t, "still delivered", got.ErrorMessage)
}

func TestHandlePanicNoPanicIsQuiet(t *testing.T) {
	t.Setenv(envOptIn, "true")

	var got Report
	srv := newSink(t, http.StatusOK, &got)

	r := New(Config{Endpoint: srv.URL})
	assert.NotPanics(t, func() {
		r.HandlePanic(context.Background(), "sorokit invoke")
	})
	assert.Equal(t, "", got.ErrorMessage)
}

func TestHandlePanicReportsAndRepanics(t *testing.T) {
	t.Setenv(envOptIn, "true")

	var got Report
	srv := newSink(t, http.StatusOK, &got)

	r := New(Config{Endpoint: srv.URL})
	assert.Panics(t, func() {
		defer r.HandlePanic(context.Background(), "sorokit deploy")
		panic(errors.New("fatal error occurred"))
	})
	assert.Equal(t, "fatal error occurred", got.ErrorMessage)
	assert.NotEmpty(t, got.StackTrace)

	assert.Panics(t, func() {
		defer r.HandlePanic(context.Background(), "")
		panic("string panic value")
	})
	assert.Equal(t, "string panic value", got.ErrorMessage)
}
