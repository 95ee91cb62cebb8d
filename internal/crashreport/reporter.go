// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

// Package crashreport sends opt-in anonymous crash reports for the
// sorokit CLI.
//
// Reporting is off until the user opts in through the config file
// (crash_reporting) or the SOROKIT_CRASH_REPORTING environment variable.
// A report carries the error text, a stack trace, and build metadata.
// It never includes command arguments, addresses, seeds, or transaction
// content.
//
// Two sinks exist and may run together: a Sentry project, configured
// with a DSN from the config file or SOROKIT_SENTRY_DSN, and a plain
// HTTPS endpoint that accepts the JSON Report, configured from the
// config file or SOROKIT_CRASH_ENDPOINT.
package crashreport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// DefaultEndpoint receives reports when the user opted in without
	// configuring any sink of their own.
	DefaultEndpoint = "https://crash.sorokit.dev/v1/report"

	sendTimeout = 5 * time.Second

	envOptIn     = "SOROKIT_CRASH_REPORTING"
	envEndpoint  = "SOROKIT_CRASH_ENDPOINT"
	envSentryDSN = "SOROKIT_SENTRY_DSN"
)

// Report is the JSON payload delivered to the HTTPS sink. The field set
// is deliberately minimal.
type Report struct {
	Version      string `json:"version"`
	CommitSHA    string `json:"commit_sha,omitempty"`
	OS           string `json:"os"`
	Arch         string `json:"arch"`
	GoVersion    string `json:"go_version"`
	CrashTime    string `json:"crash_time"`
	ErrorMessage string `json:"error_message"`
	StackTrace   string `json:"stack_trace,omitempty"`
	Command      string `json:"command,omitempty"`
}

// Config controls reporter behaviour. Environment variables override
// every field at run time, so an operator can redirect or disable
// reporting without touching the config file.
type Config struct {
	Enabled   bool
	SentryDSN string
	Endpoint  string

	// Version and CommitSHA come from build-time ldflags.
	Version   string
	CommitSHA string
}

// Reporter fans a crash report out to every configured sink.
type Reporter struct {
	cfg          Config
	client       *http.Client
	sentryActive bool
}

// New resolves the environment overrides, falls back to DefaultEndpoint
// when no sink was named, and initialises Sentry when a DSN is present.
// A bad DSN disables the Sentry sink rather than failing construction;
// a crash reporter must not take the CLI down with it.
func New(cfg Config) *Reporter {
	if dsn := os.Getenv(envSentryDSN); dsn != "" {
		cfg.SentryDSN = dsn
	}
	if ep := os.Getenv(envEndpoint); ep != "" {
		cfg.Endpoint = ep
	}
	if cfg.SentryDSN == "" && cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}

	r := &Reporter{
		cfg:    cfg,
		client: &http.Client{Timeout: sendTimeout},
	}
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:     cfg.SentryDSN,
			Release: cfg.Version,
		})
		r.sentryActive = err == nil
	}
	return r
}

// IsEnabled reports whether anything would be sent. SOROKIT_CRASH_REPORTING
// wins over the config file in both directions.
func (r *Reporter) IsEnabled() bool {
	switch os.Getenv(envOptIn) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return r.cfg.Enabled
}

// Send builds a report from err and stack and delivers it to every
// active sink. Disabled reporters return nil immediately. Sink errors
// are informational; the process is usually already on its way out.
func (r *Reporter) Send(ctx context.Context, err error, stack []byte, command string) error {
	if !r.IsEnabled() {
		return nil
	}

	report := r.snapshot(err, stack, command)

	var errs []error
	if r.sentryActive {
		if sinkErr := r.toSentry(report); sinkErr != nil {
			errs = append(errs, sinkErr)
		}
	}
	if r.cfg.Endpoint != "" {
		if sinkErr := r.toEndpoint(ctx, report); sinkErr != nil {
			errs = append(errs, sinkErr)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("crashreport: %v", errs)
	}
	return nil
}

// HandlePanic is meant to be deferred at the top of main. It reports an
// in-flight panic best-effort and then re-panics, so the runtime still
// prints the stack and exits non-zero.
func (r *Reporter) HandlePanic(ctx context.Context, command string) {
	v := recover()
	if v == nil {
		return
	}

	panicErr, ok := v.(error)
	if !ok {
		panicErr = fmt.Errorf("%v", v)
	}
	_ = r.Send(ctx, panicErr, debug.Stack(), command)

	panic(v)
}

func (r *Reporter) snapshot(err error, stack []byte, command string) Report {
	msg := ""
	if err != nil {
		msg = err.Error()
	}

	goVersion := "unknown"
	if bi, ok := debug.ReadBuildInfo(); ok {
		goVersion = bi.GoVersion
	}

	return Report{
		Version:      r.cfg.Version,
		CommitSHA:    r.cfg.CommitSHA,
		OS:           runtime.GOOS,
		Arch:         runtime.GOARCH,
		GoVersion:    goVersion,
		CrashTime:    time.Now().UTC().Format(time.RFC3339),
		ErrorMessage: msg,
		StackTrace:   string(stack),
		Command:      command,
	}
}

func (r *Reporter) toSentry(report Report) error {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("os", report.OS)
		scope.SetTag("arch", report.Arch)
		scope.SetTag("go_version", report.GoVersion)
		scope.SetTag("command", report.Command)
		scope.SetExtra("stack_trace", report.StackTrace)
		scope.SetExtra("commit_sha", report.CommitSHA)
		sentry.CaptureMessage(report.ErrorMessage)
	})
	sentry.Flush(sendTimeout)
	return nil
}

func (r *Reporter) toEndpoint(ctx context.Context, report Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "sorokit/"+r.cfg.Version)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("report endpoint returned %d", resp.StatusCode)
	}
	return nil
}
