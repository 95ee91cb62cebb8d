// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/solrane/sorokit/internal/cmd"
	"github.com/solrane/sorokit/internal/config"
	"github.com/solrane/sorokit/internal/crashreport"
)

// Build-time variables injected via -ldflags.
var (
	version   = "dev"
	commitSHA = "unknown"
)

func main() {
	ctx := context.Background()

	// Load config only to see whether crash reporting is opted in; a
	// broken config file must not keep the CLI from starting.
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	reporter := crashreport.New(crashreport.Config{
		Enabled:   cfg.CrashReporting,
		SentryDSN: cfg.CrashSentryDSN,
		Endpoint:  cfg.CrashEndpoint,
		Version:   version,
		CommitSHA: commitSHA,
	})

	// Catch any unrecovered panic, report it, then re-panic.
	defer reporter.HandlePanic(ctx, "sorokit")

	cmd.Version = version

	if code := run(ctx, reporter, cmd.Execute, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

// run executes the CLI and maps its outcome to an exit code. Fatal
// command errors are reported before printing, so opted-in crash
// reporting sees failures that never became panics.
func run(ctx context.Context, reporter *crashreport.Reporter, execute func() error, stderr io.Writer) int {
	err := execute()
	if err == nil {
		return 0
	}
	if reporter.IsEnabled() {
		_ = reporter.Send(ctx, err, debug.Stack(), "sorokit")
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
