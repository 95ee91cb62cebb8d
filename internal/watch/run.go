// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package watch

import "context"

// Run executes fn while a spinner animates message, then replaces the
// spinner line with a success or failure marker. The error from fn is
// returned unchanged.
func Run(ctx context.Context, message string, fn func(context.Context) error) error {
	sp := NewSpinner()
	return runWith(ctx, sp, message, fn)
}

func runWith(ctx context.Context, sp *Spinner, message string, fn func(context.Context) error) error {
	sp.Start(message)
	if err := fn(ctx); err != nil {
		sp.StopWithError(message)
		return err
	}
	sp.StopWithMessage(message)
	return nil
}
