// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer serializes writes from the spinner goroutine against reads
// from the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerWritesFrames(t *testing.T) {
	buf := &syncBuffer{}
	sp := NewSpinnerTo(buf)

	sp.Start("Working")
	time.Sleep(250 * time.Millisecond)
	sp.Stop()

	out := buf.String()
	if !strings.Contains(out, "Working") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "\033[K") {
		t.Errorf("expected line clear after stop, got %q", out)
	}
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	sp := NewSpinnerTo(&syncBuffer{})
	sp.Stop()
	sp.Stop()
}

func TestSpinnerDoubleStart(t *testing.T) {
	buf := &syncBuffer{}
	sp := NewSpinnerTo(buf)

	sp.Start("first")
	sp.Start("second")
	time.Sleep(50 * time.Millisecond)
	sp.Stop()

	if strings.Contains(buf.String(), "second") {
		t.Error("second Start while running should be a no-op")
	}
}

func TestSpinnerRestart(t *testing.T) {
	buf := &syncBuffer{}
	sp := NewSpinnerTo(buf)

	sp.Start("one")
	time.Sleep(20 * time.Millisecond)
	sp.Stop()
	sp.Start("two")
	time.Sleep(20 * time.Millisecond)
	sp.Stop()

	out := buf.String()
	if !strings.Contains(out, "one") || !strings.Contains(out, "two") {
		t.Errorf("expected both runs in output, got %q", out)
	}
}

func TestSpinnerStopWithMessage(t *testing.T) {
	buf := &syncBuffer{}
	sp := NewSpinnerTo(buf)

	sp.Start("sending")
	time.Sleep(20 * time.Millisecond)
	sp.StopWithMessage("sent")

	out := buf.String()
	if !strings.Contains(out, "✓") || !strings.Contains(out, "sent") {
		t.Errorf("expected success marker, got %q", out)
	}
}

func TestSpinnerStopWithError(t *testing.T) {
	buf := &syncBuffer{}
	sp := NewSpinnerTo(buf)

	sp.Start("sending")
	time.Sleep(20 * time.Millisecond)
	sp.StopWithError("send failed")

	out := buf.String()
	if !strings.Contains(out, "✗") || !strings.Contains(out, "send failed") {
		t.Errorf("expected failure marker, got %q", out)
	}
}

func TestRunSuccess(t *testing.T) {
	buf := &syncBuffer{}
	sp := NewSpinnerTo(buf)

	called := false
	err := runWith(context.Background(), sp, "step", func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected fn to run")
	}
	if !strings.Contains(buf.String(), "✓") {
		t.Errorf("expected success marker, got %q", buf.String())
	}
}

func TestRunError(t *testing.T) {
	buf := &syncBuffer{}
	sp := NewSpinnerTo(buf)

	wantErr := fmt.Errorf("boom")
	err := runWith(context.Background(), sp, "step", func(ctx context.Context) error {
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("expected fn error back, got %v", err)
	}
	if !strings.Contains(buf.String(), "✗") {
		t.Errorf("expected failure marker, got %q", buf.String())
	}
}
