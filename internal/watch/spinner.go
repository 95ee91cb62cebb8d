// Copyright 2025 Sorokit Authors
// SPDX-License-Identifier: Apache-2.0

// Package watch provides the terminal feedback shown while a command
// waits on the network.
package watch

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

const frameInterval = 100 * time.Millisecond

// Spinner animates a braille spinner next to a message. Start and Stop
// must be called from the same goroutine.
type Spinner struct {
	w      io.Writer
	frames []string

	mu      sync.Mutex
	running bool
	done    chan struct{}
	idle    chan struct{}
}

// NewSpinner returns a spinner writing to stderr, keeping stdout clean
// for command output.
func NewSpinner() *Spinner {
	return NewSpinnerTo(os.Stderr)
}

// NewSpinnerTo returns a spinner writing to w.
func NewSpinnerTo(w io.Writer) *Spinner {
	return &Spinner{
		w:      w,
		frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start begins animating message. A second Start while running is a
// no-op; a stopped spinner may be started again.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})
	s.idle = make(chan struct{})

	go func(done, idle chan struct{}) {
		defer close(idle)
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()

		frame := 0
		fmt.Fprintf(s.w, "\r%s %s", s.frames[frame], message)
		for {
			select {
			case <-done:
				fmt.Fprint(s.w, "\r\033[K")
				return
			case <-ticker.C:
				frame = (frame + 1) % len(s.frames)
				fmt.Fprintf(s.w, "\r%s %s", s.frames[frame], message)
			}
		}
	}(s.done, s.idle)
}

// Stop clears the spinner line and waits for the animation goroutine to
// exit. Stopping a spinner that is not running is a no-op.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	idle := s.idle
	s.mu.Unlock()

	<-idle
}

// StopWithMessage stops the spinner and prints a success line.
func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	fmt.Fprintf(s.w, "%s %s\n", color.GreenString("✓"), message)
}

// StopWithError stops the spinner and prints a failure line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	fmt.Fprintf(s.w, "%s %s\n", color.RedString("✗"), message)
}
