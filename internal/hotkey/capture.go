// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

package hotkey

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/toeirei/quickkeys/internal/input"
)

// CaptureState is the phase of a chord capture.
type CaptureState int

const (
	// Idle: not started or stopped.
	Idle CaptureState = iota
	// Capturing: listening and accumulating pressed keys.
	Capturing
	// Captured: a chord was emitted and the listener detached.
	Captured
)

func (s CaptureState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Captured:
		return "captured"
	default:
		return "unknown"
	}
}

var modifierOrder = map[string]int{"ctrl": 0, "alt": 1, "shift": 2, "win": 3, "cmd": 3}

// Capture records the next chord the user presses. A chord is emitted on the
// first key release that finds at least one modifier and at least one other
// key held; any other release clears the held keys and waits for a new
// attempt. A single key without a modifier is therefore never captured.
//
// Only one Capture should be active at a time.
type Capture struct {
	source    input.Source
	onCapture func(string)
	goos      string

	mu      sync.Mutex
	state   CaptureState
	pressed []string
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewCapture returns an idle capture that reports chords to onCapture. The
// callback runs after the listener has been detached.
func NewCapture(src input.Source, onCapture func(string)) *Capture {
	return &Capture{source: src, onCapture: onCapture, goos: runtime.GOOS}
}

// SetPlatform overrides the GOOS used for the super key display name.
func (c *Capture) SetPlatform(goos string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goos = goos
}

// State returns the current phase.
func (c *Capture) State() CaptureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start clears the held keys and attaches a listener. Starting an active
// capture restarts it.
func (c *Capture) Start() error {
	c.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := c.source.Subscribe(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("start chord capture: %w", err)
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.state = Capturing
	c.pressed = nil
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go func() {
		chord := c.run(ctx, events)
		cancel()
		close(done)
		if chord != "" && c.onCapture != nil {
			c.onCapture(chord)
		}
	}()
	return nil
}

// Stop detaches the listener, clears the held keys and returns to Idle. It
// may be called at any time, including from the capture callback.
func (c *Capture) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.pressed = nil
	c.state = Idle
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (c *Capture) run(ctx context.Context, events <-chan input.KeyEvent) string {
	for {
		select {
		case <-ctx.Done():
			return ""
		case ev, ok := <-events:
			if !ok {
				return ""
			}
			if chord, finished := c.handle(ev); finished {
				return chord
			}
		}
	}
}

func (c *Capture) handle(ev input.KeyEvent) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Capturing {
		return "", false
	}

	switch ev.Kind {
	case input.Press:
		name := KeyDisplayName(ev.Key, c.goos)
		if name == "" {
			return "", false
		}
		for _, p := range c.pressed {
			if p == name {
				return "", false
			}
		}
		c.pressed = append(c.pressed, name)
	case input.Release:
		if len(c.pressed) == 0 {
			return "", false
		}
		var modifiers, regular []string
		for _, p := range c.pressed {
			if _, ok := modifierOrder[strings.ToLower(p)]; ok {
				modifiers = append(modifiers, p)
			} else {
				regular = append(regular, p)
			}
		}
		c.pressed = nil
		if len(modifiers) == 0 || len(regular) == 0 {
			return "", false
		}
		sort.SliceStable(modifiers, func(i, j int) bool {
			return modifierOrder[strings.ToLower(modifiers[i])] < modifierOrder[strings.ToLower(modifiers[j])]
		})
		c.state = Captured
		c.cancel = nil
		return strings.Join(append(modifiers, regular...), "+"), true
	}
	return "", false
}

// KeyDisplayName returns the capture display name of a raw key: printable
// characters in upper case, modifiers as Ctrl/Alt/Shift and Cmd (darwin) or
// Win, function keys as F1..F24 and other keys capitalized.
func KeyDisplayName(k input.Key, goos string) string {
	if k.Char != 0 {
		if !unicode.IsPrint(k.Char) {
			return ""
		}
		return strings.ToUpper(string(k.Char))
	}
	if k.Name == "" {
		return ""
	}
	return displayName(strings.ToLower(k.Name), goos)
}

func displayName(name, goos string) string {
	switch {
	case strings.HasPrefix(name, "ctrl"):
		return "Ctrl"
	case strings.HasPrefix(name, "alt"):
		return "Alt"
	case strings.HasPrefix(name, "shift"):
		return "Shift"
	case strings.HasPrefix(name, "cmd"), name == "super", name == "win":
		if goos == "darwin" {
			return "Cmd"
		}
		return "Win"
	case isFunctionKey(name):
		return strings.ToUpper(name)
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func isFunctionKey(name string) bool {
	if len(name) < 2 || name[0] != 'f' {
		return false
	}
	_, err := strconv.Atoi(name[1:])
	return err == nil
}
