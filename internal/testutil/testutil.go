// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil provides in-memory doubles for the OS-facing pieces
// (keyboard hook, synthetic keyboard, clipboard, process launcher) so the
// hotkey and dispatch logic can be tested without a desktop session.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/toeirei/quickkeys/internal/input"
)

// FakeHook is an input.Hook driven by the test.
type FakeHook struct {
	// StartErr, if set, is returned by Start.
	StartErr error

	mu     sync.Mutex
	ch     chan input.KeyEvent
	starts int
	stops  int
}

// Start implements input.Hook.
func (f *FakeHook) Start() (<-chan input.KeyEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartErr != nil {
		return nil, f.StartErr
	}
	f.ch = make(chan input.KeyEvent, 256)
	f.starts++
	return f.ch, nil
}

// Stop implements input.Hook.
func (f *FakeHook) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ch != nil {
		close(f.ch)
		f.ch = nil
	}
	f.stops++
}

// Emit delivers ev if the hook is running and reports whether it was sent.
func (f *FakeHook) Emit(ev input.KeyEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ch == nil {
		return false
	}
	if ev.When.IsZero() {
		ev.When = time.Now()
	}
	f.ch <- ev
	return true
}

// Press emits a key press.
func (f *FakeHook) Press(k input.Key) bool {
	return f.Emit(input.KeyEvent{Kind: input.Press, Key: k})
}

// Release emits a key release.
func (f *FakeHook) Release(k input.Key) bool {
	return f.Emit(input.KeyEvent{Kind: input.Release, Key: k})
}

// Chord presses keys in order and releases them in reverse order.
func (f *FakeHook) Chord(keys ...input.Key) {
	for _, k := range keys {
		f.Press(k)
	}
	for i := len(keys) - 1; i >= 0; i-- {
		f.Release(keys[i])
	}
}

// Running reports whether the hook is started.
func (f *FakeHook) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ch != nil
}

// Starts returns how many times Start succeeded.
func (f *FakeHook) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

// Stops returns how many times Stop was called.
func (f *FakeHook) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

// KeyAction records one synthesized keyboard action.
type KeyAction struct {
	Tap       input.Key
	Modifiers []input.Key
	Typed     string
}

// FakeKeyboard records synthesized key taps and typing. When Clipboard is
// set, a tap of V with a modifier records the clipboard contents as Pasted.
type FakeKeyboard struct {
	Clipboard *FakeClipboard
	TapErr    error

	mu      sync.Mutex
	actions []KeyAction
	pasted  []string
}

// Tap implements input.Keyboard.
func (k *FakeKeyboard) Tap(key input.Key, modifiers ...input.Key) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.TapErr != nil {
		return k.TapErr
	}
	k.actions = append(k.actions, KeyAction{Tap: key, Modifiers: append([]input.Key(nil), modifiers...)})
	if key.Char == 'v' && len(modifiers) > 0 && k.Clipboard != nil {
		text, _ := k.Clipboard.Read()
		k.pasted = append(k.pasted, text)
	}
	return nil
}

// Type implements input.Keyboard.
func (k *FakeKeyboard) Type(text string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.actions = append(k.actions, KeyAction{Typed: text})
	k.pasted = append(k.pasted, text)
	return nil
}

// Actions returns a copy of the recorded actions.
func (k *FakeKeyboard) Actions() []KeyAction {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]KeyAction(nil), k.actions...)
}

// Pasted returns the texts that reached the focused application.
func (k *FakeKeyboard) Pasted() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.pasted...)
}

// FakeClipboard is an in-memory clipboard.
type FakeClipboard struct {
	ReadErr  error
	WriteErr error

	mu      sync.Mutex
	content string
	writes  []string
}

// NewFakeClipboard returns a clipboard holding content.
func NewFakeClipboard(content string) *FakeClipboard {
	return &FakeClipboard{content: content}
}

// Read implements clipboard.Clipboard.
func (c *FakeClipboard) Read() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ReadErr != nil {
		return "", c.ReadErr
	}
	return c.content, nil
}

// Write implements clipboard.Clipboard.
func (c *FakeClipboard) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.content = text
	c.writes = append(c.writes, text)
	return nil
}

// Content returns the current clipboard text.
func (c *FakeClipboard) Content() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content
}

// Writes returns every text written, in order.
func (c *FakeClipboard) Writes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.writes...)
}

// ErrLaunch is returned by FakeLauncher when Fail is set.
var ErrLaunch = errors.New("fake launch failure")

// LaunchCall records one launch request.
type LaunchCall struct {
	Path string
	Args string
	Wait time.Duration
}

// FakeLauncher records launches. Alive is what LaunchAndWait reports.
type FakeLauncher struct {
	Alive bool
	Fail  bool

	mu    sync.Mutex
	calls []LaunchCall
}

// Launch records a fire-and-forget launch.
func (l *FakeLauncher) Launch(path, args string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, LaunchCall{Path: path, Args: args})
	if l.Fail {
		return ErrLaunch
	}
	return nil
}

// LaunchAndWait records a launch and reports Alive.
func (l *FakeLauncher) LaunchAndWait(ctx context.Context, path, args string, wait time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, LaunchCall{Path: path, Args: args, Wait: wait})
	if l.Fail {
		return false, ErrLaunch
	}
	return l.Alive, nil
}

// Calls returns a copy of the recorded launches.
func (l *FakeLauncher) Calls() []LaunchCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LaunchCall(nil), l.calls...)
}
