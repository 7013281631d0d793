// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package hotkey turns raw key events into hotkey callbacks. It contains the
// hotkey string normalizer, the global hotkey engine and the chord capture
// state machine used while recording a new hotkey.
package hotkey

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/toeirei/quickkeys/internal/input"
	"github.com/toeirei/quickkeys/internal/logging"
)

// ErrInvalidHotkey is returned for hotkey strings that cannot be parsed.
var ErrInvalidHotkey = errors.New("invalid hotkey")

type binding struct {
	chord    Chord
	original string
	callback func()
}

// Engine owns the global hotkey listener. Every mutation stops the current
// listener and starts a new one over the full mapping; the listener works
// on an immutable copy, so a hotkey firing during a mutation sees either the
// old or the new mapping.
type Engine struct {
	source input.Source

	mu       sync.Mutex
	bindings map[string]binding
	listener *listener
}

// NewEngine returns an engine that listens on src.
func NewEngine(src input.Source) *Engine {
	return &Engine{source: src, bindings: make(map[string]binding)}
}

// Register binds hotkey to callback, replacing any callback registered for
// the same canonical chord, and restarts the listener.
func (e *Engine) Register(hotkey string, callback func()) error {
	chord, err := ParseChord(hotkey)
	if err != nil {
		return err
	}
	if callback == nil {
		return fmt.Errorf("%w: nil callback for %q", ErrInvalidHotkey, hotkey)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.bindings[chord.Key()] = binding{chord: chord, original: hotkey, callback: callback}
	return e.restartLocked()
}

// Unregister removes hotkey and restarts the listener. It reports false if
// the hotkey was not registered.
func (e *Engine) Unregister(hotkey string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := ChordKey(hotkey)
	if _, ok := e.bindings[key]; !ok {
		return false, nil
	}
	delete(e.bindings, key)
	return true, e.restartLocked()
}

// UnregisterAll clears every binding and stops the listener.
func (e *Engine) UnregisterAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bindings = make(map[string]binding)
	e.stopLocked()
}

// Start (re)starts the listener over the current mapping. It is a no-op when
// nothing is registered.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.bindings) == 0 {
		return nil
	}
	return e.restartLocked()
}

// Stop stops the listener and keeps the mapping.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// Running reports whether a listener is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listener != nil
}

// IsRegistered reports whether hotkey's canonical chord is bound.
func (e *Engine) IsRegistered(hotkey string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.bindings[ChordKey(hotkey)]
	return ok
}

// RegisteredHotkeys returns the hotkeys as originally registered, sorted.
func (e *Engine) RegisteredHotkeys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.bindings))
	for _, b := range e.bindings {
		out = append(out, b.original)
	}
	sort.Strings(out)
	return out
}

func (e *Engine) restartLocked() error {
	e.stopLocked()
	if len(e.bindings) == 0 {
		return nil
	}

	table := make([]binding, 0, len(e.bindings))
	for _, b := range e.bindings {
		table = append(table, b)
	}

	ctx, cancel := context.WithCancel(context.Background())
	events, err := e.source.Subscribe(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("start hotkey listener: %w", err)
	}
	l := &listener{cancel: cancel, done: make(chan struct{}), table: table}
	go l.run(ctx, events)
	e.listener = l
	logging.Debugf("hotkey listener started with %d bindings", len(table))
	return nil
}

func (e *Engine) stopLocked() {
	if e.listener == nil {
		return
	}
	e.listener.cancel()
	<-e.listener.done
	e.listener = nil
	logging.Debugf("hotkey listener stopped")
}

type listener struct {
	cancel context.CancelFunc
	done   chan struct{}
	table  []binding
	held   map[string]bool
}

func (l *listener) run(ctx context.Context, events <-chan input.KeyEvent) {
	defer close(l.done)
	l.held = make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			l.handle(ev)
		}
	}
}

func (l *listener) handle(ev input.KeyEvent) {
	tok := KeyToken(ev.Key)
	if tok == "" {
		return
	}
	switch ev.Kind {
	case input.Press:
		if l.held[tok] {
			// auto-repeat
			return
		}
		l.held[tok] = true
		for _, b := range l.table {
			if b.chord.Matches(l.held) {
				go fire(b)
			}
		}
	case input.Release:
		delete(l.held, tok)
	}
}

func fire(b binding) {
	defer func() {
		if r := recover(); r != nil {
			logging.Errorf("hotkey %s callback panicked: %v", b.original, r)
		}
	}()
	b.callback()
}
