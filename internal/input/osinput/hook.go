// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package osinput binds the input abstractions to the desktop: a global
// keyboard hook on top of gohook and a synthetic keyboard on top of robotgo.
package osinput

import (
	"errors"
	"sync"

	hook "github.com/robotn/gohook"

	"github.com/toeirei/quickkeys/internal/input"
)

var errHookRunning = errors.New("keyboard hook already running")

// Hook is the process-wide gohook listener. Use it through input.Hub; the
// underlying hook can only run once per process.
type Hook struct {
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewHook returns an idle hook.
func NewHook() *Hook { return &Hook{} }

// Start implements input.Hook.
func (h *Hook) Start() (<-chan input.KeyEvent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stop != nil {
		return nil, errHookRunning
	}

	src := hook.Start()
	if src == nil {
		return nil, input.ErrHookUnavailable
	}
	out := make(chan input.KeyEvent, input.SubscriberBuffer)
	h.stop = make(chan struct{})
	h.done = make(chan struct{})
	go forward(src, out, h.stop, h.done)
	return out, nil
}

// Stop implements input.Hook.
func (h *Hook) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stop == nil {
		return
	}
	close(h.stop)
	hook.End()
	<-h.done
	h.stop, h.done = nil, nil
}

func forward(src <-chan hook.Event, out chan<- input.KeyEvent, stop, done chan struct{}) {
	defer close(done)
	defer close(out)
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-src:
			if !ok {
				return
			}
			kev, ok := translate(ev)
			if !ok {
				continue
			}
			select {
			case out <- kev:
			case <-stop:
				return
			}
		}
	}
}

// translate maps a gohook event to a key event. KeyHold is the physical
// press, KeyUp the release; KeyDown is the typed-character event and is
// ignored, as are mouse events.
func translate(ev hook.Event) (input.KeyEvent, bool) {
	var kind input.EventKind
	switch ev.Kind {
	case hook.KeyHold:
		kind = input.Press
	case hook.KeyUp:
		kind = input.Release
	default:
		return input.KeyEvent{}, false
	}
	key, ok := keyFromCode(ev.Keycode)
	if !ok {
		return input.KeyEvent{}, false
	}
	return input.KeyEvent{Kind: kind, Key: key, When: ev.When}, true
}
