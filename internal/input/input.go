// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package input describes raw keyboard events in a platform-neutral shape and
// fans a single OS-level keyboard hook out to any number of subscribers.
//
// The OS hook only exists once per process, but both the hotkey listener and
// an active chord capture need to observe key presses. Hub owns the hook and
// starts it for the first subscriber and stops it when the last one leaves.
package input

import (
	"context"
	"strings"
	"time"
	"unicode"
)

// Neutral names for the non-printable keys an OS hook can report. Left and
// right variants of modifiers are folded by the hook adapter.
const (
	KeyCtrl      = "ctrl"
	KeyAlt       = "alt"
	KeyShift     = "shift"
	KeyCmd       = "cmd"
	KeyEnter     = "enter"
	KeyTab       = "tab"
	KeySpace     = "space"
	KeyEsc       = "esc"
	KeyBackspace = "backspace"
	KeyDelete    = "delete"
	KeyInsert    = "insert"
	KeyHome      = "home"
	KeyEnd       = "end"
	KeyPageUp    = "page_up"
	KeyPageDown  = "page_down"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyLeft      = "left"
	KeyRight     = "right"
	KeyCapsLock  = "caps_lock"
	KeyNumLock   = "num_lock"
	KeyScroll    = "scroll_lock"
	KeyPrint     = "print_screen"
	KeyPause     = "pause"
)

// Key identifies a physical key. Printable keys carry their unshifted
// character in Char; every other key has a neutral Name.
type Key struct {
	Char rune
	Name string
}

// Char returns the Key for a printable character.
func Char(r rune) Key { return Key{Char: unicode.ToLower(r)} }

// Named returns the Key for a non-printable key.
func Named(name string) Key { return Key{Name: strings.ToLower(name)} }

// IsZero reports whether k identifies no key.
func (k Key) IsZero() bool { return k.Char == 0 && k.Name == "" }

// IsModifier reports whether k is one of ctrl, alt, shift or cmd.
func (k Key) IsModifier() bool {
	switch k.Name {
	case KeyCtrl, KeyAlt, KeyShift, KeyCmd:
		return true
	}
	return false
}

// String returns the character or the name.
func (k Key) String() string {
	if k.Char != 0 {
		return string(k.Char)
	}
	return k.Name
}

// EventKind distinguishes presses from releases.
type EventKind int

const (
	// Press is delivered when a key goes down (and on auto-repeat).
	Press EventKind = iota + 1
	// Release is delivered when a key goes up.
	Release
)

func (k EventKind) String() string {
	switch k {
	case Press:
		return "press"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// KeyEvent is one raw keyboard event.
type KeyEvent struct {
	Kind EventKind
	Key  Key
	When time.Time
}

// Source delivers raw key events. The returned channel is closed once ctx is
// done and the subscription has been torn down.
type Source interface {
	Subscribe(ctx context.Context) (<-chan KeyEvent, error)
}

// Keyboard synthesizes key presses in the focused application.
type Keyboard interface {
	// Tap presses and releases key while holding modifiers.
	Tap(key Key, modifiers ...Key) error
	// Type enters text character by character.
	Type(text string) error
}
