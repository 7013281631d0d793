// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the keybind record persisted in the encrypted store
// and the versioned container it is serialized in.
package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StoreVersion is the container version written by this build.
const StoreVersion = 1

// DefaultWaitSeconds is the launch-then-paste delay used when none is given.
const DefaultWaitSeconds = 2.0

// ErrInvalidKeybind is wrapped by every validation failure.
var ErrInvalidKeybind = errors.New("invalid keybind")

// ActionType selects what a keybind does when its chord fires.
type ActionType int

const (
	// Paste pastes custom text, or username, Tab, password.
	Paste ActionType = iota
	// Launch starts a program.
	Launch
	// LaunchThenPaste starts a program, waits, then pastes if it is still running.
	LaunchThenPaste
)

// ActionTypes lists every action type in display order.
var ActionTypes = []ActionType{Paste, Launch, LaunchThenPaste}

// String returns the on-disk name of the action type.
func (a ActionType) String() string {
	switch a {
	case Paste:
		return "paste"
	case Launch:
		return "launch"
	case LaunchThenPaste:
		return "launch_paste"
	default:
		return fmt.Sprintf("ActionType(%d)", int(a))
	}
}

// Label is a human readable name for listings.
func (a ActionType) Label() string {
	switch a {
	case Paste:
		return "Paste"
	case Launch:
		return "Launch"
	case LaunchThenPaste:
		return "Launch + Paste"
	default:
		return a.String()
	}
}

// NeedsPaste reports whether the action pastes text.
func (a ActionType) NeedsPaste() bool { return a == Paste || a == LaunchThenPaste }

// NeedsProgram reports whether the action launches a program.
func (a ActionType) NeedsProgram() bool { return a == Launch || a == LaunchThenPaste }

// ParseActionType parses an on-disk or user supplied action name.
func ParseActionType(s string) (ActionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paste":
		return Paste, nil
	case "launch":
		return Launch, nil
	case "launch_paste", "launch-paste", "launchpaste", "launch_then_paste":
		return LaunchThenPaste, nil
	default:
		return 0, fmt.Errorf("unknown action type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a ActionType) MarshalText() ([]byte, error) {
	switch a {
	case Paste, Launch, LaunchThenPaste:
		return []byte(a.String()), nil
	default:
		return nil, fmt.Errorf("unknown action type %d", int(a))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *ActionType) UnmarshalText(text []byte) error {
	parsed, err := ParseActionType(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Keybind is one user-defined automation rule. The JSON layout matches the
// decrypted store file.
type Keybind struct {
	ID         string     `json:"id"`
	Hotkey     string     `json:"hotkey"`
	Name       string     `json:"name"`
	ActionType ActionType `json:"action_type"`

	Username   string `json:"username"`
	Password   string `json:"password"`
	CustomText string `json:"custom_text"`

	ProgramPath string  `json:"program_path"`
	ProgramArgs string  `json:"program_args"`
	WaitSeconds float64 `json:"wait_seconds"`

	// CreatedAt is a UNIX timestamp in seconds.
	CreatedAt float64 `json:"created_at"`
}

// NewKeybind returns a keybind with a fresh id and creation time.
func NewKeybind(hotkey, name string, action ActionType) Keybind {
	return Keybind{
		ID:          uuid.NewString(),
		Hotkey:      hotkey,
		Name:        name,
		ActionType:  action,
		WaitSeconds: DefaultWaitSeconds,
		CreatedAt:   float64(time.Now().UnixNano()) / float64(time.Second),
	}
}

// CreatedTime returns CreatedAt as a time.Time.
func (k Keybind) CreatedTime() time.Time {
	sec, frac := math.Modf(k.CreatedAt)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

// Wait returns WaitSeconds as a duration; negative values count as zero.
func (k Keybind) Wait() time.Duration {
	if k.WaitSeconds <= 0 {
		return 0
	}
	return time.Duration(k.WaitSeconds * float64(time.Second))
}

// String describes the keybind without revealing credentials.
func (k Keybind) String() string {
	return fmt.Sprintf("%s [%s] %s", k.Name, k.Hotkey, k.ActionType.Label())
}

// Validate applies the editing rules: a hotkey and a name are required,
// paste actions need credentials or custom text, launch actions need a
// program and launch-then-paste needs a non-negative wait.
func (k Keybind) Validate() error {
	if strings.TrimSpace(k.Hotkey) == "" {
		return fmt.Errorf("%w: a hotkey is required", ErrInvalidKeybind)
	}
	if strings.TrimSpace(k.Name) == "" {
		return fmt.Errorf("%w: a name is required", ErrInvalidKeybind)
	}
	switch k.ActionType {
	case Paste, Launch, LaunchThenPaste:
	default:
		return fmt.Errorf("%w: unknown action type %d", ErrInvalidKeybind, int(k.ActionType))
	}
	if k.ActionType.NeedsPaste() {
		hasCreds := strings.TrimSpace(k.Username) != "" || strings.TrimSpace(k.Password) != ""
		if !hasCreds && strings.TrimSpace(k.CustomText) == "" {
			return fmt.Errorf("%w: username/password or custom text is required", ErrInvalidKeybind)
		}
	}
	if k.ActionType.NeedsProgram() && strings.TrimSpace(k.ProgramPath) == "" {
		return fmt.Errorf("%w: a program path is required", ErrInvalidKeybind)
	}
	if k.ActionType == LaunchThenPaste && (k.WaitSeconds < 0 || math.IsNaN(k.WaitSeconds)) {
		return fmt.Errorf("%w: wait seconds must not be negative", ErrInvalidKeybind)
	}
	return nil
}

// Container is the decrypted store document.
type Container struct {
	Version  int       `json:"version"`
	Keybinds []Keybind `json:"keybinds"`
}

// SortBy orders keybinds in place.
type SortBy string

const (
	SortCreated SortBy = "created"
	SortName    SortBy = "name"
	SortHotkey  SortBy = "hotkey"
	SortAction  SortBy = "action"
)

// Sort orders keybinds by the given column; unknown columns fall back to
// creation time. Ties keep creation order.
func Sort(kbs []Keybind, by SortBy, reverse bool) {
	less := func(a, b Keybind) bool { return a.CreatedAt < b.CreatedAt }
	switch by {
	case SortName:
		less = func(a, b Keybind) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortHotkey:
		less = func(a, b Keybind) bool { return strings.ToLower(a.Hotkey) < strings.ToLower(b.Hotkey) }
	case SortAction:
		less = func(a, b Keybind) bool { return a.ActionType < b.ActionType }
	}
	sort.SliceStable(kbs, func(i, j int) bool {
		if reverse {
			return less(kbs[j], kbs[i])
		}
		return less(kbs[i], kbs[j])
	})
}
