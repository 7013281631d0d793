// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

package osinput

import (
	"fmt"

	"github.com/go-vgo/robotgo"

	"github.com/toeirei/quickkeys/internal/input"
)

// robotgo spells a few keys differently from the neutral names.
var robotNames = map[string]string{
	input.KeyPageUp:   "pageup",
	input.KeyPageDown: "pagedown",
	input.KeyCapsLock: "capslock",
	input.KeyNumLock:  "numlock",
	input.KeyPrint:    "printscreen",
	input.KeyScroll:   "scrolllock",
	input.KeyEsc:      "esc",
	input.KeyCmd:      "cmd",
}

func robotName(k input.Key) (string, error) {
	if k.IsZero() {
		return "", fmt.Errorf("synthesize key: empty key")
	}
	if k.Char != 0 {
		return string(k.Char), nil
	}
	if n, ok := robotNames[k.Name]; ok {
		return n, nil
	}
	return k.Name, nil
}

// Keyboard synthesizes key presses through robotgo.
type Keyboard struct{}

// NewKeyboard returns the desktop keyboard.
func NewKeyboard() Keyboard { return Keyboard{} }

// Tap implements input.Keyboard.
func (Keyboard) Tap(key input.Key, modifiers ...input.Key) error {
	name, err := robotName(key)
	if err != nil {
		return err
	}
	args := make([]interface{}, 0, len(modifiers))
	for _, m := range modifiers {
		mn, err := robotName(m)
		if err != nil {
			return err
		}
		args = append(args, mn)
	}
	if err := robotgo.KeyTap(name, args...); err != nil {
		return fmt.Errorf("synthesize %s: %w", key, err)
	}
	return nil
}

// Type implements input.Keyboard.
func (Keyboard) Type(text string) error {
	robotgo.TypeStr(text)
	return nil
}
