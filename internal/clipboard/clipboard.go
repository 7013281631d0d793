// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package clipboard wraps the system clipboard and provides a backup guard
// that puts the user's previous clipboard text back after a paste.
package clipboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/atotto/clipboard"

	"github.com/toeirei/quickkeys/internal/logging"
)

// Clipboard reads and writes plain text.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

// System is the desktop clipboard.
type System struct{}

// Read implements Clipboard.
func (System) Read() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}

// Write implements Clipboard.
func (System) Write(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// Available reports whether the platform has a clipboard utility.
func Available() bool { return !clipboard.Unsupported }

// Backup holds the clipboard text captured before a paste.
type Backup struct {
	cb    Clipboard
	delay time.Duration
	sleep func(time.Duration)

	once  sync.Once
	saved string
	ok    bool
}

// Save captures the current clipboard text. If the clipboard cannot be read,
// Restore does nothing.
func Save(cb Clipboard, delay time.Duration) *Backup {
	b := &Backup{cb: cb, delay: delay, sleep: time.Sleep}
	text, err := cb.Read()
	if err != nil {
		logging.Debugf("clipboard backup skipped: %v", err)
		return b
	}
	b.saved, b.ok = text, true
	return b
}

// Restore waits for the restore delay so the target application can consume
// the paste, then writes the saved text back. Only the first call has an
// effect; failures are logged and otherwise ignored.
func (b *Backup) Restore() {
	b.once.Do(func() {
		if !b.ok {
			return
		}
		if b.delay > 0 {
			b.sleep(b.delay)
		}
		if err := b.cb.Write(b.saved); err != nil {
			logging.Warnf("could not restore clipboard: %v", err)
		}
	})
}
