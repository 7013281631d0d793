// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package dispatch executes triggered keybinds.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/toeirei/quickkeys/internal/clipboard"
	"github.com/toeirei/quickkeys/internal/input"
	"github.com/toeirei/quickkeys/internal/logging"
	"github.com/toeirei/quickkeys/internal/model"
)

// ErrAction wraps any failure while executing a keybind.
var ErrAction = errors.New("action failed")

// Paste methods.
const (
	MethodClipboard = "clipboard"
	MethodType      = "type"
)

// Launcher starts programs.
type Launcher interface {
	Launch(path, args string) error
	LaunchAndWait(ctx context.Context, path, args string, wait time.Duration) (bool, error)
}

// Options tune how text is injected.
type Options struct {
	// Method is MethodClipboard or MethodType.
	Method string
	// AutoSubmit sends Enter after a username/password pair.
	AutoSubmit bool
	// RestoreDelay is how long the pasted text stays on the clipboard.
	RestoreDelay time.Duration
	// KeyDelay settles before and after the paste chord.
	KeyDelay time.Duration
	// GapDelay separates username, Tab and password.
	GapDelay time.Duration
	// GOOS selects the paste chord; empty means runtime.GOOS.
	GOOS string
}

// DefaultOptions returns the standard timings.
func DefaultOptions() Options {
	return Options{
		Method:       MethodClipboard,
		RestoreDelay: 200 * time.Millisecond,
		KeyDelay:     50 * time.Millisecond,
		GapDelay:     100 * time.Millisecond,
		GOOS:         runtime.GOOS,
	}
}

// Dispatcher routes a keybind to its action.
type Dispatcher struct {
	clip     clipboard.Clipboard
	keyboard input.Keyboard
	launcher Launcher
	opts     Options
	sleep    func(time.Duration)

	wg sync.WaitGroup
}

// New returns a dispatcher. Zero option fields fall back to DefaultOptions.
func New(clip clipboard.Clipboard, kb input.Keyboard, l Launcher, opts Options) *Dispatcher {
	def := DefaultOptions()
	if opts.Method == "" {
		opts.Method = def.Method
	}
	if opts.GOOS == "" {
		opts.GOOS = def.GOOS
	}
	return &Dispatcher{clip: clip, keyboard: kb, launcher: l, opts: opts, sleep: time.Sleep}
}

// Execute runs kb on its own goroutine. Failures and panics are logged.
func (d *Dispatcher) Execute(kb model.Keybind) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.Errorf("keybind %q panicked: %v", kb.Name, r)
			}
		}()
		if err := d.Run(context.Background(), kb); err != nil {
			logging.Errorf("keybind %q: %v", kb.Name, err)
		}
	}()
}

// Wait blocks until every Execute call has finished.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Run executes kb synchronously.
func (d *Dispatcher) Run(ctx context.Context, kb model.Keybind) error {
	logging.Debugf("executing %s", kb)
	switch kb.ActionType {
	case model.Paste:
		return d.paste(kb)
	case model.Launch:
		if err := d.launcher.Launch(kb.ProgramPath, kb.ProgramArgs); err != nil {
			return fmt.Errorf("%w: %w", ErrAction, err)
		}
		return nil
	case model.LaunchThenPaste:
		alive, err := d.launcher.LaunchAndWait(ctx, kb.ProgramPath, kb.ProgramArgs, kb.Wait())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAction, err)
		}
		if !alive {
			logging.Infof("%s exited before the wait elapsed, skipping paste", kb.ProgramPath)
			return nil
		}
		return d.paste(kb)
	default:
		return fmt.Errorf("%w: unknown action type %d", ErrAction, int(kb.ActionType))
	}
}

func (d *Dispatcher) paste(kb model.Keybind) error {
	if d.opts.Method != MethodType {
		backup := clipboard.Save(d.clip, d.opts.RestoreDelay)
		defer backup.Restore()
	}

	if kb.CustomText != "" {
		return d.inject(kb.CustomText)
	}
	if kb.Username != "" {
		if err := d.inject(kb.Username); err != nil {
			return err
		}
		d.sleep(d.opts.GapDelay)
		if err := d.tap(input.Named(input.KeyTab)); err != nil {
			return err
		}
	}
	// Nothing to submit without a password.
	if kb.Password == "" {
		return nil
	}
	if kb.Username != "" {
		d.sleep(d.opts.GapDelay)
	}
	if err := d.inject(kb.Password); err != nil {
		return err
	}
	if d.opts.AutoSubmit {
		d.sleep(d.opts.GapDelay)
		return d.tap(input.Named(input.KeyEnter))
	}
	return nil
}

func (d *Dispatcher) inject(text string) error {
	if text == "" {
		return nil
	}
	if d.opts.Method == MethodType {
		if err := d.keyboard.Type(text); err != nil {
			return fmt.Errorf("%w: type text: %w", ErrAction, err)
		}
		return nil
	}
	if err := d.clip.Write(text); err != nil {
		return fmt.Errorf("%w: %w", ErrAction, err)
	}
	d.sleep(d.opts.KeyDelay)
	if err := d.tap(input.Char('v'), d.pasteModifier()); err != nil {
		return err
	}
	d.sleep(d.opts.KeyDelay)
	return nil
}

func (d *Dispatcher) tap(k input.Key, modifiers ...input.Key) error {
	if err := d.keyboard.Tap(k, modifiers...); err != nil {
		return fmt.Errorf("%w: key %s: %w", ErrAction, k, err)
	}
	return nil
}

func (d *Dispatcher) pasteModifier() input.Key {
	if d.opts.GOOS == "darwin" {
		return input.Named(input.KeyCmd)
	}
	return input.Named(input.KeyCtrl)
}
