// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package app ties the crypto engine, the encrypted store, the hotkey engine
// and the dispatcher together into an unlockable session.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/toeirei/quickkeys/internal/crypto"
	"github.com/toeirei/quickkeys/internal/hotkey"
	"github.com/toeirei/quickkeys/internal/logging"
	"github.com/toeirei/quickkeys/internal/model"
	"github.com/toeirei/quickkeys/internal/security"
	"github.com/toeirei/quickkeys/internal/store"
)

const (
	// MinPasswordLength is the shortest accepted master password.
	MinPasswordLength = 8
	// DefaultMaxAttempts is how many wrong passwords Unlock accepts.
	DefaultMaxAttempts = 3
)

var (
	ErrTooManyAttempts  = errors.New("too many failed password attempts")
	ErrCancelled        = errors.New("cancelled")
	ErrPasswordTooShort = fmt.Errorf("master password must be at least %d characters", MinPasswordLength)
	ErrLocked           = errors.New("session is locked")
)

// Prompter asks the user for the master password. Returning ErrCancelled
// aborts the unlock.
type Prompter interface {
	// NewPassword asks for and confirms the password of a new installation.
	NewPassword(ctx context.Context) (security.Secret, error)
	// Password asks for the existing password; attempt counts from 1.
	Password(ctx context.Context, attempt int) (security.Secret, error)
}

// Hotkeys is the subset of *hotkey.Engine the session drives.
type Hotkeys interface {
	Register(hotkey string, callback func()) error
	UnregisterAll()
	Start() error
}

// Executor runs a triggered keybind. *dispatch.Dispatcher implements it.
type Executor interface {
	Execute(kb model.Keybind)
}

// Options configure a Session.
type Options struct {
	DataDir     string
	MaxAttempts int
}

// Session is the unlocked state of QuickKeys.
type Session struct {
	opts    Options
	engine  *crypto.Engine
	hotkeys Hotkeys
	exec    Executor

	mu     sync.Mutex
	store  *store.Store
	active bool
}

// NewSession returns a locked session. hotkeys and exec may be nil for
// sessions that only edit keybinds.
func NewSession(opts Options, hotkeys Hotkeys, exec Executor) *Session {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	engine := crypto.New()
	return &Session{
		opts:    opts,
		engine:  engine,
		hotkeys: hotkeys,
		exec:    exec,
		store:   store.New(engine, opts.DataDir),
	}
}

// IsNew reports whether no encrypted store exists yet.
func (s *Session) IsNew() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.store.Exists()
}

// StorePath returns the location of the encrypted store.
func (s *Session) StorePath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Path()
}

// Unlocked reports whether a key is installed.
func (s *Session) Unlocked() bool { return s.engine.IsInitialized() }

// Unlock asks for the master password and loads the store. A new
// installation gets a fresh key and an empty store; an existing one is
// verified against the file, up to MaxAttempts tries.
func (s *Session) Unlock(ctx context.Context, p Prompter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.Exists() {
		return s.createLocked(ctx, p)
	}

	blob, err := s.store.ReadBlob()
	if err != nil {
		return err
	}
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		pw, err := p.Password(ctx, attempt)
		if err != nil {
			return err
		}
		if !s.engine.VerifyPassword(pw.Bytes(), blob) {
			pw.Zero()
			logging.Warnf("wrong master password (attempt %d of %d)", attempt, s.opts.MaxAttempts)
			continue
		}
		err = s.engine.InitializeExisting(pw.Bytes(), blob)
		pw.Zero()
		if err != nil {
			return err
		}
		if _, err := s.store.Load(); err != nil {
			s.engine.Clear()
			return err
		}
		logging.Infof("unlocked %d keybinds", s.store.Len())
		return nil
	}
	return ErrTooManyAttempts
}

func (s *Session) createLocked(ctx context.Context, p Prompter) error {
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		pw, err := p.NewPassword(ctx)
		if err != nil {
			return err
		}
		if pw.Len() < MinPasswordLength {
			pw.Zero()
			logging.Warnf("%v", ErrPasswordTooShort)
			continue
		}
		err = s.engine.InitializeNew(pw.Bytes())
		pw.Zero()
		if err != nil {
			return err
		}
		if err := s.store.Save(); err != nil {
			s.engine.Clear()
			return err
		}
		logging.Infof("created new store at %s", s.store.Path())
		return nil
	}
	return ErrPasswordTooShort
}

// Activate registers every keybind with the hotkey engine and starts it.
func (s *Session) Activate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.engine.IsInitialized() {
		return ErrLocked
	}
	if s.hotkeys == nil {
		return errors.New("session has no hotkey engine")
	}
	s.active = true
	return s.registerAllLocked()
}

// Reload re-registers every keybind. It does nothing while not active.
func (s *Session) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return nil
	}
	return s.registerAllLocked()
}

func (s *Session) registerAllLocked() error {
	s.hotkeys.UnregisterAll()
	var errs []error
	for _, kb := range s.store.GetAll() {
		err := s.hotkeys.Register(kb.Hotkey, func() {
			if s.exec != nil {
				s.exec.Execute(kb)
			}
		})
		if err != nil {
			logging.Errorf("could not register %s: %v", kb.Hotkey, err)
			errs = append(errs, err)
		}
	}
	if err := s.hotkeys.Start(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Lock forgets the key and the decrypted records and unregisters hotkeys.
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockLocked()
}

func (s *Session) lockLocked() {
	if s.hotkeys != nil && s.active {
		s.hotkeys.UnregisterAll()
	}
	s.active = false
	s.engine.Clear()
	s.store = store.New(s.engine, s.opts.DataDir)
	logging.Debugf("session locked")
}

// Reset deletes the encrypted store. All keybinds are lost; the next Unlock
// creates a new installation.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockLocked()
	if err := s.store.Delete(); err != nil {
		return err
	}
	logging.Warnf("store %s deleted", s.store.Path())
	return nil
}

// Close stops hotkeys and clears the key.
func (s *Session) Close() { s.Lock() }

// Keybinds returns every keybind in creation order.
func (s *Session) Keybinds() ([]model.Keybind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.engine.IsInitialized() {
		return nil, ErrLocked
	}
	return s.store.GetAll(), nil
}

// Find looks a keybind up by id, then by hotkey.
func (s *Session) Find(idOrHotkey string) (model.Keybind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kb, ok := s.store.Get(idOrHotkey); ok {
		return kb, true
	}
	return s.store.GetByHotkey(idOrHotkey)
}

// AddKeybind validates and persists a new keybind.
func (s *Session) AddKeybind(kb model.Keybind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(kb); err != nil {
		return err
	}
	if err := s.store.Add(kb); err != nil {
		return err
	}
	return s.reregisterLocked()
}

// UpdateKeybind validates and persists an edited keybind.
func (s *Session) UpdateKeybind(kb model.Keybind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(kb); err != nil {
		return err
	}
	if err := s.store.Update(kb); err != nil {
		return err
	}
	return s.reregisterLocked()
}

// RemoveKeybind deletes a keybind by id.
func (s *Session) RemoveKeybind(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.engine.IsInitialized() {
		return ErrLocked
	}
	if err := s.store.Remove(id); err != nil {
		return err
	}
	return s.reregisterLocked()
}

func (s *Session) checkLocked(kb model.Keybind) error {
	if !s.engine.IsInitialized() {
		return ErrLocked
	}
	if err := kb.Validate(); err != nil {
		return err
	}
	chord, err := hotkey.ParseChord(kb.Hotkey)
	if err != nil {
		return err
	}
	if s.store.HotkeyExists(kb.Hotkey, kb.ID) {
		return fmt.Errorf("%w: %s", store.ErrHotkeyInUse, kb.Hotkey)
	}
	// Spellings that differ but press the same chord also collide.
	want := chord.Key()
	for _, other := range s.store.GetAll() {
		if other.ID != kb.ID && hotkey.ChordKey(other.Hotkey) == want {
			return fmt.Errorf("%w: %s (as %s)", store.ErrHotkeyInUse, kb.Hotkey, other.Hotkey)
		}
	}
	return nil
}

func (s *Session) reregisterLocked() error {
	if !s.active {
		return nil
	}
	return s.registerAllLocked()
}
