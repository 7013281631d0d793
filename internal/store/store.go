// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package store keeps the keybind collection in memory and persists it as a
// single encrypted blob. Every mutation rewrites and re-encrypts the whole
// file before returning.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/toeirei/quickkeys/internal/logging"
	"github.com/toeirei/quickkeys/internal/model"
	"github.com/toeirei/quickkeys/internal/security"
)

// FileName is the name of the encrypted store inside the data directory.
const FileName = "keybinds.enc"

var (
	// ErrNotFound is returned by Update and Remove for an unknown id.
	ErrNotFound = errors.New("keybind not found")

	// ErrDuplicateID is returned by Add when the id is already present.
	ErrDuplicateID = errors.New("keybind id already exists")

	// ErrHotkeyInUse is returned when another keybind already uses the hotkey.
	ErrHotkeyInUse = errors.New("hotkey already in use")

	// ErrIO wraps read and write failures on the store file.
	ErrIO = errors.New("store i/o failure")

	// ErrCorrupt is returned when the decrypted document cannot be parsed.
	ErrCorrupt = errors.New("store document is corrupt")

	// ErrUnsupportedVersion is returned for documents written by a newer build.
	ErrUnsupportedVersion = errors.New("unsupported store version")
)

// Cipher seals and opens the store blob. *crypto.Engine implements it.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(blob []byte) ([]byte, error)
}

// Store is the in-memory keybind collection backed by an encrypted file.
type Store struct {
	cipher Cipher
	path   string

	mu       sync.RWMutex
	keybinds map[string]model.Keybind
}

// New returns a store that persists to dataDir/keybinds.enc.
func New(c Cipher, dataDir string) *Store {
	return &Store{
		cipher:   c,
		path:     filepath.Join(dataDir, FileName),
		keybinds: make(map[string]model.Keybind),
	}
}

// Path returns the location of the encrypted file.
func (s *Store) Path() string { return s.path }

// Exists reports whether a persisted blob is present on disk.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// ReadBlob returns the raw encrypted file, used to verify a password before
// installing it.
func (s *Store) ReadBlob() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, s.path, err)
	}
	return data, nil
}

// Load decrypts the file and replaces the in-memory records. It returns
// false without error when no file exists yet.
func (s *Store) Load() (bool, error) {
	blob, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %w", ErrIO, s.path, err)
	}

	plaintext, err := s.cipher.Decrypt(blob)
	if err != nil {
		return false, fmt.Errorf("decrypt store: %w", err)
	}
	defer security.ZeroBytes(plaintext)

	var doc model.Container
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Version > model.StoreVersion {
		return false, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	loaded := make(map[string]model.Keybind, len(doc.Keybinds))
	for _, kb := range doc.Keybinds {
		if kb.ID == "" {
			return false, fmt.Errorf("%w: keybind %q has no id", ErrCorrupt, kb.Name)
		}
		loaded[kb.ID] = kb
	}

	s.mu.Lock()
	s.keybinds = loaded
	s.mu.Unlock()
	logging.Debugf("loaded %d keybinds from %s", len(loaded), s.path)
	return true, nil
}

// Save serializes every record, encrypts the document with a fresh nonce and
// replaces the file, creating parent directories as needed.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	doc := model.Container{Version: model.StoreVersion, Keybinds: s.sortedLocked()}
	plaintext, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	defer security.ZeroBytes(plaintext)

	blob, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("encrypt store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrIO, dir, err)
	}
	tmp, err := os.CreateTemp(dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrIO, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		logging.Debugf("chmod %s: %v", tmpName, err)
	}
	if _, err := tmp.Write(blob); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %w", ErrIO, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync %s: %w", ErrIO, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: replace %s: %w", ErrIO, s.path, err)
	}
	return nil
}

// Delete removes the encrypted file and forgets every record. A missing file
// is not an error.
func (s *Store) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %w", ErrIO, s.path, err)
	}
	s.keybinds = make(map[string]model.Keybind)
	return nil
}

// Add inserts a new keybind and saves.
func (s *Store) Add(kb model.Keybind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keybinds[kb.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, kb.ID)
	}
	if s.hotkeyExistsLocked(kb.Hotkey, "") {
		return fmt.Errorf("%w: %s", ErrHotkeyInUse, kb.Hotkey)
	}
	s.keybinds[kb.ID] = kb
	if err := s.saveLocked(); err != nil {
		delete(s.keybinds, kb.ID)
		return err
	}
	return nil
}

// Update replaces an existing keybind and saves.
func (s *Store) Update(kb model.Keybind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.keybinds[kb.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, kb.ID)
	}
	if s.hotkeyExistsLocked(kb.Hotkey, kb.ID) {
		return fmt.Errorf("%w: %s", ErrHotkeyInUse, kb.Hotkey)
	}
	s.keybinds[kb.ID] = kb
	if err := s.saveLocked(); err != nil {
		s.keybinds[kb.ID] = prev
		return err
	}
	return nil
}

// Remove deletes the keybind with id and saves.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.keybinds[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.keybinds, id)
	if err := s.saveLocked(); err != nil {
		s.keybinds[id] = prev
		return err
	}
	return nil
}

// Get returns the keybind with id.
func (s *Store) Get(id string) (model.Keybind, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kb, ok := s.keybinds[id]
	return kb, ok
}

// GetAll returns a snapshot of every keybind ordered by creation time.
func (s *Store) GetAll() []model.Keybind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

// Len returns the number of stored keybinds.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keybinds)
}

// GetByHotkey finds a keybind by hotkey, ignoring case.
func (s *Store) GetByHotkey(hotkey string) (model.Keybind, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, kb := range s.keybinds {
		if strings.EqualFold(kb.Hotkey, hotkey) {
			return kb, true
		}
	}
	return model.Keybind{}, false
}

// HotkeyExists reports whether a keybind other than excludeID uses hotkey,
// ignoring case. Pass an empty excludeID to check every record.
func (s *Store) HotkeyExists(hotkey, excludeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hotkeyExistsLocked(hotkey, excludeID)
}

func (s *Store) hotkeyExistsLocked(hotkey, excludeID string) bool {
	for _, kb := range s.keybinds {
		if strings.EqualFold(kb.Hotkey, hotkey) && (excludeID == "" || kb.ID != excludeID) {
			return true
		}
	}
	return false
}

func (s *Store) sortedLocked() []model.Keybind {
	out := make([]model.Keybind, 0, len(s.keybinds))
	for _, kb := range s.keybinds {
		out = append(out, kb)
	}
	model.Sort(out, model.SortCreated, false)
	return out
}
