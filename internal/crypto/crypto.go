// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package crypto derives the master key from the user's password with Argon2id
// and seals the keybind store with AES-256-GCM.
//
// An encrypted blob has the layout:
//
//	salt (16 bytes) || nonce (12 bytes) || ciphertext || tag (16 bytes)
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/toeirei/quickkeys/internal/security"
	"golang.org/x/crypto/argon2"
)

const (
	// KeySize is the size of AES-256 keys in bytes.
	KeySize = 32

	// SaltSize is the size of the Argon2id salt stored at the head of a blob.
	SaltSize = 16

	// NonceSize is the size of GCM nonces in bytes.
	NonceSize = 12

	// TagSize is the size of GCM authentication tags in bytes.
	TagSize = 16

	// HeaderSize is the number of bytes preceding the ciphertext in a blob.
	HeaderSize = SaltSize + NonceSize

	// Argon2Time is the time parameter for Argon2id.
	Argon2Time = 3

	// Argon2Memory is the memory parameter for Argon2id in KiB (64 MiB).
	Argon2Memory = 64 * 1024

	// Argon2Threads is the parallelism parameter for Argon2id.
	Argon2Threads = 4
)

var (
	// ErrNotInitialized is returned when Encrypt or Decrypt is called before
	// a key has been installed.
	ErrNotInitialized = errors.New("encryption key not initialized")

	// ErrAuthenticationFailure is returned when a blob cannot be opened: wrong
	// password, tampered data or a truncated file.
	ErrAuthenticationFailure = errors.New("authentication failed: wrong password or corrupted data")

	// ErrInvalidSaltSize is returned when a salt has an incorrect size.
	ErrInvalidSaltSize = errors.New("salt must be 16 bytes")
)

// DeriveKey derives a 32-byte key from password and salt using Argon2id.
// The result is deterministic for a given (password, salt).
func DeriveKey(password, salt []byte) (security.Secret, error) {
	if len(salt) != SaltSize {
		return nil, ErrInvalidSaltSize
	}
	return security.Secret(argon2.IDKey(password, salt, Argon2Time, Argon2Memory, Argon2Threads, KeySize)), nil
}

// GenerateSalt returns a fresh random salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Engine holds the active key and salt while the store is unlocked.
// The zero value is a locked engine. Engine is safe for concurrent use.
type Engine struct {
	mu   sync.RWMutex
	key  security.Secret
	salt []byte
}

// New returns a locked Engine.
func New() *Engine {
	return &Engine{}
}

// InitializeNew generates a fresh salt and installs the key derived from
// password. Used when no store exists yet.
func (e *Engine) InitializeNew(password []byte) error {
	salt, err := GenerateSalt()
	if err != nil {
		return err
	}
	return e.install(password, salt)
}

// InitializeExisting takes the salt from the head of blob and installs the
// key derived from password. It does not check that the key opens blob; use
// VerifyPassword first.
func (e *Engine) InitializeExisting(password, blob []byte) error {
	if len(blob) < SaltSize {
		return fmt.Errorf("%w: blob shorter than salt", ErrAuthenticationFailure)
	}
	salt := make([]byte, SaltSize)
	copy(salt, blob[:SaltSize])
	return e.install(password, salt)
}

func (e *Engine) install(password, salt []byte) error {
	key, err := DeriveKey(password, salt)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.key.Zero()
	e.key = key
	e.salt = salt
	return nil
}

// VerifyPassword reports whether password opens blob. It derives a
// candidate key from the blob's salt and never touches the engine state.
func (e *Engine) VerifyPassword(password, blob []byte) bool {
	if len(blob) < HeaderSize+TagSize {
		return false
	}
	key, err := DeriveKey(password, blob[:SaltSize])
	if err != nil {
		return false
	}
	defer key.Zero()
	_, err = open(key, blob)
	return err == nil
}

// IsInitialized reports whether a key is installed.
func (e *Engine) IsInitialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.key != nil && e.salt != nil
}

// Encrypt seals plaintext under the active key with a fresh random nonce and
// returns salt || nonce || ciphertext || tag.
func (e *Engine) Encrypt(plaintext []byte) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.key == nil || e.salt == nil {
		return nil, ErrNotInitialized
	}

	gcm, err := newGCM(e.key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, HeaderSize+len(plaintext)+TagSize)
	out = append(out, e.salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// Decrypt opens a blob produced by Encrypt. The salt field is skipped since
// the key has already been derived.
func (e *Engine) Decrypt(blob []byte) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.key == nil {
		return nil, ErrNotInitialized
	}
	return open(e.key, blob)
}

// Clear zeroes and drops the key and salt.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.key.Zero()
	security.ZeroBytes(e.salt)
	e.salt = nil
}

func open(key security.Secret, blob []byte) ([]byte, error) {
	if len(blob) < HeaderSize+TagSize {
		return nil, fmt.Errorf("%w: blob too short", ErrAuthenticationFailure)
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := blob[SaltSize:HeaderSize]
	plaintext, err := gcm.Open(nil, nonce, blob[HeaderSize:], nil)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}
	return plaintext, nil
}

func newGCM(key security.Secret) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
