// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package passgen generates random passwords for new keybinds.
package passgen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Digits    = "0123456789"
	Special   = "!@#$%^&*()_+-=[]{}|;:,.<>?"

	DefaultLength = 20
	MinLength     = 8
	MaxLength     = 64
)

// ErrLength is returned for lengths outside MinLength..MaxLength.
var ErrLength = errors.New("invalid password length")

// Options select the password shape. Letters of both cases are always used.
type Options struct {
	Length  int
	Digits  bool
	Special bool
}

// DefaultOptions returns a 20 character password with digits and symbols.
func DefaultOptions() Options {
	return Options{Length: DefaultLength, Digits: true, Special: true}
}

// Generate returns a password containing at least one character of every
// enabled class.
func Generate(opts Options) (string, error) {
	if opts.Length == 0 {
		opts.Length = DefaultLength
	}
	if opts.Length < MinLength || opts.Length > MaxLength {
		return "", fmt.Errorf("%w: %d (must be %d-%d)", ErrLength, opts.Length, MinLength, MaxLength)
	}

	classes := []string{Lowercase, Uppercase}
	if opts.Digits {
		classes = append(classes, Digits)
	}
	if opts.Special {
		classes = append(classes, Special)
	}
	var charset string
	for _, c := range classes {
		charset += c
	}

	out := make([]byte, 0, opts.Length)
	for _, c := range classes {
		b, err := pick(c)
		if err != nil {
			return "", err
		}
		out = append(out, b)
	}
	for len(out) < opts.Length {
		b, err := pick(charset)
		if err != nil {
			return "", err
		}
		out = append(out, b)
	}
	if err := shuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return int(v.Int64()), nil
}

func pick(set string) (byte, error) {
	i, err := randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

// shuffle is a Fisher-Yates shuffle over crypto/rand.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
