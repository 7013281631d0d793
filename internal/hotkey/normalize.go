// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

package hotkey

import (
	"fmt"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/toeirei/quickkeys/internal/input"
)

var separator = regexp.MustCompile(`\s*\+\s*`)

// aliases maps lowercase user spellings to canonical key names.
var aliases = map[string]string{
	"ctrl":        "ctrl",
	"control":     "ctrl",
	"alt":         "alt",
	"shift":       "shift",
	"cmd":         "cmd",
	"command":     "cmd",
	"win":         "cmd",
	"super":       "cmd",
	"tab":         "tab",
	"space":       "space",
	"enter":       "enter",
	"return":      "enter",
	"esc":         "esc",
	"escape":      "esc",
	"backspace":   "backspace",
	"delete":      "delete",
	"home":        "home",
	"end":         "end",
	"pageup":      "page_up",
	"pagedown":    "page_down",
	"up":          "up",
	"down":        "down",
	"left":        "left",
	"right":       "right",
	"insert":      "insert",
	"printscreen": "print_screen",
	"scrolllock":  "scroll_lock",
	"pause":       "pause",
	"numlock":     "num_lock",
	"capslock":    "caps_lock",
}

func init() {
	for i := 1; i <= 24; i++ {
		f := fmt.Sprintf("f%d", i)
		aliases[f] = f
	}
}

// NormalizeKey canonicalizes one hotkey token. Known names become
// "<name>", single characters stay as their lowercase literal, tokens
// already in "<...>" form pass through and anything else is wrapped.
func NormalizeKey(token string) string {
	lower := strings.ToLower(strings.TrimSpace(token))
	if name, ok := aliases[lower]; ok {
		return "<" + name + ">"
	}
	if utf8.RuneCountInString(lower) == 1 {
		return lower
	}
	if strings.HasPrefix(lower, "<") && strings.HasSuffix(lower, ">") {
		return lower
	}
	return "<" + lower + ">"
}

// Split breaks a hotkey string on "+" with surrounding whitespace removed.
func Split(hotkey string) []string {
	trimmed := strings.TrimSpace(hotkey)
	if trimmed == "" {
		return nil
	}
	return separator.Split(trimmed, -1)
}

// Normalize maps a free-form hotkey such as "Ctrl+Shift+K" to its canonical
// chord "<ctrl>+<shift>+k". Normalize is idempotent.
func Normalize(hotkey string) string {
	parts := Split(hotkey)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = NormalizeKey(p)
	}
	return strings.Join(out, "+")
}

// Display renders a canonical chord in the capitalized form produced by
// chord capture, e.g. "<ctrl>+k" becomes "Ctrl+K". Normalize(Display(c))
// equals Normalize(c).
func Display(hotkey string) string {
	parts := Split(Normalize(hotkey))
	out := make([]string, len(parts))
	for i, p := range parts {
		name := strings.TrimSuffix(strings.TrimPrefix(p, "<"), ">")
		if utf8.RuneCountInString(name) == 1 && name == p {
			out[i] = strings.ToUpper(name)
			continue
		}
		out[i] = displayName(name, runtime.GOOS)
	}
	return strings.Join(out, "+")
}

// Chord is a parsed hotkey: the set of canonical tokens that must be held
// together.
type Chord struct {
	tokens []string
}

// ParseChord parses and validates a hotkey string.
func ParseChord(hotkey string) (Chord, error) {
	parts := Split(hotkey)
	if len(parts) == 0 {
		return Chord{}, fmt.Errorf("%w: empty hotkey", ErrInvalidHotkey)
	}
	seen := make(map[string]bool, len(parts))
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return Chord{}, fmt.Errorf("%w: empty key in %q", ErrInvalidHotkey, hotkey)
		}
		tok := NormalizeKey(p)
		if tok == "<>" {
			return Chord{}, fmt.Errorf("%w: empty key in %q", ErrInvalidHotkey, hotkey)
		}
		if !seen[tok] {
			seen[tok] = true
			tokens = append(tokens, tok)
		}
	}
	sort.Strings(tokens)
	return Chord{tokens: tokens}, nil
}

// Tokens returns the chord's tokens in sorted order.
func (c Chord) Tokens() []string { return append([]string(nil), c.tokens...) }

// Key returns an order-independent identity for the chord, so "Ctrl+K" and
// "K+Ctrl" yield the same key.
func (c Chord) Key() string { return strings.Join(c.tokens, "+") }

// ChordKey returns the identity key of hotkey, or its Normalize form when
// it does not parse.
func ChordKey(hotkey string) string {
	c, err := ParseChord(hotkey)
	if err != nil {
		return Normalize(hotkey)
	}
	return c.Key()
}

// Matches reports whether held contains exactly the chord's keys.
func (c Chord) Matches(held map[string]bool) bool {
	if len(held) != len(c.tokens) {
		return false
	}
	for _, t := range c.tokens {
		if !held[t] {
			return false
		}
	}
	return true
}

// KeyToken returns the canonical token for a raw key, in the same form
// NormalizeKey produces for its spelling.
func KeyToken(k input.Key) string {
	if k.Char != 0 {
		return string(unicode.ToLower(k.Char))
	}
	if k.Name == "" {
		return ""
	}
	return NormalizeKey(k.Name)
}
