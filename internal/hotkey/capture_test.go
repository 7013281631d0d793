// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

package hotkey_test

import (
	"testing"
	"time"

	"github.com/toeirei/quickkeys/internal/hotkey"
	"github.com/toeirei/quickkeys/internal/input"
	"github.com/toeirei/quickkeys/internal/testutil"
)

func newCapture(t *testing.T, goos string) (*testutil.FakeHook, *hotkey.Capture, <-chan string) {
	t.Helper()
	hook := &testutil.FakeHook{}
	got := make(chan string, 4)
	c := hotkey.NewCapture(input.NewHub(hook), func(chord string) { got <- chord })
	c.SetPlatform(goos)
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(c.Stop)
	return hook, c, got
}

func expectChord(t *testing.T, got <-chan string, want string) {
	t.Helper()
	select {
	case chord := <-got:
		if chord != want {
			t.Fatalf("chord = %q, want %q", chord, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no chord captured, want %q", want)
	}
}

func expectNone(t *testing.T, got <-chan string) {
	t.Helper()
	select {
	case chord := <-got:
		t.Fatalf("unexpected chord %q", chord)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCaptureSimpleChord(t *testing.T) {
	hook, c, got := newCapture(t, "linux")
	hook.Chord(input.Named(input.KeyCtrl), input.Char('c'))
	expectChord(t, got, "Ctrl+C")
	eventually(t, func() bool { return c.State() == hotkey.Captured }, "state not Captured")
}

func TestCaptureOrdersModifiers(t *testing.T) {
	hook, _, got := newCapture(t, "linux")
	hook.Press(input.Named("shift_l"))
	hook.Press(input.Named("cmd"))
	hook.Press(input.Named("ctrl_r"))
	hook.Press(input.Named("alt"))
	hook.Press(input.Named("f5"))
	hook.Release(input.Named("f5"))
	expectChord(t, got, "Ctrl+Alt+Shift+Win+F5")
}

func TestCaptureDarwinSuper(t *testing.T) {
	hook, _, got := newCapture(t, "darwin")
	hook.Chord(input.Named("super"), input.Named(input.KeySpace))
	expectChord(t, got, "Cmd+Space")
}

func TestCaptureRequiresModifierAndKey(t *testing.T) {
	hook, c, got := newCapture(t, "linux")

	hook.Press(input.Named(input.KeyCtrl))
	hook.Release(input.Named(input.KeyCtrl))
	expectNone(t, got)

	hook.Chord(input.Char('a'))
	expectNone(t, got)

	if c.State() != hotkey.Capturing {
		t.Fatalf("state = %v, want capturing", c.State())
	}

	// A fresh attempt after the failed ones still works.
	hook.Chord(input.Named(input.KeyAlt), input.Named(input.KeyTab))
	expectChord(t, got, "Alt+Tab")
}

func TestCaptureStop(t *testing.T) {
	hook, c, got := newCapture(t, "linux")
	c.Stop()
	if c.State() != hotkey.Idle {
		t.Fatalf("state = %v, want idle", c.State())
	}
	hook.Chord(input.Named(input.KeyCtrl), input.Char('x'))
	expectNone(t, got)

	if err := c.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	hook.Chord(input.Named(input.KeyCtrl), input.Char('x'))
	expectChord(t, got, "Ctrl+X")
}

func TestKeyDisplayName(t *testing.T) {
	cases := []struct {
		key  input.Key
		goos string
		want string
	}{
		{input.Char('q'), "linux", "Q"},
		{input.Named("ctrl_l"), "linux", "Ctrl"},
		{input.Named("alt_gr"), "linux", "Alt"},
		{input.Named("cmd"), "windows", "Win"},
		{input.Named("cmd_r"), "darwin", "Cmd"},
		{input.Named("f12"), "linux", "F12"},
		{input.Named("page_up"), "linux", "Page_up"},
		{input.Named("escape"), "linux", "Escape"},
		{input.Key{}, "linux", ""},
	}
	for _, tc := range cases {
		if got := hotkey.KeyDisplayName(tc.key, tc.goos); got != tc.want {
			t.Errorf("KeyDisplayName(%v, %s) = %q, want %q", tc.key, tc.goos, got, tc.want)
		}
	}
}
