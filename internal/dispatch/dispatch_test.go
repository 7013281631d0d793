// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toeirei/quickkeys/internal/input"
	"github.com/toeirei/quickkeys/internal/model"
	"github.com/toeirei/quickkeys/internal/testutil"
)

type fixture struct {
	clip *testutil.FakeClipboard
	kb   *testutil.FakeKeyboard
	l    *testutil.FakeLauncher
	d    *Dispatcher
}

func newFixture(opts Options) *fixture {
	clip := testutil.NewFakeClipboard("original")
	kb := &testutil.FakeKeyboard{Clipboard: clip}
	l := &testutil.FakeLauncher{}
	d := New(clip, kb, l, opts)
	d.sleep = func(time.Duration) {}
	return &fixture{clip: clip, kb: kb, l: l, d: d}
}

func pasteKeybind() model.Keybind {
	kb := model.NewKeybind("ctrl+1", "mail", model.Paste)
	kb.Username = "alice"
	kb.Password = "secret"
	return kb
}

func TestPasteCredentials(t *testing.T) {
	f := newFixture(Options{GOOS: "linux"})
	require.NoError(t, f.d.Run(context.Background(), pasteKeybind()))

	assert.Equal(t, []string{"alice", "secret"}, f.kb.Pasted())
	actions := f.kb.Actions()
	require.Len(t, actions, 3)
	assert.Equal(t, input.Char('v'), actions[0].Tap)
	assert.Equal(t, []input.Key{input.Named(input.KeyCtrl)}, actions[0].Modifiers)
	assert.Equal(t, input.Named(input.KeyTab), actions[1].Tap)
	assert.Equal(t, "original", f.clip.Content())
}

func TestPasteCustomTextWins(t *testing.T) {
	f := newFixture(Options{GOOS: "darwin"})
	kb := pasteKeybind()
	kb.CustomText = "hello world"
	require.NoError(t, f.d.Run(context.Background(), kb))

	assert.Equal(t, []string{"hello world"}, f.kb.Pasted())
	actions := f.kb.Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, []input.Key{input.Named(input.KeyCmd)}, actions[0].Modifiers)
	assert.Equal(t, "original", f.clip.Content())
}

func TestPasteAutoSubmitAndTypeMethod(t *testing.T) {
	f := newFixture(Options{Method: MethodType, AutoSubmit: true, GOOS: "linux"})
	require.NoError(t, f.d.Run(context.Background(), pasteKeybind()))

	actions := f.kb.Actions()
	require.Len(t, actions, 4)
	assert.Equal(t, "alice", actions[0].Typed)
	assert.Equal(t, input.Named(input.KeyTab), actions[1].Tap)
	assert.Equal(t, "secret", actions[2].Typed)
	assert.Equal(t, input.Named(input.KeyEnter), actions[3].Tap)
	assert.Empty(t, f.clip.Writes(), "type method must not touch the clipboard")
}

func tapped(actions []testutil.KeyAction) []input.Key {
	keys := make([]input.Key, 0, len(actions))
	for _, a := range actions {
		keys = append(keys, a.Tap)
	}
	return keys
}

func TestPastePasswordOnly(t *testing.T) {
	f := newFixture(Options{AutoSubmit: true, GOOS: "linux"})
	kb := model.NewKeybind("ctrl+2", "pin", model.Paste)
	kb.Password = "secret"
	require.NoError(t, f.d.Run(context.Background(), kb))

	assert.Equal(t, []string{"secret"}, f.kb.Pasted())
	assert.Equal(t, []input.Key{input.Char('v'), input.Named(input.KeyEnter)}, tapped(f.kb.Actions()))
}

func TestPasteUsernameOnlySkipsSubmit(t *testing.T) {
	f := newFixture(Options{AutoSubmit: true, GOOS: "linux"})
	kb := model.NewKeybind("ctrl+3", "login", model.Paste)
	kb.Username = "alice"
	require.NoError(t, f.d.Run(context.Background(), kb))

	assert.Equal(t, []string{"alice"}, f.kb.Pasted())
	assert.Equal(t, []input.Key{input.Char('v'), input.Named(input.KeyTab)}, tapped(f.kb.Actions()))
	assert.Equal(t, "original", f.clip.Content())
}

func TestPasteRestoresClipboardOnFailure(t *testing.T) {
	f := newFixture(Options{GOOS: "linux"})
	f.kb.TapErr = errors.New("no display")
	err := f.d.Run(context.Background(), pasteKeybind())
	require.ErrorIs(t, err, ErrAction)
	assert.Equal(t, "original", f.clip.Content())
}

func TestLaunch(t *testing.T) {
	f := newFixture(Options{})
	kb := model.NewKeybind("ctrl+2", "editor", model.Launch)
	kb.ProgramPath = "/usr/bin/editor"
	kb.ProgramArgs = "--new"
	require.NoError(t, f.d.Run(context.Background(), kb))
	calls := f.l.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/usr/bin/editor", calls[0].Path)
	assert.Equal(t, "--new", calls[0].Args)
	assert.Empty(t, f.kb.Actions())

	f.l.Fail = true
	assert.ErrorIs(t, f.d.Run(context.Background(), kb), ErrAction)
	assert.ErrorIs(t, f.d.Run(context.Background(), kb), testutil.ErrLaunch)
}

func TestLaunchThenPaste(t *testing.T) {
	kb := model.NewKeybind("ctrl+3", "client", model.LaunchThenPaste)
	kb.ProgramPath = "/opt/client"
	kb.Username = "bob"
	kb.Password = "pw"
	kb.WaitSeconds = 1.5

	t.Run("exited process skips paste", func(t *testing.T) {
		f := newFixture(Options{GOOS: "linux"})
		f.l.Alive = false
		require.NoError(t, f.d.Run(context.Background(), kb))
		assert.Empty(t, f.kb.Pasted())
		assert.Equal(t, 1500*time.Millisecond, f.l.Calls()[0].Wait)
	})

	t.Run("running process gets exactly one paste", func(t *testing.T) {
		f := newFixture(Options{GOOS: "linux"})
		f.l.Alive = true
		require.NoError(t, f.d.Run(context.Background(), kb))
		assert.Equal(t, []string{"bob", "pw"}, f.kb.Pasted())
		assert.Len(t, f.l.Calls(), 1)
	})
}

func TestExecuteIsAsyncAndSwallowsErrors(t *testing.T) {
	f := newFixture(Options{GOOS: "linux"})
	f.l.Fail = true
	kb := model.NewKeybind("ctrl+4", "broken", model.Launch)
	kb.ProgramPath = "/nope"

	f.d.Execute(kb)
	f.d.Execute(pasteKeybind())
	f.d.Wait()
	assert.Len(t, f.l.Calls(), 1)
	assert.Equal(t, []string{"alice", "secret"}, f.kb.Pasted())
}

func TestUnknownAction(t *testing.T) {
	f := newFixture(Options{})
	kb := pasteKeybind()
	kb.ActionType = model.ActionType(99)
	assert.ErrorIs(t, f.d.Run(context.Background(), kb), ErrAction)
}
