// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

package app

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toeirei/quickkeys/internal/model"
	"github.com/toeirei/quickkeys/internal/security"
	"github.com/toeirei/quickkeys/internal/store"
)

type scriptedPrompter struct {
	passwords []string
	calls     int
}

func (p *scriptedPrompter) next() (security.Secret, error) {
	if p.calls >= len(p.passwords) {
		return nil, ErrCancelled
	}
	pw := p.passwords[p.calls]
	p.calls++
	return security.FromString(pw), nil
}

func (p *scriptedPrompter) NewPassword(context.Context) (security.Secret, error) { return p.next() }

func (p *scriptedPrompter) Password(context.Context, int) (security.Secret, error) { return p.next() }

type fakeHotkeys struct {
	mu        sync.Mutex
	callbacks map[string]func()
	starts    int
}

func (f *fakeHotkeys) Register(hk string, cb func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.callbacks == nil {
		f.callbacks = make(map[string]func())
	}
	f.callbacks[hk] = cb
	return nil
}

func (f *fakeHotkeys) UnregisterAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = nil
}

func (f *fakeHotkeys) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	return nil
}

func (f *fakeHotkeys) registered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.callbacks))
	for k := range f.callbacks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (f *fakeHotkeys) fire(hk string) {
	f.mu.Lock()
	cb := f.callbacks[hk]
	f.mu.Unlock()
	cb()
}

type recordingExecutor struct {
	mu  sync.Mutex
	ran []string
}

func (r *recordingExecutor) Execute(kb model.Keybind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ran = append(r.ran, kb.Name)
}

func aliceKeybind() model.Keybind {
	kb := model.NewKeybind("Ctrl+1", "alice", model.Paste)
	kb.Username = "alice"
	kb.Password = "secret"
	return kb
}

func TestUnlockNewThenExisting(t *testing.T) {
	dir := t.TempDir()
	s := NewSession(Options{DataDir: dir}, nil, nil)
	require.True(t, s.IsNew())

	p := &scriptedPrompter{passwords: []string{"short", "longpass123"}}
	require.NoError(t, s.Unlock(context.Background(), p))
	require.True(t, s.Unlocked())
	require.False(t, s.IsNew())
	require.NoError(t, s.AddKeybind(aliceKeybind()))
	s.Close()
	assert.False(t, s.Unlocked())

	reopened := NewSession(Options{DataDir: dir}, nil, nil)
	require.NoError(t, reopened.Unlock(context.Background(), &scriptedPrompter{passwords: []string{"wrong-one", "longpass123"}}))
	all, err := reopened.Keybinds()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "alice", all[0].Username)
	assert.Equal(t, "secret", all[0].Password)
	assert.Equal(t, model.Paste, all[0].ActionType)
}

func TestUnlockGivesUpAfterMaxAttempts(t *testing.T) {
	dir := t.TempDir()
	s := NewSession(Options{DataDir: dir}, nil, nil)
	require.NoError(t, s.Unlock(context.Background(), &scriptedPrompter{passwords: []string{"longpass123"}}))
	s.Lock()

	p := &scriptedPrompter{passwords: []string{"a-wrong-1", "a-wrong-2", "longpass123"}}
	s2 := NewSession(Options{DataDir: dir, MaxAttempts: 2}, nil, nil)
	err := s2.Unlock(context.Background(), p)
	require.ErrorIs(t, err, ErrTooManyAttempts)
	assert.Equal(t, 2, p.calls)
	assert.False(t, s2.Unlocked())
}

func TestUnlockNewRejectsShortPasswords(t *testing.T) {
	s := NewSession(Options{DataDir: t.TempDir(), MaxAttempts: 2}, nil, nil)
	err := s.Unlock(context.Background(), &scriptedPrompter{passwords: []string{"1234", "abc"}})
	require.ErrorIs(t, err, ErrPasswordTooShort)
	assert.True(t, s.IsNew())
}

func TestUnlockCancelled(t *testing.T) {
	s := NewSession(Options{DataDir: t.TempDir()}, nil, nil)
	require.ErrorIs(t, s.Unlock(context.Background(), &scriptedPrompter{}), ErrCancelled)
}

func TestLockedOperations(t *testing.T) {
	s := NewSession(Options{DataDir: t.TempDir()}, nil, nil)
	_, err := s.Keybinds()
	assert.ErrorIs(t, err, ErrLocked)
	assert.ErrorIs(t, s.AddKeybind(aliceKeybind()), ErrLocked)
	assert.ErrorIs(t, s.RemoveKeybind("x"), ErrLocked)
	assert.ErrorIs(t, s.Activate(), ErrLocked)
}

func TestActivateRegistersAndDispatches(t *testing.T) {
	hk := &fakeHotkeys{}
	exec := &recordingExecutor{}
	s := NewSession(Options{DataDir: t.TempDir()}, hk, exec)
	require.NoError(t, s.Unlock(context.Background(), &scriptedPrompter{passwords: []string{"longpass123"}}))

	first := aliceKeybind()
	require.NoError(t, s.AddKeybind(first))
	assert.Empty(t, hk.registered(), "nothing is registered before Activate")

	require.NoError(t, s.Activate())
	assert.Equal(t, []string{"Ctrl+1"}, hk.registered())

	second := model.NewKeybind("ctrl+alt+t", "term", model.Launch)
	second.ProgramPath = "/usr/bin/xterm"
	require.NoError(t, s.AddKeybind(second))
	assert.Equal(t, []string{"Ctrl+1", "ctrl+alt+t"}, hk.registered())

	hk.fire("ctrl+alt+t")
	assert.Equal(t, []string{"term"}, exec.ran)

	require.NoError(t, s.RemoveKeybind(first.ID))
	assert.Equal(t, []string{"ctrl+alt+t"}, hk.registered())

	s.Lock()
	assert.Empty(t, hk.registered())
}

func TestCollisionsAndValidation(t *testing.T) {
	s := NewSession(Options{DataDir: t.TempDir()}, nil, nil)
	require.NoError(t, s.Unlock(context.Background(), &scriptedPrompter{passwords: []string{"longpass123"}}))
	require.NoError(t, s.AddKeybind(aliceKeybind()))

	dup := aliceKeybind()
	dup.Hotkey = "ctrl+1"
	assert.ErrorIs(t, s.AddKeybind(dup), store.ErrHotkeyInUse)

	dup.Hotkey = "Control + 1"
	assert.ErrorIs(t, s.AddKeybind(dup), store.ErrHotkeyInUse)

	dup.Hotkey = "1+Ctrl"
	assert.ErrorIs(t, s.AddKeybind(dup), store.ErrHotkeyInUse)

	invalid := model.NewKeybind("ctrl+2", "", model.Paste)
	assert.ErrorIs(t, s.AddKeybind(invalid), model.ErrInvalidKeybind)

	kb, ok := s.Find("CTRL+1")
	require.True(t, ok)
	kb.Hotkey = "ctrl+shift+1"
	require.NoError(t, s.UpdateKeybind(kb))
	_, ok = s.Find(kb.ID)
	assert.True(t, ok)
}

func TestReset(t *testing.T) {
	dir := t.TempDir()
	s := NewSession(Options{DataDir: dir}, nil, nil)
	require.NoError(t, s.Unlock(context.Background(), &scriptedPrompter{passwords: []string{"longpass123"}}))
	require.NoError(t, s.AddKeybind(aliceKeybind()))

	require.NoError(t, s.Reset())
	assert.True(t, s.IsNew())
	assert.False(t, s.Unlocked())

	require.NoError(t, s.Unlock(context.Background(), &scriptedPrompter{passwords: []string{"another-pass"}}))
	all, err := s.Keybinds()
	require.NoError(t, err)
	assert.Empty(t, all)
}
