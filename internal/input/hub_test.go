// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

package input_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/toeirei/quickkeys/internal/input"
	"github.com/toeirei/quickkeys/internal/testutil"
)

func recv(t *testing.T, ch <-chan input.KeyEvent) input.KeyEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed unexpectedly")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
	return input.KeyEvent{}
}

func waitClosed(t *testing.T, ch <-chan input.KeyEvent) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("subscription channel was not closed")
		}
	}
}

func TestHubFanOutAndLifecycle(t *testing.T) {
	hook := &testutil.FakeHook{}
	hub := input.NewHub(hook)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	a, err := hub.Subscribe(ctxA)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	ctxB, cancelB := context.WithCancel(context.Background())
	defer cancelB()
	b, err := hub.Subscribe(ctxB)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if hook.Starts() != 1 {
		t.Fatalf("hook must start once for many subscribers, started %d times", hook.Starts())
	}

	hook.Press(input.Char('K'))
	for _, ch := range []<-chan input.KeyEvent{a, b} {
		ev := recv(t, ch)
		if ev.Kind != input.Press || ev.Key != input.Char('k') {
			t.Fatalf("unexpected event %+v", ev)
		}
	}

	cancelA()
	waitClosed(t, a)
	if !hook.Running() {
		t.Fatalf("hook stopped while a subscriber remains")
	}

	cancelB()
	waitClosed(t, b)
	deadline := time.Now().Add(2 * time.Second)
	for hook.Running() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hook.Running() {
		t.Fatalf("hook still running after last subscriber left")
	}
	if hub.Subscribers() != 0 {
		t.Fatalf("expected no subscribers, got %d", hub.Subscribers())
	}
}

func TestHubStartFailure(t *testing.T) {
	boom := errors.New("no display")
	hub := input.NewHub(&testutil.FakeHook{StartErr: boom})
	_, err := hub.Subscribe(context.Background())
	if !errors.Is(err, input.ErrHookUnavailable) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped hook error, got %v", err)
	}
}

func TestHubRejectsDoneContext(t *testing.T) {
	hook := &testutil.FakeHook{}
	hub := input.NewHub(hook)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := hub.Subscribe(ctx); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
	if hook.Starts() != 0 {
		t.Fatalf("hook must not start for a cancelled subscription")
	}
}

func TestKeyHelpers(t *testing.T) {
	if !input.Named("Ctrl").IsModifier() || input.Char('a').IsModifier() {
		t.Fatalf("modifier detection wrong")
	}
	if input.Char('A').String() != "a" {
		t.Fatalf("Char must lowercase, got %q", input.Char('A').String())
	}
	if !(input.Key{}).IsZero() {
		t.Fatalf("zero key must report IsZero")
	}
}
