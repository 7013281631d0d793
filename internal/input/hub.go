// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

package input

import (
	"context"
	"errors"
	"sync"

	"github.com/toeirei/quickkeys/internal/logging"
)

// SubscriberBuffer is the per-subscriber channel capacity. Events for a
// subscriber whose buffer is full are dropped.
const SubscriberBuffer = 256

// ErrHookUnavailable is returned when the OS hook cannot be started.
var ErrHookUnavailable = errors.New("keyboard hook unavailable")

// Hook is a process-wide raw keyboard hook. Start begins delivering events on
// the returned channel; Stop ends the hook and closes that channel.
type Hook interface {
	Start() (<-chan KeyEvent, error)
	Stop()
}

// Hub shares one Hook between subscribers.
type Hub struct {
	hook Hook

	mu      sync.Mutex
	subs    map[int]chan KeyEvent
	nextID  int
	running bool
}

// NewHub returns a Hub over hook. The hook is not started until the first
// Subscribe.
func NewHub(hook Hook) *Hub {
	return &Hub{hook: hook, subs: make(map[int]chan KeyEvent)}
}

// Subscribe implements Source.
func (h *Hub) Subscribe(ctx context.Context) (<-chan KeyEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	if !h.running {
		events, err := h.hook.Start()
		if err != nil {
			h.mu.Unlock()
			return nil, errors.Join(ErrHookUnavailable, err)
		}
		h.running = true
		go h.pump(events)
		logging.Debugf("keyboard hook started")
	}
	id := h.nextID
	h.nextID++
	ch := make(chan KeyEvent, SubscriberBuffer)
	h.subs[id] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.unsubscribe(id)
	}()
	return ch, nil
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(ch)

	// Stopping under the lock keeps a concurrent Subscribe from starting the
	// hook again before it is fully down.
	if len(h.subs) == 0 && h.running {
		h.running = false
		h.hook.Stop()
		logging.Debugf("keyboard hook stopped")
	}
}

func (h *Hub) pump(events <-chan KeyEvent) {
	for ev := range events {
		h.mu.Lock()
		for id, ch := range h.subs {
			select {
			case ch <- ev:
			default:
				logging.Warnf("dropping key event for slow subscriber %d", id)
			}
		}
		h.mu.Unlock()
	}
}
