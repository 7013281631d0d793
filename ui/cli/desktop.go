// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"github.com/toeirei/quickkeys/internal/app"
	"github.com/toeirei/quickkeys/internal/clipboard"
	"github.com/toeirei/quickkeys/internal/dispatch"
	"github.com/toeirei/quickkeys/internal/hotkey"
	"github.com/toeirei/quickkeys/internal/input"
	"github.com/toeirei/quickkeys/internal/input/osinput"
	"github.com/toeirei/quickkeys/internal/launcher"
	"github.com/toeirei/quickkeys/internal/logging"
)

// desktop bundles the OS-backed collaborators: one keyboard hook shared by
// the hotkey engine and chord capture, the synthetic keyboard, the system
// clipboard and the process launcher.
type desktop struct {
	hub        *input.Hub
	engine     *hotkey.Engine
	dispatcher *dispatch.Dispatcher
	opts       app.Options
}

// newDesktop is replaced in tests.
var newDesktop = func() (*desktop, error) {
	opts, err := sessionOptions()
	if err != nil {
		return nil, err
	}
	if !clipboard.Available() {
		logging.Warnf("no clipboard utility found; paste actions will fail")
	}
	hub := input.NewHub(osinput.NewHook())
	return &desktop{
		hub:        hub,
		engine:     hotkey.NewEngine(hub),
		dispatcher: dispatch.New(clipboard.System{}, osinput.NewKeyboard(), launcher.New(), dispatchOptions()),
		opts:       opts,
	}, nil
}

func (d *desktop) session() *app.Session {
	return app.NewSession(d.opts, d.engine, d.dispatcher)
}

func dispatchOptions() dispatch.Options {
	opts := dispatch.DefaultOptions()
	if appConfig.Paste.Method != "" {
		opts.Method = appConfig.Paste.Method
	}
	opts.AutoSubmit = appConfig.Paste.AutoSubmit
	if appConfig.Paste.RestoreDelay > 0 {
		opts.RestoreDelay = appConfig.Paste.RestoreDelay
	}
	return opts
}
