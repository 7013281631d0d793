// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for QuickKeys.
//
// Usage:
//
//	go run . [flags]
//	./quickkeys [command] [flags]
//
// Without a command QuickKeys unlocks the store and listens for hotkeys.
// See --help for the available commands.
package main

import (
	"os"

	"github.com/toeirei/quickkeys/internal/logging"
	"github.com/toeirei/quickkeys/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}
