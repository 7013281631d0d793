// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the QuickKeys command line using Cobra. Commands
// stay thin: they load configuration, unlock an app.Session and delegate to
// it, to the dispatcher or to chord capture.
package cli
