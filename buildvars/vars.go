// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars holds values injected at link time, for example:
//
//	go build -ldflags "-X github.com/toeirei/quickkeys/buildvars.Version=v1.0.0 \
//	  -X github.com/toeirei/quickkeys/buildvars.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/toeirei/quickkeys/buildvars.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// All three are empty in local builds.
package buildvars

var (
	Version string
	Commit  string
	Date    string // RFC3339
)

// OrDefault returns v unless it is empty.
func OrDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
