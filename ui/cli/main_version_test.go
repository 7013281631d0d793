// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/toeirei/quickkeys/buildvars"
)

// withBuildVars swaps the link-time values for the duration of a test.
func withBuildVars(t *testing.T, v, c, d string) {
	t.Helper()
	ov, oc, od := version, gitCommit, buildDate
	t.Cleanup(func() { version, gitCommit, buildDate = ov, oc, od })
	version, gitCommit, buildDate = v, c, d
}

func TestBuildVarsDefaults(t *testing.T) {
	if version != buildvars.OrDefault(buildvars.Version, "dev") {
		t.Fatalf("version = %q, not taken from buildvars", version)
	}
	if gitCommit != buildvars.OrDefault(buildvars.Commit, "dev") {
		t.Fatalf("gitCommit = %q, not taken from buildvars", gitCommit)
	}
	if buildDate != buildvars.Date {
		t.Fatalf("buildDate = %q, not taken from buildvars", buildDate)
	}
}

func TestResolveBuildVersion(t *testing.T) {
	vcs := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "c0ffee42"},
		{Key: "vcs.time", Value: "2026-03-01T10:00:00Z"},
	}
	cases := []struct {
		name  string
		build [3]string // version, commit, date
		info  *debug.BuildInfo
		want  [3]string
	}{
		{
			name:  "module version",
			build: [3]string{"dev", "dev", ""},
			info:  &debug.BuildInfo{Main: debug.Module{Path: "github.com/toeirei/quickkeys", Version: "v1.2.3"}},
			want:  [3]string{"v1.2.3", "dev", ""},
		},
		{
			name:  "dependency version",
			build: [3]string{"dev", "dev", ""},
			info: &debug.BuildInfo{
				Main: debug.Module{Path: "example.com/wrapper", Version: "(devel)"},
				Deps: []*debug.Module{{Path: "github.com/toeirei/quickkeys", Version: "v0.3.1"}},
			},
			want: [3]string{"v0.3.1", "dev", ""},
		},
		{
			name:  "vcs settings fill dev build",
			build: [3]string{"dev", "dev", ""},
			info:  &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}, Settings: vcs},
			want:  [3]string{"c0ffee42", "c0ffee42", "2026-03-01T10:00:00Z"},
		},
		{
			name:  "link-time values win over vcs",
			build: [3]string{"v2.0.0", "abc1234", "2026-05-05T05:05:05Z"},
			info:  &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}, Settings: vcs},
			want:  [3]string{"v2.0.0", "abc1234", "2026-05-05T05:05:05Z"},
		},
		{
			name:  "commit stands in for missing version",
			build: [3]string{"dev", "deadbeef", ""},
			info:  &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want:  [3]string{"deadbeef", "deadbeef", ""},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			withBuildVars(t, tc.build[0], tc.build[1], tc.build[2])
			v, c, d := resolveBuildVersion(tc.info)
			if got := [3]string{v, c, d}; got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestVersionCommandPrintsBuildDate(t *testing.T) {
	withBuildVars(t, "v9.9.9", "feedface", "2026-10-01T00:00:00Z")
	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)

	for _, want := range []string{"feedface", "2026-10-01T00:00:00Z"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output %q lacks %q", out.String(), want)
		}
	}
}
