// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package launcher starts external programs detached from QuickKeys.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"

	"github.com/toeirei/quickkeys/internal/logging"
)

// ErrLaunch is returned when a program cannot be started.
var ErrLaunch = errors.New("launch failed")

// ResolvePath expands a leading "~" and environment variables.
func ResolvePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return os.ExpandEnv(path)
}

// ParseArgs splits an argument string. On Windows quotes are kept with the
// argument, elsewhere POSIX shell rules apply. A string that cannot be parsed
// falls back to a plain whitespace split.
func ParseArgs(args string) []string {
	return parseArgs(args, runtime.GOOS)
}

func parseArgs(args, goos string) []string {
	if strings.TrimSpace(args) == "" {
		return nil
	}
	if goos == "windows" {
		out, err := splitWindows(args)
		if err != nil {
			return strings.Fields(args)
		}
		return out
	}
	out, err := shellwords.Parse(args)
	if err != nil {
		logging.Debugf("argument parse failed, splitting on whitespace: %v", err)
		return strings.Fields(args)
	}
	return out
}

var errUnterminatedQuote = errors.New("unterminated quote")

func splitWindows(s string) ([]string, error) {
	var (
		out     []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
			started = true
		case (r == ' ' || r == '\t') && !inQuote:
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errUnterminatedQuote
	}
	if started {
		out = append(out, cur.String())
	}
	return out, nil
}

// IsValidExecutable reports whether path names an existing file that can be
// run: the exec bit on Unix, a runnable extension on Windows.
func IsValidExecutable(path string) bool {
	return isValidExecutable(ResolvePath(path), runtime.GOOS)
}

var windowsExecExt = map[string]bool{".exe": true, ".bat": true, ".cmd": true, ".com": true, ".lnk": true}

func isValidExecutable(path, goos string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if goos == "windows" {
		return windowsExecExt[strings.ToLower(filepath.Ext(path))]
	}
	if goos == "darwin" && strings.HasSuffix(path, ".app") {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

// Process is a started program.
type Process struct {
	Pid int

	done chan struct{}
	err  error
}

// Alive reports whether the process has not exited yet.
func (p *Process) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Done is closed when the process exits.
func (p *Process) Done() <-chan struct{} { return p.done }

// Err returns the exit error once the process has exited.
func (p *Process) Err() error {
	<-p.done
	return p.err
}

// Launcher starts programs detached, with output discarded.
type Launcher struct{}

// New returns a Launcher.
func New() Launcher { return Launcher{} }

// Start launches path with args and reaps it in the background.
func (Launcher) Start(path, args string) (*Process, error) {
	resolved := ResolvePath(path)
	if resolved == "" {
		return nil, fmt.Errorf("%w: empty program path", ErrLaunch)
	}

	cmd := exec.Command(resolved, ParseArgs(args)...)
	if info, err := os.Stat(resolved); err == nil && !info.IsDir() {
		cmd.Dir = filepath.Dir(resolved)
	}
	cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLaunch, resolved, err)
	}
	p := &Process{Pid: cmd.Process.Pid, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	logging.Debugf("launched %s (pid %d)", resolved, p.Pid)
	return p, nil
}

// Launch starts a program without waiting.
func (l Launcher) Launch(path, args string) error {
	_, err := l.Start(path, args)
	return err
}

// LaunchAndWait starts a program, waits for wait and reports whether it is
// still running. It returns early with ctx's error if ctx is done.
func (l Launcher) LaunchAndWait(ctx context.Context, path, args string, wait time.Duration) (bool, error) {
	p, err := l.Start(path, args)
	if err != nil {
		return false, err
	}
	if wait <= 0 {
		return p.Alive(), nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return p.Alive(), ctx.Err()
	case <-p.Done():
		return false, nil
	case <-timer.C:
		return p.Alive(), nil
	}
}
