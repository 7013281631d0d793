// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/toeirei/quickkeys/internal/app"
	"github.com/toeirei/quickkeys/internal/i18n"
	"github.com/toeirei/quickkeys/internal/security"
)

// PasswordEnv holds the master password for non-interactive use.
const PasswordEnv = "QUICKKEYS_PASSWORD"

const maxConfirmTries = 3

// terminalPrompter reads the master password from the terminal without echo,
// or from QUICKKEYS_PASSWORD when set.
type terminalPrompter struct {
	out  io.Writer
	read func() ([]byte, error)
}

func newTerminalPrompter(cmd *cobra.Command) *terminalPrompter {
	return &terminalPrompter{out: cmd.ErrOrStderr(), read: readTerminalPassword}
}

func readTerminalPassword() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New(i18n.T("prompt.not_terminal"))
	}
	return term.ReadPassword(fd)
}

func (p *terminalPrompter) ask(prompt string) (security.Secret, error) {
	fmt.Fprint(p.out, prompt)
	b, err := p.read()
	fmt.Fprintln(p.out)
	if err != nil {
		return nil, err
	}
	return security.Secret(b), nil
}

// NewPassword implements app.Prompter.
func (p *terminalPrompter) NewPassword(ctx context.Context) (security.Secret, error) {
	if env, ok := os.LookupEnv(PasswordEnv); ok {
		return security.FromString(env), nil
	}
	for i := 0; i < maxConfirmTries; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		first, err := p.ask(i18n.T("prompt.new_password", app.MinPasswordLength))
		if err != nil {
			return nil, err
		}
		second, err := p.ask(i18n.T("prompt.confirm_password"))
		if err != nil {
			first.Zero()
			return nil, err
		}
		same := first.Equal(second)
		second.Zero()
		if same {
			return first, nil
		}
		first.Zero()
		fmt.Fprintln(p.out, i18n.T("prompt.mismatch"))
	}
	return nil, app.ErrCancelled
}

// Password implements app.Prompter. The environment password is only
// offered once since retrying it cannot succeed.
func (p *terminalPrompter) Password(ctx context.Context, attempt int) (security.Secret, error) {
	if env, ok := os.LookupEnv(PasswordEnv); ok {
		if attempt > 1 {
			return nil, app.ErrTooManyAttempts
		}
		return security.FromString(env), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if attempt > 1 {
		return p.ask(i18n.T("prompt.password_attempt", attempt))
	}
	return p.ask(i18n.T("prompt.password"))
}

// promptForConfirmation displays a prompt and reads a line from in.
func promptForConfirmation(in io.Reader, out io.Writer, prompt string) string {
	fmt.Fprint(out, prompt)
	reader := bufio.NewReader(in)
	answer, _ := reader.ReadString('\n')
	return strings.TrimSpace(strings.ToLower(answer))
}
