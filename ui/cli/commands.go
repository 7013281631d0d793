// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/toeirei/quickkeys/internal/app"
	"github.com/toeirei/quickkeys/internal/config"
	"github.com/toeirei/quickkeys/internal/hotkey"
	"github.com/toeirei/quickkeys/internal/i18n"
	"github.com/toeirei/quickkeys/internal/passgen"
)

const captureTimeout = 30 * time.Second

func newInitCmd() *cobra.Command {
	var writeConfig bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file and the encrypted store",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if writeConfig {
				path, err := config.WriteConfigFile(&appConfig, "")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, i18n.T("init.config_written", path))
			}

			opts, err := sessionOptions()
			if err != nil {
				return err
			}
			sess := app.NewSession(opts, nil, nil)
			if !sess.IsNew() {
				fmt.Fprintln(out, i18n.T("init.store_exists", sess.StorePath()))
				return nil
			}
			if err := sess.Unlock(cmd.Context(), newTerminalPrompter(cmd)); err != nil {
				return err
			}
			defer sess.Close()
			fmt.Fprintln(out, i18n.T("init.store_created", sess.StorePath()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&writeConfig, "write-config", true, "Also write the current settings to the user config file")
	return cmd
}

// recordChord captures one chord from the keyboard hook.
func recordChord(cmd *cobra.Command, d *desktop, timeout time.Duration) (string, error) {
	result := make(chan string, 1)
	capture := hotkey.NewCapture(d.hub, func(chord string) { result <- chord })
	if err := capture.Start(); err != nil {
		return "", err
	}
	defer capture.Stop()

	fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("capture.prompt"))
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	select {
	case chord := <-result:
		return chord, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", errors.New(i18n.T("capture.timeout", timeout))
		}
		return "", ctx.Err()
	}
}

func newCaptureCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Record a hotkey by pressing it and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			chord, err := captureHotkey(cmd, timeout)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("capture.result", chord, hotkey.Normalize(chord)))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", captureTimeout, "How long to wait for a chord")
	return cmd
}

func newTriggerCmd() *cobra.Command {
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "trigger <id|hotkey>",
		Short: "Run a keybind's action once, as if its hotkey was pressed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDesktop()
			if err != nil {
				return err
			}
			sess, err := unlockedSession(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			kb, err := findKeybind(sess, args[0])
			if err != nil {
				return err
			}
			if delay > 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("trigger.countdown", kb.Name, delay))
				select {
				case <-time.After(delay):
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				}
			}
			if err := d.dispatcher.Run(cmd.Context(), kb); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("trigger.done"))
			return nil
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", 3*time.Second, "Time to switch to the target window before the action runs")
	return cmd
}

func newGeneratePasswordCmd() *cobra.Command {
	opts := passgen.DefaultOptions()
	var noDigits, noSpecial bool
	cmd := &cobra.Command{
		Use:   "generate-password",
		Short: "Print a random password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Digits = !noDigits
			opts.Special = !noSpecial
			pw, err := passgen.Generate(opts)
			if err != nil {
				return errors.New(i18n.T("generate.error", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), pw)
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.Length, "length", "l", passgen.DefaultLength,
		fmt.Sprintf("Password length (%d-%d)", passgen.MinLength, passgen.MaxLength))
	cmd.Flags().BoolVar(&noDigits, "no-digits", false, "Leave out digits")
	cmd.Flags().BoolVar(&noSpecial, "no-special", false, "Leave out special characters")
	return cmd
}

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the encrypted store (for a forgotten master password)",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := sessionOptions()
			if err != nil {
				return err
			}
			sess := app.NewSession(opts, nil, nil)
			if !yes {
				answer := promptForConfirmation(cmd.InOrStdin(), cmd.ErrOrStderr(), i18n.T("prompt.confirm_reset", sess.StorePath()))
				if answer != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), i18n.T("reset.cancelled"))
					return nil
				}
			}
			if err := sess.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("reset.done"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

