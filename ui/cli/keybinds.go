// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/toeirei/quickkeys/internal/hotkey"
	"github.com/toeirei/quickkeys/internal/i18n"
	"github.com/toeirei/quickkeys/internal/launcher"
	"github.com/toeirei/quickkeys/internal/logging"
	"github.com/toeirei/quickkeys/internal/model"
	"github.com/toeirei/quickkeys/internal/passgen"
)

// keybindFlags are the editable fields shared by add and edit.
type keybindFlags struct {
	hotkey      string
	name        string
	action      string
	username    string
	password    string
	askPassword bool
	genPassword bool
	text        string
	program     string
	args        string
	wait        float64
	capture     bool
}

func (f *keybindFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.hotkey, "hotkey", "", `Hotkey such as "Ctrl+Alt+K"`)
	fs.StringVar(&f.name, "name", "", "Display name")
	fs.StringVar(&f.action, "action", model.Paste.String(), "Action: paste, launch or launch_paste")
	fs.StringVar(&f.username, "username", "", "Username to paste")
	fs.StringVar(&f.password, "password", "", "Password to paste (visible in shell history; prefer --ask-password)")
	fs.BoolVar(&f.askPassword, "ask-password", false, "Read the password to paste from the terminal")
	fs.BoolVar(&f.genPassword, "generate-password", false, "Generate a random password to paste")
	fs.StringVar(&f.text, "text", "", "Custom text to paste instead of username/password")
	fs.StringVar(&f.program, "program", "", "Program to launch")
	fs.StringVar(&f.args, "args", "", "Program arguments")
	fs.Float64Var(&f.wait, "wait", model.DefaultWaitSeconds, "Seconds to wait before pasting into a launched program")
	fs.BoolVar(&f.capture, "capture", false, "Record the hotkey by pressing it")
}

// apply copies every flag that was set on the command line into kb. With
// all set, every flag is copied (used for new keybinds).
func (f *keybindFlags) apply(cmd *cobra.Command, kb *model.Keybind, all bool) error {
	changed := func(name string) bool { return all || cmd.Flags().Changed(name) }

	if changed("hotkey") && f.hotkey != "" {
		kb.Hotkey = f.hotkey
	}
	if changed("name") {
		kb.Name = f.name
	}
	if changed("action") {
		a, err := model.ParseActionType(f.action)
		if err != nil {
			return errors.New(i18n.T("keybind.bad_action", f.action))
		}
		kb.ActionType = a
	}
	if changed("username") {
		kb.Username = f.username
	}
	if changed("password") && f.password != "" {
		kb.Password = f.password
	}
	if changed("text") {
		kb.CustomText = f.text
	}
	if changed("program") {
		kb.ProgramPath = f.program
	}
	if changed("args") {
		kb.ProgramArgs = f.args
	}
	if changed("wait") {
		kb.WaitSeconds = f.wait
	}

	switch {
	case f.genPassword:
		pw, err := passgen.Generate(passgen.DefaultOptions())
		if err != nil {
			return errors.New(i18n.T("generate.error", err))
		}
		kb.Password = pw
	case f.askPassword:
		p := newTerminalPrompter(cmd)
		secret, err := p.ask(i18n.T("prompt.keybind_password"))
		if err != nil {
			return err
		}
		kb.Password = string(secret.Bytes())
		secret.Zero()
	}

	if kb.ActionType.NeedsProgram() && kb.ProgramPath != "" && !launcher.IsValidExecutable(kb.ProgramPath) {
		fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("keybind.program_warning", kb.ProgramPath))
	}
	return nil
}

// captureHotkey is replaced in tests.
var captureHotkey = func(cmd *cobra.Command, timeout time.Duration) (string, error) {
	d, err := newDesktop()
	if err != nil {
		return "", err
	}
	return recordChord(cmd, d, timeout)
}

func newListCmd() *cobra.Command {
	var sortBy string
	var reverse bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List keybinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := unlockedSession(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer sess.Close()
			kbs, err := sess.Keybinds()
			if err != nil {
				return err
			}
			model.Sort(kbs, model.SortBy(sortBy), reverse)
			printKeybinds(cmd.OutOrStdout(), kbs)
			return nil
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", string(model.SortCreated), "Sort by created, name, hotkey or action")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "Reverse the sort order")
	return cmd
}

func printKeybinds(out io.Writer, kbs []model.Keybind) {
	if len(kbs) == 0 {
		fmt.Fprintln(out, i18n.T("list.empty"))
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, i18n.T("list.header"))
	for _, kb := range kbs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", shortID(kb.ID), kb.Hotkey, kb.Name, kb.ActionType.Label(), details(kb))
	}
	_ = w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// details summarizes a keybind without revealing secrets.
func details(kb model.Keybind) string {
	var parts []string
	if kb.ActionType.NeedsProgram() {
		p := kb.ProgramPath
		if kb.ProgramArgs != "" {
			p += " " + kb.ProgramArgs
		}
		parts = append(parts, p)
	}
	if kb.ActionType == model.LaunchThenPaste {
		parts = append(parts, fmt.Sprintf("wait %gs", kb.WaitSeconds))
	}
	if kb.ActionType.NeedsPaste() {
		switch {
		case kb.CustomText != "":
			parts = append(parts, "custom text")
		case kb.Username != "":
			parts = append(parts, "user "+kb.Username)
		}
	}
	return strings.Join(parts, ", ")
}

func newAddCmd() *cobra.Command {
	var f keybindFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a keybind",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.capture {
				chord, err := captureHotkey(cmd, captureTimeout)
				if err != nil {
					return err
				}
				f.hotkey = chord
			}
			kb := model.NewKeybind("", "", model.Paste)
			if !cmd.Flags().Changed("wait") && appConfig.Launch.DefaultWait > 0 {
				f.wait = appConfig.Launch.DefaultWait
			}
			if err := f.apply(cmd, &kb, true); err != nil {
				return err
			}
			if err := kb.Validate(); err != nil {
				return err
			}

			sess, err := unlockedSession(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer sess.Close()
			if err := sess.AddKeybind(kb); err != nil {
				return err
			}
			logging.Debugf("added keybind %s", kb.ID)
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("add.created", kb.Name, hotkey.Display(kb.Hotkey)))
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newEditCmd() *cobra.Command {
	var f keybindFlags
	cmd := &cobra.Command{
		Use:   "edit <id|hotkey>",
		Short: "Change fields of a keybind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := unlockedSession(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			kb, err := findKeybind(sess, args[0])
			if err != nil {
				return err
			}
			if f.capture {
				chord, err := captureHotkey(cmd, captureTimeout)
				if err != nil {
					return err
				}
				f.hotkey = chord
				_ = cmd.Flags().Set("hotkey", chord)
			}
			if err := f.apply(cmd, &kb, false); err != nil {
				return err
			}
			if err := sess.UpdateKeybind(kb); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("edit.updated", kb.Name))
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id|hotkey>",
		Aliases: []string{"rm"},
		Short:   "Delete a keybind",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := unlockedSession(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			kb, err := findKeybind(sess, args[0])
			if err != nil {
				return err
			}
			if err := sess.RemoveKeybind(kb.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("remove.removed", kb.Name))
			return nil
		},
	}
}

type keybindFinder interface {
	Find(idOrHotkey string) (model.Keybind, bool)
	Keybinds() ([]model.Keybind, error)
}

// findKeybind resolves a full id, a hotkey or a unique id prefix as shown
// by list.
func findKeybind(sess keybindFinder, ref string) (model.Keybind, error) {
	if kb, ok := sess.Find(ref); ok {
		return kb, nil
	}
	all, err := sess.Keybinds()
	if err != nil {
		return model.Keybind{}, err
	}
	var match []model.Keybind
	norm := hotkey.Normalize(ref)
	for _, kb := range all {
		if hotkey.Normalize(kb.Hotkey) == norm {
			return kb, nil
		}
		if len(ref) >= 4 && strings.HasPrefix(kb.ID, ref) {
			match = append(match, kb)
		}
	}
	if len(match) == 1 {
		return match[0], nil
	}
	return model.Keybind{}, errors.New(i18n.T("keybind.not_found", ref))
}
