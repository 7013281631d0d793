// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the root command, the global flags and the shared
// configuration, logging and i18n setup that every subcommand relies on.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/toeirei/quickkeys/buildvars"
	"github.com/toeirei/quickkeys/internal/app"
	"github.com/toeirei/quickkeys/internal/config"
	"github.com/toeirei/quickkeys/internal/i18n"
	"github.com/toeirei/quickkeys/internal/logging"
)

var version = buildvars.OrDefault(buildvars.Version, "dev")
var gitCommit = buildvars.OrDefault(buildvars.Commit, "dev")
var buildDate = buildvars.Date
var cfgFile string
var verbose bool

var appConfig config.Config

func setupDefaultServices(cmd *cobra.Command, args []string) error {
	configPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	appConfig, err = config.Load(cmd, configPath)
	if err != nil {
		return errors.New(i18n.T("config.error_load", err))
	}

	// First run: persist the defaults so users have a file to edit.
	if configPath == nil {
		if p, perr := config.GetConfigPath(); perr == nil {
			if _, serr := os.Stat(p); errors.Is(serr, os.ErrNotExist) {
				if _, werr := config.WriteConfigFile(&appConfig, p); werr != nil {
					log.Warnf("%s", i18n.T("config.warn_write_default", werr))
				}
			}
		}
	}

	if err := logging.SetLevel(appConfig.LogLevel); err != nil {
		log.Warnf("ignoring log_level: %v", err)
	}
	if verbose {
		logging.SetDebug(true)
	}
	i18n.Init(appConfig.Language)
	return nil
}

// Execute runs the CLI entrypoint.
func Execute() error {
	return NewRootCmd().Execute()
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// NewRootCmd creates the root command with every subcommand attached. Each
// call returns a fresh tree so tests can execute commands in isolation.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "quickkeys",
		Short:             i18n.T("root.short"),
		Long:              i18n.T("root.long"),
		SilenceUsage:      true,
		PersistentPreRunE: setupDefaultServices,
		RunE:              runListen,
	}

	v, c, d := resolveBuildVersion(nil)
	compositeVersion := v
	if c != "" && c != "dev" {
		compositeVersion = compositeVersion + " (" + c + ")"
	}
	if d != "" {
		compositeVersion = compositeVersion + " built: " + d
	}
	cmd.Version = compositeVersion

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().String("data-dir", "", "Directory holding the encrypted keybind store")
	cmd.PersistentFlags().String("language", "", `Message language ("en", "de")`)
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newInitCmd(),
		newListCmd(),
		newAddCmd(),
		newEditCmd(),
		newRemoveCmd(),
		newCaptureCmd(),
		newTriggerCmd(),
		newGeneratePasswordCmd(),
		newResetCmd(),
		newVersionCmd(),
	)
	return cmd
}

// runListen unlocks the store, registers every keybind and blocks until
// SIGINT or SIGTERM.
func runListen(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := newDesktop()
	if err != nil {
		return err
	}
	sess := d.session()
	if err := sess.Unlock(ctx, newTerminalPrompter(cmd)); err != nil {
		return err
	}
	defer func() {
		sess.Close()
		d.dispatcher.Wait()
		fmt.Fprintln(cmd.OutOrStdout(), i18n.T("run.stopped"))
	}()

	kbs, err := sess.Keybinds()
	if err != nil {
		return err
	}
	if len(kbs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), i18n.T("run.no_keybinds"))
	}
	if err := sess.Activate(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), i18n.T("run.listening", len(kbs)))

	<-ctx.Done()
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, i18n.T("version.version", v))
			fmt.Fprintln(out, i18n.T("version.commit", c))
			if d != "" {
				fmt.Fprintln(out, i18n.T("version.built", d))
			}
		},
	}
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If info is nil, it reads build info from the
// runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := version
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}
	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		if (resolvedVersion == "dev" || resolvedVersion == "(devel)") && info.Deps != nil {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/toeirei/quickkeys" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" && resolvedCommit == "dev" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" && resolvedDate == "" {
					resolvedDate = s.Value
				}
			}
		}
	}
	if (resolvedVersion == "dev" || resolvedVersion == "(devel)") && resolvedCommit != "" && resolvedCommit != "dev" {
		resolvedVersion = resolvedCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}

// sessionOptions derives the session settings from the loaded config.
func sessionOptions() (app.Options, error) {
	dir, err := appConfig.ResolvedDataDir()
	if err != nil {
		return app.Options{}, err
	}
	return app.Options{DataDir: dir, MaxAttempts: appConfig.Security.MaxAttempts}, nil
}

// unlockedSession opens the store without hotkeys, for editing commands.
func unlockedSession(ctx context.Context, cmd *cobra.Command) (*app.Session, error) {
	opts, err := sessionOptions()
	if err != nil {
		return nil, err
	}
	sess := app.NewSession(opts, nil, nil)
	if err := sess.Unlock(ctx, newTerminalPrompter(cmd)); err != nil {
		return nil, err
	}
	return sess, nil
}
