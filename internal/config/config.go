// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads QuickKeys settings from defaults, quickkeys.yaml,
// QUICKKEYS_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	appName    = "QuickKeys"
	configName = "quickkeys"
	envPrefix  = "quickkeys"
)

// Config is the full QuickKeys configuration.
type Config struct {
	DataDir  string `mapstructure:"data_dir" yaml:"data_dir"`
	Language string `mapstructure:"language" yaml:"language"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	Paste    PasteConfig    `mapstructure:"paste" yaml:"paste"`
	Security SecurityConfig `mapstructure:"security" yaml:"security"`
	Launch   LaunchConfig   `mapstructure:"launch" yaml:"launch"`
}

// PasteConfig controls text injection.
type PasteConfig struct {
	// Method is "clipboard" or "type".
	Method       string        `mapstructure:"method" yaml:"method"`
	AutoSubmit   bool          `mapstructure:"auto_submit" yaml:"auto_submit"`
	RestoreDelay time.Duration `mapstructure:"restore_delay" yaml:"restore_delay"`
}

type SecurityConfig struct {
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`
}

type LaunchConfig struct {
	// DefaultWait is the wait in seconds given to new launch-then-paste keybinds.
	DefaultWait float64 `mapstructure:"default_wait" yaml:"default_wait"`
}

// Defaults returns the built-in settings keyed by their dotted viper names.
func Defaults() map[string]any {
	return map[string]any{
		"data_dir":              "",
		"language":              "en",
		"log_level":             "info",
		"paste.method":          "clipboard",
		"paste.auto_submit":     false,
		"paste.restore_delay":   "200ms",
		"security.max_attempts": 3,
		"launch.default_wait":   2.0,
	}
}

// GetConfigPath returns the user configuration file location.
func GetConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, configName, configName+".yaml"), nil
}

// DefaultDataDir is where the encrypted store lives unless data_dir is set:
// AppData\Local on Windows, Library/Application Support on macOS and
// ~/.config elsewhere, each with a QuickKeys subdirectory.
func DefaultDataDir() (string, error) {
	return defaultDataDir(runtime.GOOS)
}

func defaultDataDir(goos string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get home directory: %w", err)
	}
	switch goos {
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, appName), nil
		}
		return filepath.Join(home, "AppData", "Local", appName), nil
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName), nil
	default:
		return filepath.Join(home, ".config", appName), nil
	}
}

// ResolvedDataDir returns DataDir with "~" expanded, or the default.
func (c Config) ResolvedDataDir() (string, error) {
	dir := strings.TrimSpace(c.DataDir)
	if dir == "" {
		return DefaultDataDir()
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, dir[1:])
	}
	return dir, nil
}

// flagKeys maps command line flags to their config keys.
var flagKeys = map[string]string{
	"data-dir":  "data_dir",
	"log-level": "log_level",
	"language":  "language",
}

// LoadConfig layers defaults, the config file, the environment and cmd's
// flags into a T. A missing config file is not an error; when configFile is
// set it must exist.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	if configFile != nil && *configFile != "" {
		v.SetConfigFile(*configFile)
	}
	if userConfigPath, err := GetConfigPath(); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for flag, key := range flagKeys {
			if f := cmd.Flags().Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, err
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// Load reads a Config using the built-in defaults.
func Load(cmd *cobra.Command, configFile *string) (Config, error) {
	return LoadConfig[Config](cmd, Defaults(), configFile)
}

// WriteConfigFile writes c as YAML to path, or to the user config file when
// path is empty, and returns the path written.
func WriteConfigFile[T any](c *T, path string) (string, error) {
	if path == "" {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return "", err
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
