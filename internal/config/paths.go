// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	appDir   = "vssh"
	fileName = "vssh.yaml"
)

// DefaultPath returns the per-user location of the configuration document,
// e.g. ~/.config/vssh/vssh.yaml on Linux.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(configDir, appDir, fileName), nil
}

// Settings are the per-invocation knobs resolved from flags, VSSH_*
// environment variables and defaults. They are never persisted.
type Settings struct {
	Config   string `mapstructure:"config"`
	Language string `mapstructure:"language"`
	Verbose  bool   `mapstructure:"verbose"`
}

// DefaultSettings are applied before environment and flags.
var DefaultSettings = map[string]any{
	"config":   "",
	"language": "en",
	"verbose":  false,
}

// LoadSettings resolves T from defaults, the environment (VSSH_ prefix) and
// the flags of cmd, in increasing order of precedence.
func LoadSettings[T any](cmd *cobra.Command, defaults map[string]any) (T, error) {
	var s T
	v, err := settingsViper(cmd, defaults)
	if err != nil {
		return s, err
	}
	if err := v.Unmarshal(&s); err != nil {
		return s, err
	}
	return s, nil
}

// SettingsDump returns the resolved settings as a flat map for diagnostics.
func SettingsDump(cmd *cobra.Command, defaults map[string]any) (map[string]any, error) {
	v, err := settingsViper(cmd, defaults)
	if err != nil {
		return nil, err
	}
	return v.AllSettings(), nil
}

func settingsViper(cmd *cobra.Command, defaults map[string]any) (*viper.Viper, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("vssh")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// ResolvePath returns explicit when set, otherwise DefaultPath.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return DefaultPath()
}
