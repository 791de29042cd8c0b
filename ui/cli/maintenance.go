// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/toeirei/vssh/internal/config"
	"github.com/toeirei/vssh/internal/i18n"
	"github.com/toeirei/vssh/internal/logging"
)

func newRepairConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repair-config",
		Short: "Fill in missing configuration fields with their defaults",
		Long: `Reads the configuration leniently, fills every missing field with its
default (server, mount path, TLS, profile usernames), validates the result
and rewrites the file. Nothing is written if the result is still invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.configPath()
			if err != nil {
				return err
			}
			if _, err := config.Repair(path); err != nil {
				return fmt.Errorf("failed to repair configuration: %w", err)
			}
			printer(cmd).Success(i18n.T("repair.done", path))
			return nil
		},
	}
}

// newDebugCmd dumps what vssh resolved from flags, environment and the
// configuration file. The token is never printed.
func newDebugCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "debug",
		Short: "Dump debug information about config, env, flags and settings",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "--- VSSH DEBUG ---")

			path, err := a.configPath()
			if err != nil {
				fmt.Fprintf(out, "Config file: <unresolved: %v>\n", err)
			} else {
				_, statErr := os.Stat(path)
				fmt.Fprintf(out, "Config file: %s (exists: %t)\n", path, !errors.Is(statErr, fs.ErrNotExist))
			}

			if cfg, err := config.Read(path); err == nil {
				fmt.Fprintf(out, "Server: %s\n", cfg.Server)
				fmt.Fprintf(out, "Mount: %s\n", cfg.Path)
				fmt.Fprintf(out, "TLS: %t\n", cfg.TLS)
				fmt.Fprintf(out, "Token set: %t\n", cfg.Token != "")
				fmt.Fprintf(out, "Profiles: %s\n", strings.Join(cfg.ProfileNames(), ", "))
				if verr := cfg.Validate(); verr != nil {
					fmt.Fprintf(out, "Validation: %v\n", verr)
				}
			} else if path != "" {
				fmt.Fprintf(out, "Config error: %v\n", err)
			}

			settings, err := config.SettingsDump(cmd, config.DefaultSettings)
			if err != nil {
				logging.Errorf("could not resolve settings: %v", err)
			} else if b, err := json.MarshalIndent(settings, "", "  "); err != nil {
				logging.Errorf("could not marshal settings: %v", err)
			} else {
				fmt.Fprintln(out, "-- settings --")
				fmt.Fprintln(out, string(b))
			}

			fmt.Fprintln(out, "-- flags --")
			cmd.Flags().VisitAll(func(f *pflag.Flag) {
				fmt.Fprintf(out, "%s = %s\n", f.Name, f.Value.String())
			})

			fmt.Fprintln(out, "-- environment (VSSH_*) --")
			for _, e := range os.Environ() {
				if strings.HasPrefix(e, "VSSH_") {
					fmt.Fprintln(out, e)
				}
			}
			fmt.Fprintln(out, "--- END DEBUG ---")
		},
	}
}
