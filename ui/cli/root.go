// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/toeirei/vssh/buildvars"
	"github.com/toeirei/vssh/internal/config"
	"github.com/toeirei/vssh/internal/i18n"
	"github.com/toeirei/vssh/internal/logging"
	"github.com/toeirei/vssh/internal/session"
	"github.com/toeirei/vssh/internal/ui"
)

var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

// ExitCodeError carries the exit status of the ssh or sftp session so main
// can pass it on unchanged.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("session exited with status %d", e.Code)
}

// Execute runs the CLI. The caller reports the returned error, see Report.
func Execute() error {
	return NewRootCmd().Execute()
}

// Report prints err for the operator and returns the process exit status.
func Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	p := ui.NewPrinter(w)
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		if exitErr.Code < 0 {
			p.Fail(err.Error())
			return 1
		}
		return exitErr.Code
	}

	var cleanupErr *session.CleanupError
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		p.Fail(err.Error())
		p.Println(i18n.T("error.config_not_found"))
	case errors.Is(err, errAuthFailed):
		p.Fail(i18n.T("setup.token_invalid"))
	case errors.As(err, &cleanupErr) && cleanupErr.PermissionDenied():
		p.Fail(i18n.T("error.cleanup_denied", cleanupErr.Path))
	default:
		p.Fail(err.Error())
	}
	return 1
}

// NewRootCmd builds a fresh command tree. Tests call it once per case.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "vssh",
		Short: "Open SSH sessions with short-lived certificates signed by Vault",
		Long: `vssh asks the Vault SSH secrets engine to sign your public key, hands
the certificate to ssh or sftp for a single session and deletes it again
when the session ends. Connection presets can be saved as profiles.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings[config.Settings](cmd, config.DefaultSettings)
			if err != nil {
				return fmt.Errorf("error loading settings: %w", err)
			}
			a.settings = settings
			logging.SetDebug(settings.Verbose)
			i18n.Init(settings.Language)
			return nil
		},
	}

	v, c, d := resolveBuildVersion(nil)
	cmd.Version = compositeVersion(v, c, d)

	cmd.PersistentFlags().String("config", "", "configuration file (default is $XDG_CONFIG_HOME/vssh/vssh.yaml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("language", "en", `Output language ("en", "de")`)

	cmd.AddCommand(
		newSetupCmd(a),
		newListCmd(a),
		newSignCmd(a),
		newConnectCmd(a),
		newProfilesCmd(a),
		newRepairConfigCmd(a),
		newDebugCmd(a),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version: %s\n", v)
			fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}
}

func compositeVersion(v, c, d string) string {
	out := v
	if c != "" && c != "dev" {
		out += " (" + c + ")"
	}
	if d != "" {
		out += " built: " + d
	}
	return out
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If info is nil, it reads build info from the
// runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault("dev")
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}

	if info != nil && resolvedVersion == "dev" {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// Some build paths only record the module as a dependency.
		if resolvedVersion == "dev" {
			for _, dep := range info.Deps {
				if dep.Path == buildvars.ModulePath && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
	}
	if info != nil {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}
