// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/toeirei/vssh/internal/config"
	"github.com/toeirei/vssh/internal/i18n"
	"github.com/toeirei/vssh/internal/logging"
	"github.com/toeirei/vssh/internal/vault"
)

// errAuthFailed is returned by setup when Vault does not accept the token.
var errAuthFailed = errors.New("authentication failed: Vault rejected the token")

// setupAnswers are the fields setup asks for.
type setupAnswers struct {
	Server   string
	Token    string
	Mount    string
	CustomCA string
	TLS      bool
}

// askSetup is replaced in tests.
var askSetup = func(ans *setupAnswers) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(i18n.T("setup.server")).
				Placeholder(config.DefaultServer).
				Value(&ans.Server),
			huh.NewInput().
				Title(i18n.T("setup.token")).
				EchoMode(huh.EchoModePassword).
				Value(&ans.Token),
			huh.NewInput().
				Title(i18n.T("setup.mount")).
				Placeholder(config.DefaultMount).
				Value(&ans.Mount),
			huh.NewInput().
				Title(i18n.T("setup.custom_ca")).
				Value(&ans.CustomCA),
			huh.NewConfirm().
				Title(i18n.T("setup.tls")).
				Value(&ans.TLS),
		).Title(i18n.T("setup.title")),
	).Run()
}

func newSetupCmd(a *app) *cobra.Command {
	var nonInteractive, noTLS bool
	ans := setupAnswers{}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Write the configuration (Vault address, token, mount, TLS)",
		Long: `Creates or replaces the configuration document. The token is checked
against Vault before anything is written. Existing profiles are kept.

In a terminal the values are asked for interactively, prefilled from the
flags. With --non-interactive (or without a terminal) only the flags are used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.configPath()
			if err != nil {
				return err
			}

			existing, err := config.Read(path)
			switch {
			case err == nil:
				logging.Debugf("setup: keeping %d profiles from %s", len(existing.Profiles), path)
				if !cmd.Flags().Changed("server") {
					ans.Server = existing.Server
				}
				if !cmd.Flags().Changed("path") {
					ans.Mount = existing.Path
				}
				if !cmd.Flags().Changed("custom-ca") {
					ans.CustomCA = existing.CustomCA
				}
				if !cmd.Flags().Changed("no-tls") {
					noTLS = !existing.TLS
				}
			case errors.Is(err, config.ErrConfigNotFound):
				existing = nil
			default:
				logging.Warnf("ignoring unreadable configuration: %v", err)
				existing = nil
			}
			ans.TLS = !noTLS

			if !nonInteractive && isTerminal() {
				if err := askSetup(&ans); err != nil {
					return err
				}
			}
			if ans.Server == "" {
				ans.Server = config.DefaultServer
			}

			cfg := config.New(path, ans.Server, ans.Token, ans.Mount, ans.CustomCA, ans.TLS)
			if existing != nil {
				cfg.Profiles = existing.Profiles
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			client, err := vault.New(cfg)
			if err != nil {
				return err
			}
			ok, err := client.ValidateToken(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to validate token: %w", err)
			}
			if !ok {
				return errAuthFailed
			}
			p := printer(cmd)
			p.Success(i18n.T("setup.token_valid"))

			if err := config.Write(path, cfg); err != nil {
				return err
			}
			p.Success(i18n.T("setup.saved", path))
			return nil
		},
	}
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Do not prompt, use the flags only")
	cmd.Flags().StringVar(&ans.Server, "server", config.DefaultServer, "Vault server URL")
	cmd.Flags().StringVar(&ans.Token, "token", "", "Vault token")
	cmd.Flags().StringVar(&ans.Mount, "path", config.DefaultMount, "Mount path of the SSH secrets engine")
	cmd.Flags().StringVar(&ans.CustomCA, "custom-ca", "", "PEM file with the CA certificate of the Vault server")
	cmd.Flags().BoolVar(&noTLS, "no-tls", false, "Do not verify the TLS certificate of the Vault server")
	return cmd
}
