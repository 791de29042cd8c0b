// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/toeirei/vssh/internal/config"
	"github.com/toeirei/vssh/internal/i18n"
	"github.com/toeirei/vssh/internal/session"
	"github.com/toeirei/vssh/internal/ui"
	"github.com/toeirei/vssh/internal/vault"
	"golang.org/x/term"
)

// Replaced in tests.
var (
	newLauncher = session.NewLauncher
	isTerminal  = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
)

// app carries the state shared by the commands of one root.
type app struct {
	settings config.Settings
}

func (a *app) configPath() (string, error) {
	return config.ResolvePath(a.settings.Config)
}

// loadConfig reads and validates the configuration document.
func (a *app) loadConfig() (*config.Config, error) {
	path, err := a.configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return cfg, nil
}

// loadClient reads the configuration and builds a Vault client for it.
func (a *app) loadClient() (*config.Config, *vault.Client, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := vault.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

func printer(cmd *cobra.Command) *ui.Printer {
	return ui.NewPrinter(cmd.ErrOrStderr())
}

// runSession signs the key, runs ssh or sftp and reports the session's
// exit status as an *ExitCodeError when it is not zero.
func (a *app) runSession(cmd *cobra.Command, signer session.Signer, req session.Request) error {
	p := printer(cmd)

	l := newLauncher()
	l.Stdin = cmd.InOrStdin()
	l.Stdout = cmd.OutOrStdout()
	l.Stderr = cmd.ErrOrStderr()

	conn := &session.Connector{
		Signer:   signer,
		Launcher: l,
		Notify: func(e session.Event) {
			switch e {
			case session.EventSigned:
				p.Success(i18n.T("sign.signed"))
			case session.EventMaterialized:
				p.Success(i18n.T("session.materialized"))
			case session.EventLaunching:
				p.Wait(i18n.T("session.launching", req.Mode.Program()))
			case session.EventCleaned:
				p.Success(i18n.T("session.cleaned"))
			}
		},
	}

	p.Wait(i18n.T("sign.signing", req.Role))
	res, err := conn.Connect(cmd.Context(), req)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		p.Warn(i18n.T("session.exit", req.Mode.Program(), res.ExitCode))
		return &ExitCodeError{Code: res.ExitCode}
	}
	return nil
}
