// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/toeirei/vssh/internal/config"
	"github.com/toeirei/vssh/internal/i18n"
	"github.com/toeirei/vssh/internal/session"
	"github.com/toeirei/vssh/internal/ui"
)

// pickProfile is replaced in tests.
var pickProfile = func(names []string) (string, error) {
	var choice string
	opts := make([]huh.Option[string], len(names))
	for i, n := range names {
		opts[i] = huh.NewOption(n, n)
	}
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(i18n.T("profiles.select")).
				Options(opts...).
				Value(&choice),
		),
	).Run()
	return choice, err
}

// profileFlags binds one flag per profile field.
type profileFlags struct {
	username, address, role, privateKey, publicKey, options string
}

func (f *profileFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.username, "username", "u", "", "Remote login name (default: local user)")
	fs.StringVarP(&f.address, "address", "a", "", "Target host name or IP address")
	fs.StringVarP(&f.role, "role", "r", "", "Vault signing role")
	fs.StringVarP(&f.privateKey, "private-key", "i", "", "Private key (default "+session.DefaultPrivateKey+")")
	fs.StringVarP(&f.publicKey, "public-key", "k", "", "Public key to sign (default <private-key>.pub)")
	fs.StringVarP(&f.options, "options", "o", "", "Extra arguments passed to ssh or sftp")
}

func (f *profileFlags) profile() config.Profile {
	return config.Profile{
		Username:   f.username,
		Address:    f.address,
		Role:       f.role,
		PrivateKey: f.privateKey,
		PublicKey:  f.publicKey,
		Options:    f.options,
	}
}

// patch only carries the flags that were given on the command line, so an
// explicit empty value clears a field while an absent flag keeps it.
func (f *profileFlags) patch(fs *pflag.FlagSet) config.ProfilePatch {
	pick := func(name string, v *string) *string {
		if fs.Changed(name) {
			return v
		}
		return nil
	}
	return config.ProfilePatch{
		Username:   pick("username", &f.username),
		Address:    pick("address", &f.address),
		Role:       pick("role", &f.role),
		PrivateKey: pick("private-key", &f.privateKey),
		PublicKey:  pick("public-key", &f.publicKey),
		Options:    pick("options", &f.options),
	}
}

func newProfilesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"profile"},
		Short:   "Manage saved connection profiles (create, read, list, update, delete, connect)",
	}
	cmd.AddCommand(
		newProfileCreateCmd(a),
		newProfileReadCmd(a),
		newProfileListCmd(a),
		newProfileUpdateCmd(a),
		newProfileDeleteCmd(a),
		newProfileConnectCmd(a),
	)
	return cmd
}

func newProfileCreateCmd(a *app) *cobra.Command {
	var f profileFlags
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.CreateProfile(args[0], f.profile()); err != nil {
				return fmt.Errorf("failed to create profile: %w", err)
			}
			printer(cmd).Success(i18n.T("profiles.created", args[0]))
			return nil
		},
	}
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newProfileReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read <name>",
		Short: "Show a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			p, err := cfg.GetProfile(args[0])
			if err != nil {
				return err
			}
			ui.NewPrinter(cmd.OutOrStdout()).KeyValues([]ui.Field{
				{Label: "Username", Value: p.Username},
				{Label: "Role", Value: p.Role},
				{Label: "Address", Value: p.Address},
				{Label: "Private key", Value: p.PrivateKey},
				{Label: "Public key", Value: p.PublicKey},
				{Label: "Options", Value: p.Options},
			})
			return nil
		},
	}
}

func newProfileListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profile names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			names := cfg.ProfileNames()
			if len(names) == 0 {
				printer(cmd).Warn(i18n.T("profiles.none"))
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func newProfileUpdateCmd(a *app) *cobra.Command {
	var f profileFlags
	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Change selected fields of a profile",
		Long: `Only the fields given as flags are changed; every other field keeps its
current value. Pass an empty value (e.g. --options "") to clear a field.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if _, err := cfg.GetProfile(args[0]); err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}
			patch := f.patch(cmd.Flags())
			if patch.Empty() {
				printer(cmd).Warn(i18n.T("profiles.nothing_to_update", args[0]))
				return nil
			}
			if err := cfg.UpdateProfile(args[0], patch); err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}
			printer(cmd).Success(i18n.T("profiles.updated", args[0]))
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newProfileDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a profile (deleting an unknown profile is not an error)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.DeleteProfile(args[0]); err != nil {
				return fmt.Errorf("failed to delete profile: %w", err)
			}
			printer(cmd).Success(i18n.T("profiles.deleted", args[0]))
			return nil
		},
	}
}

func newProfileConnectCmd(a *app) *cobra.Command {
	var sftp bool
	cmd := &cobra.Command{
		Use:   "connect [name]",
		Short: "Connect using a saved profile",
		Long: `Connects with the role, keys, target and options stored in the profile.
Without a name, an interactive terminal offers a list of profiles to pick from.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := a.loadClient()
			if err != nil {
				return err
			}

			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				names := cfg.ProfileNames()
				if len(names) == 0 {
					return errors.New(i18n.T("profiles.none"))
				}
				if !isTerminal() {
					return errors.New("profile name required when not running in a terminal")
				}
				if name, err = pickProfile(names); err != nil {
					return err
				}
			}

			p, err := cfg.GetProfile(name)
			if err != nil {
				return err
			}
			return a.runSession(cmd, client, session.Request{
				Role:       p.Role,
				PrivateKey: p.PrivateKey,
				PublicKey:  p.PublicKey,
				Target:     p.Target(),
				Options:    p.Options,
				Mode:       session.ModeFor(sftp),
			})
		},
	}
	cmd.Flags().BoolVar(&sftp, "sftp", false, "Start sftp instead of ssh")
	return cmd
}
