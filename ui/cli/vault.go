// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/vssh/internal/i18n"
	"github.com/toeirei/vssh/internal/session"
	"github.com/toeirei/vssh/internal/sshcert"
	"github.com/toeirei/vssh/internal/ui"
)

// newListCmd lists the roles of the SSH secrets engine.
func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the signing roles available on the Vault server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := a.loadClient()
			if err != nil {
				return err
			}
			roles, err := client.ListRoles(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list roles: %w", err)
			}
			if len(roles) == 0 {
				printer(cmd).Warn(i18n.T("list.none"))
				return nil
			}
			for _, r := range roles {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
}

// newSignCmd signs a public key and writes the certificate to a file or
// stdout.
func newSignCmd(a *app) *cobra.Command {
	var role, publicKey, output string
	var inspect bool

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a public key and print or save the certificate",
		Long: `Sends the public key to the Vault SSH secrets engine and returns the
signed certificate. Without --output the certificate is written to stdout.
A certificate saved with --output is kept; it is not a temporary file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := a.loadClient()
			if err != nil {
				return err
			}
			p := printer(cmd)
			p.Wait(i18n.T("sign.signing", role))
			cert, err := session.SignToFile(cmd.Context(), client, role, publicKey, output, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			p.Success(i18n.T("sign.signed"))
			if output != "" {
				p.Success(i18n.T("sign.written", output))
			}
			if inspect {
				return printCertificate(p, cert)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", "", "Vault signing role")
	cmd.Flags().StringVarP(&publicKey, "public-key", "k", session.DefaultPrivateKey+".pub", "Public key to sign")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the certificate to this file instead of stdout")
	cmd.Flags().BoolVar(&inspect, "inspect", false, "Describe the signed certificate")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func printCertificate(p *ui.Printer, cert string) error {
	info, err := sshcert.Describe(cert)
	if err != nil {
		return fmt.Errorf("failed to inspect certificate: %w", err)
	}
	principals := strings.Join(info.Principals, ", ")
	p.KeyValues([]ui.Field{
		{Label: "Type", Value: info.Type},
		{Label: "Key ID", Value: info.KeyID},
		{Label: "Serial", Value: strconv.FormatUint(info.Serial, 10)},
		{Label: "Principals", Value: principals},
		{Label: "Valid", Value: info.Validity()},
	})
	return nil
}

// newConnectCmd signs a key and opens a session to an explicit target.
func newConnectCmd(a *app) *cobra.Command {
	var role, privateKey, publicKey, options string
	var sftp bool

	cmd := &cobra.Command{
		Use:   "connect <user@host>",
		Short: "Sign a key and connect with ssh or sftp",
		Long: `Signs the public key with the given role, stores the certificate in a
private temporary file, runs ssh (or sftp with --sftp) with both the private
key and the certificate and removes the certificate when the session ends.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := a.loadClient()
			if err != nil {
				return err
			}
			return a.runSession(cmd, client, session.Request{
				Role:       role,
				PrivateKey: privateKey,
				PublicKey:  publicKey,
				Target:     args[0],
				Options:    options,
				Mode:       session.ModeFor(sftp),
			})
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", "", "Vault signing role")
	cmd.Flags().StringVarP(&privateKey, "private-key", "i", "", "Private key (default "+session.DefaultPrivateKey+")")
	cmd.Flags().StringVarP(&publicKey, "public-key", "k", "", "Public key to sign (default <private-key>.pub)")
	cmd.Flags().StringVarP(&options, "options", "o", "", "Extra arguments passed to ssh or sftp")
	cmd.Flags().BoolVar(&sftp, "sftp", false, "Start sftp instead of ssh")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
