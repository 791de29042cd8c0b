// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package session turns a Vault-signed certificate into an ssh or sftp
// session. The certificate only ever exists on disk as a private temp file
// that is removed before Connect returns, whatever happened in between.
package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/toeirei/vssh/internal/logging"
	"github.com/toeirei/vssh/internal/sshcert"
)

// Signer issues certificates. *vault.Client implements it.
type Signer interface {
	Sign(ctx context.Context, role, publicKey string) (string, error)
}

// Event marks a lifecycle step for progress output.
type Event int

const (
	EventSigned Event = iota
	EventMaterialized
	EventLaunching
	EventCleaned
)

func (e Event) String() string {
	switch e {
	case EventSigned:
		return "signed"
	case EventMaterialized:
		return "materialized"
	case EventLaunching:
		return "launching"
	case EventCleaned:
		return "cleaned"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Request describes one connection.
type Request struct {
	Role       string
	PrivateKey string
	PublicKey  string
	Target     string
	Options    string
	Mode       Mode
}

// Result is what a finished session reports back.
type Result struct {
	ExitCode int
	Keys     KeyPair
}

// Connector wires a Signer to a Launcher.
type Connector struct {
	Signer   Signer
	Launcher *Launcher
	// TempDir holds the certificate artifact; empty means os.TempDir().
	TempDir string
	// Notify, when set, is called after each lifecycle step.
	Notify func(Event)
	// Now is used to warn about already expired certificates.
	Now func() time.Time
}

func (c *Connector) notify(e Event) {
	if c.Notify != nil {
		c.Notify(e)
	}
}

// Connect resolves the keys, signs the public key, writes the certificate
// to a temp file, runs the session program and removes the file again.
// The program's exit status is returned in Result; only failures of vssh
// itself are errors.
func (c *Connector) Connect(ctx context.Context, req Request) (Result, error) {
	keys, err := ResolveKeys(req.PrivateKey, req.PublicKey)
	if err != nil {
		return Result{}, err
	}
	result := Result{Keys: keys}

	publicKey, err := ReadPublicKey(keys.Public)
	if err != nil {
		return result, err
	}

	cert, err := c.Signer.Sign(ctx, req.Role, publicKey)
	if err != nil {
		return result, fmt.Errorf("failed to sign public key: %w", err)
	}
	c.notify(EventSigned)
	c.inspect(cert, publicKey)

	err = WithArtifact(c.TempDir, cert, func(path string) error {
		c.notify(EventMaterialized)
		args := BuildArgs(keys.Private, path, req.Target, req.Options)
		c.notify(EventLaunching)
		code, err := c.Launcher.Run(req.Mode, args)
		result.ExitCode = code
		return err
	})
	if err != nil {
		return result, err
	}
	c.notify(EventCleaned)
	return result, nil
}

// inspect logs what Vault issued and warns about surprises. It never fails
// the connection.
func (c *Connector) inspect(cert, publicKey string) {
	parsed, err := sshcert.Parse(cert)
	if err != nil {
		logging.Warnf("could not inspect signed certificate: %v", err)
		return
	}
	if pub, err := sshcert.ParsePublicKey(publicKey); err == nil && !sshcert.Certifies(parsed, pub) {
		logging.Warnf("signed certificate does not match the submitted public key")
	}
	info, err := sshcert.Describe(cert)
	if err != nil {
		return
	}
	logging.Debugf("session: %s", info)
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	if info.Expired(now()) {
		logging.Warnf("signed certificate already expired at %s", info.ValidBefore.Format(time.RFC3339))
	}
}

// SignToFile signs the public key at publicKeyPath with role. The
// certificate goes to output (mode 0600, truncated) or to stdout when output
// is empty. This file is a deliberate user-requested copy and is not removed.
func SignToFile(ctx context.Context, signer Signer, role, publicKeyPath, output string, stdout io.Writer) (string, error) {
	path, err := ResolvePath(publicKeyPath)
	if err != nil {
		return "", err
	}
	publicKey, err := ReadPublicKey(path)
	if err != nil {
		return "", err
	}
	cert, err := signer.Sign(ctx, role, publicKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign public key: %w", err)
	}

	if output == "" {
		if _, err := io.WriteString(stdout, cert); err != nil {
			return "", err
		}
		return cert, nil
	}

	f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", &ArtifactError{Op: "write", Path: output, Err: err}
	}
	if _, err := f.WriteString(cert); err != nil {
		f.Close()
		return "", &ArtifactError{Op: "write", Path: output, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &ArtifactError{Op: "write", Path: output, Err: err}
	}
	return cert, nil
}
