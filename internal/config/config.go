// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config owns the vssh configuration document: the Vault address,
// token, SSH CA mount path, TLS policy and the named connection profiles.
// The document is YAML (legacy JSON files decode unchanged) and every write
// replaces the file atomically.
package config

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"net/url"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const (
	DefaultServer = "https://127.0.0.1:8200"
	DefaultMount  = "ssh-ca"
)

// Config is the persisted document.
type Config struct {
	Server   string             `yaml:"server"`
	Token    string             `yaml:"token"`
	Path     string             `yaml:"path"`
	CustomCA string             `yaml:"custom_ca,omitempty"`
	TLS      bool               `yaml:"tls"`
	Profiles map[string]Profile `yaml:"profiles"`

	location string
}

// Profile is a saved connection preset.
type Profile struct {
	Username   string `yaml:"username"`
	Address    string `yaml:"address"`
	Role       string `yaml:"role"`
	PrivateKey string `yaml:"private_key,omitempty"`
	PublicKey  string `yaml:"public_key,omitempty"`
	Options    string `yaml:"options,omitempty"`
}

// Target returns the ssh destination for the profile.
func (p Profile) Target() string {
	if p.Username == "" {
		return p.Address
	}
	return p.Username + "@" + p.Address
}

// New returns a configuration bound to location with no profiles.
func New(location, server, token, mount, customCA string, tls bool) *Config {
	if mount == "" {
		mount = DefaultMount
	}
	return &Config{
		Server:   server,
		Token:    token,
		Path:     mount,
		CustomCA: customCA,
		TLS:      tls,
		Profiles: map[string]Profile{},
		location: location,
	}
}

// Location is the file the configuration was read from and is saved to.
func (c *Config) Location() string { return c.location }

// SetLocation rebinds the configuration to another file.
func (c *Config) SetLocation(path string) { c.location = path }

// ReadDefault reads the configuration from DefaultPath.
func ReadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Read(path)
}

// Read loads the configuration stored at path. A missing file yields an
// error matching ErrConfigNotFound.
func Read(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if c.Path == "" {
		c.Path = DefaultMount
	}
	if c.Profiles == nil {
		c.Profiles = map[string]Profile{}
	}
	c.location = path
	return &c, nil
}

// Save writes the configuration back to its location.
func (c *Config) Save() error {
	if c.location == "" {
		return &WriteError{Err: errors.New("configuration has no location")}
	}
	return Write(c.location, c)
}

// Write atomically replaces path with the encoded configuration. The
// document is written to a sibling temp file, synced and renamed, so a
// failure leaves the previous file untouched.
func Write(path string, c *Config) error {
	doc := *c
	if doc.Profiles == nil {
		doc.Profiles = map[string]Profile{}
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("could not create config directory %s: %w", dir, err)}
	}

	tmp, err := os.CreateTemp(dir, ".vssh-*.yaml")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	// 0600: the document holds the Vault token.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	committed = true
	return nil
}

// Validate checks, in order, the server address, the token and the custom
// CA. The first failing check is returned as a *ValidationError.
func (c *Config) Validate() error {
	if err := validateServer(c.Server); err != nil {
		return &ValidationError{Check: CheckServer, Err: err}
	}
	if c.Token == "" {
		return &ValidationError{Check: CheckToken, Err: ErrEmptyToken}
	}
	if c.CustomCA != "" {
		if _, err := c.ReadCertificate(); err != nil {
			return &ValidationError{Check: CheckCustomCA, Err: err}
		}
	}
	return nil
}

func validateServer(server string) error {
	u, err := url.Parse(server)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidURL, server)
	}
	return nil
}

// ReadCertificate reads and parses every PEM certificate in CustomCA.
func (c *Config) ReadCertificate() ([]*x509.Certificate, error) {
	raw, err := os.ReadFile(c.CustomCA)
	if err != nil {
		return nil, &CertificateError{Path: c.CustomCA, Err: &ReadError{Path: c.CustomCA, Err: err}}
	}

	var certs []*x509.Certificate
	rest := raw
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, &CertificateError{Path: c.CustomCA, Err: err}
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, &CertificateError{Path: c.CustomCA, Err: ErrNoCertificate}
	}
	return certs, nil
}

func (c *Config) clone() *Config {
	next := *c
	next.Profiles = maps.Clone(c.Profiles)
	if next.Profiles == nil {
		next.Profiles = map[string]Profile{}
	}
	return &next
}
