// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"
)

type repairableConfig struct {
	Server   *string                      `yaml:"server"`
	Token    *string                      `yaml:"token"`
	Path     *string                      `yaml:"path"`
	CustomCA *string                      `yaml:"custom_ca"`
	TLS      *bool                        `yaml:"tls"`
	Profiles map[string]repairableProfile `yaml:"profiles"`
}

type repairableProfile struct {
	Username   *string `yaml:"username"`
	Address    *string `yaml:"address"`
	Role       *string `yaml:"role"`
	PrivateKey *string `yaml:"private_key"`
	PublicKey  *string `yaml:"public_key"`
	Options    *string `yaml:"options"`
}

func valueOr[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

// Repair decodes the document at path leniently, fills every missing field
// with its default, validates the result and rewrites the file. Nothing is
// written when validation fails.
func Repair(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	var broken repairableConfig
	if err := yaml.Unmarshal(raw, &broken); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	c := New(path,
		valueOr(broken.Server, DefaultServer),
		valueOr(broken.Token, ""),
		valueOr(broken.Path, DefaultMount),
		valueOr(broken.CustomCA, ""),
		valueOr(broken.TLS, true),
	)
	for name, p := range broken.Profiles {
		c.Profiles[name] = Profile{
			Username:   valueOr(p.Username, currentUsername()),
			Address:    valueOr(p.Address, ""),
			Role:       valueOr(p.Role, ""),
			PrivateKey: valueOr(p.PrivateKey, ""),
			PublicKey:  valueOr(p.PublicKey, ""),
			Options:    valueOr(p.Options, ""),
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := c.Save(); err != nil {
		return nil, err
	}
	return c, nil
}
