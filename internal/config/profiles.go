// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"fmt"
	"maps"
	"os"
	"os/user"
	"slices"
)

// currentUsername is swapped in tests.
var currentUsername = func() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

// ProfilePatch carries a partial profile update. Nil fields are left as
// they are.
type ProfilePatch struct {
	Username   *string
	Address    *string
	Role       *string
	PrivateKey *string
	PublicKey  *string
	Options    *string
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Username == nil && p.Address == nil && p.Role == nil &&
		p.PrivateKey == nil && p.PublicKey == nil && p.Options == nil
}

// Apply returns prof with every set field of the patch overwritten.
func (p ProfilePatch) Apply(prof Profile) Profile {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&prof.Username, p.Username)
	set(&prof.Address, p.Address)
	set(&prof.Role, p.Role)
	set(&prof.PrivateKey, p.PrivateKey)
	set(&prof.PublicKey, p.PublicKey)
	set(&prof.Options, p.Options)
	return prof
}

// GetProfile returns the named profile.
func (c *Config) GetProfile(name string) (Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	return p, nil
}

// ProfileNames returns the profile names sorted alphabetically.
func (c *Config) ProfileNames() []string {
	return slices.Sorted(maps.Keys(c.Profiles))
}

// CreateProfile adds a profile and persists the configuration. An empty
// username defaults to the local OS user.
func (c *Config) CreateProfile(name string, p Profile) error {
	if _, ok := c.Profiles[name]; ok {
		return fmt.Errorf("%w: %q", ErrProfileExists, name)
	}
	if p.Username == "" {
		p.Username = currentUsername()
	}
	return c.commit(func(next *Config) {
		next.Profiles[name] = p
	})
}

// UpdateProfile merges patch into the named profile and persists the
// configuration.
func (c *Config) UpdateProfile(name string, patch ProfilePatch) error {
	current, ok := c.Profiles[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	return c.commit(func(next *Config) {
		next.Profiles[name] = patch.Apply(current)
	})
}

// DeleteProfile removes the named profile if present and persists the
// configuration. Deleting an unknown name is not an error.
func (c *Config) DeleteProfile(name string) error {
	return c.commit(func(next *Config) {
		delete(next.Profiles, name)
	})
}

// commit applies mutate to a copy, saves the copy and only then adopts it,
// so a failed write leaves c as it was.
func (c *Config) commit(mutate func(next *Config)) error {
	next := c.clone()
	mutate(next)
	if err := next.Save(); err != nil {
		return err
	}
	*c = *next
	return nil
}
