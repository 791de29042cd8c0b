// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/toeirei/vssh/internal/config"
)

func TestProfiles_CreateReadListDelete(t *testing.T) {
	path := writeConfig(t, "https://vault.example:8200", nil)

	_, stderr, err := executeCommand(t, "profiles", "create", "db", "--config", path,
		"--username", "alice", "--address", "db1.example", "--role", "dev", "--options", "-p 2222")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(stderr, "Profile db created") {
		t.Fatalf("missing success line: %q", stderr)
	}

	out, _, err := executeCommand(t, "profiles", "read", "db", "--config", path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, want := range []string{"alice", "db1.example", "dev", "-p 2222"} {
		if !strings.Contains(out, want) {
			t.Fatalf("read output missing %q: %q", want, out)
		}
	}

	if _, _, err := executeCommand(t, "profiles", "create", "web", "--config", path, "-a", "web1", "-r", "ops", "-u", "bob"); err != nil {
		t.Fatalf("create web: %v", err)
	}
	out, _, err = executeCommand(t, "profiles", "list", "--config", path)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out != "db\nweb\n" {
		t.Fatalf("unexpected names %q", out)
	}

	if _, _, err := executeCommand(t, "profiles", "delete", "db", "--config", path); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := executeCommand(t, "profiles", "delete", "db", "--config", path); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	cfg, err := config.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !slices.Equal(cfg.ProfileNames(), []string{"web"}) {
		t.Fatalf("unexpected profiles %v", cfg.ProfileNames())
	}
}

func TestProfiles_CreateDuplicate(t *testing.T) {
	path := writeConfig(t, "https://vault.example:8200", map[string]config.Profile{
		"db": {Username: "alice", Address: "db1", Role: "dev"},
	})
	_, _, err := executeCommand(t, "profiles", "create", "db", "--config", path, "-a", "db2", "-r", "dev")
	if !errors.Is(err, config.ErrProfileExists) {
		t.Fatalf("expected ErrProfileExists, got %v", err)
	}
}

func TestProfiles_UpdateIsPartial(t *testing.T) {
	path := writeConfig(t, "https://vault.example:8200", map[string]config.Profile{
		"db": {Username: "alice", Address: "db1", Role: "dev", PrivateKey: "/k/id", Options: "-v"},
	})

	if _, _, err := executeCommand(t, "profiles", "update", "db", "--config", path, "--address", "db2"); err != nil {
		t.Fatalf("update: %v", err)
	}
	cfg, err := config.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := config.Profile{Username: "alice", Address: "db2", Role: "dev", PrivateKey: "/k/id", Options: "-v"}
	if got := cfg.Profiles["db"]; got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if _, _, err := executeCommand(t, "profiles", "update", "db", "--config", path, "--options", ""); err != nil {
		t.Fatalf("update: %v", err)
	}
	cfg, _ = config.Read(path)
	if cfg.Profiles["db"].Options != "" {
		t.Fatalf("explicit empty value should clear options, got %q", cfg.Profiles["db"].Options)
	}
}

func TestProfiles_UpdateMissing(t *testing.T) {
	path := writeConfig(t, "https://vault.example:8200", nil)
	_, _, err := executeCommand(t, "profiles", "update", "ghost", "--config", path, "--role", "x")
	if !errors.Is(err, config.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfiles_UpdateMissingWithoutFlags(t *testing.T) {
	path := writeConfig(t, "https://vault.example:8200", nil)
	_, stderr, err := executeCommand(t, "profiles", "update", "ghost", "--config", path)
	if !errors.Is(err, config.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if strings.Contains(strings.ToLower(stderr), "nothing to update") {
		t.Fatalf("unknown profile reported as unchanged: %q", stderr)
	}
}

func TestProfiles_ReadMissing(t *testing.T) {
	path := writeConfig(t, "https://vault.example:8200", nil)
	_, _, err := executeCommand(t, "profiles", "read", "ghost", "--config", path)
	if !errors.Is(err, config.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfiles_Connect(t *testing.T) {
	fv := newFakeVault(t)
	priv, _ := writeKeyPair(t, t.TempDir(), "id")
	path := writeConfig(t, fv.URL, map[string]config.Profile{
		"db": {Username: "alice", Address: "db1", Role: "dev", PrivateKey: priv, Options: "-A"},
	})
	record := filepath.Join(t.TempDir(), "record")
	useHelperLauncher(t, record, 0)

	if _, _, err := executeCommand(t, "profiles", "connect", "db", "--config", path); err != nil {
		t.Fatalf("connect: %v", err)
	}
	argv, _ := readRecord(t, record)
	if argv[0] != "ssh" || argv[5] != "alice@db1" || argv[6] != "-A" {
		t.Fatalf("unexpected argv %q", argv)
	}
	fv.mu.Lock()
	defer fv.mu.Unlock()
	if !slices.Equal(fv.signedRoles, []string{"dev"}) {
		t.Fatalf("unexpected signed roles %v", fv.signedRoles)
	}
}

func TestProfiles_ConnectPicker(t *testing.T) {
	fv := newFakeVault(t)
	priv, _ := writeKeyPair(t, t.TempDir(), "id")
	path := writeConfig(t, fv.URL, map[string]config.Profile{
		"db":  {Username: "alice", Address: "db1", Role: "dev", PrivateKey: priv},
		"web": {Username: "bob", Address: "web1", Role: "ops", PrivateKey: priv},
	})
	record := filepath.Join(t.TempDir(), "record")
	useHelperLauncher(t, record, 0)

	origPick := pickProfile
	var offered []string
	pickProfile = func(names []string) (string, error) {
		offered = names
		return "web", nil
	}
	t.Cleanup(func() { pickProfile = origPick })
	setTerminal(t, true)

	if _, _, err := runRoot(t, "profiles", "connect", "--config", path, "--sftp"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !slices.Equal(offered, []string{"db", "web"}) {
		t.Fatalf("unexpected picker options %v", offered)
	}
	argv, _ := readRecord(t, record)
	if argv[0] != "sftp" || argv[5] != "bob@web1" {
		t.Fatalf("unexpected argv %q", argv)
	}
}

func TestProfiles_ConnectWithoutNameNeedsTerminal(t *testing.T) {
	fv := newFakeVault(t)
	path := writeConfig(t, fv.URL, map[string]config.Profile{
		"db": {Username: "alice", Address: "db1", Role: "dev"},
	})
	_, _, err := executeCommand(t, "profiles", "connect", "--config", path)
	if err == nil || !strings.Contains(err.Error(), "profile name required") {
		t.Fatalf("expected profile name error, got %v", err)
	}
}
