// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestConfig(t *testing.T) *Config {
	t.Helper()
	prev := currentUsername
	currentUsername = func() string { return "alice" }
	t.Cleanup(func() { currentUsername = prev })

	c := New(filepath.Join(t.TempDir(), "vssh.yaml"), DefaultServer, "tok", "", "", true)
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return c
}

func ptr(s string) *string { return &s }

func TestCreateProfile_DefaultsUsernameAndPersists(t *testing.T) {
	c := newTestConfig(t)
	if err := c.CreateProfile("web", Profile{Address: "10.0.0.1", Role: "admin"}); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	onDisk, err := Read(c.Location())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	p, err := onDisk.GetProfile("web")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.Username != "alice" {
		t.Fatalf("expected default username alice, got %q", p.Username)
	}
	if p.Target() != "alice@10.0.0.1" {
		t.Fatalf("unexpected target %q", p.Target())
	}
}

func TestCreateProfile_RejectsDuplicate(t *testing.T) {
	c := newTestConfig(t)
	if err := c.CreateProfile("web", Profile{Address: "a", Role: "r"}); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	err := c.CreateProfile("web", Profile{Address: "b", Role: "r"})
	if !errors.Is(err, ErrProfileExists) {
		t.Fatalf("expected ErrProfileExists, got %v", err)
	}
	if c.Profiles["web"].Address != "a" {
		t.Fatalf("duplicate create overwrote profile: %+v", c.Profiles["web"])
	}
}

func TestGetProfile_Missing(t *testing.T) {
	c := newTestConfig(t)
	if _, err := c.GetProfile("nope"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestUpdateProfile_PartialMerge(t *testing.T) {
	c := newTestConfig(t)
	orig := Profile{
		Username:   "bob",
		Address:    "old.example.com",
		Role:       "ops",
		PrivateKey: "/keys/id",
		Options:    "-v",
	}
	if err := c.CreateProfile("db", orig); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	if err := c.UpdateProfile("db", ProfilePatch{Address: ptr("new.example.com")}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	want := orig
	want.Address = "new.example.com"
	onDisk, err := Read(c.Location())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := onDisk.Profiles["db"]; !reflect.DeepEqual(got, want) {
		t.Fatalf("partial merge mismatch:\n got %+v\nwant %+v", got, want)
	}
	if got := c.Profiles["db"]; !reflect.DeepEqual(got, want) {
		t.Fatalf("in-memory mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestUpdateProfile_ExplicitEmptyClearsField(t *testing.T) {
	c := newTestConfig(t)
	if err := c.CreateProfile("db", Profile{Address: "a", Role: "r", Options: "-v"}); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if err := c.UpdateProfile("db", ProfilePatch{Options: ptr("")}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if c.Profiles["db"].Options != "" {
		t.Fatalf("expected options cleared, got %q", c.Profiles["db"].Options)
	}
}

func TestUpdateProfile_Missing(t *testing.T) {
	c := newTestConfig(t)
	if err := c.UpdateProfile("nope", ProfilePatch{Role: ptr("x")}); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestDeleteProfile_Idempotent(t *testing.T) {
	c := newTestConfig(t)
	if err := c.CreateProfile("web", Profile{Address: "a", Role: "r"}); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if err := c.DeleteProfile("web"); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}
	if err := c.DeleteProfile("web"); err != nil {
		t.Fatalf("second DeleteProfile should be a no-op, got %v", err)
	}
	if err := c.DeleteProfile("never-existed"); err != nil {
		t.Fatalf("deleting unknown profile should be a no-op, got %v", err)
	}
	onDisk, err := Read(c.Location())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(onDisk.Profiles) != 0 {
		t.Fatalf("expected no profiles on disk, got %v", onDisk.ProfileNames())
	}
}

func TestProfileNames_Sorted(t *testing.T) {
	c := newTestConfig(t)
	for _, n := range []string{"zeta", "alpha", "mid"} {
		if err := c.CreateProfile(n, Profile{Address: "a", Role: "r"}); err != nil {
			t.Fatalf("CreateProfile %s: %v", n, err)
		}
	}
	if got := c.ProfileNames(); !reflect.DeepEqual(got, []string{"alpha", "mid", "zeta"}) {
		t.Fatalf("unexpected names %v", got)
	}
}

func TestMutation_NotAdoptedWhenWriteFails(t *testing.T) {
	c := newTestConfig(t)
	// A regular file where the config directory should be makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c.SetLocation(filepath.Join(blocker, "vssh.yaml"))

	err := c.CreateProfile("web", Profile{Address: "a", Role: "r"})
	var we *WriteError
	if !errors.As(err, &we) {
		t.Fatalf("expected WriteError, got %T %v", err, err)
	}
	if _, ok := c.Profiles["web"]; ok {
		t.Fatalf("profile adopted in memory despite failed write")
	}
}

func TestProfilePatch_Empty(t *testing.T) {
	if !(ProfilePatch{}).Empty() {
		t.Fatalf("zero patch should be empty")
	}
	if (ProfilePatch{Role: ptr("")}).Empty() {
		t.Fatalf("patch with a set field should not be empty")
	}
}
