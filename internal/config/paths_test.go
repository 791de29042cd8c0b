// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestLoadSettings_DefaultsEnvAndFlags(t *testing.T) {
	t.Setenv("VSSH_LANGUAGE", "de")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().Bool("verbose", false, "")
	if err := cmd.Flags().Set("config", "/tmp/custom.yaml"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	s, err := LoadSettings[Settings](cmd, DefaultSettings)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Language != "de" {
		t.Fatalf("expected env language de, got %q", s.Language)
	}
	if s.Config != "/tmp/custom.yaml" {
		t.Fatalf("expected flag config path, got %q", s.Config)
	}
	if s.Verbose {
		t.Fatalf("verbose should default to false")
	}
}

func TestSettingsDump(t *testing.T) {
	t.Setenv("VSSH_VERBOSE", "true")

	dump, err := SettingsDump(nil, DefaultSettings)
	if err != nil {
		t.Fatalf("SettingsDump: %v", err)
	}
	if dump["language"] != "en" {
		t.Fatalf("expected default language, got %v", dump["language"])
	}
	if dump["verbose"] != "true" {
		t.Fatalf("expected env verbose, got %#v", dump["verbose"])
	}
}
