// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import "testing"

func TestInitAndAvailableLocales(t *testing.T) {
	Init("en")
	if GetLang() != "en" {
		t.Fatalf("expected lang 'en', got %q", GetLang())
	}

	av := GetAvailableLocales()
	for _, k := range []string{"en", "de"} {
		if _, ok := av[k]; !ok {
			t.Fatalf("expected available locale %q to be present", k)
		}
	}
	if av["de"] != "Deutsch" {
		t.Fatalf("unexpected display name for de: %q", av["de"])
	}
}

func TestT_BasicAndFormatting(t *testing.T) {
	Init("en")

	if got := T("sign.signed"); got != "Public key signed" {
		t.Fatalf("unexpected translation %q", got)
	}
	if got := T("profiles.created", "prod"); got != "Profile prod created" {
		t.Fatalf("unexpected formatted translation %q", got)
	}

	SetLang("de")
	defer SetLang("en")
	if GetLang() != "de" {
		t.Fatalf("expected lang 'de', got %q", GetLang())
	}
	if got := T("profiles.deleted", "prod"); got != "Profil prod gelöscht" {
		t.Fatalf("unexpected German translation %q", got)
	}
}

func TestT_MissingIDAndUnknownLanguage(t *testing.T) {
	Init("xx")
	defer Init("en")
	if got := T("sign.signed"); got != "Public key signed" {
		t.Fatalf("expected English fallback, got %q", got)
	}
	if got := T("no.such.message"); got != "no.such.message" {
		t.Fatalf("expected ID fallback, got %q", got)
	}
}
