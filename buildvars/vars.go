// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars contains variables injected at build time.
package buildvars

// ModulePath is the import path of the vssh module.
const ModulePath = "github.com/toeirei/vssh"

// Version is set at link time via `-ldflags -X github.com/toeirei/vssh/buildvars.Version=...`.
// It is empty for local and development builds.
var Version string

// VersionOrDefault returns Version if set, otherwise def.
func VersionOrDefault(def string) string {
	if len(Version) > 0 {
		return Version
	}
	return def
}
