// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the vssh command line using Cobra. Commands stay
// thin: they resolve settings and the configuration document, then delegate
// to the config, vault and session packages.
package cli
