// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/toeirei/vssh/internal/logging"
	"github.com/toeirei/vssh/internal/sshcert"
)

// DefaultPrivateKey is used when neither the command line nor the profile
// names a private key.
const DefaultPrivateKey = "~/.ssh/id_rsa"

// KeyPair holds absolute, existing key paths.
type KeyPair struct {
	Private string
	Public  string
}

// ResolveKeys applies the defaults (DefaultPrivateKey, "{private}.pub") and
// resolves both paths to absolute, symlink-free paths.
func ResolveKeys(privateKey, publicKey string) (KeyPair, error) {
	if privateKey == "" {
		privateKey = DefaultPrivateKey
	}
	if publicKey == "" {
		publicKey = privateKey + ".pub"
	}

	priv, err := ResolvePath(privateKey)
	if err != nil {
		return KeyPair{}, err
	}
	pub, err := ResolvePath(publicKey)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{Private: priv, Public: pub}, nil
}

// ResolvePath expands a leading "~", makes path absolute and resolves
// symlinks. A missing file yields a *KeyPathError matching ErrKeyNotFound.
func ResolvePath(path string) (string, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return "", &KeyPathError{Path: path, Err: err}
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", &KeyPathError{Path: path, Err: err}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return "", &KeyPathError{Path: path, Err: fmt.Errorf("%w: %w", ErrKeyNotFound, err)}
	}
	if err != nil {
		return "", &KeyPathError{Path: path, Err: err}
	}
	return resolved, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ReadPublicKey reads the public key to be signed. Vault decides whether it
// is acceptable; a local parse failure only logs a warning.
func ReadPublicKey(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read public key '%s': %w", path, err)
	}
	contents := string(raw)
	if _, err := sshcert.ParsePublicKey(contents); err != nil {
		logging.Warnf("%s does not look like an SSH public key: %v", path, err)
	}
	return contents, nil
}
