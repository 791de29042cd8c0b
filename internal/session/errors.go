// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrKeyNotFound is matched by a *KeyPathError for a key file that does not exist.
var ErrKeyNotFound = errors.New("file does not exist")

// KeyPathError reports a key path that could not be resolved.
type KeyPathError struct {
	Path string
	Err  error
}

func (e *KeyPathError) Error() string {
	if errors.Is(e.Err, ErrKeyNotFound) {
		return fmt.Sprintf("file '%s' does not exist", e.Path)
	}
	return fmt.Sprintf("failed to convert relative to absolute path '%s': %v", e.Path, e.Err)
}

func (e *KeyPathError) Unwrap() error { return e.Err }

// ArtifactError is a failure to create or fill the certificate artifact.
type ArtifactError struct {
	Op   string
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	if errors.Is(e.Err, fs.ErrPermission) {
		return fmt.Sprintf("cannot %s signed certificate: permission denied", e.Op)
	}
	return fmt.Sprintf("failed to %s signed certificate %s: %v", e.Op, e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

// CleanupError reports that the certificate artifact could not be removed.
// The certificate is left on disk when this is returned.
type CleanupError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string {
	if e.PermissionDenied() {
		return fmt.Sprintf("cannot remove signed certificate %s: permission denied", e.Path)
	}
	return fmt.Sprintf("failed to remove signed certificate %s: %v", e.Path, e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }

// PermissionDenied reports whether removal was refused by the filesystem.
func (e *CleanupError) PermissionDenied() bool {
	return errors.Is(e.Err, fs.ErrPermission)
}

// LaunchError reports that the session program could not be started.
type LaunchError struct {
	Program string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to start %s command: %v", e.Program, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }
