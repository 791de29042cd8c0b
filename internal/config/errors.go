// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	// Callers use it to suggest running `vssh setup`.
	ErrConfigNotFound = errors.New("configuration file does not exist")
	// ErrInvalidURL reports a server address that is not an absolute URL.
	ErrInvalidURL = errors.New("invalid server URL")
	// ErrEmptyToken reports a missing authentication token.
	ErrEmptyToken = errors.New("invalid authentication token")
	// ErrNoCertificate reports a custom CA file that contains no PEM certificate.
	ErrNoCertificate = errors.New("no PEM encoded certificate found")

	ErrProfileExists   = errors.New("profile already exists")
	ErrProfileNotFound = errors.New("profile does not exist")
)

// Validation check names reported by ValidationError.
const (
	CheckServer   = "server"
	CheckToken    = "token"
	CheckCustomCA = "custom_ca"
)

// ValidationError names the validation check that failed.
type ValidationError struct {
	Check string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration (%s): %v", e.Check, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ReadError wraps a filesystem failure while reading the configuration or
// the custom CA.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read from file %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// DecodeError wraps a document that could not be decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// WriteError wraps a failure to persist the configuration. When it is
// returned the file on disk still holds the previous document.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write configuration %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// CertificateError reports an unreadable or unparseable custom CA.
type CertificateError struct {
	Path string
	Err  error
}

func (e *CertificateError) Error() string {
	return fmt.Sprintf("failed to decode certificate %s: %v", e.Path, e.Err)
}

func (e *CertificateError) Unwrap() error { return e.Err }
