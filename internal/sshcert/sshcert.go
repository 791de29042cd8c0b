// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package sshcert inspects OpenSSH certificates returned by the Vault SSH CA.
// It never verifies signatures; Vault is the authority.
package sshcert

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

// ErrNotCertificate is returned when the text parses as a plain public key.
var ErrNotCertificate = errors.New("not an SSH certificate")

// Info is the human-relevant part of a certificate.
type Info struct {
	Type        string
	KeyID       string
	Serial      uint64
	Principals  []string
	ValidAfter  time.Time
	ValidBefore time.Time
	Forever     bool
}

// ParsePublicKey parses a public key in authorized_keys format.
func ParsePublicKey(text string) (ssh.PublicKey, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return pub, nil
}

// Parse decodes a certificate in authorized_keys format.
func Parse(text string) (*ssh.Certificate, error) {
	pub, err := ParsePublicKey(text)
	if err != nil {
		return nil, err
	}
	cert, ok := pub.(*ssh.Certificate)
	if !ok {
		return nil, ErrNotCertificate
	}
	return cert, nil
}

// Describe parses text and extracts its Info.
func Describe(text string) (Info, error) {
	cert, err := Parse(text)
	if err != nil {
		return Info{}, err
	}
	info := Info{
		Type:       "user",
		KeyID:      cert.KeyId,
		Serial:     cert.Serial,
		Principals: cert.ValidPrincipals,
		Forever:    cert.ValidBefore == ssh.CertTimeInfinity,
	}
	if cert.CertType == ssh.HostCert {
		info.Type = "host"
	}
	if cert.ValidAfter != 0 {
		info.ValidAfter = time.Unix(int64(cert.ValidAfter), 0)
	}
	if !info.Forever {
		info.ValidBefore = time.Unix(int64(cert.ValidBefore), 0)
	}
	return info, nil
}

// Expired reports whether the certificate is no longer valid at now.
func (i Info) Expired(now time.Time) bool {
	return !i.Forever && !i.ValidBefore.IsZero() && now.After(i.ValidBefore)
}

// Validity renders the validity window like ssh-keygen -L.
func (i Info) Validity() string {
	if i.Forever {
		return "forever"
	}
	return fmt.Sprintf("from %s to %s", i.ValidAfter.Format(time.RFC3339), i.ValidBefore.Format(time.RFC3339))
}

func (i Info) String() string {
	principals := "(none)"
	if len(i.Principals) > 0 {
		principals = strings.Join(i.Principals, ",")
	}
	return fmt.Sprintf("%s certificate %q serial %d for %s valid %s", i.Type, i.KeyID, i.Serial, principals, i.Validity())
}

// Certifies reports whether cert was issued for pub.
func Certifies(cert *ssh.Certificate, pub ssh.PublicKey) bool {
	return bytes.Equal(cert.Key.Marshal(), pub.Marshal())
}
