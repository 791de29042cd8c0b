// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveKeys_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	sshDir := filepath.Join(home, ".ssh")
	if err := os.MkdirAll(sshDir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	priv, pub := writeKeyPair(t, sshDir, "id_rsa")

	keys, err := ResolveKeys("", "")
	if err != nil {
		t.Fatalf("ResolveKeys: %v", err)
	}
	wantPriv, _ := filepath.EvalSymlinks(priv)
	wantPub, _ := filepath.EvalSymlinks(pub)
	if keys.Private != wantPriv || keys.Public != wantPub {
		t.Fatalf("unexpected keys %+v", keys)
	}
}

func TestResolveKeys_PublicDefaultsToPrivatePlusPub(t *testing.T) {
	dir := t.TempDir()
	priv, pub := writeKeyPair(t, dir, "work")

	keys, err := ResolveKeys(priv, "")
	if err != nil {
		t.Fatalf("ResolveKeys: %v", err)
	}
	wantPub, _ := filepath.EvalSymlinks(pub)
	if keys.Public != wantPub {
		t.Fatalf("expected %s, got %s", wantPub, keys.Public)
	}
}

func TestResolveKeys_MissingPublicKey(t *testing.T) {
	dir := t.TempDir()
	priv, pub := writeKeyPair(t, dir, "work")
	if err := os.Remove(pub); err != nil {
		t.Fatalf("remove: %v", err)
	}

	_, err := ResolveKeys(priv, "")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	var kpe *KeyPathError
	if !errors.As(err, &kpe) || kpe.Path != pub {
		t.Fatalf("expected KeyPathError for %s, got %v", pub, err)
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestResolvePath_Symlink(t *testing.T) {
	dir := t.TempDir()
	priv, _ := writeKeyPair(t, dir, "real")
	link := filepath.Join(dir, "link")
	if err := os.Symlink(priv, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := ResolvePath(link)
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	want, _ := filepath.EvalSymlinks(priv)
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestResolvePath_Relative(t *testing.T) {
	dir := t.TempDir()
	writeKeyPair(t, dir, "rel")
	t.Chdir(dir)

	got, err := ResolvePath("rel")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if !filepath.IsAbs(got) || filepath.Base(got) != "rel" {
		t.Fatalf("expected absolute path to rel, got %s", got)
	}
}

func TestReadPublicKey_NotAKeyStillReturned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.pub")
	if err := os.WriteFile(path, []byte("not a key\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadPublicKey(path)
	if err != nil {
		t.Fatalf("ReadPublicKey: %v", err)
	}
	if got != "not a key\n" {
		t.Fatalf("unexpected contents %q", got)
	}
}
