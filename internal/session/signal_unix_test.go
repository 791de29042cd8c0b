// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

//go:build unix

package session

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestInstallSignalHandler_RemovesArtifacts(t *testing.T) {
	dir := t.TempDir()
	if _, err := Acquire(dir, "cert"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	got := make(chan os.Signal, 1)
	stop := InstallSignalHandler(func(sig os.Signal) { got <- sig })
	defer stop()

	if err := syscall.Kill(os.Getpid(), syscall.SIGHUP); err != nil {
		t.Fatalf("kill: %v", err)
	}

	select {
	case sig := <-got:
		if sig != syscall.SIGHUP {
			t.Fatalf("expected SIGHUP, got %v", sig)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("signal handler did not run")
	}
	assertEmptyDir(t, dir)
}

func TestInstallSignalHandler_Stop(t *testing.T) {
	stop := InstallSignalHandler(func(os.Signal) { t.Errorf("handler should not run") })
	stop()
	stop()
}
