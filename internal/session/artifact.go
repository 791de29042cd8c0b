// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/toeirei/vssh/internal/logging"
)

const artifactPattern = "vssh-cert-*"

var (
	// Registry of live artifacts so a signal can still remove them.
	activeArtifacts = make(map[string]*Artifact)
	artifactsMutex  sync.Mutex
)

// Artifact is a signed certificate materialised as a private temp file for
// the lifetime of one session.
type Artifact struct {
	path string

	mu       sync.Mutex
	released bool
}

// Acquire writes cert to a new uniquely named file in dir (the OS temp dir
// when empty) and registers it for signal cleanup. os.CreateTemp opens the
// file exclusively with mode 0600.
func Acquire(dir, cert string) (*Artifact, error) {
	f, err := os.CreateTemp(dir, artifactPattern)
	if err != nil {
		return nil, &ArtifactError{Op: "create", Path: dir, Err: err}
	}
	a := &Artifact{path: f.Name()}
	register(a)

	if _, err := f.WriteString(cert); err != nil {
		f.Close()
		return nil, errors.Join(&ArtifactError{Op: "write", Path: a.path, Err: err}, a.Release())
	}
	if err := f.Close(); err != nil {
		return nil, errors.Join(&ArtifactError{Op: "write", Path: a.path, Err: err}, a.Release())
	}
	logging.Debugf("session: wrote certificate to %s", a.path)
	return a, nil
}

// Path is the artifact's absolute file name.
func (a *Artifact) Path() string { return a.path }

// Release removes the artifact. It is safe to call more than once. A file
// that is already gone is not an error. An artifact whose removal failed
// stays registered so CleanupAll can try again.
func (a *Artifact) Release() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return nil
	}
	if err := os.Remove(a.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &CleanupError{Path: a.path, Err: err}
	}
	a.released = true
	unregister(a.path)
	logging.Debugf("session: removed %s", a.path)
	return nil
}

// WithArtifact acquires an artifact for cert, runs fn with its path and
// releases it on every way out of fn. Release failures are joined onto the
// returned error.
func WithArtifact(dir, cert string, fn func(path string) error) (err error) {
	a, err := Acquire(dir, cert)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := a.Release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	return fn(a.Path())
}

func register(a *Artifact) {
	artifactsMutex.Lock()
	defer artifactsMutex.Unlock()
	activeArtifacts[a.path] = a
}

func unregister(path string) {
	artifactsMutex.Lock()
	defer artifactsMutex.Unlock()
	delete(activeArtifacts, path)
}

// ActiveArtifacts returns the paths of artifacts not yet released.
func ActiveArtifacts() []string {
	artifactsMutex.Lock()
	defer artifactsMutex.Unlock()
	paths := make([]string, 0, len(activeArtifacts))
	for p := range activeArtifacts {
		paths = append(paths, p)
	}
	return paths
}

// CleanupAll releases every live artifact.
func CleanupAll() error {
	artifactsMutex.Lock()
	pending := make([]*Artifact, 0, len(activeArtifacts))
	for _, a := range activeArtifacts {
		pending = append(pending, a)
	}
	artifactsMutex.Unlock()

	var errs []error
	for _, a := range pending {
		if err := a.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InstallSignalHandler removes live artifacts when the process receives
// SIGINT, SIGTERM or SIGHUP, then calls onSignal (which normally exits).
// A SIGKILL still leaks the artifact. The returned stop function uninstalls
// the handler.
func InstallSignalHandler(onSignal func(os.Signal)) (stop func()) {
	sigChan := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		select {
		case sig := <-sigChan:
			if err := CleanupAll(); err != nil {
				logging.Errorf("cleanup after %v: %v", sig, err)
			}
			if onSignal != nil {
				onSignal(sig)
			}
		case <-done:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(done)
		})
	}
}
