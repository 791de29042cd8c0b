// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/toeirei/vssh/internal/logging"
)

// Mode selects the external program; nothing else depends on it.
type Mode int

const (
	ModeSSH Mode = iota
	ModeSFTP
)

// Program returns the executable name for the mode.
func (m Mode) Program() string {
	if m == ModeSFTP {
		return "sftp"
	}
	return "ssh"
}

func (m Mode) String() string { return m.Program() }

// ModeFor returns ModeSFTP when sftp is set.
func ModeFor(sftp bool) Mode {
	if sftp {
		return ModeSFTP
	}
	return ModeSSH
}

// Launcher runs the ssh or sftp client attached to the caller's terminal.
type Launcher struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	command func(string, ...string) *exec.Cmd
}

// NewLauncher returns a launcher bound to the process' standard streams.
func NewLauncher() *Launcher {
	return &Launcher{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		command: exec.Command,
	}
}

// SetCommand replaces the function used to build commands.
// To be used for testing only.
func (l *Launcher) SetCommand(cmd func(string, ...string) *exec.Cmd) {
	l.command = cmd
}

// BuildArgs returns the client arguments: both identities, the target and
// the extra options split on whitespace. Blank options add nothing.
func BuildArgs(privateKey, certificate, target, options string) []string {
	args := []string{"-i", privateKey, "-i", certificate, target}
	return append(args, strings.Fields(options)...)
}

// Run starts the program for mode and waits for it. A non-zero exit is
// returned as the exit code, not as an error; a program killed by a signal
// reports 128 plus the signal number, as a shell would. Failing to start is
// a *LaunchError.
func (l *Launcher) Run(mode Mode, args []string) (int, error) {
	program := mode.Program()
	cmd := l.command(program, args...)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	logging.Debugf("session: running %s %s", program, strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		return -1, &LaunchError{Program: program, Err: err}
	}

	err := cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			logging.Warnf("%s was terminated by %v", program, ws.Signal())
			return 128 + int(ws.Signal()), nil
		}
		logging.Debugf("session: %s exited with %d", program, exitErr.ExitCode())
		return exitErr.ExitCode(), nil
	default:
		return -1, fmt.Errorf("failed to wait on %s: %w", program, err)
	}
}
