// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for vssh.
//
// Usage:
//
//	go run . [command] [flags]
//	./vssh [command] [flags]
//
// See --help for the available commands.
package main

import (
	"os"
	"syscall"

	"github.com/toeirei/vssh/internal/session"
	"github.com/toeirei/vssh/ui/cli"
)

func main() {
	// Remove any live certificate before dying on SIGINT, SIGTERM or SIGHUP.
	stop := session.InstallSignalHandler(func(sig os.Signal) {
		code := 1
		if s, ok := sig.(syscall.Signal); ok {
			code = 128 + int(s)
		}
		os.Exit(code)
	})

	err := cli.Execute()
	stop()
	os.Exit(cli.Report(os.Stderr, err))
}
