// Package main is the entry point for the ctforge CLI.
//
// ctforge is an interactive wizard for provisioning LXC containers on
// a Proxmox VE node. It validates operator input against the live
// platform state, negotiates NAS storage bind mounts, and drives the
// pct/pvesm/pvesh tooling to create and start the container.
//
// Commands: create, destroy, doctor, version.
//
// For detailed usage information, run:
//
//	ctforge --help
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ctforge/ctforge/cmd/ctforge/commands"
	"github.com/ctforge/ctforge/internal/pve"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Platform command failures carry the underlying exit code.
		var cmdErr *pve.CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
			os.Exit(cmdErr.ExitCode)
		}
		os.Exit(1)
	}
}
