package commands

import (
	"github.com/spf13/cobra"

	"github.com/ctforge/ctforge/cmd/ctforge/handlers"
)

// Doctor returns the doctor command.
//
// Doctor reports whether the host carries everything a provisioning
// run needs: the platform binaries on PATH, the probe tooling, and the
// kernel modules bind mounts rely on. With --fix it also loads and
// persists missing kernel modules.
func Doctor() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the host environment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), fix)
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Load and persist missing kernel modules")

	return cmd
}
