package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ctforge/ctforge/cmd/ctforge/handlers"
)

// Destroy returns the destroy command.
//
// The destroy command stops a container if it is running and removes
// it from the node. The container's root volume is released; if the
// platform fails to release it during destruction, it is freed
// explicitly afterwards.
func Destroy() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "destroy <ctid>",
		Short: "Stop and remove a container",
		Long: `Destroy stops the given container if it is running and removes it
from the node, releasing its root volume.

Example:
  ctforge destroy 150

WARNING: This operation is irreversible. All container data is lost.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			return handlers.Destroy(cmd.Context(), id, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")

	return cmd
}
