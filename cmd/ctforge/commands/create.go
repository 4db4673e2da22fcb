package commands

import (
	"github.com/spf13/cobra"

	"github.com/ctforge/ctforge/cmd/ctforge/handlers"
)

// Create returns the command for the interactive provisioning wizard.
//
// The wizard walks through hostname, address, gateway, container ID,
// sizing and storage mount negotiation, validating every answer against
// the live node state, then creates and starts the container.
//
// Optional flags:
//
//	--config, -c:   Path to node configuration YAML file
//	--manifest, -m: Path to the storage requirement manifest
//	--plain:        Log progress instead of the full-screen dashboard
//	--dry-run:      Stop after the wizard without touching the platform
func Create() *cobra.Command {
	var opts handlers.CreateOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Interactively provision a new container",
		Long: `Provision a new LXC container through an interactive wizard.

Every answer is validated against the live node: hostnames and IDs must
be free, addresses must not be bound or answering pings, and gateways
must be reachable. Required storage roles from the manifest are matched
against NAS-backed storage pools, automatically where the pool naming
convention allows it and manually otherwise.

Examples:
  # Provision using /etc/ctforge/config.yaml if present
  ctforge create

  # Provision with explicit configuration
  ctforge create -c node.yaml -m mounts.conf

  # Walk the wizard without creating anything
  ctforge create --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Create(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to node configuration file")
	cmd.Flags().StringVarP(&opts.ManifestPath, "manifest", "m", "", "Path to storage requirement manifest")
	cmd.Flags().BoolVar(&opts.Plain, "plain", false, "Plain log output instead of the dashboard")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Run the wizard without creating the container")

	return cmd
}
