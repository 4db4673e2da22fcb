package handlers

import (
	"context"
	"fmt"

	"github.com/ctforge/ctforge/internal/pve"
	"github.com/ctforge/ctforge/internal/ui/tui"
	"github.com/ctforge/ctforge/internal/util/prerequisites"
)

// moduleLoaded reports kernel module state; replaced in tests.
var moduleLoaded = prerequisites.ModuleLoaded

// Doctor reports the state of the host environment: tool availability,
// kernel module state and the storage pools the platform can see. With
// fix set, missing kernel modules are loaded and persisted.
func Doctor(ctx context.Context, fix bool) error {
	checks := checkTools()

	modules := make(map[string]bool, len(prerequisites.RequiredModules))
	for _, name := range prerequisites.RequiredModules {
		loaded, err := moduleLoaded(name)
		if err != nil {
			return fmt.Errorf("failed to inspect kernel modules: %w", err)
		}
		modules[name] = loaded
	}

	if fix {
		if err := ensureModules(ctx); err != nil {
			return fmt.Errorf("failed to prepare kernel modules: %w", err)
		}
		for name := range modules {
			modules[name] = true
		}
	}

	// Pool inventory is informational; without the platform tools the
	// query cannot work, so skip it rather than fail the report.
	var pools []pve.StoragePool
	if !checks.HasErrors() {
		var err error
		pools, err = newClient().ListStoragePools(ctx)
		if err != nil {
			return fmt.Errorf("failed to list storage pools: %w", err)
		}
	}

	fmt.Println(tui.RenderDoctor(checks, modules, pools))

	return checks.Error()
}
