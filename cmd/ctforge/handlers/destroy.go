package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/ctforge/ctforge/internal/provisioning"
)

// confirmDestroy asks for the destructive confirmation; replaced in
// tests.
var confirmDestroy = func(ctx context.Context, id int, name string) (bool, error) {
	label := fmt.Sprintf("%d", id)
	if name != "" {
		label = fmt.Sprintf("%d (%s)", id, name)
	}
	return newPrompter().Confirm(ctx, fmt.Sprintf("Destroy container %s?", label),
		"The container and all its data are removed. This cannot be undone.", false)
}

// Destroy stops the given container if it is running and removes it
// from the node.
func Destroy(ctx context.Context, id int, force bool) error {
	client := newClient()
	observer := provisioning.NewLogObserver()

	containers, err := client.ListContainers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}

	var name string
	running := false
	found := false
	for _, c := range containers {
		if c.ID == id {
			found = true
			name = c.Name
			running = strings.EqualFold(c.Status, "running")
			break
		}
	}
	if !found {
		return fmt.Errorf("container %d does not exist", id)
	}

	if !force {
		ok, err := confirmDestroy(ctx, id, name)
		if err != nil {
			return err
		}
		if !ok {
			observer.Printf("Aborted, container %d untouched", id)
			return nil
		}
	}

	if running {
		observer.Printf("Stopping container %d...", id)
		if err := client.Stop(ctx, id); err != nil {
			return fmt.Errorf("failed to stop container %d: %w", id, err)
		}
	}

	observer.Printf("Destroying container %d...", id)
	if err := client.Destroy(ctx, id); err != nil {
		return fmt.Errorf("failed to destroy container %d: %w", id, err)
	}

	observer.Printf("Container %d removed", id)
	return nil
}
