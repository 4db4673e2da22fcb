package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "ctforge", cmd.Use)
	assert.Equal(t, "Provision LXC containers on Proxmox VE interactively", cmd.Short)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	expectedSubcommands := []string{
		"create",
		"destroy",
		"doctor",
		"version",
	}

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}

	for _, expected := range expectedSubcommands {
		assert.True(t, subcommands[expected], "Expected subcommand %s not found", expected)
	}
}

func TestCreate_Flags(t *testing.T) {
	cmd := Create()

	for _, flag := range []string{"config", "manifest", "plain", "dry-run"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "Expected flag %s", flag)
	}
}

func TestDestroy_RequiresArgument(t *testing.T) {
	cmd := Destroy()
	err := cmd.Args(cmd, []string{})
	require.Error(t, err)

	err = cmd.Args(cmd, []string{"150"})
	require.NoError(t, err)
}
