package pve

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes a platform command and returns its stdout. The
// default runner shells out; tests substitute canned output.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

// execRunner runs the command via os/exec and wraps non-zero exits in
// a CommandError carrying the invocation line and exit status.
func execRunner(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{
			Line:     strings.Join(append([]string{name}, args...), " "),
			ExitCode: -1,
			Stderr:   stderr.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return stdout.String(), cmdErr
	}
	return stdout.String(), nil
}

// CLIClient implements Client by invoking pct, pvesm and pvesh and
// parsing their column-based output.
type CLIClient struct {
	run Runner
}

// NewCLIClient creates a client backed by the host's platform binaries.
func NewCLIClient() *CLIClient {
	return &CLIClient{run: execRunner}
}

// NewCLIClientWithRunner creates a client with a custom command runner.
// Used by tests to feed canned command output through the parsers.
func NewCLIClientWithRunner(run Runner) *CLIClient {
	return &CLIClient{run: run}
}

// Ensure interface compliance.
var _ Client = (*CLIClient)(nil)

// ListContainers runs `pct list` and parses the container table.
func (c *CLIClient) ListContainers(ctx context.Context) ([]Container, error) {
	out, err := c.run(ctx, "pct", "list")
	if err != nil {
		return nil, err
	}
	return parseContainerList(out)
}

// ContainerConfig runs `pct config <id>` and parses the key/value lines.
func (c *CLIClient) ContainerConfig(ctx context.Context, id int) (map[string]string, error) {
	out, err := c.run(ctx, "pct", "config", strconv.Itoa(id))
	if err != nil {
		return nil, err
	}
	return parseKeyValues(out), nil
}

// NextID runs `pvesh get /cluster/nextid` and returns the suggested ID.
func (c *CLIClient) NextID(ctx context.Context) (int, error) {
	out, err := c.run(ctx, "pvesh", "get", "/cluster/nextid")
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("unexpected nextid output %q: %w", strings.TrimSpace(out), err)
	}
	return id, nil
}

// ListStoragePools runs `pvesm status` and parses the pool table.
func (c *CLIClient) ListStoragePools(ctx context.Context) ([]StoragePool, error) {
	out, err := c.run(ctx, "pvesm", "status")
	if err != nil {
		return nil, err
	}
	return parseStorageStatus(out)
}

// Create runs `pct create` with the assembled flag set.
func (c *CLIClient) Create(ctx context.Context, spec ContainerSpec) error {
	args := []string{
		"create", strconv.Itoa(spec.ID), spec.Template,
		"--hostname", spec.Hostname,
		"--rootfs", fmt.Sprintf("%s:%d", spec.RootfsPool, spec.DiskGiB),
		"--memory", strconv.Itoa(spec.MemoryMiB),
		"--net0", netConfig(spec),
	}
	if spec.SSHPublicKey != "" {
		args = append(args, "--ssh-public-keys", spec.SSHPublicKey)
	}
	if spec.Unprivileged {
		args = append(args, "--unprivileged", "1")
	}
	_, err := c.run(ctx, "pct", args...)
	return err
}

// netConfig renders the net0 device string for the create command.
func netConfig(spec ContainerSpec) string {
	s := fmt.Sprintf("name=eth0,bridge=%s,ip=%s/%d,gw=%s",
		spec.Bridge, spec.IPv4, spec.CIDRBits, spec.Gateway)
	if spec.VLANTag > 1 {
		s += fmt.Sprintf(",tag=%d", spec.VLANTag)
	}
	return s
}

// SetMountPoint runs `pct set <id> -mp<index> <pool>,mp=<path>`.
func (c *CLIClient) SetMountPoint(ctx context.Context, id, index int, pool, path string) error {
	_, err := c.run(ctx, "pct", "set", strconv.Itoa(id),
		fmt.Sprintf("-mp%d", index), fmt.Sprintf("%s:0,mp=%s", pool, path))
	return err
}

// Start starts the container.
func (c *CLIClient) Start(ctx context.Context, id int) error {
	_, err := c.run(ctx, "pct", "start", strconv.Itoa(id))
	return err
}

// Stop stops the container immediately.
func (c *CLIClient) Stop(ctx context.Context, id int) error {
	_, err := c.run(ctx, "pct", "stop", strconv.Itoa(id))
	return err
}

// Destroy removes the container and its configuration.
func (c *CLIClient) Destroy(ctx context.Context, id int) error {
	_, err := c.run(ctx, "pct", "destroy", strconv.Itoa(id))
	return err
}

// FreeStorage runs `pvesm free <volume>`.
func (c *CLIClient) FreeStorage(ctx context.Context, volume string) error {
	_, err := c.run(ctx, "pvesm", "free", volume)
	return err
}
