package pve

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRunner captures invocations and replies from a canned table.
type recordingRunner struct {
	lines   []string
	replies map[string]string
	err     error
}

func (r *recordingRunner) run(_ context.Context, name string, args ...string) (string, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	r.lines = append(r.lines, line)
	if r.err != nil {
		return "", r.err
	}
	for prefix, out := range r.replies {
		if strings.HasPrefix(line, prefix) {
			return out, nil
		}
	}
	return "", nil
}

func TestCLIClient_ListContainers(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{replies: map[string]string{
		"pct list": containerListOutput,
	}}
	client := NewCLIClientWithRunner(runner.run)

	containers, err := client.ListContainers(context.Background())
	require.NoError(t, err)
	require.Len(t, containers, 3)
	assert.Equal(t, []string{"pct list"}, runner.lines)
}

func TestCLIClient_NextID(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{replies: map[string]string{
		"pvesh get /cluster/nextid": "107\n",
	}}
	client := NewCLIClientWithRunner(runner.run)

	id, err := client.NextID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 107, id)
}

func TestCLIClient_NextID_Garbage(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{replies: map[string]string{
		"pvesh get /cluster/nextid": "not-a-number\n",
	}}
	client := NewCLIClientWithRunner(runner.run)

	_, err := client.NextID(context.Background())
	assert.Error(t, err)
}

func TestCLIClient_Create_InvocationLine(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	client := NewCLIClientWithRunner(runner.run)

	spec := ContainerSpec{
		ID:           150,
		Hostname:     "media",
		Template:     "local:vztmpl/debian-12-standard_12.7-1_amd64.tar.zst",
		RootfsPool:   "local-lvm",
		DiskGiB:      8,
		MemoryMiB:    2048,
		IPv4:         "192.168.1.150",
		CIDRBits:     24,
		Gateway:      "192.168.1.1",
		Bridge:       "vmbr0",
		VLANTag:      1,
		SSHPublicKey: "/tmp/scratch/id_ed25519.pub",
		Unprivileged: true,
	}
	require.NoError(t, client.Create(context.Background(), spec))
	require.Len(t, runner.lines, 1)

	line := runner.lines[0]
	assert.Contains(t, line, "pct create 150 local:vztmpl/debian-12-standard_12.7-1_amd64.tar.zst")
	assert.Contains(t, line, "--hostname media")
	assert.Contains(t, line, "--rootfs local-lvm:8")
	assert.Contains(t, line, "--memory 2048")
	assert.Contains(t, line, "--net0 name=eth0,bridge=vmbr0,ip=192.168.1.150/24,gw=192.168.1.1")
	assert.Contains(t, line, "--ssh-public-keys /tmp/scratch/id_ed25519.pub")
	assert.Contains(t, line, "--unprivileged 1")
	// Tag 1 is the untagged default and must not be rendered.
	assert.NotContains(t, line, "tag=")
}

func TestCLIClient_Create_VLANTag(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	client := NewCLIClientWithRunner(runner.run)

	spec := ContainerSpec{
		ID: 150, Hostname: "media", Template: "t", RootfsPool: "local-lvm",
		DiskGiB: 8, MemoryMiB: 1024, IPv4: "192.168.20.150", CIDRBits: 24,
		Gateway: "192.168.20.1", Bridge: "vmbr0", VLANTag: 20,
	}
	require.NoError(t, client.Create(context.Background(), spec))
	assert.Contains(t, runner.lines[0], "tag=20")
}

func TestCLIClient_SetMountPoint(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	client := NewCLIClientWithRunner(runner.run)

	require.NoError(t, client.SetMountPoint(context.Background(), 150, 0, "nas-01-media", "/mnt/media"))
	assert.Equal(t, "pct set 150 -mp0 nas-01-media:0,mp=/mnt/media", runner.lines[0])
}

func TestCLIClient_Lifecycle(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	client := NewCLIClientWithRunner(runner.run)
	ctx := context.Background()

	require.NoError(t, client.Start(ctx, 150))
	require.NoError(t, client.Stop(ctx, 150))
	require.NoError(t, client.Destroy(ctx, 150))
	require.NoError(t, client.FreeStorage(ctx, "local-lvm:vm-150-disk-0"))

	assert.Equal(t, []string{
		"pct start 150",
		"pct stop 150",
		"pct destroy 150",
		"pvesm free local-lvm:vm-150-disk-0",
	}, runner.lines)
}

func TestCLIClient_CommandErrorPropagates(t *testing.T) {
	t.Parallel()

	cmdErr := &CommandError{Line: "pct list", ExitCode: 2, Stderr: "ipcc_send_rec failed"}
	runner := &recordingRunner{err: cmdErr}
	client := NewCLIClientWithRunner(runner.run)

	_, err := client.ListContainers(context.Background())
	var got *CommandError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 2, got.ExitCode)
	assert.Contains(t, got.Error(), "pct list")
	assert.Contains(t, got.Error(), "ipcc_send_rec failed")
}

func TestCommandError_Unwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("exit status 255")
	err := &CommandError{Line: "pct start 1", ExitCode: 255, Err: inner}
	assert.ErrorIs(t, err, inner)
}
