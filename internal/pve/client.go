// Package pve provides a typed adapter over the Proxmox VE container
// tooling (pct, pvesm, pvesh). All access to the platform goes through
// the Client interface so the text parsing stays in one place and the
// rest of the wizard can be tested against a mock.
package pve

import (
	"context"
)

// Container is one row of the platform's container registry.
type Container struct {
	ID     int
	Status string
	Name   string
}

// StoragePool is one row of the platform's storage status listing.
type StoragePool struct {
	Name     string
	Type     string
	Active   bool
	TotalKiB int64
	UsedKiB  int64
	AvailKiB int64
}

// ContainerSpec holds everything needed to issue the create command.
type ContainerSpec struct {
	ID           int
	Hostname     string
	Template     string // OS template volid, e.g. local:vztmpl/debian-12-standard_12.7-1_amd64.tar.zst
	RootfsPool   string
	DiskGiB      int
	MemoryMiB    int
	IPv4         string
	CIDRBits     int
	Gateway      string
	Bridge       string
	VLANTag      int
	SSHPublicKey string
	Unprivileged bool
}

// ContainerRegistry exposes the read-only registry queries the input
// validator needs. All methods are idempotent.
type ContainerRegistry interface {
	// ListContainers returns every container known to the local node.
	ListContainers(ctx context.Context) ([]Container, error)

	// ContainerConfig returns the raw key/value configuration of a
	// container (pct config output).
	ContainerConfig(ctx context.Context, id int) (map[string]string, error)

	// NextID asks the cluster for the next free container/VM ID.
	NextID(ctx context.Context) (int, error)
}

// StorageManager exposes the storage pool queries and mutations.
type StorageManager interface {
	// ListStoragePools returns every storage pool visible on the node.
	ListStoragePools(ctx context.Context) ([]StoragePool, error)

	// FreeStorage releases an allocated volume (pvesm free).
	FreeStorage(ctx context.Context, volume string) error
}

// ContainerManager exposes the container lifecycle mutations.
type ContainerManager interface {
	// Create creates a new container from the spec.
	Create(ctx context.Context, spec ContainerSpec) error

	// SetMountPoint binds a host pool to a path inside the container
	// as mount point mp<index>.
	SetMountPoint(ctx context.Context, id, index int, pool, path string) error

	Start(ctx context.Context, id int) error
	Stop(ctx context.Context, id int) error
	Destroy(ctx context.Context, id int) error
}

// Client is the full platform surface used by the wizard.
type Client interface {
	ContainerRegistry
	StorageManager
	ContainerManager
}
