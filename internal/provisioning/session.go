package provisioning

import (
	"github.com/ctforge/ctforge/internal/config"
	"github.com/ctforge/ctforge/internal/pve"
)

// Mount pairs a host storage pool with a container-internal path for
// one required storage role.
type Mount struct {
	Role        string
	Description string
	Pool        string
	Path        string
}

// Session is the explicit state of one provisioning run, threaded
// through every wizard step and the creation pipeline. Values land
// here only after they have been validated and confirmed; a declined
// confirmation never writes to the session.
type Session struct {
	Config       *config.Config
	Requirements []config.Requirement

	// Accepted inputs.
	Hostname       string
	CustomHostname bool // flagged for explicit confirmation
	IPv4           string
	VLANTag        int
	Gateway        string
	CTID           int
	DiskGiB        int
	MemoryMiB      int
	RootfsPool     string
	Mounts         []Mount

	// Run-scoped resources.
	ScratchDir       string
	SSHPublicKeyPath string

	// Progress markers consulted by cleanup.
	Created bool
	Started bool
}

// NewSession creates a session bound to the loaded configuration and
// requirement manifest.
func NewSession(cfg *config.Config, reqs []config.Requirement) *Session {
	return &Session{Config: cfg, Requirements: reqs}
}

// Spec assembles the container creation spec from the accepted inputs.
func (s *Session) Spec() pve.ContainerSpec {
	return pve.ContainerSpec{
		ID:           s.CTID,
		Hostname:     s.Hostname,
		Template:     s.Config.Template,
		RootfsPool:   s.RootfsPool,
		DiskGiB:      s.DiskGiB,
		MemoryMiB:    s.MemoryMiB,
		IPv4:         s.IPv4,
		CIDRBits:     s.Config.CIDRBits,
		Gateway:      s.Gateway,
		Bridge:       s.Config.Bridge,
		VLANTag:      s.VLANTag,
		SSHPublicKey: s.SSHPublicKeyPath,
		Unprivileged: s.Config.Unprivileged,
	}
}
