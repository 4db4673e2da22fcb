package provisioning

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ctforge/ctforge/internal/pve"
)

// Phase keys reported to the observer, in execution order.
const (
	PhaseCreate = "create"
	PhaseStart  = "start"
	PhaseMounts = "mounts"
)

// PhaseKeys returns the pipeline phases in execution order, for
// progress displays.
func PhaseKeys() []string {
	return []string{PhaseCreate, PhaseStart, PhaseMounts}
}

// Pipeline issues the creation commands for a fully negotiated
// session. Any command failure is terminal; the caller is expected to
// run Cleanup afterwards.
type Pipeline struct {
	Client   pve.Client
	Observer Observer
}

// NewPipeline creates a pipeline.
func NewPipeline(client pve.Client, observer Observer) *Pipeline {
	return &Pipeline{Client: client, Observer: observer}
}

// Run creates, starts and mounts the container described by the
// session. Progress markers are recorded on the session so Cleanup
// knows how far the run got.
func (p *Pipeline) Run(ctx context.Context, session *Session) error {
	start := time.Now()

	if err := p.runPhase(ctx, PhaseCreate, func() error {
		if err := p.Client.Create(ctx, session.Spec()); err != nil {
			return err
		}
		session.Created = true
		return nil
	}); err != nil {
		return fmt.Errorf("create phase failed: %w", err)
	}

	if err := p.runPhase(ctx, PhaseStart, func() error {
		if err := p.Client.Start(ctx, session.CTID); err != nil {
			return err
		}
		session.Started = true
		return nil
	}); err != nil {
		return fmt.Errorf("start phase failed: %w", err)
	}

	if err := p.runPhase(ctx, PhaseMounts, func() error {
		return p.applyMounts(ctx, session)
	}); err != nil {
		return fmt.Errorf("mounts phase failed: %w", err)
	}

	p.Observer.Printf("Container %d provisioned in %v", session.CTID, time.Since(start).Round(time.Millisecond))
	return nil
}

func (p *Pipeline) runPhase(ctx context.Context, key string, fn func() error) error {
	p.Observer.Phase(key, false, nil)
	if err := fn(); err != nil {
		p.Observer.Phase(key, true, err)
		return err
	}
	p.Observer.Phase(key, true, nil)
	return nil
}

// applyMounts stages the mount list in the scratch directory and then
// applies each bind mount as mp0..mpN in manifest order.
func (p *Pipeline) applyMounts(ctx context.Context, session *Session) error {
	if len(session.Mounts) == 0 {
		return nil
	}

	if session.ScratchDir != "" {
		if err := writeMountList(session); err != nil {
			return err
		}
	}

	for i, m := range session.Mounts {
		if err := p.Client.SetMountPoint(ctx, session.CTID, i, m.Pool, m.Path); err != nil {
			return fmt.Errorf("failed to bind %s to %s: %w", m.Pool, m.Path, err)
		}
		p.Observer.Printf("Bound %s to %s (mp%d)", m.Pool, m.Path, i)
	}
	return nil
}

// writeMountList stages the negotiated mounts as role:pool:path lines.
func writeMountList(session *Session) error {
	var data []byte
	for _, m := range session.Mounts {
		data = append(data, []byte(m.Role+":"+m.Pool+":"+m.Path+"\n")...)
	}
	path := filepath.Join(session.ScratchDir, "mounts.list")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to stage mount list: %w", err)
	}
	return nil
}

// Cleanup tears down whatever the failed run left behind: stop the
// container if it was started, destroy it if it was created, and free
// its root volume if destruction failed. Best effort; every error is
// reported but none stops the remaining steps.
func (p *Pipeline) Cleanup(ctx context.Context, session *Session) {
	if !session.Created {
		return
	}

	p.Observer.Printf("Cleaning up container %d...", session.CTID)

	if session.Started {
		if err := p.Client.Stop(ctx, session.CTID); err != nil {
			p.Observer.Warnf("failed to stop container %d: %v", session.CTID, err)
		}
	}

	if err := p.Client.Destroy(ctx, session.CTID); err != nil {
		p.Observer.Warnf("failed to destroy container %d: %v", session.CTID, err)
		// Destruction normally releases the root volume; after a failed
		// destroy try to free it directly.
		volume := fmt.Sprintf("%s:vm-%d-disk-0", session.RootfsPool, session.CTID)
		if err := p.Client.FreeStorage(ctx, volume); err != nil {
			p.Observer.Warnf("failed to free %s: %v", volume, err)
		}
		return
	}

	session.Created = false
	session.Started = false
	p.Observer.Printf("Container %d removed", session.CTID)
}
