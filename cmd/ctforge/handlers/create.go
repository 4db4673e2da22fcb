// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic
// and can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/ctforge/ctforge/internal/config"
	"github.com/ctforge/ctforge/internal/config/wizard"
	"github.com/ctforge/ctforge/internal/provisioning"
	"github.com/ctforge/ctforge/internal/pve"
	"github.com/ctforge/ctforge/internal/ui/tui"
	"github.com/ctforge/ctforge/internal/util/keygen"
	"github.com/ctforge/ctforge/internal/util/netutil"
	"github.com/ctforge/ctforge/internal/util/prerequisites"
	"github.com/ctforge/ctforge/internal/util/scratch"
)

// cleanupTimeout bounds best-effort teardown after a failed or
// interrupted run.
const cleanupTimeout = 2 * time.Minute

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newClient creates the platform client.
	newClient = func() pve.Client { return pve.NewCLIClient() }

	// newPrompter creates the interactive prompter.
	newPrompter = wizard.NewPrompter

	// newProber creates the reachability prober.
	newProber = func() netutil.Prober { return netutil.NewPingProber() }

	// checkTools runs the host tool checks.
	checkTools = prerequisites.CheckAll

	// ensureModules loads and persists the required kernel modules.
	ensureModules = prerequisites.EnsureModules

	// hostGateway discovers the host's default-route gateway.
	hostGateway = netutil.DefaultGateway

	// generateKeyPair generates the container's SSH key pair.
	generateKeyPair = keygen.GenerateEd25519KeyPair

	// loadConfig loads the node configuration.
	loadConfig = config.Load

	// loadManifest loads the storage requirement manifest.
	loadManifest = config.LoadManifest

	// runCreateTUI runs the pipeline behind the dashboard.
	runCreateTUI = tui.RunCreateTUI

	// waitForPort waits for the container's sshd to answer.
	waitForPort = netutil.WaitForPort
)

// CreateOptions carries the create command's flags.
type CreateOptions struct {
	ConfigPath   string
	ManifestPath string
	Plain        bool
	DryRun       bool
}

// Create runs the interactive provisioning wizard and, unless dry-run
// is requested, drives the creation pipeline for the negotiated
// session.
//
// The workflow:
//  1. Load node configuration and the storage requirement manifest
//  2. Verify host prerequisites (platform binaries, kernel modules)
//  3. Run the wizard against the live platform state
//  4. Generate a container SSH key pair in a scratch directory
//  5. Create, start and mount the container, tearing down partial
//     state on failure
func Create(ctx context.Context, opts CreateOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.ManifestPath != "" {
		cfg.ManifestPath = opts.ManifestPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	reqs, err := loadRequirements(cfg)
	if err != nil {
		return err
	}

	checks := checkTools()
	if checks.HasErrors() {
		return checks.Error()
	}
	if err := ensureModules(ctx); err != nil {
		return fmt.Errorf("failed to prepare kernel modules: %w", err)
	}

	client := newClient()
	observer := provisioning.NewLogObserver()

	gw, err := hostGateway(ctx)
	if err != nil {
		observer.Warnf("could not determine the host gateway: %v", err)
	}

	wiz := wizard.New(newPrompter(), client, newProber(), observer, gw)
	session, err := wiz.Run(ctx, cfg, reqs)
	if err != nil {
		if errors.Is(err, provisioning.ErrOperatorDeclined) {
			observer.Printf("Aborted, nothing was created")
			return nil
		}
		return err
	}

	if opts.DryRun {
		observer.Printf("Dry run: would create container %d (%s) at %s", session.CTID, session.Hostname, session.IPv4)
		for _, m := range session.Mounts {
			observer.Printf("Dry run: would bind %s to %s", m.Pool, m.Path)
		}
		return nil
	}

	sc, err := scratch.New(cfg.ScratchDir)
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if err := sc.Remove(); err != nil {
			observer.Warnf("failed to remove scratch directory: %v", err)
		}
	}()
	session.ScratchDir = sc.Path()

	keys, err := generateKeyPair("root@" + session.Hostname)
	if err != nil {
		return fmt.Errorf("failed to generate SSH keys: %w", err)
	}
	_, pubPath, err := keys.WriteTo(sc.Path())
	if err != nil {
		return fmt.Errorf("failed to write SSH keys: %w", err)
	}
	session.SSHPublicKeyPath = pubPath

	if !opts.Plain && isInteractiveTTY() {
		err = runCreateTUI(session.Hostname, session.CTID, func(obs provisioning.Observer) error {
			return runPipeline(ctx, client, obs, session)
		})
	} else {
		err = runPipeline(ctx, client, observer, session)
	}
	if err != nil {
		return err
	}

	fmt.Println(tui.RenderSummary(session))
	return nil
}

// runPipeline executes the creation pipeline and tears down whatever a
// failed run left behind.
func runPipeline(ctx context.Context, client pve.Client, obs provisioning.Observer, session *provisioning.Session) error {
	pipeline := provisioning.NewPipeline(client, obs)
	if err := pipeline.Run(ctx, session); err != nil {
		// The run context may already be canceled; teardown gets its own.
		cleanupCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		pipeline.Cleanup(cleanupCtx, session)
		return err
	}

	obs.Printf("Waiting for SSH on %s...", session.IPv4)
	if err := waitForPort(ctx, session.IPv4, netutil.SSHPort, netutil.SSHWaitTimeout); err != nil {
		obs.Warnf("SSH not answering yet: %v", err)
		return nil
	}
	obs.Printf("SSH is up on %s", session.IPv4)
	return nil
}

// loadRequirements loads the manifest; a missing manifest file means
// no storage roles are required.
func loadRequirements(cfg *config.Config) ([]config.Requirement, error) {
	reqs, err := loadManifest(cfg.ManifestPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	return reqs, nil
}

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
