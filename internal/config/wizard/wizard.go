package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ctforge/ctforge/internal/config"
	"github.com/ctforge/ctforge/internal/provisioning"
	"github.com/ctforge/ctforge/internal/pve"
	"github.com/ctforge/ctforge/internal/util/netutil"
)

// Printer is where the wizard reports rejection reasons and warnings
// between forms.
type Printer interface {
	Printf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
}

// Wizard drives the interactive provisioning session: each step loops
// until the operator supplies a value the validator accepts and every
// required confirmation gate passes. A declined gate re-enters the
// step's loop without committing anything to the session.
type Wizard struct {
	Prompter Prompter
	Client   pve.Client
	Prober   netutil.Prober
	Printer  Printer

	// HostGateway is the host's default-route gateway, empty when not
	// derivable.
	HostGateway string
}

// New creates a wizard.
func New(prompter Prompter, client pve.Client, prober netutil.Prober, printer Printer, hostGateway string) *Wizard {
	return &Wizard{
		Prompter:    prompter,
		Client:      client,
		Prober:      prober,
		Printer:     printer,
		HostGateway: hostGateway,
	}
}

// Run executes the full prompting sequence and returns a session ready
// for the creation pipeline. The context cancels any pending form.
func (w *Wizard) Run(ctx context.Context, cfg *config.Config, reqs []config.Requirement) (*provisioning.Session, error) {
	session := provisioning.NewSession(cfg, reqs)

	facts, err := provisioning.GatherFacts(ctx, w.Client, w.HostGateway, cfg.ExpectedVLANTag())
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot platform state: %w", err)
	}
	pools, err := w.Client.ListStoragePools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage pools: %w", err)
	}

	if err := w.selectRootfsPool(ctx, session, pools); err != nil {
		return nil, fmt.Errorf("storage location: %w", err)
	}
	if err := w.askHostname(ctx, session, facts); err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}
	if err := w.askAddress(ctx, session, facts); err != nil {
		return nil, fmt.Errorf("address: %w", err)
	}
	if err := w.askGateway(ctx, session, facts); err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	if err := w.askContainerID(ctx, session, facts); err != nil {
		return nil, fmt.Errorf("container id: %w", err)
	}
	if err := w.askDiskSize(ctx, session); err != nil {
		return nil, fmt.Errorf("disk size: %w", err)
	}
	if err := w.askMemory(ctx, session); err != nil {
		return nil, fmt.Errorf("memory: %w", err)
	}
	if err := w.negotiateMounts(ctx, session, pools); err != nil {
		return nil, fmt.Errorf("storage mounts: %w", err)
	}
	if err := w.confirmCreation(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// selectRootfsPool picks the storage pool backing the container's root
// filesystem.
func (w *Wizard) selectRootfsPool(ctx context.Context, session *provisioning.Session, pools []pve.StoragePool) error {
	var options []Option
	for _, p := range pools {
		if !p.Active {
			continue
		}
		label := fmt.Sprintf("%s (%s, %s free)", p.Name, p.Type, formatKiB(p.AvailKiB))
		// Keep the configured default pool first so it is preselected.
		if p.Name == session.Config.DefaultRootfsPool {
			options = append([]Option{{Label: label, Value: p.Name}}, options...)
		} else {
			options = append(options, Option{Label: label, Value: p.Name})
		}
	}
	if len(options) == 0 {
		return errNoPools
	}

	pool, err := w.Prompter.Select(ctx, "Root Filesystem Storage",
		"Storage pool backing the container's root disk", options)
	if err != nil {
		return err
	}
	session.RootfsPool = pool
	return nil
}

// askHostname loops until a free, well-formed hostname is accepted.
// Non-default names require a tier-1 confirmation.
func (w *Wizard) askHostname(ctx context.Context, session *provisioning.Session, facts *provisioning.Facts) error {
	for {
		candidate, err := w.Prompter.Input(ctx, "Hostname",
			"Lowercase name, unique among containers", session.Config.DefaultHostname)
		if err != nil {
			return err
		}

		name, verr := facts.ValidateHostname(candidate)
		if verr != nil {
			w.Printer.Warnf("%v", verr)
			continue
		}

		if name != session.Config.DefaultHostname {
			ok, err := w.Prompter.Confirm(ctx, "Use custom hostname?",
				fmt.Sprintf("%q differs from the default %q.", name, session.Config.DefaultHostname), true)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			session.CustomHostname = true
		}

		session.Hostname = name
		return nil
	}
}

// askAddress loops until a free IPv4 address is accepted. Off-VLAN
// addresses require the tier-2 double confirmation; the effective VLAN
// tag is recorded alongside the address.
func (w *Wizard) askAddress(ctx context.Context, session *provisioning.Session, facts *provisioning.Facts) error {
	for {
		candidate, err := w.Prompter.Input(ctx, "IPv4 Address",
			"Static address for the container's first interface", session.Config.DefaultIPv4)
		if err != nil {
			return err
		}

		class, verr := facts.ClassifyIPv4(ctx, candidate, w.Prober)
		if verr != nil {
			w.Printer.Warnf("%v", verr)
			continue
		}

		tag := provisioning.EffectiveVLANTag(candidate)
		if class == provisioning.IPOffVLAN {
			vlanReady, err := w.Prompter.Confirm(ctx, "Is your network VLAN-ready?",
				fmt.Sprintf("The address implies VLAN %d but this node expects VLAN %d. Your switching must carry the tag.", tag, facts.ExpectedVLAN), false)
			if err != nil {
				return err
			}
			if !vlanReady {
				continue
			}
			accept, err := w.Prompter.Confirm(ctx, "Accept this address anyway?",
				fmt.Sprintf("%s will be tagged VLAN %d.", candidate, tag), false)
			if err != nil {
				return err
			}
			if !accept {
				continue
			}
		}

		session.IPv4 = candidate
		session.VLANTag = tag
		return nil
	}
}

// askGateway loops until a reachable (or host-derived) gateway is
// accepted. There is no silent fallback: an unreachable candidate just
// re-prompts.
func (w *Wizard) askGateway(ctx context.Context, session *provisioning.Session, facts *provisioning.Facts) error {
	def := deriveGateway(session.IPv4, facts.HostGateway)
	for {
		candidate, err := w.Prompter.Input(ctx, "Gateway",
			"Default gateway for the container", def)
		if err != nil {
			return err
		}

		if verr := facts.ValidateGateway(ctx, candidate, w.Prober); verr != nil {
			w.Printer.Warnf("%v; enter a reachable gateway", verr)
			continue
		}

		session.Gateway = candidate
		return nil
	}
}

// deriveGateway proposes a default: the host's own gateway when it
// shares the address's subnet, otherwise .1 in the address's /24.
func deriveGateway(addr, hostGateway string) string {
	if hostGateway != "" && netutil.SamePrefix24(addr, hostGateway) {
		return hostGateway
	}
	if i := strings.LastIndex(addr, "."); i > 0 {
		return addr[:i] + ".1"
	}
	return hostGateway
}

// askContainerID resolves the container ID: derived from the address,
// falling back once to the platform's suggestion, then to manual entry.
func (w *Wizard) askContainerID(ctx context.Context, session *provisioning.Session, facts *provisioning.Facts) error {
	candidate := provisioning.DeriveCTID(session.IPv4)
	for {
		id, verr := facts.ResolveCTID(ctx, w.Client, candidate)
		if verr == nil {
			if id != candidate {
				ok, err := w.Prompter.Confirm(ctx, fmt.Sprintf("Use platform-suggested ID %d?", id),
					fmt.Sprintf("The derived ID %d is already taken.", candidate), true)
				if err != nil {
					return err
				}
				if !ok {
					candidate, err = w.inputContainerID(ctx, candidate)
					if err != nil {
						return err
					}
					continue
				}
			}
			session.CTID = id
			return nil
		}

		w.Printer.Warnf("%v", verr)
		var err error
		candidate, err = w.inputContainerID(ctx, candidate)
		if err != nil {
			return err
		}
	}
}

// inputContainerID prompts for a manual ID until it parses.
func (w *Wizard) inputContainerID(ctx context.Context, def int) (int, error) {
	for {
		s, err := w.Prompter.Input(ctx, "Container ID",
			"Numeric container ID, 100 or higher", strconv.Itoa(def))
		if err != nil {
			return 0, err
		}
		id, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || id < 100 {
			w.Printer.Warnf("%v", errIDInvalid)
			continue
		}
		return id, nil
	}
}

// askDiskSize loops until a valid root disk size is entered.
func (w *Wizard) askDiskSize(ctx context.Context, session *provisioning.Session) error {
	for {
		s, err := w.Prompter.Input(ctx, "Disk Size (GiB)",
			"Root filesystem size", strconv.Itoa(session.Config.DefaultDiskGiB))
		if err != nil {
			return err
		}
		n, perr := strconv.Atoi(strings.TrimSpace(s))
		if perr != nil || n < 1 {
			w.Printer.Warnf("%v", errDiskInvalid)
			continue
		}
		session.DiskGiB = n
		return nil
	}
}

// askMemory loops until a valid memory size is entered.
func (w *Wizard) askMemory(ctx context.Context, session *provisioning.Session) error {
	for {
		s, err := w.Prompter.Input(ctx, "Memory (MiB)",
			"RAM assigned to the container", strconv.Itoa(session.Config.DefaultMemoryMiB))
		if err != nil {
			return err
		}
		n, perr := strconv.Atoi(strings.TrimSpace(s))
		if perr != nil || n < 16 {
			w.Printer.Warnf("%v", errMemoryInvalid)
			continue
		}
		session.MemoryMiB = n
		return nil
	}
}

// negotiateMounts reconciles the required storage roles against the
// live pools: auto-detection with bulk accept first, exhaustive manual
// assignment as the fallback. Coverage is all-or-nothing; incomplete
// coverage after manual assignment aborts the run.
func (w *Wizard) negotiateMounts(ctx context.Context, session *provisioning.Session, pools []pve.StoragePool) error {
	required := config.RequiredRoles(session.Requirements)
	if len(required) == 0 {
		return nil
	}

	negotiator := provisioning.NewNegotiator(session.Config)
	assignment, missing := negotiator.AutoDetect(session.Requirements, pools)

	if len(missing) == 0 {
		var summary strings.Builder
		for _, req := range required {
			fmt.Fprintf(&summary, "%s -> %s (%s)\n", assignment[req.Role], provisioning.MountPath(req.Role), req.Description)
		}
		ok, err := w.Prompter.Confirm(ctx, "Accept detected storage mapping?", summary.String(), true)
		if err != nil {
			return err
		}
		if ok {
			session.Mounts = provisioning.BuildMounts(session.Requirements, assignment)
			return nil
		}
	} else {
		for _, req := range missing {
			w.Printer.Warnf("no pool auto-detected for role %q (%s)", req.Role, req.Description)
		}
	}

	manual, err := w.assignManually(ctx, session, negotiator.CandidatePools(pools))
	if err != nil {
		return err
	}
	if err := provisioning.CheckCoverage(session.Requirements, manual); err != nil {
		return err
	}
	session.Mounts = provisioning.BuildMounts(session.Requirements, manual)
	return nil
}

// assignManually offers every candidate pool in turn and asks the
// operator to pick a role for it, with a confirmation per pick. A
// declined confirmation re-offers the same pool.
func (w *Wizard) assignManually(ctx context.Context, session *provisioning.Session, candidates []pve.StoragePool) (map[string]string, error) {
	required := config.RequiredRoles(session.Requirements)
	assignment := make(map[string]string)

	for i := 0; i < len(candidates); {
		pool := candidates[i]

		var options []Option
		byRole := make(map[string]config.Requirement)
		for _, req := range required {
			if assignment[req.Role] != "" {
				continue
			}
			options = append(options, Option{
				Label: fmt.Sprintf("%s - %s", req.Role, req.Description),
				Value: req.Role,
			})
			byRole[req.Role] = req
		}
		if len(options) == 0 {
			break
		}
		options = append(options, Option{Label: "skip this pool", Value: ""})

		role, err := w.Prompter.Select(ctx, fmt.Sprintf("Role for pool %s", pool.Name),
			"Assign a required storage role to this pool", options)
		if err != nil {
			return nil, err
		}
		if role == "" {
			i++
			continue
		}

		ok, err := w.Prompter.Confirm(ctx, fmt.Sprintf("Bind %s to %s?", pool.Name, provisioning.MountPath(role)),
			byRole[role].Description, true)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		assignment[role] = pool.Name
		i++
	}
	return assignment, nil
}

// confirmCreation is the final proceed gate. Declining here is fatal.
func (w *Wizard) confirmCreation(ctx context.Context, session *provisioning.Session) error {
	var summary strings.Builder
	fmt.Fprintf(&summary, "CT %d %q: %s/%d via %s (VLAN %d), %d GiB disk on %s, %d MiB RAM",
		session.CTID, session.Hostname, session.IPv4, session.Config.CIDRBits,
		session.Gateway, session.VLANTag, session.DiskGiB, session.RootfsPool, session.MemoryMiB)
	for _, m := range session.Mounts {
		fmt.Fprintf(&summary, "\n%s -> %s", m.Pool, m.Path)
	}

	ok, err := w.Prompter.Confirm(ctx, "Create container?", summary.String(), true)
	if err != nil {
		return err
	}
	if !ok {
		return provisioning.ErrOperatorDeclined
	}
	return nil
}

// formatKiB renders a KiB count human-readably.
func formatKiB(kib int64) string {
	switch {
	case kib >= 1<<30:
		return fmt.Sprintf("%.1f TiB", float64(kib)/float64(1<<30))
	case kib >= 1<<20:
		return fmt.Sprintf("%.1f GiB", float64(kib)/float64(1<<20))
	case kib >= 1<<10:
		return fmt.Sprintf("%.1f MiB", float64(kib)/float64(1<<10))
	default:
		return fmt.Sprintf("%d KiB", kib)
	}
}
