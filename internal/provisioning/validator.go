package provisioning

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ctforge/ctforge/internal/pve"
	"github.com/ctforge/ctforge/internal/util/netutil"
)

// hostnameRegex validates hostname format: 1-63 lowercase alphanumeric
// with hyphens, starting and ending alphanumeric.
var hostnameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

// Facts is the snapshot of live platform state the validator checks
// candidates against. Gathering it is read-only and idempotent, so a
// single snapshot serves a whole prompting session: re-validating an
// unchanged accepted value yields the same decision.
type Facts struct {
	// Containers is the live container registry.
	Containers []pve.Container

	// BoundIPs maps each IPv4 address assigned to a container
	// interface to the owning container ID.
	BoundIPs map[string]int

	// HostGateway is the host's default-route gateway, empty when no
	// default route was derivable.
	HostGateway string

	// ExpectedVLAN is the VLAN tag the node's addressing convention
	// expects as the third octet.
	ExpectedVLAN int
}

// GatherFacts queries the container registry and each container's
// network configuration.
func GatherFacts(ctx context.Context, registry pve.ContainerRegistry, hostGateway string, expectedVLAN int) (*Facts, error) {
	containers, err := registry.ListContainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	bound := make(map[string]int)
	for _, ct := range containers {
		cfg, err := registry.ContainerConfig(ctx, ct.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read config of container %d: %w", ct.ID, err)
		}
		for _, addr := range pve.NetAddresses(cfg) {
			bound[addr] = ct.ID
		}
	}

	return &Facts{
		Containers:   containers,
		BoundIPs:     bound,
		HostGateway:  hostGateway,
		ExpectedVLAN: expectedVLAN,
	}, nil
}

// HostnameTaken reports whether a container already carries the name,
// compared case-insensitively.
func (f *Facts) HostnameTaken(name string) (int, bool) {
	for _, ct := range f.Containers {
		if strings.EqualFold(ct.Name, name) {
			return ct.ID, true
		}
	}
	return 0, false
}

// CTIDTaken reports whether a container already uses the ID.
func (f *Facts) CTIDTaken(id int) bool {
	for _, ct := range f.Containers {
		if ct.ID == id {
			return true
		}
	}
	return false
}

// ValidateHostname normalizes the candidate to lower case and rejects
// registry collisions.
func (f *Facts) ValidateHostname(candidate string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(candidate))
	if name == "" {
		return "", &MalformedInputError{Kind: KindHostname, Value: candidate, Reason: "hostname is empty"}
	}
	if !hostnameRegex.MatchString(name) {
		return "", &MalformedInputError{Kind: KindHostname, Value: candidate, Reason: "hostname must be 1-63 alphanumeric characters or hyphens, starting and ending alphanumeric"}
	}
	if id, taken := f.HostnameTaken(name); taken {
		return "", &ResourceInUseError{Kind: KindHostname, Value: name, Holder: fmt.Sprintf("container %d", id)}
	}
	return name, nil
}

// ValidateIPv4Syntax accepts exactly four dot-separated decimal
// integers each in [0,255].
func ValidateIPv4Syntax(candidate string) error {
	octets := strings.Split(candidate, ".")
	if len(octets) != 4 {
		return &MalformedInputError{Kind: KindIPv4, Value: candidate, Reason: "expected four dot-separated octets"}
	}
	for _, o := range octets {
		if o == "" {
			return &MalformedInputError{Kind: KindIPv4, Value: candidate, Reason: "empty octet"}
		}
		// ParseUint rejects signs, so nothing but digits reaches the
		// net0 string.
		if _, err := strconv.ParseUint(o, 10, 8); err != nil {
			return &MalformedInputError{Kind: KindIPv4, Value: candidate, Reason: fmt.Sprintf("octet %q is not a number in 0-255", o)}
		}
	}
	return nil
}

func octet(addr string, index int) int {
	parts := strings.Split(addr, ".")
	if index >= len(parts) {
		return 0
	}
	n, _ := strconv.Atoi(parts[index])
	return n
}

// ThirdOctet returns the VLAN-carrying octet of a validated address.
func ThirdOctet(addr string) int {
	return octet(addr, 2)
}

// LastOctet returns the final octet of a validated address.
func LastOctet(addr string) int {
	return octet(addr, 3)
}

// EffectiveVLANTag derives the VLAN tag from a validated address: the
// third octet, with 0 resolving to the untagged default 1.
func EffectiveVLANTag(addr string) int {
	if tag := ThirdOctet(addr); tag > 0 {
		return tag
	}
	return 1
}

// IPClassification is the validator's verdict on a syntactically valid
// free address.
type IPClassification int

const (
	// IPAcceptable means the address is free and on the expected VLAN.
	IPAcceptable IPClassification = iota
	// IPOffVLAN means the address is free but its third octet differs
	// from the expected VLAN tag; acceptance needs the tier-2 double
	// confirmation.
	IPOffVLAN
)

// ClassifyIPv4 applies the address decision table. Conditions are
// evaluated in strict priority order, first match wins:
// malformed, allocated to a container, answering a probe, on-VLAN
// accept, off-VLAN confirm.
func (f *Facts) ClassifyIPv4(ctx context.Context, candidate string, prober netutil.Prober) (IPClassification, error) {
	if err := ValidateIPv4Syntax(candidate); err != nil {
		return 0, err
	}
	if id, ok := f.BoundIPs[candidate]; ok {
		return 0, &ResourceInUseError{Kind: KindIPv4, Value: candidate, Holder: fmt.Sprintf("container %d", id)}
	}
	if prober.Reachable(ctx, candidate) {
		return 0, &ResourceInUseError{Kind: KindIPv4, Value: candidate, Holder: "a live host"}
	}
	if ThirdOctet(candidate) == f.ExpectedVLAN {
		return IPAcceptable, nil
	}
	return IPOffVLAN, nil
}

// ValidateGateway accepts a gateway that answers the probe. A probe
// failure is forgiven only when the candidate is the host's own
// default-route gateway or shares its first three octets; anything
// else is Unreachable and forces manual re-entry.
func (f *Facts) ValidateGateway(ctx context.Context, candidate string, prober netutil.Prober) error {
	if err := ValidateIPv4Syntax(candidate); err != nil {
		return &MalformedInputError{Kind: KindGateway, Value: candidate, Reason: "expected a dotted-quad address"}
	}
	if prober.Reachable(ctx, candidate) {
		return nil
	}
	if f.HostGateway != "" && (candidate == f.HostGateway || netutil.SamePrefix24(candidate, f.HostGateway)) {
		return nil
	}
	return &UnreachableError{Kind: KindGateway, Value: candidate}
}

// DeriveCTID computes the default container ID from a validated
// address: the last octet, lifted by 100 when below the platform's
// floor of 100.
func DeriveCTID(addr string) int {
	id := LastOctet(addr)
	if id < 100 {
		id += 100
	}
	return id
}

// ResolveCTID accepts the candidate when unused; on collision it asks
// the platform for the next free ID and retries exactly once. A second
// collision fails the loop iteration.
func (f *Facts) ResolveCTID(ctx context.Context, registry pve.ContainerRegistry, candidate int) (int, error) {
	if candidate < 100 {
		return 0, &MalformedInputError{Kind: KindID, Value: strconv.Itoa(candidate), Reason: "container IDs start at 100"}
	}
	if !f.CTIDTaken(candidate) {
		return candidate, nil
	}

	next, err := registry.NextID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query next free ID: %w", err)
	}
	if !f.CTIDTaken(next) {
		return next, nil
	}
	return 0, &ResourceInUseError{Kind: KindID, Value: strconv.Itoa(candidate), Holder: "existing containers (next-free-ID also collided)"}
}
