// Package netutil provides the host-side network probes the input
// validator depends on: ICMP reachability and default-route discovery.
package netutil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Prober answers liveness questions about IPv4 addresses. Probes are
// read-only and idempotent.
type Prober interface {
	// Reachable reports whether the address answers an ICMP echo.
	Reachable(ctx context.Context, addr string) bool
}

// runFunc mirrors the platform command runner so tests can substitute
// canned output.
type runFunc func(ctx context.Context, name string, args ...string) (string, error)

func execRun(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return out.String(), err
	}
	return out.String(), nil
}

// PingProber probes with the host's ping binary. Raw ICMP sockets need
// elevated capabilities; shelling out to ping keeps the probe on the
// same footing as the rest of the platform CLI surface.
type PingProber struct {
	// Timeout bounds a single probe.
	Timeout time.Duration

	run runFunc
}

// NewPingProber creates a prober with a 2 second per-probe timeout.
func NewPingProber() *PingProber {
	return &PingProber{Timeout: 2 * time.Second, run: execRun}
}

// Reachable sends a single echo request and reports success.
func (p *PingProber) Reachable(ctx context.Context, addr string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	_, err := p.run(ctx, "ping", "-c", "1", "-W", "1", addr)
	return err == nil
}

// DefaultGateway returns the host's IPv4 default-route gateway, read
// from `ip -4 route show default`:
//
//	default via 192.168.1.1 dev vmbr0 proto kernel onlink
func DefaultGateway(ctx context.Context) (string, error) {
	return defaultGateway(ctx, execRun)
}

func defaultGateway(ctx context.Context, run runFunc) (string, error) {
	out, err := run(ctx, "ip", "-4", "route", "show", "default")
	if err != nil {
		return "", fmt.Errorf("failed to read default route: %w", err)
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		for i := 0; i+1 < len(fields); i++ {
			if fields[i] == "via" {
				return fields[i+1], nil
			}
		}
	}
	return "", fmt.Errorf("no default route found")
}

// SamePrefix24 reports whether two dotted-quad addresses share their
// first three octets.
func SamePrefix24(a, b string) bool {
	ai := strings.LastIndex(a, ".")
	bi := strings.LastIndex(b, ".")
	if ai < 0 || bi < 0 {
		return false
	}
	return a[:ai] == b[:bi]
}
