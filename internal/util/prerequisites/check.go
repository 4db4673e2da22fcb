// Package prerequisites verifies the host environment before a
// provisioning run: the platform binaries must be on PATH and the
// kernel modules bind mounts rely on must be loaded and persisted.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool represents a host binary that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string
}

// PlatformTools returns the platform binaries the wizard drives.
func PlatformTools() []Tool {
	return []Tool{
		{
			Name:        "pct",
			Required:    true,
			Description: "Container lifecycle: create, start, stop, destroy, mount points",
		},
		{
			Name:        "pvesm",
			Required:    true,
			Description: "Storage pool listing and volume release",
		},
		{
			Name:        "pvesh",
			Required:    true,
			Description: "Cluster next-free-ID query",
		},
	}
}

// HostTools returns binaries the probes rely on.
func HostTools() []Tool {
	return []Tool{
		{
			Name:        "ping",
			Required:    true,
			Description: "ICMP reachability probe for addresses and gateways",
		},
		{
			Name:        "ip",
			Required:    true,
			Description: "Default-route discovery",
		},
		{
			Name:        "modprobe",
			Required:    true,
			Description: "Kernel module loading",
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool  Tool
	Found bool
	Path  string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.Description))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Check verifies that the specified tools are available.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		path, err := exec.LookPath(tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}

// CheckAll checks every binary the wizard needs.
func CheckAll() *CheckResults {
	platform := PlatformTools()
	host := HostTools()
	all := make([]Tool, 0, len(platform)+len(host))
	all = append(all, platform...)
	all = append(all, host...)
	return Check(all)
}
