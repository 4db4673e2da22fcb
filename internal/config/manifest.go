package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// NoneRole is the manifest sentinel for "no requirement". Lines whose
// role is none are carried through parsing but excluded from coverage.
const NoneRole = "none"

// Requirement is one logical storage role a container must have bound
// before creation may proceed.
type Requirement struct {
	// Role is the logical name, e.g. "media" or "backups".
	Role string

	// Description is the operator-facing explanation of the role.
	Description string
}

// None reports whether the requirement is the sentinel entry.
func (r Requirement) None() bool {
	return r.Role == NoneRole
}

// LoadManifest reads the requirement manifest: one `role|description`
// pair per line, ordered, with blank lines and `#` comments skipped.
func LoadManifest(path string) ([]Requirement, error) {
	// #nosec G304
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	var reqs []Requirement
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		role, description, _ := strings.Cut(line, "|")
		role = strings.ToLower(strings.TrimSpace(role))
		if role == "" {
			return nil, fmt.Errorf("manifest line %d: missing role in %q", lineNo, line)
		}
		reqs = append(reqs, Requirement{
			Role:        role,
			Description: strings.TrimSpace(description),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return reqs, nil
}

// RequiredRoles filters out the none sentinel, returning the roles
// that participate in coverage checks, in manifest order.
func RequiredRoles(reqs []Requirement) []Requirement {
	var out []Requirement
	for _, r := range reqs {
		if !r.None() {
			out = append(out, r)
		}
	}
	return out
}
