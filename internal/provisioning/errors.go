package provisioning

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ctforge/ctforge/internal/config"
)

// InputKind identifies which candidate value a validation error refers to.
type InputKind string

// Input kinds accepted by the validator.
const (
	KindHostname InputKind = "hostname"
	KindIPv4     InputKind = "ipv4"
	KindGateway  InputKind = "gateway"
	KindID       InputKind = "id"
)

// ErrOperatorDeclined is returned when the operator answers no at a
// confirmation gate. It is recoverable everywhere except the final
// proceed gate.
var ErrOperatorDeclined = errors.New("operator declined")

// MalformedInputError rejects a candidate on syntax alone.
type MalformedInputError struct {
	Kind   InputKind
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed %s %q: %s", e.Kind, e.Value, e.Reason)
}

// ResourceInUseError rejects a candidate already claimed by another
// container or a live host.
type ResourceInUseError struct {
	Kind   InputKind
	Value  string
	Holder string // what currently holds the resource
}

// Error implements the error interface.
func (e *ResourceInUseError) Error() string {
	return fmt.Sprintf("%s %q is already in use by %s", e.Kind, e.Value, e.Holder)
}

// UnreachableError rejects a candidate that failed its liveness probe.
type UnreachableError struct {
	Kind  InputKind
	Value string
}

// Error implements the error interface.
func (e *UnreachableError) Error() string {
	return fmt.Sprintf("%s %q did not answer the reachability probe", e.Kind, e.Value)
}

// IncompleteCoverageError aborts the run when manual assignment still
// leaves required storage roles unbound. It enumerates every missing
// role with its description.
type IncompleteCoverageError struct {
	Missing []config.Requirement
}

// Error implements the error interface.
func (e *IncompleteCoverageError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, r := range e.Missing {
		if r.Description != "" {
			names = append(names, fmt.Sprintf("%s (%s)", r.Role, r.Description))
		} else {
			names = append(names, r.Role)
		}
	}
	return "storage coverage incomplete, missing roles: " + strings.Join(names, ", ")
}
