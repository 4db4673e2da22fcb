package provisioning

import (
	"regexp"

	"github.com/ctforge/ctforge/internal/config"
	"github.com/ctforge/ctforge/internal/pve"
)

// Negotiator reconciles the manifest's required storage roles against
// the host's live storage pools.
type Negotiator struct {
	cfg *config.Config
}

// NewNegotiator creates a negotiator bound to the node configuration.
func NewNegotiator(cfg *config.Config) *Negotiator {
	return &Negotiator{cfg: cfg}
}

// CandidatePools filters the live pool list down to the pools eligible
// for bind mounts: active and not platform-owned.
func (n *Negotiator) CandidatePools(pools []pve.StoragePool) []pve.StoragePool {
	var out []pve.StoragePool
	for _, p := range pools {
		if !p.Active || n.cfg.PoolExcluded(p.Name) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// AutoDetect matches candidate pool names against the
// <nas_prefix>-<index>-<role> convention for every required role.
// It returns the role→pool assignment it could establish and the
// roles it could not.
func (n *Negotiator) AutoDetect(reqs []config.Requirement, pools []pve.StoragePool) (map[string]string, []config.Requirement) {
	assignment := make(map[string]string)
	var missing []config.Requirement

	candidates := n.CandidatePools(pools)
	for _, req := range config.RequiredRoles(reqs) {
		pattern := regexp.MustCompile(
			"^" + regexp.QuoteMeta(n.cfg.NASPrefix) + `-\d+-` + regexp.QuoteMeta(req.Role) + "$")
		found := ""
		for _, p := range candidates {
			if pattern.MatchString(p.Name) {
				found = p.Name
				break
			}
		}
		if found == "" {
			missing = append(missing, req)
			continue
		}
		assignment[req.Role] = found
	}
	return assignment, missing
}

// MountPath is the container-internal path convention for a role.
func MountPath(role string) string {
	return "/mnt/" + role
}

// CheckCoverage verifies that every non-none required role has exactly
// one assigned pool. Incomplete coverage enumerates every missing role.
func CheckCoverage(reqs []config.Requirement, assignment map[string]string) error {
	var missing []config.Requirement
	for _, req := range config.RequiredRoles(reqs) {
		if assignment[req.Role] == "" {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return &IncompleteCoverageError{Missing: missing}
	}
	return nil
}

// BuildMounts materializes an assignment into Mounts, ordered by the
// manifest.
func BuildMounts(reqs []config.Requirement, assignment map[string]string) []Mount {
	var mounts []Mount
	for _, req := range config.RequiredRoles(reqs) {
		pool, ok := assignment[req.Role]
		if !ok {
			continue
		}
		mounts = append(mounts, Mount{
			Role:        req.Role,
			Description: req.Description,
			Pool:        pool,
			Path:        MountPath(req.Role),
		})
	}
	return mounts
}
