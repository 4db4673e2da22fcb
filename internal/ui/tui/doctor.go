package tui

import (
	"fmt"
	"strings"

	"github.com/ctforge/ctforge/internal/pve"
	"github.com/ctforge/ctforge/internal/util/prerequisites"
)

// RenderDoctor renders the host environment report: tool availability,
// kernel module state and the visible storage pools. Plain once-off
// output, no program loop.
func RenderDoctor(checks *prerequisites.CheckResults, modules map[string]bool, pools []pve.StoragePool) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ctforge doctor"))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("  Tools"))
	b.WriteString("\n")
	for _, r := range checks.Results {
		icon, style := statusIcon(r.Found)
		detail := r.Path
		if !r.Found {
			detail = r.Tool.Description
			if !r.Tool.Required {
				icon, style = warnMark, sf(warningStyle)
			}
		}
		fmt.Fprintf(&b, "    %s %-10s %s\n", style(icon), style(r.Tool.Name), dimStyle.Render(detail))
	}

	b.WriteString(sectionStyle.Render("  Kernel Modules"))
	b.WriteString("\n")
	for _, name := range prerequisites.RequiredModules {
		icon, style := statusIcon(modules[name])
		state := "loaded"
		if !modules[name] {
			state = "not loaded"
		}
		fmt.Fprintf(&b, "    %s %-10s %s\n", style(icon), style(name), dimStyle.Render(state))
	}

	if len(pools) > 0 {
		b.WriteString(sectionStyle.Render("  Storage Pools"))
		b.WriteString("\n")
		for _, p := range pools {
			icon, style := statusIcon(p.Active)
			state := fmt.Sprintf("%s, %s free", p.Type, formatKiB(p.AvailKiB))
			if !p.Active {
				state = p.Type + ", inactive"
			}
			fmt.Fprintf(&b, "    %s %-14s %s\n", style(icon), style(p.Name), dimStyle.Render(state))
		}
	}

	if err := checks.Error(); err != nil {
		b.WriteString("\n")
		b.WriteString(failedStyle.Render(fmt.Sprintf("  %v", err)))
		b.WriteString("\n")
	}

	return b.String()
}

func statusIcon(ok bool) (string, styleFunc) {
	if ok {
		return checkMark, sf(readyStyle)
	}
	return crossMark, sf(failedStyle)
}

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
