package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ctforge/ctforge/internal/provisioning"
)

var summaryBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorGreen).
	Padding(0, 2)

// RenderSummary renders the post-creation summary box for a
// provisioned container.
func RenderSummary(session *provisioning.Session) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Container %d ready", session.CTID)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("Hostname"), session.Hostname)
	fmt.Fprintf(&b, "%s  %s (VLAN %d, gw %s)\n",
		dimStyle.Render("Address"), session.IPv4, session.VLANTag, session.Gateway)
	fmt.Fprintf(&b, "%s    %d GiB on %s, %d MiB RAM",
		dimStyle.Render("Size"), session.DiskGiB, session.RootfsPool, session.MemoryMiB)
	for _, m := range session.Mounts {
		fmt.Fprintf(&b, "\n%s   %s -> %s", dimStyle.Render("Mount"), m.Pool, m.Path)
	}
	if session.IPv4 != "" {
		fmt.Fprintf(&b, "\n\n%s ssh root@%s", dimStyle.Render("Connect"), session.IPv4)
	}

	return summaryBoxStyle.Render(b.String())
}
