// Package reporter renders risk rankings, alerts and inventory summaries
// as plain text.
package reporter

import (
	"fmt"
	"strings"

	"github.com/setevik/assetrisk/internal/format"
	"github.com/setevik/assetrisk/internal/health"
	"github.com/setevik/assetrisk/internal/risk"
)

// severityMarker maps alert severities to a display prefix.
var severityMarker = map[health.Severity]string{
	health.SevCritical: "\U0001f534", // red circle
	health.SevWarning:  "\U0001f7e1", // yellow circle
}

// FormatRiskTable renders the sector ranking, optionally truncated to top
// entries (top <= 0 shows all).
func FormatRiskTable(risks []risk.SectorRisk, top int) string {
	if len(risks) == 0 {
		return "No sectors at risk.\n"
	}
	if top > 0 && len(risks) > top {
		risks = risks[:top]
	}

	width := len("Sector")
	for _, r := range risks {
		if n := len([]rune(r.Label())); n > width {
			width = n
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %5s  %11s  %5s\n", width, "Sector", "Total", "Maintenance", "Share")
	for _, r := range risks {
		label := r.Label()
		pad := width - len([]rune(label))
		fmt.Fprintf(&b, "%s%s  %5d  %11d  %5s", label, strings.Repeat(" ", pad),
			r.TotalAssets, r.MaintenanceCount, format.Percent(r.MaintenancePercentage))
		if r.IsCritical {
			b.WriteString("  CRITICAL")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatAlerts renders alerts one per line, in the order given.
func FormatAlerts(alerts []health.Alert) string {
	if len(alerts) == 0 {
		return "No alerts.\n"
	}

	var b strings.Builder
	for _, a := range alerts {
		marker := severityMarker[a.Severity]
		if marker == "" {
			marker = "\u2757" // exclamation mark
		}
		fmt.Fprintf(&b, "%s [%s] %s\n", marker, a.Severity, a.Title)
		fmt.Fprintf(&b, "   %s (asset %s)\n", a.Description, a.AssetID)
	}
	fmt.Fprintf(&b, "\nTotal: %d alert(s)\n", len(alerts))
	return b.String()
}
