package reporter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/setevik/assetrisk/internal/asset"
	"github.com/setevik/assetrisk/internal/format"
	"github.com/setevik/assetrisk/internal/health"
	"github.com/setevik/assetrisk/internal/risk"
)

// Summary holds the inventory KPIs for one snapshot.
type Summary struct {
	InstanceID  string
	GeneratedAt time.Time

	Total    int
	ByStatus map[string]int // status label -> count

	HealthTiers      map[health.Tier]int // active assets only
	CriticalHealth   int
	WarrantyExpiring int

	SectorsAtRisk   int
	CriticalSectors int
	TopSectors      []risk.SectorRisk

	// Replacements lists assets past the replacement threshold, by name.
	Replacements []string
}

// summaryTopSectors is how many ranked sectors a summary keeps.
const summaryTopSectors = 3

// BuildSummary aggregates a snapshot into a Summary. sinceRestore maps
// asset IDs to their corrective maintenance count since the last restore;
// assets missing from it count as zero.
func BuildSummary(instanceID string, assets []asset.Record, ev *health.Evaluator, sinceRestore map[string]int, now time.Time) *Summary {
	s := &Summary{
		InstanceID:  instanceID,
		GeneratedAt: now,
		ByStatus:    make(map[string]int),
		HealthTiers: make(map[health.Tier]int),
	}

	active := make([]asset.Record, 0, len(assets))
	for _, a := range assets {
		s.Total++
		s.ByStatus[a.Status.Label()]++

		if !a.Active() {
			continue
		}
		active = append(active, a)

		s.HealthTiers[ev.Tier(a.Health)]++
		if ev.IsHealthCritical(a) {
			s.CriticalHealth++
		}
		if a.WarrantyExpiringSoon {
			s.WarrantyExpiring++
		}
		if ev.ShouldSuggestReplacement(sinceRestore[a.ID]) {
			s.Replacements = append(s.Replacements, a.Name)
		}
	}
	sort.Strings(s.Replacements)

	risks := risk.ComputeSectorRisk(active)
	s.SectorsAtRisk = len(risks)
	s.CriticalSectors = risk.CriticalCount(risks)
	if len(risks) > summaryTopSectors {
		risks = risks[:summaryTopSectors]
	}
	s.TopSectors = risks

	return s
}

// FormatSummary formats a Summary as human-readable text.
func FormatSummary(s *Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== %s ===\n", s.InstanceID)
	fmt.Fprintf(&b, "Generated: %s\n\n", s.GeneratedAt.Local().Format("2006-01-02 15:04"))

	fmt.Fprintf(&b, "Assets:            %d", s.Total)
	if s.Total > 0 {
		fmt.Fprintf(&b, " (%s)", formatBreakdown(s.ByStatus))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Health:            %d healthy, %d at risk, %d critical\n",
		s.HealthTiers[health.TierHealthy],
		s.HealthTiers[health.TierAtRisk],
		s.HealthTiers[health.TierCritical])
	fmt.Fprintf(&b, "Critical health:   %d\n", s.CriticalHealth)
	fmt.Fprintf(&b, "Warranty expiring: %d\n", s.WarrantyExpiring)

	fmt.Fprintf(&b, "Sectors at risk:   %d (%d critical)\n", s.SectorsAtRisk, s.CriticalSectors)
	for _, r := range s.TopSectors {
		fmt.Fprintf(&b, "  - %s: %d/%d in maintenance (%s)\n",
			r.Label(), r.MaintenanceCount, r.TotalAssets, format.Percent(r.MaintenancePercentage))
	}

	fmt.Fprintf(&b, "Replace suggested: %d", len(s.Replacements))
	if len(s.Replacements) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(s.Replacements, ", "))
	}
	b.WriteString("\n")

	return b.String()
}

// FormatSummaryTitle generates a one-line title for a summary.
func FormatSummaryTitle(s *Summary) string {
	return fmt.Sprintf("\U0001f4ca %s inventory risk (%s)",
		s.InstanceID, s.GeneratedAt.Local().Format("Jan 02"))
}

// formatBreakdown turns a map[string]int into "foo ×2, bar ×1" sorted by
// count desc, then name.
func formatBreakdown(m map[string]int) string {
	type entry struct {
		name  string
		count int
	}

	entries := make([]entry, 0, len(m))
	for name, count := range m {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s ×%d", e.name, e.count)
	}
	return strings.Join(parts, ", ")
}
