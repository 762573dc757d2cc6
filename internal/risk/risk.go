// Package risk ranks sectors by the share of their assets that are
// currently under maintenance.
package risk

import (
	"sort"

	"github.com/setevik/assetrisk/internal/asset"
)

// SectorRisk is the maintenance exposure of one sector.
type SectorRisk struct {
	// Sector is the raw grouping key; "" is the unassigned group.
	Sector                string
	TotalAssets           int
	MaintenanceCount      int
	MaintenancePercentage int
	IsCritical            bool
}

// Label returns the sector name for display.
func (s SectorRisk) Label() string {
	return asset.SectorLabel(s.Sector)
}

// ComputeSectorRisk groups assets by sector and returns the sectors that
// have at least one asset in maintenance, most exposed first.
//
// Sector keys are compared exactly: "TI" and "TI " are different sectors.
// Ordering is critical sectors first, then by maintenance count, then by
// percentage, all descending. Remaining ties keep the order in which each
// sector first appears in assets.
//
// The caller is expected to have removed decommissioned assets.
func ComputeSectorRisk(assets []asset.Record) []SectorRisk {
	var order []string
	groups := make(map[string]*SectorRisk)

	for _, a := range assets {
		g, ok := groups[a.Sector]
		if !ok {
			g = &SectorRisk{Sector: a.Sector}
			groups[a.Sector] = g
			order = append(order, a.Sector)
		}
		g.TotalAssets++
		if a.Status == asset.StatusMaintenance {
			g.MaintenanceCount++
		}
	}

	out := make([]SectorRisk, 0, len(order))
	for _, sector := range order {
		g := groups[sector]
		if g.MaintenanceCount == 0 {
			continue
		}
		g.MaintenancePercentage = Percentage(g.MaintenanceCount, g.TotalAssets)
		g.IsCritical = g.MaintenancePercentage == 100 && g.TotalAssets > 0
		out = append(out, *g)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsCritical != b.IsCritical {
			return a.IsCritical
		}
		if a.MaintenanceCount != b.MaintenanceCount {
			return a.MaintenanceCount > b.MaintenanceCount
		}
		return a.MaintenancePercentage > b.MaintenancePercentage
	})

	return out
}

// Percentage returns part/total*100 rounded half up. It returns 0 when
// total is not positive.
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}

// CriticalCount returns how many of the given sectors are fully down.
func CriticalCount(risks []SectorRisk) int {
	n := 0
	for _, r := range risks {
		if r.IsCritical {
			n++
		}
	}
	return n
}
