package reporter

import (
	"strings"
	"testing"
	"time"

	"github.com/setevik/assetrisk/internal/asset"
	"github.com/setevik/assetrisk/internal/health"
)

var genAt = time.Date(2026, 2, 17, 9, 0, 0, 0, time.UTC)

func TestBuildSummaryEmpty(t *testing.T) {
	s := BuildSummary("matriz", nil, health.New(health.DefaultThresholds()), nil, genAt)
	if s.InstanceID != "matriz" {
		t.Errorf("InstanceID = %q, want matriz", s.InstanceID)
	}
	if s.Total != 0 || s.CriticalHealth != 0 || s.WarrantyExpiring != 0 || s.SectorsAtRisk != 0 {
		t.Error("expected all counts to be zero for empty snapshot")
	}
	if len(s.Replacements) != 0 {
		t.Errorf("Replacements = %v, want none", s.Replacements)
	}
}

func TestBuildSummaryCounts(t *testing.T) {
	assets := []asset.Record{
		{ID: "1", Name: "pc-1", Sector: "TI", Status: asset.StatusInUse, Health: asset.Int(90)},
		{ID: "2", Name: "pc-2", Sector: "TI", Status: asset.StatusMaintenance, Health: asset.Int(20)},
		{ID: "3", Name: "pc-3", Sector: "TI", Status: asset.StatusInUse, Health: asset.Int(50), WarrantyExpiringSoon: true},
		{ID: "4", Name: "printer", Sector: "Recepção", Status: asset.StatusMaintenance},
		{ID: "5", Name: "old", Sector: "Recepção", Status: asset.StatusDecommissioned, Health: asset.Int(0)},
		{ID: "6", Name: "spare", Status: asset.StatusAvailable, Health: asset.Int(30)},
	}
	sinceRestore := map[string]int{"2": 6, "4": 4, "5": 9}

	s := BuildSummary("matriz", assets, health.New(health.DefaultThresholds()), sinceRestore, genAt)

	if s.Total != 6 {
		t.Errorf("Total = %d, want 6", s.Total)
	}
	if s.ByStatus["In use"] != 2 || s.ByStatus["Maintenance"] != 2 || s.ByStatus["Decommissioned"] != 1 {
		t.Errorf("ByStatus = %v", s.ByStatus)
	}
	if s.HealthTiers[health.TierHealthy] != 2 {
		t.Errorf("healthy = %d, want 2 (pc-1, printer)", s.HealthTiers[health.TierHealthy])
	}
	if s.HealthTiers[health.TierAtRisk] != 1 {
		t.Errorf("at risk = %d, want 1", s.HealthTiers[health.TierAtRisk])
	}
	if s.HealthTiers[health.TierCritical] != 2 {
		t.Errorf("critical tier = %d, want 2 (pc-2, spare at 30)", s.HealthTiers[health.TierCritical])
	}
	// Health 30 is in the critical tier but does not raise an alert.
	if s.CriticalHealth != 1 {
		t.Errorf("CriticalHealth = %d, want 1", s.CriticalHealth)
	}
	if s.WarrantyExpiring != 1 {
		t.Errorf("WarrantyExpiring = %d, want 1", s.WarrantyExpiring)
	}
	if s.SectorsAtRisk != 2 || s.CriticalSectors != 1 {
		t.Errorf("sectors at risk = %d (%d critical), want 2 (1 critical)", s.SectorsAtRisk, s.CriticalSectors)
	}
	if s.TopSectors[0].Sector != "Recepção" {
		t.Errorf("top sector = %q, want Recepção", s.TopSectors[0].Sector)
	}
	if len(s.Replacements) != 1 || s.Replacements[0] != "pc-2" {
		t.Errorf("Replacements = %v, want [pc-2]", s.Replacements)
	}
}

func TestBuildSummaryTopSectorsCapped(t *testing.T) {
	var assets []asset.Record
	for _, sector := range []string{"A", "B", "C", "D", "E"} {
		assets = append(assets, asset.Record{Sector: sector, Status: asset.StatusMaintenance})
	}

	s := BuildSummary("x", assets, health.New(health.DefaultThresholds()), nil, genAt)
	if s.SectorsAtRisk != 5 {
		t.Errorf("SectorsAtRisk = %d, want 5", s.SectorsAtRisk)
	}
	if len(s.TopSectors) != summaryTopSectors {
		t.Errorf("TopSectors = %d, want %d", len(s.TopSectors), summaryTopSectors)
	}
}

func TestFormatSummary(t *testing.T) {
	assets := []asset.Record{
		{ID: "1", Name: "pc-1", Sector: "TI", Status: asset.StatusMaintenance, Health: asset.Int(10)},
		{ID: "2", Name: "pc-2", Sector: "TI", Status: asset.StatusInUse},
		{ID: "3", Name: "hub", Status: asset.StatusMaintenance},
	}
	s := BuildSummary("workstation", assets, health.New(health.DefaultThresholds()), map[string]int{"1": 5}, genAt)

	out := FormatSummary(s)

	checks := []string{
		"workstation",
		"Assets:            3",
		"Maintenance ×2",
		"In use ×1",
		"Critical health:   1",
		"Warranty expiring: 0",
		"Sectors at risk:   2 (1 critical)",
		"unassigned: 1/1 in maintenance (100%)",
		"TI: 1/2 in maintenance (50%)",
		"Replace suggested: 1 (pc-1)",
	}

	for _, check := range checks {
		if !strings.Contains(out, check) {
			t.Errorf("output missing %q\nfull output:\n%s", check, out)
		}
	}
}

func TestFormatSummaryTitle(t *testing.T) {
	s := &Summary{InstanceID: "matriz", GeneratedAt: genAt}

	title := FormatSummaryTitle(s)
	if !strings.Contains(title, "matriz inventory risk") {
		t.Errorf("title missing instance: %q", title)
	}
	if !strings.Contains(title, "Feb 17") {
		t.Errorf("title missing date: %q", title)
	}
}

func TestFormatBreakdown(t *testing.T) {
	m := map[string]int{"In use": 3, "Available": 1, "Maintenance": 2}
	out := formatBreakdown(m)

	inUseIdx := strings.Index(out, "In use")
	maintIdx := strings.Index(out, "Maintenance")
	availIdx := strings.Index(out, "Available")

	if inUseIdx == -1 || maintIdx == -1 || availIdx == -1 {
		t.Fatalf("missing entries in breakdown: %q", out)
	}
	if inUseIdx > maintIdx || maintIdx > availIdx {
		t.Errorf("breakdown not sorted by count desc: %q", out)
	}

	if !strings.Contains(out, "×3") {
		t.Errorf("missing count marker: %q", out)
	}
}
