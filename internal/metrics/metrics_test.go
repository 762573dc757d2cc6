package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/setevik/assetrisk/internal/asset"
	"github.com/setevik/assetrisk/internal/health"
	"github.com/setevik/assetrisk/internal/risk"
)

func sampleRisks() []risk.SectorRisk {
	return []risk.SectorRisk{
		{Sector: "Recepção", TotalAssets: 2, MaintenanceCount: 2, MaintenancePercentage: 100, IsCritical: true},
		{Sector: "TI", TotalAssets: 8, MaintenanceCount: 4, MaintenancePercentage: 50},
		{Sector: "", TotalAssets: 3, MaintenanceCount: 1, MaintenancePercentage: 33},
	}
}

func sampleAlerts() []health.Alert {
	return health.ComputeAlerts(
		[]asset.Record{
			{ID: "a", Status: asset.StatusInUse, Health: asset.Int(10)},
			{ID: "b", Status: asset.StatusInUse, Health: asset.Int(20)},
		},
		nil,
		0,
	)
}

func TestUpdate(t *testing.T) {
	c := New()
	c.Update(sampleRisks(), sampleAlerts())

	if got := testutil.ToFloat64(c.SectorMaintenance.WithLabelValues("TI")); got != 4 {
		t.Errorf("TI maintenance = %v, want 4", got)
	}
	if got := testutil.ToFloat64(c.SectorPercent.WithLabelValues("Recepção")); got != 100 {
		t.Errorf("Recepção percent = %v, want 100", got)
	}
	if got := testutil.ToFloat64(c.SectorCritical.WithLabelValues("Recepção")); got != 1 {
		t.Errorf("Recepção critical = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.SectorCritical.WithLabelValues("TI")); got != 0 {
		t.Errorf("TI critical = %v, want 0", got)
	}
	if got := testutil.ToFloat64(c.SectorMaintenance.WithLabelValues("")); got != 1 {
		t.Errorf("unassigned maintenance = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Alerts.WithLabelValues(string(health.KindHealthCritical))); got != 2 {
		t.Errorf("health alerts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Alerts.WithLabelValues(string(health.KindWarrantyExpiring))); got != 0 {
		t.Errorf("warranty alerts = %v, want 0", got)
	}
}

func TestUpdateDropsStaleSectors(t *testing.T) {
	c := New()
	c.Update(sampleRisks(), nil)
	if n := testutil.CollectAndCount(c.SectorPercent); n != 3 {
		t.Fatalf("series = %d, want 3", n)
	}

	c.Update(sampleRisks()[:1], nil)
	if n := testutil.CollectAndCount(c.SectorPercent); n != 1 {
		t.Errorf("series after update = %d, want 1", n)
	}
	if n := testutil.CollectAndCount(c.Alerts); n != 2 {
		t.Errorf("alert series = %d, want one per kind", n)
	}
}

func TestWriteTextfile(t *testing.T) {
	c := New()
	c.Update(sampleRisks(), sampleAlerts())

	path := filepath.Join(t.TempDir(), "assetrisk.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	checks := []string{
		"# TYPE assetrisk_sector_critical gauge",
		`assetrisk_sector_critical{sector="Recepção"} 1`,
		`assetrisk_sector_maintenance_assets{sector="TI"} 4`,
		`assetrisk_alerts{kind="health_critical"} 2`,
	}
	for _, check := range checks {
		if !strings.Contains(out, check) {
			t.Errorf("textfile missing %q\nfull output:\n%s", check, out)
		}
	}
}

func TestWriteTextfileBadPath(t *testing.T) {
	c := New()
	path := filepath.Join(t.TempDir(), "missing", "dir", "assetrisk.prom")
	if err := c.WriteTextfile(path); err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

func TestUpdateKeepsEmptyAndNamedUnassignedApart(t *testing.T) {
	c := New()
	c.Update([]risk.SectorRisk{
		{Sector: "", TotalAssets: 2, MaintenanceCount: 1, MaintenancePercentage: 50},
		{Sector: asset.UnassignedSector, TotalAssets: 4, MaintenanceCount: 3, MaintenancePercentage: 75},
	}, nil)

	if n := testutil.CollectAndCount(c.SectorMaintenance); n != 2 {
		t.Fatalf("series = %d, want 2", n)
	}
	if got := testutil.ToFloat64(c.SectorMaintenance.WithLabelValues("")); got != 1 {
		t.Errorf("empty sector maintenance = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.SectorMaintenance.WithLabelValues(asset.UnassignedSector)); got != 3 {
		t.Errorf("%q sector maintenance = %v, want 3", asset.UnassignedSector, got)
	}
}
