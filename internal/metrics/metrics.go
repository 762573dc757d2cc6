// Package metrics exports sector risk and alert gauges in the Prometheus
// text format, for scraping through a node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/setevik/assetrisk/internal/health"
	"github.com/setevik/assetrisk/internal/risk"
)

// Collector bundles the inventory risk gauges on a private registry.
type Collector struct {
	registry *prometheus.Registry

	SectorMaintenance *prometheus.GaugeVec
	SectorPercent     *prometheus.GaugeVec
	SectorCritical    *prometheus.GaugeVec
	Alerts            *prometheus.GaugeVec
}

// New constructs a Collector and registers its gauges.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		SectorMaintenance: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "assetrisk_sector_maintenance_assets",
				Help: "Active assets in maintenance by sector",
			},
			[]string{"sector"},
		),
		SectorPercent: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "assetrisk_sector_maintenance_percent",
				Help: "Share of active assets in maintenance by sector",
			},
			[]string{"sector"},
		),
		SectorCritical: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "assetrisk_sector_critical",
				Help: "1 if every active asset of the sector is in maintenance",
			},
			[]string{"sector"},
		),
		Alerts: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "assetrisk_alerts",
				Help: "Open alerts by kind",
			},
			[]string{"kind"},
		),
	}
	c.registry.MustRegister(
		c.SectorMaintenance,
		c.SectorPercent,
		c.SectorCritical,
		c.Alerts,
	)
	return c
}

// Registry returns the registry the gauges live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Update replaces all gauge values with the given ranking and alerts.
// Sectors absent from risks are dropped. The sector label is the raw
// sector key, so assets without a sector are exported with sector="".
func (c *Collector) Update(risks []risk.SectorRisk, alerts []health.Alert) {
	c.SectorMaintenance.Reset()
	c.SectorPercent.Reset()
	c.SectorCritical.Reset()

	for _, r := range risks {
		label := r.Sector
		c.SectorMaintenance.WithLabelValues(label).Set(float64(r.MaintenanceCount))
		c.SectorPercent.WithLabelValues(label).Set(float64(r.MaintenancePercentage))
		critical := 0.0
		if r.IsCritical {
			critical = 1
		}
		c.SectorCritical.WithLabelValues(label).Set(critical)
	}

	counts := map[health.Kind]int{
		health.KindHealthCritical:   0,
		health.KindWarrantyExpiring: 0,
	}
	for _, a := range alerts {
		counts[a.Kind]++
	}
	for kind, n := range counts {
		c.Alerts.WithLabelValues(string(kind)).Set(float64(n))
	}
}

// WriteTextfile atomically writes the current gauges to path.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
