// Package health turns asset health and warranty state into alerts and
// replacement suggestions.
package health

import (
	"fmt"
	"sort"

	"github.com/setevik/assetrisk/internal/asset"
)

const (
	// CriticalBelow is the health score under which an asset raises a
	// critical alert.
	CriticalBelow = 30
	// AtRiskMax is the highest score still shown in the at-risk tier.
	AtRiskMax = 70
	// ReplacementThreshold is the number of corrective maintenances since
	// the last restore at which replacing the asset is suggested.
	ReplacementThreshold = 5
	// DefaultAlertLimit caps the candidates considered per alert kind.
	DefaultAlertLimit = 5
)

// Kind identifies what triggered an alert.
type Kind string

const (
	KindHealthCritical   Kind = "health_critical"
	KindWarrantyExpiring Kind = "warranty_expiring"
)

// Severity indicates the urgency of an alert.
type Severity string

const (
	SevCritical Severity = "critical"
	SevWarning  Severity = "warning"
)

// rank orders severities, lower first.
func (s Severity) rank() int {
	switch s {
	case SevCritical:
		return 0
	case SevWarning:
		return 1
	default:
		return 2
	}
}

// Alert is an actionable finding about a single asset.
type Alert struct {
	// ID is unique per (kind, asset) so one asset can carry several alerts.
	ID          string
	Kind        Kind
	Severity    Severity
	AssetID     string
	Title       string
	Description string
}

// Thresholds holds the tunable limits used by an Evaluator.
type Thresholds struct {
	CriticalBelow int
	AtRiskMax     int
	Replacement   int
	AlertLimit    int
}

// DefaultThresholds returns the standard limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalBelow: CriticalBelow,
		AtRiskMax:     AtRiskMax,
		Replacement:   ReplacementThreshold,
		AlertLimit:    DefaultAlertLimit,
	}
}

// Evaluator applies a set of thresholds. The zero value is not useful;
// use New.
type Evaluator struct {
	th Thresholds
}

// New creates an Evaluator. Non-positive fields fall back to the defaults.
func New(th Thresholds) *Evaluator {
	def := DefaultThresholds()
	if th.CriticalBelow <= 0 {
		th.CriticalBelow = def.CriticalBelow
	}
	if th.AtRiskMax <= 0 {
		th.AtRiskMax = def.AtRiskMax
	}
	if th.Replacement <= 0 {
		th.Replacement = def.Replacement
	}
	if th.AlertLimit <= 0 {
		th.AlertLimit = def.AlertLimit
	}
	return &Evaluator{th: th}
}

// Thresholds returns the limits in effect.
func (e *Evaluator) Thresholds() Thresholds {
	return e.th
}

// ComputeAlerts builds alerts from two candidate sets chosen upstream:
// assets with critical health and assets whose warranty is about to
// expire. Each list is capped at limitPerKind (the evaluator's alert limit
// when limitPerKind <= 0). Critical alerts come first; within a severity
// the emission order is kept, health alerts before warranty alerts.
func (e *Evaluator) ComputeAlerts(criticalHealth, expiringWarranty []asset.Record, limitPerKind int) []Alert {
	if limitPerKind <= 0 {
		limitPerKind = e.th.AlertLimit
	}
	criticalHealth = capRecords(criticalHealth, limitPerKind)
	expiringWarranty = capRecords(expiringWarranty, limitPerKind)

	alerts := make([]Alert, 0, len(criticalHealth)+len(expiringWarranty))
	for _, a := range criticalHealth {
		alerts = append(alerts, HealthAlert(a))
	}
	for _, a := range expiringWarranty {
		alerts = append(alerts, WarrantyAlert(a))
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.rank() < alerts[j].Severity.rank()
	})
	return alerts
}

// HealthAlert shapes the critical-health alert for an asset.
func HealthAlert(a asset.Record) Alert {
	return Alert{
		ID:          "health-" + a.ID,
		Kind:        KindHealthCritical,
		Severity:    SevCritical,
		AssetID:     a.ID,
		Title:       a.Name,
		Description: fmt.Sprintf("Critical health (%d%%). Needs maintenance.", a.EffectiveHealth()),
	}
}

// WarrantyAlert shapes the expiring-warranty alert for an asset.
func WarrantyAlert(a asset.Record) Alert {
	return Alert{
		ID:          "warranty-" + a.ID,
		Kind:        KindWarrantyExpiring,
		Severity:    SevWarning,
		AssetID:     a.ID,
		Title:       a.Name,
		Description: fmt.Sprintf("Warranty of %d months expiring soon.", a.Months()),
	}
}

// ShouldSuggestReplacement reports whether an asset with the given number
// of maintenances since its last restore should be replaced.
func (e *Evaluator) ShouldSuggestReplacement(maintenanceCountSinceRestore int) bool {
	return maintenanceCountSinceRestore >= e.th.Replacement
}

// IsHealthCritical reports whether an asset qualifies for a critical-health
// alert. Unscored assets never do.
func (e *Evaluator) IsHealthCritical(a asset.Record) bool {
	return a.Active() && a.Health != nil && *a.Health < e.th.CriticalBelow
}

// SelectCriticalHealth returns, in input order, up to limit assets that
// qualify for a critical-health alert.
func (e *Evaluator) SelectCriticalHealth(assets []asset.Record, limit int) []asset.Record {
	return selectRecords(assets, limit, e.IsHealthCritical)
}

// SelectExpiringWarranty returns, in input order, up to limit active assets
// flagged as having a warranty about to expire.
func (e *Evaluator) SelectExpiringWarranty(assets []asset.Record, limit int) []asset.Record {
	return selectRecords(assets, limit, func(a asset.Record) bool {
		return a.Active() && a.WarrantyExpiringSoon
	})
}

func selectRecords(assets []asset.Record, limit int, keep func(asset.Record) bool) []asset.Record {
	var out []asset.Record
	for _, a := range assets {
		if limit > 0 && len(out) >= limit {
			break
		}
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func capRecords(assets []asset.Record, limit int) []asset.Record {
	if limit > 0 && len(assets) > limit {
		return assets[:limit]
	}
	return assets
}

var std = New(DefaultThresholds())

// ComputeAlerts runs Evaluator.ComputeAlerts with the default thresholds.
func ComputeAlerts(criticalHealth, expiringWarranty []asset.Record, limitPerKind int) []Alert {
	return std.ComputeAlerts(criticalHealth, expiringWarranty, limitPerKind)
}

// ShouldSuggestReplacement reports whether maintenanceCountSinceRestore
// reaches ReplacementThreshold.
func ShouldSuggestReplacement(maintenanceCountSinceRestore int) bool {
	return std.ShouldSuggestReplacement(maintenanceCountSinceRestore)
}
