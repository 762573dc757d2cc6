package health

import (
	"sort"

	"github.com/setevik/assetrisk/internal/asset"
)

// Tier is the display band of a health score.
type Tier string

const (
	TierHealthy  Tier = "healthy"
	TierAtRisk   Tier = "at_risk"
	TierCritical Tier = "critical"
)

// Label returns a human-readable label for the tier.
func (t Tier) Label() string {
	switch t {
	case TierHealthy:
		return "Healthy"
	case TierAtRisk:
		return "At risk"
	case TierCritical:
		return "Critical"
	default:
		return string(t)
	}
}

// Tier classifies a health score. Scores at or below the critical alert
// threshold are shown as critical even though only scores strictly below
// it raise an alert.
func (e *Evaluator) Tier(score *int) Tier {
	if score == nil || *score > e.th.AtRiskMax {
		return TierHealthy
	}
	if *score > e.th.CriticalBelow {
		return TierAtRisk
	}
	return TierCritical
}

// TierOf classifies a health score with the default thresholds.
func TierOf(score *int) Tier {
	return std.Tier(score)
}

// pointsPerCorrective is the health lost to each corrective maintenance.
const pointsPerCorrective = 20

// CountSinceRestore counts corrective maintenances performed after the most
// recent health-restoring one. The restoring entry itself is not counted.
func CountSinceRestore(history []asset.Maintenance) int {
	sorted := append([]asset.Maintenance(nil), history...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PerformedAt.Before(sorted[j].PerformedAt)
	})

	n := 0
	for _, m := range sorted {
		switch {
		case m.RestoresHealth:
			n = 0
		case m.Kind == asset.KindCorrective:
			n++
		}
	}
	return n
}

// ScoreFromHistory derives a health score from a maintenance history.
func ScoreFromHistory(history []asset.Maintenance) int {
	score := 100 - pointsPerCorrective*CountSinceRestore(history)
	if score < 0 {
		return 0
	}
	return score
}
