package asset

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaintenanceKind classifies a maintenance intervention.
type MaintenanceKind string

const (
	KindPreventive MaintenanceKind = "preventive"
	KindCorrective MaintenanceKind = "corrective"
	KindUpgrade    MaintenanceKind = "upgrade"
	KindOther      MaintenanceKind = "other"
)

var kindAliases = map[string]MaintenanceKind{
	"preventive": KindPreventive,
	"preventiva": KindPreventive,
	"corrective": KindCorrective,
	"corretiva":  KindCorrective,
	"upgrade":    KindUpgrade,
	"other":      KindOther,
	"outro":      KindOther,
}

// ParseMaintenanceKind converts a kind label to a MaintenanceKind.
func ParseMaintenanceKind(s string) (MaintenanceKind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown maintenance kind %q", s)
}

// Maintenance is one entry of an asset's maintenance history.
type Maintenance struct {
	ID          string
	AssetID     string
	PerformedAt time.Time
	Kind        MaintenanceKind
	Description string

	// RestoresHealth marks an intervention that resets the asset's
	// accumulated wear (e.g. a board replacement).
	RestoresHealth bool
}

// NewMaintenance creates a Maintenance entry with a generated UUID.
func NewMaintenance(assetID string, ts time.Time, kind MaintenanceKind, description string) *Maintenance {
	return &Maintenance{
		ID:          uuid.NewString(),
		AssetID:     assetID,
		PerformedAt: ts,
		Kind:        kind,
		Description: description,
	}
}
