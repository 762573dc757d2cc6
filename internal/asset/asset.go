// Package asset defines the inventory data model shared by the analyzers.
package asset

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an asset.
type Status string

const (
	StatusAvailable      Status = "available"
	StatusInUse          Status = "in_use"
	StatusMaintenance    Status = "maintenance"
	StatusDecommissioned Status = "decommissioned"
)

// statusAliases maps accepted spellings (lower-cased) to a Status. The
// Portuguese labels come from inventories exported by the old dashboard.
var statusAliases = map[string]Status{
	"available":      StatusAvailable,
	"disponível":     StatusAvailable,
	"disponivel":     StatusAvailable,
	"in_use":         StatusInUse,
	"in use":         StatusInUse,
	"in-use":         StatusInUse,
	"inuse":          StatusInUse,
	"em uso":         StatusInUse,
	"maintenance":    StatusMaintenance,
	"manutenção":     StatusMaintenance,
	"manutencao":     StatusMaintenance,
	"decommissioned": StatusDecommissioned,
	"baixado":        StatusDecommissioned,
}

// ParseStatus converts a status label to a Status.
func ParseStatus(s string) (Status, error) {
	if st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown asset status %q", s)
}

// Label returns a human-readable label for the status.
func (s Status) Label() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusInUse:
		return "In use"
	case StatusMaintenance:
		return "Maintenance"
	case StatusDecommissioned:
		return "Decommissioned"
	default:
		return string(s)
	}
}

// UnassignedSector is how an empty sector key is displayed.
const UnassignedSector = "unassigned"

// Record is a point-in-time view of one tracked asset.
type Record struct {
	ID     string
	Name   string
	Sector string
	Status Status

	// Health is 0-100; nil means the asset has never been scored and
	// counts as fully healthy.
	Health *int

	HasWarranty    bool
	WarrantyMonths *int
	PurchasedAt    time.Time

	// WarrantyExpiringSoon is computed by the store, never by the analyzers.
	WarrantyExpiringSoon bool
}

// New creates a Record with a generated UUID.
func New(name, sector string, status Status) *Record {
	return &Record{
		ID:     uuid.NewString(),
		Name:   name,
		Sector: sector,
		Status: status,
	}
}

// EffectiveHealth returns the health score, treating nil as 100.
func (r Record) EffectiveHealth() int {
	if r.Health == nil {
		return 100
	}
	return *r.Health
}

// Months returns the warranty duration in months, treating nil as 0.
func (r Record) Months() int {
	if r.WarrantyMonths == nil {
		return 0
	}
	return *r.WarrantyMonths
}

// Active reports whether the asset still takes part in risk computation.
func (r Record) Active() bool {
	return r.Status != StatusDecommissioned
}

// SectorLabel returns the sector for display.
func (r Record) SectorLabel() string {
	return SectorLabel(r.Sector)
}

// SectorLabel renders a raw sector key, mapping "" to UnassignedSector.
func SectorLabel(sector string) string {
	if sector == "" {
		return UnassignedSector
	}
	return sector
}

// Int returns a pointer to v, for building records with optional fields.
func Int(v int) *int {
	return &v
}
