// Package inventory loads asset inventories exported as YAML or JSON.
package inventory

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/setevik/assetrisk/internal/asset"
)

// File is the on-disk inventory document. JSON documents decode the same
// way since YAML is a superset of JSON.
type File struct {
	Assets       []AssetEntry       `yaml:"assets"`
	Maintenances []MaintenanceEntry `yaml:"maintenances"`
}

// AssetEntry is one asset as written in an inventory file.
type AssetEntry struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Sector         string `yaml:"sector"`
	Status         string `yaml:"status"`
	Health         *int   `yaml:"health"`
	HasWarranty    bool   `yaml:"has_warranty"`
	WarrantyMonths *int   `yaml:"warranty_months"`
	PurchasedAt    string `yaml:"purchased_at"`
}

// MaintenanceEntry is one maintenance intervention as written in an
// inventory file.
type MaintenanceEntry struct {
	ID             string `yaml:"id"`
	AssetID        string `yaml:"asset_id"`
	PerformedAt    string `yaml:"performed_at"`
	Kind           string `yaml:"kind"`
	Description    string `yaml:"description"`
	RestoresHealth bool   `yaml:"restores_health"`
}

// Inventory is a decoded and validated inventory.
type Inventory struct {
	Assets       []*asset.Record
	Maintenances []*asset.Maintenance
}

// Load reads and decodes the inventory file at path.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory: %w", err)
	}
	inv, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing inventory %s: %w", path, err)
	}
	return inv, nil
}

// Parse decodes an inventory document. Maintenance entries must name an
// asset_id. Entries without an ID get one derived from their content, so
// importing the same document twice updates rows instead of adding them.
func Parse(data []byte) (*Inventory, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	inv := &Inventory{}
	seen := make(map[string]int)
	for i, e := range f.Assets {
		a, err := e.record()
		if err != nil {
			return nil, fmt.Errorf("asset %d (%s): %w", i+1, e.Name, err)
		}
		if a.ID == "" {
			a.ID = derivedID(seen, "asset", a.Name, a.Sector)
		}
		inv.Assets = append(inv.Assets, a)
	}
	for i, e := range f.Maintenances {
		m, err := e.maintenance()
		if err != nil {
			return nil, fmt.Errorf("maintenance %d: %w", i+1, err)
		}
		if e.ID == "" {
			m.ID = derivedID(seen, "maintenance", m.AssetID,
				m.PerformedAt.UTC().Format(time.RFC3339Nano), string(m.Kind), m.Description)
		}
		inv.Maintenances = append(inv.Maintenances, m)
	}
	return inv, nil
}

// derivedID returns a name-based UUID for parts. Identical entries within
// one document are told apart by their occurrence number, tracked in seen.
func derivedID(seen map[string]int, parts ...string) string {
	key := strings.Join(parts, "\x00")
	seen[key]++
	name := fmt.Sprintf("assetrisk:%s#%d", key, seen[key])
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func (e AssetEntry) record() (*asset.Record, error) {
	if strings.TrimSpace(e.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	status, err := asset.ParseStatus(e.Status)
	if err != nil {
		return nil, err
	}
	if e.Health != nil && (*e.Health < 0 || *e.Health > 100) {
		return nil, fmt.Errorf("health %d out of range 0-100", *e.Health)
	}
	if e.WarrantyMonths != nil && *e.WarrantyMonths < 0 {
		return nil, fmt.Errorf("warranty_months must not be negative")
	}

	a := &asset.Record{
		ID:             e.ID,
		Name:           e.Name,
		Sector:         e.Sector,
		Status:         status,
		Health:         e.Health,
		HasWarranty:    e.HasWarranty,
		WarrantyMonths: e.WarrantyMonths,
	}
	if e.PurchasedAt != "" {
		if a.PurchasedAt, err = parseTime(e.PurchasedAt); err != nil {
			return nil, fmt.Errorf("purchased_at: %w", err)
		}
	}
	return a, nil
}

func (e MaintenanceEntry) maintenance() (*asset.Maintenance, error) {
	if e.AssetID == "" {
		return nil, fmt.Errorf("asset_id is required")
	}
	kind, err := asset.ParseMaintenanceKind(e.Kind)
	if err != nil {
		return nil, err
	}
	ts, err := parseTime(e.PerformedAt)
	if err != nil {
		return nil, fmt.Errorf("performed_at: %w", err)
	}

	m := asset.NewMaintenance(e.AssetID, ts, kind, e.Description)
	if e.ID != "" {
		m.ID = e.ID
	}
	m.RestoresHealth = e.RestoresHealth
	return m, nil
}

// timeLayouts are tried in order when parsing dates.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
