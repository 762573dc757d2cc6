package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/setevik/assetrisk/internal/asset"
)

// SnapshotFilter controls which assets Snapshot returns.
type SnapshotFilter struct {
	// ActiveOnly drops decommissioned assets.
	ActiveOnly bool
	// Sector restricts the snapshot to one exact sector key when non-empty.
	Sector string
}

// Snapshot reads assets in a single transaction, in insertion order, with
// WarrantyExpiringSoon computed against now and window.
//
// Both analyzers should be fed from the same snapshot so the risk ranking
// and the alerts describe the same state of the inventory.
func (d *DB) Snapshot(now time.Time, window time.Duration, f SnapshotFilter) ([]asset.Record, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting snapshot: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + assetColumns + ` FROM assets WHERE 1=1`
	var args []interface{}

	if f.ActiveOnly {
		query += " AND status != ?"
		args = append(args, string(asset.StatusDecommissioned))
	}
	if f.Sector != "" {
		query += " AND sector = ?"
		args = append(args, f.Sector)
	}
	query += " ORDER BY rowid"

	assets, err := queryAssets(tx, query, args...)
	if err != nil {
		return nil, err
	}

	for i := range assets {
		assets[i].WarrantyExpiringSoon = WarrantyExpiringSoon(assets[i], now, window)
	}

	slog.Debug("snapshot captured", "assets", len(assets), "active_only", f.ActiveOnly)
	return assets, tx.Commit()
}

// CriticalHealthCandidates returns up to limit active assets whose health
// is strictly below criticalBelow. Unscored assets are never returned.
func (d *DB) CriticalHealthCandidates(criticalBelow, limit int) ([]asset.Record, error) {
	query := `SELECT ` + assetColumns + ` FROM assets
		WHERE health IS NOT NULL AND health < ? AND status != ?
		ORDER BY rowid`
	args := []interface{}{criticalBelow, string(asset.StatusDecommissioned)}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return queryAssets(d.db, query, args...)
}

// ExpiringWarrantyCandidates returns up to limit active assets whose
// warranty ends within window after now.
func (d *DB) ExpiringWarrantyCandidates(now time.Time, window time.Duration, limit int) ([]asset.Record, error) {
	assets, err := queryAssets(d.db, `SELECT `+assetColumns+` FROM assets
		WHERE has_warranty AND warranty_months > 0 AND purchased_at IS NOT NULL AND status != ?
		ORDER BY rowid`, string(asset.StatusDecommissioned))
	if err != nil {
		return nil, err
	}

	var out []asset.Record
	for _, a := range assets {
		if limit > 0 && len(out) >= limit {
			break
		}
		if WarrantyExpiringSoon(a, now, window) {
			a.WarrantyExpiringSoon = true
			out = append(out, a)
		}
	}
	return out, nil
}

// WarrantyEnd returns when the asset's warranty runs out, or false when it
// has no dated warranty.
func WarrantyEnd(a asset.Record) (time.Time, bool) {
	if !a.HasWarranty || a.Months() <= 0 || a.PurchasedAt.IsZero() {
		return time.Time{}, false
	}
	return a.PurchasedAt.AddDate(0, a.Months(), 0), true
}

// WarrantyExpiringSoon reports whether the warranty is still valid at now
// and ends no later than now+window.
func WarrantyExpiringSoon(a asset.Record, now time.Time, window time.Duration) bool {
	end, ok := WarrantyEnd(a)
	if !ok {
		return false
	}
	return end.After(now) && !end.After(now.Add(window))
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

func queryAssets(q querier, query string, args ...interface{}) ([]asset.Record, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying assets: %w", err)
	}
	defer rows.Close()

	var assets []asset.Record
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}
