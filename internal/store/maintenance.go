package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/setevik/assetrisk/internal/asset"
	"github.com/setevik/assetrisk/internal/health"
)

// AddMaintenance records a maintenance entry and recomputes the asset's
// health from its full history. It returns the new health score.
func (d *DB) AddMaintenance(m *asset.Maintenance) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting maintenance insert: %w", err)
	}
	defer tx.Rollback()

	if err := insertMaintenance(tx, m); err != nil {
		return 0, err
	}

	score, err := d.recomputeHealth(tx, m.AssetID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing maintenance: %w", err)
	}

	slog.Info("maintenance recorded",
		"asset", m.AssetID,
		"kind", m.Kind,
		"restores_health", m.RestoresHealth,
		"health", score,
	)
	return score, nil
}

// Maintenances returns an asset's maintenance history, oldest first.
// Entries with the same timestamp keep the order they were recorded in.
func (d *DB) Maintenances(assetID string) ([]asset.Maintenance, error) {
	return queryMaintenances(d.db, assetID)
}

// MaintenanceCountSinceRestore returns the number of corrective
// maintenances recorded for an asset since its last health restore.
func (d *DB) MaintenanceCountSinceRestore(assetID string) (int, error) {
	history, err := d.Maintenances(assetID)
	if err != nil {
		return 0, err
	}
	return health.CountSinceRestore(history), nil
}

// SinceRestoreCounts returns the corrective count since last restore for
// every asset that has a maintenance history.
func (d *DB) SinceRestoreCounts() (map[string]int, error) {
	rows, err := d.db.Query(`SELECT id, asset_id, performed_at, kind, description, restores_health
		FROM maintenances ORDER BY asset_id, performed_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying maintenances: %w", err)
	}
	all, err := scanMaintenances(rows)
	if err != nil {
		return nil, err
	}

	byAsset := make(map[string][]asset.Maintenance)
	for _, m := range all {
		byAsset[m.AssetID] = append(byAsset[m.AssetID], m)
	}

	counts := make(map[string]int, len(byAsset))
	for id, history := range byAsset {
		counts[id] = health.CountSinceRestore(history)
	}
	return counts, nil
}

// RecomputeHealth derives the asset's health from its maintenance history
// and stores it.
func (d *DB) RecomputeHealth(assetID string) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting health update: %w", err)
	}
	defer tx.Rollback()

	score, err := d.recomputeHealth(tx, assetID)
	if err != nil {
		return 0, err
	}
	return score, tx.Commit()
}

func (d *DB) recomputeHealth(tx *sql.Tx, assetID string) (int, error) {
	history, err := queryMaintenances(tx, assetID)
	if err != nil {
		return 0, err
	}
	score := health.ScoreFromHistory(history)

	result, err := tx.Exec(`UPDATE assets SET health = ?, updated_at = ? WHERE id = ?`,
		score, d.now().UTC().Format(time.RFC3339Nano), assetID)
	if err != nil {
		return 0, fmt.Errorf("updating health for %s: %w", assetID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, assetID)
	}
	return score, nil
}

// insertMaintenance stores m, replacing any entry with the same ID.
func insertMaintenance(ex execer, m *asset.Maintenance) error {
	_, err := ex.Exec(`
		INSERT INTO maintenances (id, asset_id, performed_at, kind, description, restores_health)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			asset_id = excluded.asset_id,
			performed_at = excluded.performed_at,
			kind = excluded.kind,
			description = excluded.description,
			restores_health = excluded.restores_health`,
		m.ID,
		m.AssetID,
		m.PerformedAt.UTC().Format(time.RFC3339Nano),
		string(m.Kind),
		m.Description,
		m.RestoresHealth,
	)
	if err != nil {
		return fmt.Errorf("inserting maintenance for %s: %w", m.AssetID, err)
	}
	return nil
}

func queryMaintenances(q querier, assetID string) ([]asset.Maintenance, error) {
	rows, err := q.Query(`SELECT id, asset_id, performed_at, kind, description, restores_health
		FROM maintenances WHERE asset_id = ? ORDER BY performed_at, rowid`, assetID)
	if err != nil {
		return nil, fmt.Errorf("querying maintenances: %w", err)
	}
	return scanMaintenances(rows)
}

func scanMaintenances(rows *sql.Rows) ([]asset.Maintenance, error) {
	defer rows.Close()

	var out []asset.Maintenance
	for rows.Next() {
		var m asset.Maintenance
		var ts, kind string
		var desc sql.NullString
		if err := rows.Scan(&m.ID, &m.AssetID, &ts, &kind, &desc, &m.RestoresHealth); err != nil {
			return nil, fmt.Errorf("scanning maintenance row: %w", err)
		}
		m.PerformedAt, _ = time.Parse(time.RFC3339Nano, ts)
		m.Kind = asset.MaintenanceKind(kind)
		m.Description = desc.String
		out = append(out, m)
	}
	return out, rows.Err()
}
