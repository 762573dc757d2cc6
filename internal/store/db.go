// Package store provides SQLite-backed inventory storage and the data-layer
// rules (warranty expiry, candidate selection) that feed the analyzers.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/setevik/assetrisk/internal/asset"
)

// ErrNotFound is returned when a requested asset does not exist.
var ErrNotFound = errors.New("asset not found")

// DB wraps an SQLite connection for inventory storage.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates an SQLite database at the given path.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single writer connection to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &DB{db: db, now: time.Now}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// UpsertAsset inserts an asset or replaces the stored copy with the same ID.
func (d *DB) UpsertAsset(a *asset.Record) error {
	return d.upsertAsset(d.db, a)
}

func (d *DB) upsertAsset(ex execer, a *asset.Record) error {
	_, err := ex.Exec(`
		INSERT INTO assets (id, name, sector, status, health, has_warranty, warranty_months, purchased_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			sector = excluded.sector,
			status = excluded.status,
			health = excluded.health,
			has_warranty = excluded.has_warranty,
			warranty_months = excluded.warranty_months,
			purchased_at = excluded.purchased_at,
			updated_at = excluded.updated_at`,
		a.ID,
		a.Name,
		a.Sector,
		string(a.Status),
		nullInt(a.Health),
		a.HasWarranty,
		nullInt(a.WarrantyMonths),
		nullTime(a.PurchasedAt),
		d.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting asset %s: %w", a.ID, err)
	}
	return nil
}

// Import stores a batch of assets and maintenance entries in one transaction.
func (d *DB) Import(assets []*asset.Record, maints []*asset.Maintenance) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("starting import: %w", err)
	}
	defer tx.Rollback()

	for _, a := range assets {
		if err := d.upsertAsset(tx, a); err != nil {
			return err
		}
	}
	for _, m := range maints {
		if err := insertMaintenance(tx, m); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	slog.Debug("import committed", "assets", len(assets), "maintenances", len(maints))
	return nil
}

// GetAsset returns one asset by ID.
func (d *DB) GetAsset(id string) (*asset.Record, error) {
	row := d.db.QueryRow(`SELECT `+assetColumns+` FROM assets WHERE id = ?`, id)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a, err
}

// Count returns the total number of stored assets.
func (d *DB) Count() (int64, error) {
	var n int64
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM assets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting assets: %w", err)
	}
	return n, nil
}

// PurgeDecommissioned deletes decommissioned assets, and their maintenance
// history, that have not been updated within the retention period.
func (d *DB) PurgeDecommissioned(retention time.Duration) (int64, error) {
	cutoff := d.now().Add(-retention).UTC().Format(time.RFC3339Nano)

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting purge: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM maintenances WHERE asset_id IN (
		SELECT id FROM assets WHERE status = ? AND updated_at < ?)`,
		string(asset.StatusDecommissioned), cutoff); err != nil {
		return 0, fmt.Errorf("purging maintenance history: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM assets WHERE status = ? AND updated_at < ?`,
		string(asset.StatusDecommissioned), cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging decommissioned assets: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing purge: %w", err)
	}
	return n, nil
}

const assetColumns = `id, name, sector, status, health, has_warranty, warranty_months, purchased_at`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(s scanner) (*asset.Record, error) {
	var a asset.Record
	var status string
	var healthScore, months sql.NullInt64
	var purchased sql.NullString

	err := s.Scan(
		&a.ID,
		&a.Name,
		&a.Sector,
		&status,
		&healthScore,
		&a.HasWarranty,
		&months,
		&purchased,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning asset row: %w", err)
	}

	a.Status = asset.Status(status)
	if healthScore.Valid {
		a.Health = asset.Int(int(healthScore.Int64))
	}
	if months.Valid {
		a.WarrantyMonths = asset.Int(int(months.Int64))
	}
	if purchased.Valid {
		a.PurchasedAt, _ = time.Parse(time.RFC3339Nano, purchased.String)
	}
	return &a, nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS assets (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			sector          TEXT NOT NULL DEFAULT '',
			status          TEXT NOT NULL,
			health          INTEGER,
			has_warranty    BOOLEAN NOT NULL DEFAULT FALSE,
			warranty_months INTEGER,
			purchased_at    TEXT,
			updated_at      TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS maintenances (
			id              TEXT PRIMARY KEY,
			asset_id        TEXT NOT NULL REFERENCES assets(id),
			performed_at    TEXT NOT NULL,
			kind            TEXT NOT NULL,
			description     TEXT,
			restores_health BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assets_status ON assets(status)`,
		`CREATE INDEX IF NOT EXISTS idx_assets_health ON assets(health)`,
		`CREATE INDEX IF NOT EXISTS idx_maintenances_asset ON maintenances(asset_id, performed_at)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Debug("database schema up to date")
	return nil
}
