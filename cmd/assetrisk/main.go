// assetrisk ranks sectors by how much of their equipment is under
// maintenance, raises health and warranty alerts, and suggests
// replacements for assets that keep breaking.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/setevik/assetrisk/internal/asset"
	"github.com/setevik/assetrisk/internal/config"
	"github.com/setevik/assetrisk/internal/format"
	"github.com/setevik/assetrisk/internal/health"
	"github.com/setevik/assetrisk/internal/inventory"
	"github.com/setevik/assetrisk/internal/metrics"
	"github.com/setevik/assetrisk/internal/reporter"
	"github.com/setevik/assetrisk/internal/risk"
	"github.com/setevik/assetrisk/internal/store"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "import":
		runImport(args)
	case "risk":
		runRisk(args)
	case "alerts":
		runAlerts(args)
	case "summary":
		runSummary(args)
	case "maintenance":
		runMaintenance(args)
	case "asset":
		runAsset(args)
	case "metrics":
		runMetrics(args)
	case "status":
		runStatus(args)
	case "version", "-version", "--version":
		fmt.Println("assetrisk", version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: assetrisk <command> [flags]

commands:
  import       load assets and maintenances from a YAML or JSON file
  risk         rank sectors by maintenance exposure
  alerts       list critical health and expiring warranty alerts
  summary      print inventory KPIs
  maintenance  record a maintenance entry and recompute health
  asset        show one asset with its health tier
  metrics      write Prometheus textfile metrics
  status       show configuration and database state
  version      print version`)
}

// --- import subcommand ---

func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	file := fs.String("file", "", "inventory file (YAML or JSON)")
	recompute := fs.Bool("recompute", false, "derive health from imported maintenance history")
	fs.Parse(args)

	if *file == "" && fs.NArg() > 0 {
		*file = fs.Arg(0)
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "error: no inventory file given")
		os.Exit(2)
	}

	cfg := mustLoadConfig(*configPath, "")
	db := mustOpenDB(cfg)
	defer db.Close()

	inv, err := inventory.Load(*file)
	if err != nil {
		fatalf("error reading inventory: %v", err)
	}

	if err := db.Import(inv.Assets, inv.Maintenances); err != nil {
		fatalf("error importing inventory: %v", err)
	}
	slog.Info("inventory imported",
		"file", *file,
		"assets", len(inv.Assets),
		"maintenances", len(inv.Maintenances),
	)

	if *recompute {
		seen := make(map[string]bool)
		for _, m := range inv.Maintenances {
			if seen[m.AssetID] {
				continue
			}
			seen[m.AssetID] = true
			if _, err := db.RecomputeHealth(m.AssetID); err != nil {
				slog.Warn("failed to recompute health", "asset", m.AssetID, "error", err)
			}
		}
	}

	if cfg.DB.Retention.Duration > 0 {
		purged, err := db.PurgeDecommissioned(cfg.DB.Retention.Duration)
		if err != nil {
			slog.Warn("failed to purge decommissioned assets", "error", err)
		} else if purged > 0 {
			slog.Info("purged decommissioned assets", "count", purged, "retention", cfg.DB.Retention.Duration)
		}
	}

	fmt.Printf("Imported %d asset(s) and %d maintenance(s).\n", len(inv.Assets), len(inv.Maintenances))
}

// --- risk subcommand ---

func runRisk(args []string) {
	fs := flag.NewFlagSet("risk", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	sector := fs.String("sector", "", "restrict to one sector (exact name)")
	top := fs.Int("top", 0, "show only the N most exposed sectors")
	fs.Parse(args)

	cfg := mustLoadConfig(*configPath, "error")
	db := mustOpenDB(cfg)
	defer db.Close()

	a := mustAnalyze(db, cfg, time.Now(), store.SnapshotFilter{ActiveOnly: true, Sector: *sector})
	fmt.Print(reporter.FormatRiskTable(a.risks, *top))
}

// --- alerts subcommand ---

func runAlerts(args []string) {
	fs := flag.NewFlagSet("alerts", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	limit := fs.Int("limit", 0, "max alerts per kind (default from config)")
	fs.Parse(args)

	cfg := mustLoadConfig(*configPath, "error")
	db := mustOpenDB(cfg)
	defer db.Close()

	if *limit > 0 {
		cfg.Thresholds.AlertLimit = *limit
	}

	a := mustAnalyze(db, cfg, time.Now(), store.SnapshotFilter{ActiveOnly: true})
	fmt.Print(reporter.FormatAlerts(a.alerts))
}

// --- summary subcommand ---

func runSummary(args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg := mustLoadConfig(*configPath, "error")
	db := mustOpenDB(cfg)
	defer db.Close()

	now := time.Now()
	assets, err := db.Snapshot(now, cfg.Warranty.Window.Duration, store.SnapshotFilter{})
	if err != nil {
		fatalf("error reading inventory: %v", err)
	}
	sinceRestore, err := db.SinceRestoreCounts()
	if err != nil {
		fatalf("error reading maintenance history: %v", err)
	}

	s := reporter.BuildSummary(cfg.Instance.ID, assets, health.New(cfg.HealthThresholds()), sinceRestore, now)
	fmt.Println(reporter.FormatSummaryTitle(s))
	fmt.Print(reporter.FormatSummary(s))
}

// --- maintenance subcommand ---

func runMaintenance(args []string) {
	fs := flag.NewFlagSet("maintenance", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	assetID := fs.String("asset", "", "asset ID")
	kind := fs.String("kind", "corrective", "preventive, corrective, upgrade or other")
	desc := fs.String("desc", "", "what was done")
	restores := fs.Bool("restore", false, "the maintenance restores the asset to full health")
	at := fs.String("at", "", "when it was performed (YYYY-MM-DD, default now)")
	fs.Parse(args)

	if *assetID == "" {
		fmt.Fprintln(os.Stderr, "error: -asset is required")
		os.Exit(2)
	}
	k, err := asset.ParseMaintenanceKind(*kind)
	if err != nil {
		fatalf("error: %v", err)
	}
	performedAt := time.Now()
	if *at != "" {
		performedAt, err = time.ParseInLocation("2006-01-02", *at, time.Local)
		if err != nil {
			fatalf("invalid -at value %q: %v", *at, err)
		}
	}

	cfg := mustLoadConfig(*configPath, "")
	db := mustOpenDB(cfg)
	defer db.Close()

	m := asset.NewMaintenance(*assetID, performedAt, k, *desc)
	m.RestoresHealth = *restores

	score, err := db.AddMaintenance(m)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fatalf("asset %s not found", *assetID)
		}
		fatalf("error recording maintenance: %v", err)
	}

	ev := health.New(cfg.HealthThresholds())
	fmt.Printf("Health:   %s (%s)\n", format.Percent(score), ev.Tier(&score).Label())

	n, err := db.MaintenanceCountSinceRestore(*assetID)
	if err != nil {
		fatalf("error reading maintenance history: %v", err)
	}
	if ev.ShouldSuggestReplacement(n) {
		fmt.Printf("Replace:  suggested (%d corrective maintenances since last restore)\n", n)
	}
}

// --- asset subcommand ---

func runAsset(args []string) {
	fs := flag.NewFlagSet("asset", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: assetrisk asset [-config path] <asset-id>")
		os.Exit(2)
	}
	id := fs.Arg(0)

	cfg := mustLoadConfig(*configPath, "error")
	db := mustOpenDB(cfg)
	defer db.Close()

	a, err := db.GetAsset(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fatalf("asset %s not found", id)
		}
		fatalf("error reading asset: %v", err)
	}
	history, err := db.Maintenances(id)
	if err != nil {
		fatalf("error reading maintenance history: %v", err)
	}

	ev := health.New(cfg.HealthThresholds())
	now := time.Now()

	fmt.Printf("ID:           %s\n", a.ID)
	fmt.Printf("Name:         %s\n", a.Name)
	fmt.Printf("Sector:       %s\n", a.SectorLabel())
	fmt.Printf("Status:       %s\n", a.Status.Label())
	if a.Health != nil {
		fmt.Printf("Health:       %s (%s)\n", format.Percent(*a.Health), ev.Tier(a.Health).Label())
	} else {
		fmt.Printf("Health:       unscored (%s)\n", ev.Tier(nil).Label())
	}

	if end, ok := store.WarrantyEnd(*a); ok {
		state := "active"
		switch {
		case !end.After(now):
			state = "expired"
		case store.WarrantyExpiringSoon(*a, now, cfg.Warranty.Window.Duration):
			state = "expiring in " + format.Duration(end.Sub(now).Truncate(time.Hour))
		}
		fmt.Printf("Warranty:     %s until %s (%s)\n", format.Months(a.Months()), end.Format("2006-01-02"), state)
	} else {
		fmt.Println("Warranty:     none")
	}

	n := health.CountSinceRestore(history)
	fmt.Printf("Maintenances: %d total, %d corrective since last restore\n", len(history), n)
	if ev.ShouldSuggestReplacement(n) {
		fmt.Println("Replace:      suggested")
	}

	for _, m := range history {
		line := fmt.Sprintf("  %s  %-10s %s", m.PerformedAt.Local().Format("2006-01-02"), m.Kind, m.Description)
		if m.RestoresHealth {
			line += " [restored]"
		}
		fmt.Println(strings.TrimRight(line, " "))
	}
}

// --- metrics subcommand ---

func runMetrics(args []string) {
	fs := flag.NewFlagSet("metrics", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	out := fs.String("out", "", "textfile path (default from config)")
	fs.Parse(args)

	cfg := mustLoadConfig(*configPath, "")
	if *out == "" {
		*out = cfg.Metrics.TextfilePath
	}
	if *out == "" {
		fmt.Fprintln(os.Stderr, "error: no metrics textfile path configured")
		os.Exit(2)
	}

	db := mustOpenDB(cfg)
	defer db.Close()

	a := mustAnalyze(db, cfg, time.Now(), store.SnapshotFilter{ActiveOnly: true})

	c := metrics.New()
	c.Update(a.risks, a.alerts)
	if err := c.WriteTextfile(*out); err != nil {
		fatalf("error: %v", err)
	}
	slog.Info("metrics written",
		"path", *out,
		"sectors", len(a.risks),
		"alerts", len(a.alerts),
	)
}

// --- status subcommand ---

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg := mustLoadConfig(*configPath, "error")

	fmt.Printf("Instance:        %s\n", cfg.Instance.ID)
	fmt.Printf("Health critical: below %s\n", format.Percent(cfg.Thresholds.CriticalBelow))
	fmt.Printf("Replace after:   %d corrective maintenances\n", cfg.Thresholds.Replacement)
	fmt.Printf("Warranty window: %s\n", format.Duration(cfg.Warranty.Window.Duration))

	db := mustOpenDB(cfg)
	defer db.Close()

	count, _ := db.Count()
	fmt.Printf("DB assets:       %d total\n", count)
	fmt.Printf("DB path:         %s\n", cfg.DBPath())

	// One extra row tells a full list apart from a truncated one.
	limit := cfg.Thresholds.AlertLimit
	if crit, err := db.CriticalHealthCandidates(cfg.Thresholds.CriticalBelow, limit+1); err == nil {
		fmt.Printf("Critical health: %s\n", countCapped(len(crit), limit))
	}
	if exp, err := db.ExpiringWarrantyCandidates(time.Now(), cfg.Warranty.Window.Duration, limit+1); err == nil {
		fmt.Printf("Warranty soon:   %s\n", countCapped(len(exp), limit))
	}
}

// countCapped renders n candidates fetched with a limit of limit+1.
func countCapped(n, limit int) string {
	if limit > 0 && n > limit {
		return fmt.Sprintf("%d+", limit)
	}
	return fmt.Sprintf("%d", n)
}

// --- analysis ---

// analysis is the output of both analyzers over one snapshot.
type analysis struct {
	assets []asset.Record
	risks  []risk.SectorRisk
	alerts []health.Alert
}

// analyze captures a single snapshot and feeds it to the sector risk
// ranking and the health alerts.
func analyze(db *store.DB, cfg *config.Config, now time.Time, f store.SnapshotFilter) (*analysis, error) {
	assets, err := db.Snapshot(now, cfg.Warranty.Window.Duration, f)
	if err != nil {
		return nil, fmt.Errorf("capturing snapshot: %w", err)
	}

	ev := health.New(cfg.HealthThresholds())
	limit := ev.Thresholds().AlertLimit

	a := &analysis{
		assets: assets,
		risks:  risk.ComputeSectorRisk(assets),
		alerts: ev.ComputeAlerts(
			ev.SelectCriticalHealth(assets, limit),
			ev.SelectExpiringWarranty(assets, limit),
			limit,
		),
	}

	slog.Debug("analysis complete",
		"assets", len(assets),
		"sectors_at_risk", len(a.risks),
		"alerts", len(a.alerts),
	)
	return a, nil
}

func mustAnalyze(db *store.DB, cfg *config.Config, now time.Time, f store.SnapshotFilter) *analysis {
	a, err := analyze(db, cfg, now, f)
	if err != nil {
		fatalf("error: %v", err)
	}
	return a
}

// --- utilities ---

// mustLoadConfig loads the config and sets up logging. A non-empty
// logLevel overrides the configured one (quiet for report output).
func mustLoadConfig(path, logLevel string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	if logLevel == "" {
		logLevel = cfg.Log.Level
	}
	setupLogging(logLevel)
	return cfg
}

func mustOpenDB(cfg *config.Config) *store.DB {
	db, err := store.Open(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	return db
}

func fatalf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
