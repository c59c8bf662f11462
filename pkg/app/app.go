// Package app wires configuration, storage and services into the report pipeline shared by the
// web server and the CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/de-tools/work-reports/pkg/format"
	"github.com/de-tools/work-reports/pkg/observability"
	"github.com/de-tools/work-reports/pkg/render"
	"github.com/de-tools/work-reports/pkg/services/config"
	"github.com/de-tools/work-reports/pkg/services/identity"
	"github.com/de-tools/work-reports/pkg/services/records"
	"github.com/de-tools/work-reports/pkg/services/report"
	"github.com/de-tools/work-reports/pkg/store/objectstore"
	"github.com/de-tools/work-reports/pkg/store/sqlite"
	recordstore "github.com/de-tools/work-reports/pkg/store/sqlite/records"
	"github.com/de-tools/work-reports/pkg/store/sqlite/reports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

type App struct {
	Config    *config.Config
	DB        *sql.DB
	Formatter *format.Formatter
	Objects   objectstore.Store
	Artifacts report.ArtifactRecords
	Metrics   *observability.Metrics
	Importer  *records.Importer
	Reports   report.Service
	History   report.History
	Sweeper   *report.Sweeper
}

// Options replace parts of the default wiring.
type Options struct {
	// Objects is used instead of the store configured in Storage.
	Objects objectstore.Store
	// Registry receives the pipeline metrics. A fresh registry with the Go and process
	// collectors is used when nil.
	Registry *prometheus.Registry
}

func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := zerolog.Ctx(ctx)

	formatter, err := format.New(cfg.Format.Locale, cfg.Format.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to create formatter: %w", err)
	}

	db, err := sqlite.NewDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	recStore, err := recordstore.NewStore(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create records store: %w", err)
	}
	reportStore, err := reports.NewStore(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create reports store: %w", err)
	}

	objects := opts.Objects
	if objects == nil {
		objects, err = objectstore.DefaultRegistry().Create(ctx, cfg.Storage)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create object store: %w", err)
		}
	}

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	metrics := observability.NewMetrics(reg)

	source := records.NewSource(recStore)
	authz := identity.NewAuthorizer(source)
	artifacts := report.NewArtifactRecords(reportStore)

	logger.Debug().
		Str("database", cfg.Database.DbPath).
		Str("storage", cfg.Storage.Driver).
		Str("locale", formatter.Locale()).
		Str("currency", formatter.CurrencyCode()).
		Msg("report pipeline configured")

	return &App{
		Config:    cfg,
		DB:        db,
		Formatter: formatter,
		Objects:   objects,
		Artifacts: artifacts,
		Metrics:   metrics,
		Importer:  records.NewImporter(db, recStore),
		Reports: report.NewService(
			authz,
			report.NewAggregator(source),
			report.NewMerger(formatter),
			render.NewPDF(cfg.Renderer),
			report.NewOrchestrator(objects, artifacts, metrics),
			metrics,
		),
		History: report.NewHistory(authz, artifacts, objects, cfg.Reports.URLTTL),
		Sweeper: report.NewSweeper(objects, artifacts, metrics, cfg.Sweep.Delete),
	}, nil
}

// StartupSweep runs the configured orphan sweep once. It must finish before requests are
// served, since an upload whose record is not written yet looks like an orphan.
// It returns nil when the sweep is disabled.
func (a *App) StartupSweep(ctx context.Context) (*report.SweepResult, error) {
	if !a.Config.Sweep.Enabled {
		return nil, nil
	}
	result, err := a.Sweeper.Sweep(ctx, a.Config.Sweep.Prefix)
	if err != nil {
		return nil, fmt.Errorf("orphan sweep: %w", err)
	}
	zerolog.Ctx(ctx).Info().
		Int("scanned", result.Scanned).
		Int("orphans", len(result.Orphans)).
		Int("deleted", len(result.Deleted)).
		Msg("orphan sweep finished")
	return result, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

// NewLogger builds the process logger. Level names follow zerolog ("debug", "info", ...).
func NewLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level: %w", err)
		}
		lvl = parsed
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
