package commands

import (
	"database/sql"
	"fmt"

	"github.com/obs-tools/visit-atlas/pkg/cache"
	"github.com/obs-tools/visit-atlas/pkg/services/config"
	"github.com/obs-tools/visit-atlas/pkg/services/period"
	"github.com/obs-tools/visit-atlas/pkg/services/report"
	"github.com/obs-tools/visit-atlas/pkg/services/zone"
	"github.com/obs-tools/visit-atlas/pkg/store/duckdb"
	"github.com/obs-tools/visit-atlas/pkg/store/duckdb/facts"
)

// deps is the wired pipeline a command runs against. Close releases
// the database handle.
type deps struct {
	db      *sql.DB
	facts   facts.Store
	reports *report.Service
}

func (d *deps) Close() error {
	return d.db.Close()
}

func buildDeps(cfgPath string) (*deps, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.Store.Path})
	if err != nil {
		return nil, fmt.Errorf("failed to open fact store: %w", err)
	}

	factStore, err := facts.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	epoch, ok := zone.ParseEpoch(cfg.Zones.Epoch)
	if !ok {
		_ = db.Close()
		return nil, fmt.Errorf("unknown zone epoch %q", cfg.Zones.Epoch)
	}
	zones := zone.NewResolver(epoch, factStore)
	if cfg.Zones.AliasFile != "" {
		if err := zones.LoadAliases(cfg.Zones.AliasFile); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to load zone aliases: %w", err)
		}
	}

	qc := cache.New(cache.Config{
		DefaultTTL: cfg.Cache.DefaultTTL,
		TTLs:       cfg.Cache.TTLs,
	})

	reports := report.NewService(period.NewResolver(), zones, factStore, qc, cfg.Store.QueryTimeout)

	return &deps{
		db:      db,
		facts:   factStore,
		reports: reports,
	}, nil
}
