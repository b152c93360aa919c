package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/obs-tools/visit-atlas/pkg/cache"
	"github.com/obs-tools/visit-atlas/pkg/server"
	"github.com/obs-tools/visit-atlas/pkg/services/config"
	"github.com/obs-tools/visit-atlas/pkg/services/period"
	"github.com/obs-tools/visit-atlas/pkg/services/report"
	"github.com/obs-tools/visit-atlas/pkg/services/zone"
	"github.com/obs-tools/visit-atlas/pkg/store/duckdb"
	"github.com/obs-tools/visit-atlas/pkg/store/duckdb/facts"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Visit Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the configuration file (default is ./visit-atlas.yaml)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file loaded: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: cfg.Store.Path,
	})
	if err != nil {
		return fmt.Errorf("failed to open fact store: %w", err)
	}
	defer db.Close()

	factStore, err := facts.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create fact store: %w", err)
	}

	epoch, ok := zone.ParseEpoch(cfg.Zones.Epoch)
	if !ok {
		return fmt.Errorf("unknown zone epoch %q", cfg.Zones.Epoch)
	}
	zones := zone.NewResolver(epoch, factStore)
	if cfg.Zones.AliasFile != "" {
		if err := zones.LoadAliases(cfg.Zones.AliasFile); err != nil {
			return fmt.Errorf("failed to load zone aliases: %w", err)
		}
		logger.Info().Str("path", cfg.Zones.AliasFile).Msg("zone aliases loaded")
	}

	qc := cache.New(cache.Config{
		DefaultTTL: cfg.Cache.DefaultTTL,
		TTLs:       cfg.Cache.TTLs,
	})

	reports := report.NewService(period.NewResolver(), zones, factStore, qc, cfg.Store.QueryTimeout)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	api := server.NewWebAPI(logger, server.Config{
		Addr:            addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Reports: reports,
			Cache:   qc,
		},
	})

	logger.Info().
		Str("epoch", string(epoch)).
		Str("store", cfg.Store.Path).
		Msg("visit-atlas configured")

	return api.Start()
}
