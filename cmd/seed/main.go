// Command seed loads reference data (geography, locations, levels) into the
// database and optionally re-evaluates every user's achievements.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/aimd54/geoquest/internal/config"
	"github.com/aimd54/geoquest/internal/repository"
	"github.com/aimd54/geoquest/internal/seed"
	"github.com/aimd54/geoquest/internal/service/achievements"
	"github.com/aimd54/geoquest/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	dataFile := flag.String("file", "data/tenerife.yaml", "reference data file to load")
	reconcile := flag.Bool("reconcile", false, "re-evaluate achievements for every user after seeding")
	flag.Parse()

	if err := run(*configPath, *dataFile, *reconcile); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, dataFile string, reconcile bool) error {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if cfg.Database.Migrate == config.MigrateMigrations {
		err = repository.RunMigrations(&cfg.Database.Postgres, log)
	} else {
		err = db.AutoMigrate()
	}
	if err != nil {
		return fmt.Errorf("failed to prepare schema: %w", err)
	}

	ds, err := seed.Load(dataFile)
	if err != nil {
		return err
	}

	summary, err := seed.Apply(ctx, db, ds, log)
	if err != nil {
		return err
	}
	log.Info().
		Str("file", dataFile).
		Int("municipalities", summary.Municipalities).
		Int("locations", summary.Locations).
		Int("levels", summary.Levels).
		Msg("Reference data loaded")

	catalog, err := achievements.CatalogFromConfig(cfg.Achievements)
	if err != nil {
		return err
	}
	service := achievements.NewService(db, achievements.NewEvaluator(catalog, log), log)
	if _, err := service.SyncCatalog(ctx); err != nil {
		return fmt.Errorf("failed to sync achievement catalog: %w", err)
	}

	if reconcile {
		credited, err := service.ReconcileAll(ctx)
		if err != nil {
			return fmt.Errorf("reconciliation failed: %w", err)
		}
		log.Info().Int("credited", credited).Msg("Reconciliation finished")
	}

	return nil
}
