// Command server runs the geoquest HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aimd54/geoquest/internal/api/explorer"
	"github.com/aimd54/geoquest/internal/cache"
	"github.com/aimd54/geoquest/internal/config"
	"github.com/aimd54/geoquest/internal/repository"
	"github.com/aimd54/geoquest/internal/service/achievements"
	"github.com/aimd54/geoquest/internal/service/auth"
	"github.com/aimd54/geoquest/internal/service/checkin"
	"github.com/aimd54/geoquest/internal/service/locations"
	"github.com/aimd54/geoquest/internal/service/stats"
	"github.com/aimd54/geoquest/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "geoquest: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// A missing .env file is fine; the environment may already be set.
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

	db, err := openDatabase(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	catalog, err := achievements.CatalogFromConfig(cfg.Achievements)
	if err != nil {
		return err
	}
	evaluator := achievements.NewEvaluator(catalog, log)
	achievementService := achievements.NewService(db, evaluator, log)
	if _, err := achievementService.SyncCatalog(ctx); err != nil {
		return fmt.Errorf("failed to sync achievement catalog: %w", err)
	}
	achievementService.UpdateHolderMetrics(ctx)

	checks := map[string]explorer.HealthChecker{"database": db}

	var locationCache cache.Cache = cache.Nop{}
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisCache(ctx, &cfg.Database.Redis, cfg.Cache.Prefix)
		if err != nil {
			return err
		}
		defer func() { _ = redisCache.Close() }()
		locationCache = redisCache
		checks["cache"] = redisCache
		log.Info().
			Str("host", cfg.Database.Redis.Host).
			Int("port", cfg.Database.Redis.Port).
			Dur("ttl", cfg.Cache.TTLDuration()).
			Msg("Location cache enabled")
	}

	handler := explorer.NewHandler(explorer.Services{
		Locations:    locations.NewService(db, locationCache, cfg.Cache.TTLDuration(), log),
		Checkin:      checkin.NewService(db, evaluator, cfg.Checkin, log),
		Auth:         auth.NewService(db, cfg.Auth.BcryptCost, log),
		Stats:        stats.NewService(db, log),
		Achievements: achievementService,
	}, checks, log)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	servers := []*http.Server{{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      explorer.NewRouter(handler, log),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}}

	if cfg.Metrics.Prometheus.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Prometheus.Path, promhttp.Handler())
		servers = append(servers, &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Prometheus.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			log.Info().Str("addr", srv.Addr).Msg("Listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server on %s failed: %w", srv.Addr, err)
			}
		}(srv)
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
	case err = <-errCh:
		log.Error().Err(err).Msg("Server error, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Warn().Err(shutdownErr).Str("addr", srv.Addr).Msg("Graceful shutdown failed")
		}
	}

	return err
}

// openDatabase connects and brings the schema up to date.
func openDatabase(cfg *config.DatabaseConfig, log *logger.Logger) (*repository.DB, error) {
	db, err := repository.Open(cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.Migrate == config.MigrateMigrations {
		err = repository.RunMigrations(&cfg.Postgres, log)
	} else {
		err = db.AutoMigrate()
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare schema: %w", err)
	}

	return db, nil
}
