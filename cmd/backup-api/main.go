package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/edvin/backupd/internal/api"
	"github.com/edvin/backupd/internal/config"
	"github.com/edvin/backupd/internal/core"
	"github.com/edvin/backupd/internal/db"
	"github.com/edvin/backupd/internal/logging"
	"github.com/edvin/backupd/internal/metrics"
	"github.com/edvin/backupd/internal/seed"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "seed-jobs" {
		seedJobs(os.Args[2:])
		return
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations/core", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("backup-api"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.CoreDatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	corePool, err := db.NewCorePool(ctx, cfg.CoreDatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to backup store")
	}
	defer corePool.Close()
	metrics.RegisterStorePoolMetrics(prometheus.DefaultRegisterer, corePool)

	deps, err := buildCollaborators(cfg, corePool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up collaborators")
	}
	defer deps.close()

	services := core.NewServices(corePool, deps.collaborators, logger)
	srv := api.NewServer(logger, services, deps.checks)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting backup API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func seedJobs(args []string) {
	fs := flag.NewFlagSet("seed-jobs", flag.ExitOnError)
	file := fs.String("f", "", "Path to the job manifest (required)")
	fs.Parse(args)

	if *file == "" {
		fmt.Fprintln(os.Stderr, "error: -f is required")
		fmt.Fprintln(os.Stderr, "usage: backup-api seed-jobs -f <jobs.yaml>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate("seed-jobs"); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg)

	manifest, err := seed.Load(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.NewCorePool(ctx, cfg.CoreDatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	jobs := core.NewBackupJobService(pool, newRecalculator(cfg, pool, loc), logger)

	res, err := seed.Apply(ctx, jobs, manifest, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded backup jobs: %d created, %d skipped.\n", res.Created, res.Skipped)
}
