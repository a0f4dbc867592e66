package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/edvin/backupd/internal/api"
	"github.com/edvin/backupd/internal/config"
	"github.com/edvin/backupd/internal/core"
)

type dependencies struct {
	collaborators core.Collaborators
	checks        map[string]api.ReadinessCheck
	closers       []func()
}

func (d *dependencies) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func buildCollaborators(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (*dependencies, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	d := &dependencies{
		collaborators: core.Collaborators{
			Scheduler:    newRecalculator(cfg, pool, loc),
			Verification: core.PolicyForEnvironment(cfg.Environment),
			Restore:      core.RestorePolicy{RequireCompletedSource: cfg.RestoreRequireCompleted},
		},
		checks: map[string]api.ReadinessCheck{
			"core_db": pool.Ping,
		},
	}

	if cfg.EngineMode == config.EngineTemporal {
		tc, err := dialTemporal(cfg)
		if err != nil {
			d.close()
			return nil, err
		}
		d.closers = append(d.closers, tc.Close)
		d.collaborators.Engine = core.NewTemporalEngine(tc, cfg.TemporalTaskQueue)
		d.checks["temporal"] = func(ctx context.Context) error {
			_, err := tc.CheckHealth(ctx, &temporalclient.CheckHealthRequest{})
			return err
		}
		logger.Info().Str("task_queue", cfg.TemporalTaskQueue).Msg("backups run through temporal workflows")
	}

	if cfg.ExecutionLockAddr != "" {
		rc, err := newRedisClient(cfg)
		if err != nil {
			d.close()
			return nil, err
		}
		d.closers = append(d.closers, func() { rc.Close() })
		d.collaborators.Guard = core.NewRedisGuard(rc, cfg.ExecutionLockTTL)
		d.checks["execution_lock"] = func(ctx context.Context) error {
			return rc.Ping(ctx).Err()
		}
		logger.Info().Str("addr", cfg.ExecutionLockAddr).Dur("ttl", cfg.ExecutionLockTTL).Msg("execution lock enabled")
	}

	return d, nil
}

func newRecalculator(cfg *config.Config, pool *pgxpool.Pool, loc *time.Location) core.Recalculator {
	if cfg.SchedulerMode == config.SchedulerLocal {
		return core.NewCronRecalculator(pool, loc)
	}
	return core.NewRPCRecalculator(pool)
}

func dialTemporal(cfg *config.Config) (temporalclient.Client, error) {
	tlsConfig, err := cfg.TemporalTLS.ClientConfig("temporal")
	if err != nil {
		return nil, err
	}
	opts := temporalclient.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
	}
	if tlsConfig != nil {
		opts.ConnectionOptions = temporalclient.ConnectionOptions{TLS: tlsConfig}
	}
	tc, err := temporalclient.Dial(opts)
	if err != nil {
		return nil, fmt.Errorf("connect to temporal: %w", err)
	}
	return tc, nil
}

func newRedisClient(cfg *config.Config) (*redis.Client, error) {
	tlsConfig, err := cfg.RedisTLS.ClientConfig("redis")
	if err != nil {
		return nil, err
	}
	return redis.NewClient(&redis.Options{
		Addr:      cfg.ExecutionLockAddr,
		TLSConfig: tlsConfig,
	}), nil
}
