package main

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/backupd/internal/config"
	"github.com/edvin/backupd/internal/core"
)

func baseConfig() *config.Config {
	return &config.Config{
		Environment:             "staging",
		EngineMode:              config.EngineRPC,
		SchedulerMode:           config.SchedulerRPC,
		ScheduleTimezone:        "UTC",
		ExecutionLockTTL:        time.Minute,
		RestoreRequireCompleted: true,
	}
}

func TestBuildCollaborators_Defaults(t *testing.T) {
	deps, err := buildCollaborators(baseConfig(), nil, zerolog.Nop())
	require.NoError(t, err)
	defer deps.close()

	assert.Nil(t, deps.collaborators.Engine)
	assert.Nil(t, deps.collaborators.Guard)
	assert.IsType(t, &core.RPCRecalculator{}, deps.collaborators.Scheduler)
	assert.True(t, deps.collaborators.Verification.AllowMissingChecksum)
	assert.True(t, deps.collaborators.Restore.RequireCompletedSource)
	assert.Contains(t, deps.checks, "core_db")
	assert.Len(t, deps.checks, 1)
}

func TestBuildCollaborators_LocalSchedulerAndLock(t *testing.T) {
	cfg := baseConfig()
	cfg.Environment = core.EnvironmentProduction
	cfg.SchedulerMode = config.SchedulerLocal
	cfg.ScheduleTimezone = "Europe/Oslo"
	cfg.ExecutionLockAddr = "127.0.0.1:1"

	deps, err := buildCollaborators(cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	defer deps.close()

	assert.IsType(t, &core.CronRecalculator{}, deps.collaborators.Scheduler)
	assert.IsType(t, &core.RedisGuard{}, deps.collaborators.Guard)
	assert.False(t, deps.collaborators.Verification.AllowMissingChecksum)
	assert.Contains(t, deps.checks, "execution_lock")
}

func TestBuildCollaborators_BadTimezone(t *testing.T) {
	cfg := baseConfig()
	cfg.ScheduleTimezone = "Mars/Olympus"

	_, err := buildCollaborators(cfg, nil, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHEDULE_TIMEZONE")
}

func TestNewRedisClient_BadTLS(t *testing.T) {
	cfg := baseConfig()
	cfg.ExecutionLockAddr = "127.0.0.1:1"
	cfg.RedisTLS = config.TLSFiles{Cert: "/nonexistent/cert.pem", Key: "/nonexistent/key.pem"}

	_, err := newRedisClient(cfg)
	require.Error(t, err)
}
