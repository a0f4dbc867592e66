package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EngineRPC      = "rpc"
	EngineTemporal = "temporal"

	SchedulerRPC   = "rpc"
	SchedulerLocal = "local"
)

type Config struct {
	CoreDatabaseURL string
	HTTPListenAddr  string
	LogLevel        string
	ServiceName     string
	// Environment selects the verification policy. Only "production" is
	// strict about missing checksums.
	Environment string

	EngineMode        string
	TemporalAddress   string
	TemporalNamespace string
	TemporalTaskQueue string
	TemporalTLS       TLSFiles

	SchedulerMode     string
	ScheduleTimezone  string
	ExecutionLockAddr string
	ExecutionLockTTL  time.Duration
	RedisTLS          TLSFiles

	RestoreRequireCompleted bool
}

func Load() (*Config, error) {
	lockTTL, err := time.ParseDuration(getEnv("EXECUTION_LOCK_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("parse EXECUTION_LOCK_TTL: %w", err)
	}
	requireCompleted, err := strconv.ParseBool(getEnv("RESTORE_REQUIRE_COMPLETED", "true"))
	if err != nil {
		return nil, fmt.Errorf("parse RESTORE_REQUIRE_COMPLETED: %w", err)
	}

	cfg := &Config{
		CoreDatabaseURL: getEnv("CORE_DATABASE_URL", ""),
		HTTPListenAddr:  getEnv("HTTP_LISTEN_ADDR", ":8090"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ServiceName:     getEnv("SERVICE_NAME", "backupd"),
		Environment:     getEnv("APP_ENV", "production"),

		EngineMode:        strings.ToLower(getEnv("ENGINE_MODE", EngineRPC)),
		TemporalAddress:   getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		TemporalNamespace: getEnv("TEMPORAL_NAMESPACE", "default"),
		TemporalTaskQueue: getEnv("TEMPORAL_TASK_QUEUE", "backup-tasks"),
		TemporalTLS: TLSFiles{
			Cert:       getEnv("TEMPORAL_TLS_CERT", ""),
			Key:        getEnv("TEMPORAL_TLS_KEY", ""),
			CACert:     getEnv("TEMPORAL_TLS_CA_CERT", ""),
			ServerName: getEnv("TEMPORAL_TLS_SERVER_NAME", ""),
		},

		SchedulerMode:     strings.ToLower(getEnv("SCHEDULER_MODE", SchedulerRPC)),
		ScheduleTimezone:  getEnv("SCHEDULE_TIMEZONE", "UTC"),
		ExecutionLockAddr: getEnv("EXECUTION_LOCK_REDIS_ADDR", ""),
		ExecutionLockTTL:  lockTTL,
		RedisTLS: TLSFiles{
			Cert:       getEnv("EXECUTION_LOCK_REDIS_TLS_CERT", ""),
			Key:        getEnv("EXECUTION_LOCK_REDIS_TLS_KEY", ""),
			CACert:     getEnv("EXECUTION_LOCK_REDIS_TLS_CA_CERT", ""),
			ServerName: getEnv("EXECUTION_LOCK_REDIS_TLS_SERVER_NAME", ""),
		},

		RestoreRequireCompleted: requireCompleted,
	}

	return cfg, nil
}

// Validate checks that the fields the given component needs are set and
// reports all problems at once.
func (c *Config) Validate(component string) error {
	var missing []string
	var problems []string

	switch component {
	case "backup-api":
		if c.CoreDatabaseURL == "" {
			missing = append(missing, "CORE_DATABASE_URL")
		}
		if c.HTTPListenAddr == "" {
			missing = append(missing, "HTTP_LISTEN_ADDR")
		}
	case "seed-jobs":
		if c.CoreDatabaseURL == "" {
			missing = append(missing, "CORE_DATABASE_URL")
		}
	case "backup-worker":
		if c.CoreDatabaseURL == "" {
			missing = append(missing, "CORE_DATABASE_URL")
		}
		if c.TemporalAddress == "" {
			missing = append(missing, "TEMPORAL_ADDRESS")
		}
		if c.TemporalTaskQueue == "" {
			missing = append(missing, "TEMPORAL_TASK_QUEUE")
		}
	default:
		return fmt.Errorf("unknown component %q", component)
	}

	switch c.EngineMode {
	case EngineRPC:
	case EngineTemporal:
		if c.TemporalAddress == "" {
			missing = append(missing, "TEMPORAL_ADDRESS")
		}
		if c.TemporalTaskQueue == "" {
			missing = append(missing, "TEMPORAL_TASK_QUEUE")
		}
	default:
		problems = append(problems, fmt.Sprintf("ENGINE_MODE must be %q or %q, got %q", EngineRPC, EngineTemporal, c.EngineMode))
	}

	switch c.SchedulerMode {
	case SchedulerRPC, SchedulerLocal:
	default:
		problems = append(problems, fmt.Sprintf("SCHEDULER_MODE must be %q or %q, got %q", SchedulerRPC, SchedulerLocal, c.SchedulerMode))
	}

	if c.ExecutionLockAddr != "" && c.ExecutionLockTTL <= 0 {
		problems = append(problems, "EXECUTION_LOCK_TTL must be positive")
	}
	if err := c.TemporalTLS.check("TEMPORAL_TLS"); err != nil {
		problems = append(problems, err.Error())
	}
	if err := c.RedisTLS.check("EXECUTION_LOCK_REDIS_TLS"); err != nil {
		problems = append(problems, err.Error())
	}

	if len(missing) > 0 {
		problems = append([]string{"missing required config: " + strings.Join(missing, ", ")}, problems...)
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid %s config: %s", component, strings.Join(problems, "; "))
	}
	return nil
}

// Location resolves ScheduleTimezone for in-process schedule computation.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ScheduleTimezone)
	if err != nil {
		return nil, fmt.Errorf("load SCHEDULE_TIMEZONE %q: %w", c.ScheduleTimezone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
