// Package seed loads backup job manifests and creates the jobs they list.
package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/edvin/backupd/internal/core"
	"github.com/edvin/backupd/internal/model"
)

// Manifest is the on-disk list of jobs to provision.
type Manifest struct {
	Jobs []core.JobConfig `yaml:"jobs"`
}

// JobStore is the part of the job service seeding needs.
type JobStore interface {
	ListJobs(ctx context.Context, tenantID string) ([]model.BackupJob, error)
	CreateJob(ctx context.Context, cfg core.JobConfig) (*model.BackupJob, error)
}

// Result counts what Apply did.
type Result struct {
	Created int
	Skipped int
}

func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Jobs) == 0 {
		return nil, fmt.Errorf("parse manifest: no jobs defined")
	}
	return &m, nil
}

// Apply creates every job in the manifest whose name is not already taken
// within its tenant. It stops at the first failing job.
func Apply(ctx context.Context, store JobStore, m *Manifest, logger zerolog.Logger) (Result, error) {
	var res Result
	existing := map[string]map[string]bool{} // tenant -> job names

	for i, cfg := range m.Jobs {
		tenant := ""
		if cfg.TenantID != nil {
			tenant = *cfg.TenantID
		}

		names, ok := existing[tenant]
		if !ok {
			jobs, err := store.ListJobs(ctx, tenant)
			if err != nil {
				return res, fmt.Errorf("list jobs for tenant %q: %w", tenant, err)
			}
			names = make(map[string]bool, len(jobs))
			for _, j := range jobs {
				// An empty tenant lists every job; only untenanted ones collide.
				if tenant == "" && j.TenantID != nil {
					continue
				}
				names[j.JobName] = true
			}
			existing[tenant] = names
		}

		if names[cfg.JobName] {
			logger.Info().Str("job_name", cfg.JobName).Str("tenant_id", tenant).Msg("backup job exists, skipping")
			res.Skipped++
			continue
		}

		job, err := store.CreateJob(ctx, cfg)
		if err != nil {
			return res, fmt.Errorf("create job %d (%s): %w", i, cfg.JobName, err)
		}
		names[job.JobName] = true
		res.Created++
		logger.Info().Str("job_id", job.ID).Str("job_name", job.JobName).Msg("backup job created")
	}

	return res, nil
}
