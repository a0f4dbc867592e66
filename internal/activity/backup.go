package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/backupd/internal/core"
	"github.com/edvin/backupd/internal/model"
)

// Backup contains the activities behind ExecuteBackupWorkflow. They run the
// store procedure on the worker so the API process only waits for results.
type Backup struct {
	db     core.DB
	engine core.Engine
}

func NewBackup(db core.DB) *Backup {
	return &Backup{db: db, engine: core.NewRPCEngine(db)}
}

// RunStoreBackup invokes execute_real_backup for one job.
func (a *Backup) RunStoreBackup(ctx context.Context, req core.EngineRequest) (*model.EngineResult, error) {
	return a.engine.ExecuteBackup(ctx, req)
}

// LatestExecutionID returns the newest execution of a job, or "" if the job
// has none.
func (a *Backup) LatestExecutionID(ctx context.Context, jobID string) (string, error) {
	var id string
	err := a.db.QueryRow(ctx,
		`SELECT id FROM backup_executions WHERE backup_job_id = $1
		 ORDER BY started_at DESC LIMIT 1`, jobID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("latest execution for job %s: %w", jobID, err)
	}
	return id, nil
}
