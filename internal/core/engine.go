package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/edvin/backupd/internal/model"
)

// EngineRequest asks the execution engine to run one backup.
type EngineRequest struct {
	JobID      string   `json:"job_id"`
	BackupType string   `json:"backup_type"`
	Tables     []string `json:"tables,omitempty"`
}

// Engine performs the backup I/O and persists exactly one execution row per
// successful call. A returned error means the engine could not be reached;
// a failed run is reported through EngineResult.Success.
type Engine interface {
	ExecuteBackup(ctx context.Context, req EngineRequest) (*model.EngineResult, error)
}

// RPCEngine calls the execute_real_backup store procedure.
type RPCEngine struct {
	db DB
}

func NewRPCEngine(db DB) *RPCEngine {
	return &RPCEngine{db: db}
}

func (e *RPCEngine) ExecuteBackup(ctx context.Context, req EngineRequest) (*model.EngineResult, error) {
	var raw []byte
	err := e.db.QueryRow(ctx, `SELECT execute_real_backup($1, $2, $3)`,
		req.JobID, req.BackupType, req.Tables,
	).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("execute_real_backup %s: %w", req.JobID, err)
	}

	var result model.EngineResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode execute_real_backup result: %w", err)
	}
	return &result, nil
}

// ExecuteBackupWorkflowName is the workflow the Temporal engine starts.
const ExecuteBackupWorkflowName = "ExecuteBackupWorkflow"

// TemporalEngine runs backups as a workflow on a worker fleet and waits for
// its result.
type TemporalEngine struct {
	tc        temporalclient.Client
	taskQueue string
}

func NewTemporalEngine(tc temporalclient.Client, taskQueue string) *TemporalEngine {
	return &TemporalEngine{tc: tc, taskQueue: taskQueue}
}

func (e *TemporalEngine) ExecuteBackup(ctx context.Context, req EngineRequest) (*model.EngineResult, error) {
	run, err := e.tc.ExecuteWorkflow(ctx, temporalclient.StartWorkflowOptions{
		ID:        fmt.Sprintf("backup-execute-%s-%s", req.JobID, uuid.NewString()),
		TaskQueue: e.taskQueue,
	}, ExecuteBackupWorkflowName, req)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", ExecuteBackupWorkflowName, err)
	}

	var result model.EngineResult
	if err := run.Get(ctx, &result); err != nil {
		// The workflow ran and failed: that is a failed execution, not an
		// unreachable engine.
		return &model.EngineResult{Success: false, Error: err.Error()}, nil
	}
	return &result, nil
}
