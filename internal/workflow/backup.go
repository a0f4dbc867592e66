package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/edvin/backupd/internal/core"
	"github.com/edvin/backupd/internal/model"
)

// ExecuteBackupWorkflow runs one backup through the store procedure and
// reports the engine result. The execution id is looked up when the
// procedure does not return one.
func ExecuteBackupWorkflow(ctx workflow.Context, req core.EngineRequest) (*model.EngineResult, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Hour,
		// A backup run is not idempotent.
		RetryPolicy: &temporal.RetryPolicy{MaximumAttempts: 1},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	logger := workflow.GetLogger(ctx)

	var result model.EngineResult
	if err := workflow.ExecuteActivity(ctx, "RunStoreBackup", req).Get(ctx, &result); err != nil {
		return nil, err
	}
	if !result.Success || result.ExecutionID != "" {
		return &result, nil
	}

	lookupCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:    3,
			InitialInterval:    1 * time.Second,
			MaximumInterval:    10 * time.Second,
			BackoffCoefficient: 2.0,
		},
	})
	var executionID string
	if err := workflow.ExecuteActivity(lookupCtx, "LatestExecutionID", req.JobID).Get(ctx, &executionID); err != nil {
		// The caller can still fall back to the newest execution itself.
		logger.Warn("execution id lookup failed", "job_id", req.JobID, "error", err)
		return &result, nil
	}
	result.ExecutionID = executionID
	return &result, nil
}
