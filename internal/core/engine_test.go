package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	temporalclient "go.temporal.io/sdk/client"
	temporalmocks "go.temporal.io/sdk/mocks"

	"github.com/edvin/backupd/internal/model"
)

func rpcResultRow(payload string) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*[]byte)) = []byte(payload)
		return nil
	}}
}

func TestRPCEngine_Success(t *testing.T) {
	db := &mockDB{}
	eng := NewRPCEngine(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, "SELECT execute_real_backup($1, $2, $3)", []any{"job-1", "full", []string{"students"}}).
		Return(rpcResultRow(`{"success":true,"execution_id":"exec-1"}`))

	res, err := eng.ExecuteBackup(ctx, EngineRequest{JobID: "job-1", BackupType: "full", Tables: []string{"students"}})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "exec-1", res.ExecutionID)
}

func TestRPCEngine_ReportedFailure(t *testing.T) {
	db := &mockDB{}
	eng := NewRPCEngine(db)
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(rpcResultRow(`{"success":false,"error":"lock timeout"}`))

	res, err := eng.ExecuteBackup(context.Background(), EngineRequest{JobID: "job-1", BackupType: "full"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "lock timeout", res.Error)
	assert.Empty(t, res.ExecutionID)
}

func TestRPCEngine_TransportAndDecodeErrors(t *testing.T) {
	db := &mockDB{}
	eng := NewRPCEngine(db)
	db.On("QueryRow", mock.Anything, mock.Anything, []any{"job-1", "full", []string(nil)}).
		Return(errRow(errors.New("connection reset")))
	db.On("QueryRow", mock.Anything, mock.Anything, []any{"job-2", "full", []string(nil)}).
		Return(rpcResultRow(`not json`))

	_, err := eng.ExecuteBackup(context.Background(), EngineRequest{JobID: "job-1", BackupType: "full"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute_real_backup job-1")

	_, err = eng.ExecuteBackup(context.Background(), EngineRequest{JobID: "job-2", BackupType: "full"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode execute_real_backup result")
}

func TestTemporalEngine_Success(t *testing.T) {
	tc := &temporalmocks.Client{}
	eng := NewTemporalEngine(tc, "backup-tasks")
	ctx := context.Background()
	req := EngineRequest{JobID: "job-1", BackupType: "full"}

	run := &temporalmocks.WorkflowRun{}
	run.On("Get", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(1).(*model.EngineResult)
			*out = model.EngineResult{Success: true, ExecutionID: "exec-7"}
		}).
		Return(nil)

	tc.On("ExecuteWorkflow", ctx,
		mock.MatchedBy(func(o temporalclient.StartWorkflowOptions) bool {
			return o.TaskQueue == "backup-tasks" && len(o.ID) > len("backup-execute-job-1-")
		}),
		ExecuteBackupWorkflowName, req,
	).Return(run, nil)

	res, err := eng.ExecuteBackup(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "exec-7", res.ExecutionID)
	tc.AssertExpectations(t)
}

func TestTemporalEngine_StartError(t *testing.T) {
	tc := &temporalmocks.Client{}
	eng := NewTemporalEngine(tc, "backup-tasks")
	tc.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("namespace not found"))

	_, err := eng.ExecuteBackup(context.Background(), EngineRequest{JobID: "job-1", BackupType: "full"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start ExecuteBackupWorkflow")
}

func TestTemporalEngine_WorkflowFailureIsReported(t *testing.T) {
	tc := &temporalmocks.Client{}
	eng := NewTemporalEngine(tc, "backup-tasks")

	run := &temporalmocks.WorkflowRun{}
	run.On("Get", mock.Anything, mock.Anything).Return(errors.New("activity timed out"))
	tc.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(run, nil)

	res, err := eng.ExecuteBackup(context.Background(), EngineRequest{JobID: "job-1", BackupType: "full"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "activity timed out")
}

func TestEngineResult_JSON(t *testing.T) {
	var res model.EngineResult
	require.NoError(t, json.Unmarshal([]byte(`{"success":true}`), &res))
	assert.True(t, res.Success)
	assert.Empty(t, res.ExecutionID)
}
