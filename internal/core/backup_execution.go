package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/edvin/backupd/internal/metrics"
	"github.com/edvin/backupd/internal/model"
)

// DefaultListLimit caps history and restore listings when no limit is given.
const DefaultListLimit = 50

// ExecuteOptions narrows a manual backup run.
type ExecuteOptions struct {
	BackupType string   `json:"backup_type" validate:"omitempty,oneof=full incremental differential"`
	Tables     []string `json:"tables"`
}

// ExecutionFilter selects execution history. JobID wins over TenantID.
type ExecutionFilter struct {
	JobID    string
	TenantID string
	Limit    int
}

// BackupExecutionService triggers the engine and reads execution history.
// It never writes backup_executions rows itself.
type BackupExecutionService struct {
	db       DB
	engine   Engine
	verifier *IntegrityVerifier
	guard    ExecutionGuard
	logger   zerolog.Logger
}

func NewBackupExecutionService(db DB, engine Engine, verifier *IntegrityVerifier, guard ExecutionGuard, logger zerolog.Logger) *BackupExecutionService {
	if guard == nil {
		guard = NoopGuard{}
	}
	return &BackupExecutionService{
		db:       db,
		engine:   engine,
		verifier: verifier,
		guard:    guard,
		logger:   logger.With().Str("component", "backup_executions").Logger(),
	}
}

// ExecuteBackup runs one backup of the job and returns the execution the
// engine recorded. Completed executions are verified; a failed verification
// is logged and counted but does not fail the call.
func (s *BackupExecutionService) ExecuteBackup(ctx context.Context, jobID string, opts ExecuteOptions) (*model.BackupExecution, error) {
	if err := validateStruct(opts); err != nil {
		return nil, err
	}
	backupType := opts.BackupType
	if backupType == "" {
		backupType = model.BackupTypeFull
	}
	var tables []string
	if len(opts.Tables) > 0 {
		tables = opts.Tables
	}

	log := s.logger.With().Str("job_id", jobID).Str("backup_type", backupType).Logger()

	release, err := s.guard.Acquire(ctx, jobID)
	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			metrics.Executions.WithLabelValues("conflict").Inc()
			return nil, err
		}
		return nil, storeErr("acquire execution guard", err)
	}
	defer release()

	result, err := s.engine.ExecuteBackup(ctx, EngineRequest{JobID: jobID, BackupType: backupType, Tables: tables})
	if err != nil {
		metrics.Executions.WithLabelValues("engine_unreachable").Inc()
		return nil, storeErr("execute backup", err)
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "backup execution failed"
		}
		metrics.Executions.WithLabelValues(model.StatusFailed).Inc()
		log.Warn().Str("engine_error", msg).Msg("backup engine reported failure")
		return nil, &ExecutionError{JobID: jobID, Message: msg}
	}

	exec, err := s.loadCreatedExecution(ctx, jobID, result.ExecutionID)
	if err != nil {
		return nil, err
	}
	metrics.Executions.WithLabelValues(exec.Status).Inc()

	if exec.Status == model.StatusCompleted {
		if !s.verifier.Verify(ctx, exec.ID) {
			log.Warn().Str("execution_id", exec.ID).Msg("backup completed but failed integrity verification")
		}
	}

	log.Info().
		Str("execution_id", exec.ID).
		Str("status", exec.Status).
		Bool("terminal", model.IsTerminalStatus(exec.Status)).
		Msg("backup executed")
	return exec, nil
}

func (s *BackupExecutionService) loadCreatedExecution(ctx context.Context, jobID, executionID string) (*model.BackupExecution, error) {
	var row pgx.Row
	if executionID != "" {
		row = s.db.QueryRow(ctx, `SELECT `+executionColumns+` FROM backup_executions WHERE id = $1`, executionID)
	} else {
		s.logger.Warn().Str("job_id", jobID).Msg("engine returned no execution id, reading newest execution of job")
		row = s.db.QueryRow(ctx,
			`SELECT `+executionColumns+` FROM backup_executions WHERE backup_job_id = $1
			 ORDER BY started_at DESC LIMIT 1`, jobID)
	}

	exec, err := scanExecution(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			id := executionID
			if id == "" {
				id = jobID
			}
			return nil, &NotFoundError{Resource: "backup execution", ID: id, Message: "execution not found after creation"}
		}
		return nil, storeErr("fetch created execution", err)
	}
	return exec, nil
}

// GetExecutions lists executions newest first.
func (s *BackupExecutionService) GetExecutions(ctx context.Context, f ExecutionFilter) ([]model.BackupExecution, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var rows pgx.Rows
	var err error
	switch {
	case f.JobID != "":
		rows, err = s.db.Query(ctx,
			`SELECT `+executionColumns+` FROM backup_executions WHERE backup_job_id = $1
			 ORDER BY started_at DESC LIMIT $2`, f.JobID, limit)
	case f.TenantID != "":
		jobIDs, jerr := s.tenantJobIDs(ctx, f.TenantID)
		if jerr != nil {
			return nil, jerr
		}
		if len(jobIDs) == 0 {
			return []model.BackupExecution{}, nil
		}
		rows, err = s.db.Query(ctx,
			`SELECT `+executionColumns+` FROM backup_executions WHERE backup_job_id = ANY($1)
			 ORDER BY started_at DESC LIMIT $2`, jobIDs, limit)
	default:
		rows, err = s.db.Query(ctx,
			`SELECT `+executionColumns+` FROM backup_executions ORDER BY started_at DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, storeErr("list backup executions", err)
	}
	return collectExecutions(rows)
}

func (s *BackupExecutionService) tenantJobIDs(ctx context.Context, tenantID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM backup_jobs WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return nil, storeErr("list tenant backup jobs", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scan tenant backup job", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate tenant backup jobs", err)
	}
	return ids, nil
}

func (s *BackupExecutionService) GetExecution(ctx context.Context, id string) (*model.BackupExecution, error) {
	exec, err := scanExecution(s.db.QueryRow(ctx,
		`SELECT `+executionColumns+` FROM backup_executions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "backup execution", ID: id}
		}
		return nil, storeErr("get backup execution "+id, err)
	}
	return exec, nil
}

// GetAvailableBackups returns restorable executions as reported by the
// list_available_backups store function.
func (s *BackupExecutionService) GetAvailableBackups(ctx context.Context, tenantID string, limit int) ([]model.BackupExecution, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var tenant *string
	if tenantID != "" {
		tenant = &tenantID
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+executionColumns+` FROM list_available_backups($1, $2)`, tenant, limit)
	if err != nil {
		return nil, storeErr("list available backups", err)
	}
	return collectExecutions(rows)
}

func collectExecutions(rows pgx.Rows) ([]model.BackupExecution, error) {
	defer rows.Close()

	executions := []model.BackupExecution{}
	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, storeErr("scan backup execution", err)
		}
		executions = append(executions, *exec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate backup executions", err)
	}
	return executions, nil
}
