package core

import (
	"github.com/edvin/backupd/internal/model"
)

type scanner interface {
	Scan(dest ...any) error
}

const jobColumns = `id, tenant_id, job_name, schedule_type, schedule_time, schedule_day, schedule_day_of_week,
	backup_type, retention_days, enabled, last_run_at, next_run_at, created_by, created_at, updated_at`

func scanJob(row scanner) (*model.BackupJob, error) {
	var j model.BackupJob
	err := row.Scan(&j.ID, &j.TenantID, &j.JobName, &j.ScheduleType, &j.ScheduleTime,
		&j.ScheduleDay, &j.ScheduleDayOfWeek, &j.BackupType, &j.RetentionDays, &j.Enabled,
		&j.LastRunAt, &j.NextRunAt, &j.CreatedBy, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

const executionColumns = `id, backup_job_id, status, backup_type, file_path, file_size_bytes, file_size_mb,
	started_at, completed_at, duration_seconds, error_message, records_backed_up, tables_backed_up, created_by`

func scanExecution(row scanner) (*model.BackupExecution, error) {
	var e model.BackupExecution
	err := row.Scan(&e.ID, &e.BackupJobID, &e.Status, &e.BackupType, &e.FilePath,
		&e.FileSizeBytes, &e.FileSizeMB, &e.StartedAt, &e.CompletedAt, &e.DurationSeconds,
		&e.ErrorMessage, &e.RecordsBackedUp, &e.TablesBackedUp, &e.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const restoreColumns = `id, backup_execution_id, status, restore_type, target_tables, started_at, completed_at,
	duration_seconds, error_message, restored_by, verified, verification_notes`

func scanRestore(row scanner) (*model.RestoreOperation, error) {
	var r model.RestoreOperation
	err := row.Scan(&r.ID, &r.BackupExecutionID, &r.Status, &r.RestoreType, &r.TargetTables,
		&r.StartedAt, &r.CompletedAt, &r.DurationSeconds, &r.ErrorMessage, &r.RestoredBy,
		&r.Verified, &r.VerificationNotes)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
