package model

import "time"

// BackupExecution is one attempt to run a BackupJob. Rows are written by the
// execution engine; this module only reads them.
type BackupExecution struct {
	ID              string     `json:"id"`
	BackupJobID     string     `json:"backup_job_id"`
	Status          string     `json:"status"`
	BackupType      string     `json:"backup_type"`
	FilePath        *string    `json:"file_path,omitempty"`
	FileSizeBytes   *int64     `json:"file_size_bytes,omitempty"`
	FileSizeMB      *float64   `json:"file_size_mb,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	ErrorMessage    *string    `json:"error_message,omitempty"`
	RecordsBackedUp *int64     `json:"records_backed_up,omitempty"`
	TablesBackedUp  []string   `json:"tables_backed_up,omitempty"`
	CreatedBy       *string    `json:"created_by,omitempty"`
}

// HasArtifact reports whether the execution points at a non-empty file.
func (e *BackupExecution) HasArtifact() bool {
	if e.FilePath == nil || *e.FilePath == "" {
		return false
	}
	return e.FileSizeBytes != nil && *e.FileSizeBytes > 0
}

// EngineResult is what the execution engine reports for a triggered run.
// ExecutionID is empty for engines that predate returning it.
type EngineResult struct {
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	ExecutionID string `json:"execution_id,omitempty"`
}
