package model

import "time"

const (
	RestoreTypeFull    = "full"
	RestoreTypePartial = "partial"
	RestoreTypeTable   = "table"
)

type RestoreOperation struct {
	ID                string     `json:"id"`
	BackupExecutionID string     `json:"backup_execution_id"`
	Status            string     `json:"status"`
	RestoreType       string     `json:"restore_type"`
	TargetTables      []string   `json:"target_tables,omitempty"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	DurationSeconds   *int       `json:"duration_seconds,omitempty"`
	ErrorMessage      *string    `json:"error_message,omitempty"`
	RestoredBy        *string    `json:"restored_by,omitempty"`
	Verified          bool       `json:"verified"`
	VerificationNotes *string    `json:"verification_notes,omitempty"`
}

// StorageChecksum is the backup_storage row kept for an execution.
type StorageChecksum struct {
	BackupExecutionID string  `json:"backup_execution_id"`
	ChecksumMD5       *string `json:"checksum_md5,omitempty"`
	ChecksumSHA256    *string `json:"checksum_sha256,omitempty"`
}

// HasChecksum reports whether at least one digest is recorded.
func (c *StorageChecksum) HasChecksum() bool {
	if c == nil {
		return false
	}
	return (c.ChecksumMD5 != nil && *c.ChecksumMD5 != "") ||
		(c.ChecksumSHA256 != nil && *c.ChecksumSHA256 != "")
}
