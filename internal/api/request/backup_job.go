package request

type CreateBackupJob struct {
	TenantID          *string `json:"tenant_id"`
	JobName           string  `json:"job_name" validate:"required,notblank,max=255"`
	ScheduleType      string  `json:"schedule_type" validate:"required"`
	ScheduleTime      *string `json:"schedule_time"`
	ScheduleDay       *int    `json:"schedule_day"`
	ScheduleDayOfWeek *int    `json:"schedule_day_of_week"`
	BackupType        string  `json:"backup_type" validate:"required"`
	RetentionDays     *int    `json:"retention_days"`
	Enabled           *bool   `json:"enabled"`
	CreatedBy         *string `json:"created_by"`
}

// UpdateBackupJob is a partial update. Absent fields are left unchanged.
type UpdateBackupJob struct {
	JobName           *string `json:"job_name" validate:"omitempty,notblank,max=255"`
	ScheduleType      *string `json:"schedule_type"`
	ScheduleTime      *string `json:"schedule_time"`
	ScheduleDay       *int    `json:"schedule_day"`
	ScheduleDayOfWeek *int    `json:"schedule_day_of_week"`
	BackupType        *string `json:"backup_type"`
	RetentionDays     *int    `json:"retention_days"`
	Enabled           *bool   `json:"enabled"`
}

type ExecuteBackup struct {
	BackupType string   `json:"backup_type"`
	Tables     []string `json:"tables" validate:"omitempty,dive,table_name"`
}
