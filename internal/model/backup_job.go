package model

import "time"

const (
	ScheduleDaily   = "daily"
	ScheduleWeekly  = "weekly"
	ScheduleMonthly = "monthly"
	ScheduleManual  = "manual"
)

const (
	BackupTypeFull         = "full"
	BackupTypeIncremental  = "incremental"
	BackupTypeDifferential = "differential"
)

// DefaultRetentionDays applies when a job is created without a retention.
const DefaultRetentionDays = 30

type BackupJob struct {
	ID                string     `json:"id"`
	TenantID          *string    `json:"tenant_id,omitempty"`
	JobName           string     `json:"job_name"`
	ScheduleType      string     `json:"schedule_type"`
	ScheduleTime      *string    `json:"schedule_time,omitempty"`
	ScheduleDay       *int       `json:"schedule_day,omitempty"`
	ScheduleDayOfWeek *int       `json:"schedule_day_of_week,omitempty"`
	BackupType        string     `json:"backup_type"`
	RetentionDays     int        `json:"retention_days"`
	Enabled           bool       `json:"enabled"`
	LastRunAt         *time.Time `json:"last_run_at,omitempty"`
	NextRunAt         *time.Time `json:"next_run_at,omitempty"`
	CreatedBy         *string    `json:"created_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// IsManual reports whether the job only runs on explicit operator action.
// Schedule fields and next_run_at carry no meaning for manual jobs.
func (j *BackupJob) IsManual() bool {
	return j.ScheduleType == ScheduleManual
}

// ClearSchedule drops the schedule fields of a manual job.
func (j *BackupJob) ClearSchedule() {
	if !j.IsManual() {
		return
	}
	j.ScheduleTime = nil
	j.ScheduleDay = nil
	j.ScheduleDayOfWeek = nil
	j.NextRunAt = nil
}
