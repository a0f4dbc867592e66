package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/edvin/backupd/internal/metrics"
	"github.com/edvin/backupd/internal/model"
)

// JobConfig is the operator input for a new backup job.
type JobConfig struct {
	TenantID          *string `json:"tenant_id" yaml:"tenant_id"`
	JobName           string  `json:"job_name" yaml:"job_name" validate:"required,notblank"`
	ScheduleType      string  `json:"schedule_type" yaml:"schedule_type" validate:"required,oneof=daily weekly monthly manual"`
	ScheduleTime      *string `json:"schedule_time" yaml:"schedule_time" validate:"omitempty,schedule_time"`
	ScheduleDay       *int    `json:"schedule_day" yaml:"schedule_day" validate:"omitempty,min=1,max=31"`
	ScheduleDayOfWeek *int    `json:"schedule_day_of_week" yaml:"schedule_day_of_week" validate:"omitempty,min=0,max=6"`
	BackupType        string  `json:"backup_type" yaml:"backup_type" validate:"required,oneof=full incremental differential"`
	RetentionDays     *int    `json:"retention_days" yaml:"retention_days" validate:"omitempty,min=1"`
	Enabled           *bool   `json:"enabled" yaml:"enabled"`
	CreatedBy         *string `json:"created_by" yaml:"created_by"`
}

// JobUpdate holds the fields to change on an existing job. Nil fields are
// left untouched.
type JobUpdate struct {
	JobName           *string `json:"job_name" validate:"omitempty,min=1,notblank"`
	ScheduleType      *string `json:"schedule_type" validate:"omitempty,oneof=daily weekly monthly manual"`
	ScheduleTime      *string `json:"schedule_time" validate:"omitempty,schedule_time"`
	ScheduleDay       *int    `json:"schedule_day" validate:"omitempty,min=1,max=31"`
	ScheduleDayOfWeek *int    `json:"schedule_day_of_week" validate:"omitempty,min=0,max=6"`
	BackupType        *string `json:"backup_type" validate:"omitempty,oneof=full incremental differential"`
	RetentionDays     *int    `json:"retention_days" validate:"omitempty,min=1"`
	Enabled           *bool   `json:"enabled"`
}

// touchesSchedule reports whether the update can move next_run_at.
func (u JobUpdate) touchesSchedule() bool {
	return u.ScheduleType != nil || u.ScheduleTime != nil || u.Enabled != nil ||
		u.ScheduleDay != nil || u.ScheduleDayOfWeek != nil
}

func (u JobUpdate) apply(j *model.BackupJob) {
	if u.JobName != nil {
		j.JobName = *u.JobName
	}
	if u.ScheduleType != nil {
		j.ScheduleType = *u.ScheduleType
	}
	if u.ScheduleTime != nil {
		j.ScheduleTime = u.ScheduleTime
	}
	if u.ScheduleDay != nil {
		j.ScheduleDay = u.ScheduleDay
	}
	if u.ScheduleDayOfWeek != nil {
		j.ScheduleDayOfWeek = u.ScheduleDayOfWeek
	}
	if u.BackupType != nil {
		j.BackupType = *u.BackupType
	}
	if u.RetentionDays != nil {
		j.RetentionDays = *u.RetentionDays
	}
	if u.Enabled != nil {
		j.Enabled = *u.Enabled
	}
}

// BackupJobService owns the backup_jobs rows.
type BackupJobService struct {
	db        DB
	scheduler Recalculator
	logger    zerolog.Logger
}

func NewBackupJobService(db DB, scheduler Recalculator, logger zerolog.Logger) *BackupJobService {
	return &BackupJobService{
		db:        db,
		scheduler: scheduler,
		logger:    logger.With().Str("component", "backup_jobs").Logger(),
	}
}

// CreateJob validates and persists a job, then asks the scheduler for its
// next run. A failed recalculation does not undo the insert.
func (s *BackupJobService) CreateJob(ctx context.Context, cfg JobConfig) (*model.BackupJob, error) {
	if err := validateStruct(cfg); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &model.BackupJob{
		ID:                uuid.NewString(),
		TenantID:          cfg.TenantID,
		JobName:           cfg.JobName,
		ScheduleType:      cfg.ScheduleType,
		ScheduleTime:      cfg.ScheduleTime,
		ScheduleDay:       cfg.ScheduleDay,
		ScheduleDayOfWeek: cfg.ScheduleDayOfWeek,
		BackupType:        cfg.BackupType,
		RetentionDays:     model.DefaultRetentionDays,
		Enabled:           true,
		CreatedBy:         cfg.CreatedBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if cfg.RetentionDays != nil {
		job.RetentionDays = *cfg.RetentionDays
	}
	if cfg.Enabled != nil {
		job.Enabled = *cfg.Enabled
	}
	job.ClearSchedule()

	_, err := s.db.Exec(ctx,
		`INSERT INTO backup_jobs (id, tenant_id, job_name, schedule_type, schedule_time, schedule_day, schedule_day_of_week,
		 backup_type, retention_days, enabled, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		job.ID, job.TenantID, job.JobName, job.ScheduleType, job.ScheduleTime, job.ScheduleDay,
		job.ScheduleDayOfWeek, job.BackupType, job.RetentionDays, job.Enabled, job.CreatedBy,
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return nil, storeErr("insert backup job", err)
	}

	s.logger.Info().Str("job_id", job.ID).Str("schedule_type", job.ScheduleType).Msg("backup job created")

	return s.refreshAfterSchedule(ctx, job), nil
}

func (s *BackupJobService) GetJob(ctx context.Context, id string) (*model.BackupJob, error) {
	job, err := scanJob(s.db.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM backup_jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "backup job", ID: id}
		}
		return nil, storeErr("get backup job "+id, err)
	}
	return job, nil
}

// UpdateJob merges the non-nil fields of upd into the stored job. Changes to
// the schedule type, time, days or enabled flag trigger a recalculation.
func (s *BackupJobService) UpdateJob(ctx context.Context, id string, upd JobUpdate) (*model.BackupJob, error) {
	if err := validateStruct(upd); err != nil {
		return nil, err
	}

	job, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	upd.apply(job)
	job.ClearSchedule()
	job.UpdatedAt = time.Now().UTC()

	tag, err := s.db.Exec(ctx,
		`UPDATE backup_jobs SET job_name = $1, schedule_type = $2, schedule_time = $3, schedule_day = $4,
		 schedule_day_of_week = $5, backup_type = $6, retention_days = $7, enabled = $8,
		 next_run_at = CASE WHEN $2 = 'manual' THEN NULL ELSE next_run_at END, updated_at = $9
		 WHERE id = $10`,
		job.JobName, job.ScheduleType, job.ScheduleTime, job.ScheduleDay, job.ScheduleDayOfWeek,
		job.BackupType, job.RetentionDays, job.Enabled, job.UpdatedAt, id,
	)
	if err != nil {
		return nil, storeErr("update backup job "+id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, &NotFoundError{Resource: "backup job", ID: id}
	}

	if !upd.touchesSchedule() {
		return job, nil
	}
	return s.refreshAfterSchedule(ctx, job), nil
}

// DeleteJob removes the job row. Executions of the job are kept for audit.
func (s *BackupJobService) DeleteJob(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM backup_jobs WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete backup job "+id, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Resource: "backup job", ID: id}
	}
	s.logger.Info().Str("job_id", id).Msg("backup job deleted")
	return nil
}

// ListJobs returns jobs newest first, scoped to tenantID when non-empty.
func (s *BackupJobService) ListJobs(ctx context.Context, tenantID string) ([]model.BackupJob, error) {
	query := `SELECT ` + jobColumns + ` FROM backup_jobs`
	var args []any
	if tenantID != "" {
		query += ` WHERE tenant_id = $1`
		args = append(args, tenantID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list backup jobs", err)
	}
	defer rows.Close()

	jobs := []model.BackupJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, storeErr("scan backup job", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate backup jobs", err)
	}
	return jobs, nil
}

// refreshAfterSchedule recalculates next_run_at and re-reads the job so the
// caller sees the new value. On any failure the in-memory job is returned
// and next_run_at may be stale.
func (s *BackupJobService) refreshAfterSchedule(ctx context.Context, job *model.BackupJob) *model.BackupJob {
	if err := s.scheduler.Recalculate(ctx, job.ID); err != nil {
		metrics.ScheduleRecalculationFailures.Inc()
		s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("schedule recalculation failed, next_run_at may be stale")
		return job
	}

	refreshed, err := s.GetJob(ctx, job.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("re-read after schedule recalculation failed")
		return job
	}
	return refreshed
}
