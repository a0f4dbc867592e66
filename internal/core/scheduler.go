package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/edvin/backupd/internal/model"
)

// Recalculator refreshes next_run_at for a job.
type Recalculator interface {
	Recalculate(ctx context.Context, jobID string) error
}

// RPCRecalculator delegates to the schedule_next_backup store procedure.
type RPCRecalculator struct {
	db DB
}

func NewRPCRecalculator(db DB) *RPCRecalculator {
	return &RPCRecalculator{db: db}
}

func (r *RPCRecalculator) Recalculate(ctx context.Context, jobID string) error {
	if _, err := r.db.Exec(ctx, `SELECT schedule_next_backup($1)`, jobID); err != nil {
		return fmt.Errorf("schedule_next_backup %s: %w", jobID, err)
	}
	return nil
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CronRecalculator computes next_run_at in-process and writes it back.
// Manual and disabled jobs get a null next run.
type CronRecalculator struct {
	db  DB
	loc *time.Location
	now func() time.Time
}

func NewCronRecalculator(db DB, loc *time.Location) *CronRecalculator {
	if loc == nil {
		loc = time.UTC
	}
	return &CronRecalculator{db: db, loc: loc, now: time.Now}
}

func (r *CronRecalculator) Recalculate(ctx context.Context, jobID string) error {
	job, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM backup_jobs WHERE id = $1`, jobID))
	if err != nil {
		return fmt.Errorf("load job %s for scheduling: %w", jobID, err)
	}

	var next *time.Time
	if job.Enabled && !job.IsManual() {
		next, err = NextRun(job, r.now().In(r.loc))
		if err != nil {
			return err
		}
	}

	if _, err := r.db.Exec(ctx, `UPDATE backup_jobs SET next_run_at = $1 WHERE id = $2`, next, jobID); err != nil {
		return fmt.Errorf("update next_run_at for %s: %w", jobID, err)
	}
	return nil
}

// CronSpec renders the job's schedule as a six-field cron expression
// (seconds first). Missing times default to midnight, weekly jobs to
// Sunday and monthly jobs to the first of the month.
func CronSpec(job *model.BackupJob) (string, error) {
	hour, minute, second := 0, 0, 0
	if job.ScheduleTime != nil && *job.ScheduleTime != "" {
		var err error
		hour, minute, second, err = parseScheduleTime(*job.ScheduleTime)
		if err != nil {
			return "", err
		}
	}

	switch job.ScheduleType {
	case model.ScheduleDaily:
		return fmt.Sprintf("%d %d %d * * *", second, minute, hour), nil
	case model.ScheduleWeekly:
		dow := 0
		if job.ScheduleDayOfWeek != nil {
			dow = *job.ScheduleDayOfWeek
		}
		return fmt.Sprintf("%d %d %d * * %d", second, minute, hour, dow), nil
	case model.ScheduleMonthly:
		dom := 1
		if job.ScheduleDay != nil {
			dom = *job.ScheduleDay
		}
		return fmt.Sprintf("%d %d %d %d * *", second, minute, hour, dom), nil
	default:
		return "", fmt.Errorf("schedule type %q has no cron form", job.ScheduleType)
	}
}

// NextRun returns the first scheduled run strictly after the given time, or
// nil for manual jobs.
func NextRun(job *model.BackupJob, after time.Time) (*time.Time, error) {
	if job.IsManual() {
		return nil, nil
	}
	spec, err := CronSpec(job)
	if err != nil {
		return nil, err
	}
	sched, err := cronParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron spec %q: %w", spec, err)
	}
	next := sched.Next(after)
	if next.IsZero() {
		return nil, nil
	}
	return &next, nil
}

func parseScheduleTime(s string) (int, int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("invalid schedule time %q", s)
	}
	vals := make([]int, 3)
	limits := []int{23, 59, 59}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, 0, 0, fmt.Errorf("invalid schedule time %q", s)
		}
		vals[i] = n
	}
	return vals[0], vals[1], vals[2], nil
}
