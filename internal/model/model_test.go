package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestBackupJob_ClearSchedule(t *testing.T) {
	next := time.Now()
	job := BackupJob{
		ScheduleType:      ScheduleManual,
		ScheduleTime:      strPtr("03:00"),
		ScheduleDay:       intPtr(5),
		ScheduleDayOfWeek: intPtr(2),
		NextRunAt:         &next,
	}

	job.ClearSchedule()

	assert.True(t, job.IsManual())
	assert.Nil(t, job.ScheduleTime)
	assert.Nil(t, job.ScheduleDay)
	assert.Nil(t, job.ScheduleDayOfWeek)
	assert.Nil(t, job.NextRunAt)
}

func TestBackupJob_ClearSchedule_KeepsScheduledJobs(t *testing.T) {
	next := time.Now()
	job := BackupJob{ScheduleType: ScheduleWeekly, ScheduleTime: strPtr("03:00"), ScheduleDayOfWeek: intPtr(2), NextRunAt: &next}

	job.ClearSchedule()

	assert.False(t, job.IsManual())
	assert.Equal(t, "03:00", *job.ScheduleTime)
	assert.Equal(t, 2, *job.ScheduleDayOfWeek)
	assert.NotNil(t, job.NextRunAt)
}

func TestBackupExecution_HasArtifact(t *testing.T) {
	size := int64(10)
	zero := int64(0)

	assert.True(t, (&BackupExecution{FilePath: strPtr("/b/x.gz"), FileSizeBytes: &size}).HasArtifact())
	assert.False(t, (&BackupExecution{FilePath: strPtr("/b/x.gz"), FileSizeBytes: &zero}).HasArtifact())
	assert.False(t, (&BackupExecution{FilePath: strPtr("/b/x.gz")}).HasArtifact())
	assert.False(t, (&BackupExecution{FilePath: strPtr(""), FileSizeBytes: &size}).HasArtifact())
	assert.False(t, (&BackupExecution{FileSizeBytes: &size}).HasArtifact())
}

func TestStorageChecksum_HasChecksum(t *testing.T) {
	var nilSum *StorageChecksum
	assert.False(t, nilSum.HasChecksum())
	assert.False(t, (&StorageChecksum{}).HasChecksum())
	assert.False(t, (&StorageChecksum{ChecksumMD5: strPtr(""), ChecksumSHA256: strPtr("")}).HasChecksum())
	assert.True(t, (&StorageChecksum{ChecksumMD5: strPtr("d41d8cd9")}).HasChecksum())
	assert.True(t, (&StorageChecksum{ChecksumSHA256: strPtr("e3b0c442")}).HasChecksum())
}
