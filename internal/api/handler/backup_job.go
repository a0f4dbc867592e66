package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/backupd/internal/api/request"
	"github.com/edvin/backupd/internal/api/response"
	"github.com/edvin/backupd/internal/core"
)

type BackupJob struct {
	svc  *core.BackupJobService
	exec *core.BackupExecutionService
}

func NewBackupJob(svc *core.BackupJobService, exec *core.BackupExecutionService) *BackupJob {
	return &BackupJob{svc: svc, exec: exec}
}

func (h *BackupJob) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.ListJobs(r.Context(), r.URL.Query().Get("tenant_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteList(w, http.StatusOK, jobs, len(jobs))
}

func (h *BackupJob) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBackupJob
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.svc.CreateJob(r.Context(), core.JobConfig{
		TenantID:          req.TenantID,
		JobName:           req.JobName,
		ScheduleType:      req.ScheduleType,
		ScheduleTime:      req.ScheduleTime,
		ScheduleDay:       req.ScheduleDay,
		ScheduleDayOfWeek: req.ScheduleDayOfWeek,
		BackupType:        req.BackupType,
		RetentionDays:     req.RetentionDays,
		Enabled:           req.Enabled,
		CreatedBy:         req.CreatedBy,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, job)
}

func (h *BackupJob) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.svc.GetJob(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, job)
}

func (h *BackupJob) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateBackupJob
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.svc.UpdateJob(r.Context(), id, core.JobUpdate{
		JobName:           req.JobName,
		ScheduleType:      req.ScheduleType,
		ScheduleTime:      req.ScheduleTime,
		ScheduleDay:       req.ScheduleDay,
		ScheduleDayOfWeek: req.ScheduleDayOfWeek,
		BackupType:        req.BackupType,
		RetentionDays:     req.RetentionDays,
		Enabled:           req.Enabled,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, job)
}

func (h *BackupJob) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.DeleteJob(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Execute runs a backup of the job now and returns the recorded execution.
func (h *BackupJob) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// An empty body means no options.
	var req request.ExecuteBackup
	if err := request.Decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	exec, err := h.exec.ExecuteBackup(r.Context(), id, core.ExecuteOptions{
		BackupType: req.BackupType,
		Tables:     req.Tables,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, exec)
}
