package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/backupd/internal/api/request"
	"github.com/edvin/backupd/internal/api/response"
	"github.com/edvin/backupd/internal/core"
)

type BackupExecution struct {
	svc      *core.BackupExecutionService
	verifier *core.IntegrityVerifier
}

func NewBackupExecution(svc *core.BackupExecutionService, verifier *core.IntegrityVerifier) *BackupExecution {
	return &BackupExecution{svc: svc, verifier: verifier}
}

// List filters by job_id, else tenant_id, else returns all executions.
func (h *BackupExecution) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	execs, err := h.svc.GetExecutions(r.Context(), core.ExecutionFilter{
		JobID:    q.Get("job_id"),
		TenantID: q.Get("tenant_id"),
		Limit:    request.ParseLimit(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteList(w, http.StatusOK, execs, len(execs))
}

func (h *BackupExecution) Available(w http.ResponseWriter, r *http.Request) {
	execs, err := h.svc.GetAvailableBackups(r.Context(), r.URL.Query().Get("tenant_id"), request.ParseLimit(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteList(w, http.StatusOK, execs, len(execs))
}

func (h *BackupExecution) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	exec, err := h.svc.GetExecution(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, exec)
}

type verifyResult struct {
	ExecutionID string `json:"execution_id"`
	Verified    bool   `json:"verified"`
}

func (h *BackupExecution) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, verifyResult{
		ExecutionID: id,
		Verified:    h.verifier.Verify(r.Context(), id),
	})
}

func (h *BackupExecution) VerifyMany(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyExecutions
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	verdicts := h.verifier.VerifyMany(r.Context(), req.ExecutionIDs)
	results := make([]verifyResult, 0, len(req.ExecutionIDs))
	for _, id := range req.ExecutionIDs {
		results = append(results, verifyResult{ExecutionID: id, Verified: verdicts[id]})
	}
	response.WriteList(w, http.StatusOK, results, len(results))
}
