package handler

import (
	"net/http"

	"github.com/edvin/backupd/internal/api/request"
	"github.com/edvin/backupd/internal/api/response"
	"github.com/edvin/backupd/internal/core"
)

type Restore struct {
	svc *core.RestoreService
}

func NewRestore(svc *core.RestoreService) *Restore {
	return &Restore{svc: svc}
}

func (h *Restore) List(w http.ResponseWriter, r *http.Request) {
	ops, err := h.svc.GetRestoreOperations(r.Context(), request.ParseLimit(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteList(w, http.StatusOK, ops, len(ops))
}

func (h *Restore) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRestoreOperation
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	op, err := h.svc.CreateRestoreOperation(r.Context(), core.RestoreRequest{
		ExecutionID:  req.BackupExecutionID,
		RestoreType:  req.RestoreType,
		TargetTables: req.TargetTables,
		RestoredBy:   req.RestoredBy,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, op)
}
