package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/backupd/internal/api/response"
	"github.com/edvin/backupd/internal/core"
)

// writeServiceError maps a core error to its HTTP status.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *core.ValidationError
		notFound   *core.NotFoundError
		execution  *core.ExecutionError
		conflict   *core.ConflictError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &conflict):
		status = http.StatusConflict
	case errors.As(err, &execution):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("request failed")
	}
	response.WriteError(w, status, err.Error())
}
