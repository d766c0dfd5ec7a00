package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"task-dispatch/errors"
	"task-dispatch/logger"
	"task-dispatch/tasks"
)

const maxBodySize = 1024 // an index request is a single small object

type invokeRequest struct {
	Index *int `json:"index"`
}

// InvokeResponse is returned after an index ran successfully.
type InvokeResponse struct {
	JobID  string `json:"job_id"`
	Index  int    `json:"index"`
	Status string `json:"status"`
}

// NewInvokeHandler returns a handler that runs one index of the dispatched job
// per POST. The request blocks until the task has finished.
func NewInvokeHandler(d Dispatcher, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondWithError(w, errors.NewValidationError("method not allowed"), lg)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

		var req invokeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if strings.Contains(err.Error(), "http: request body too large") {
				respondWithError(w, errors.NewValidationError("request body too large", map[string]any{
					"max_size_bytes": maxBodySize,
				}), lg)
				return
			}

			respondWithError(w, errors.NewValidationError("invalid JSON payload", map[string]any{
				"error": err.Error(),
			}), lg)
			return
		}

		if req.Index == nil {
			respondWithError(w, errors.NewValidationError("index is required"), lg)
			return
		}

		if err := d.Invoke(r.Context(), *req.Index); err != nil {
			respondWithError(w, toTaskError(err), lg)
			return
		}

		respondWithJSON(w, http.StatusOK, InvokeResponse{
			JobID:  d.JobID(),
			Index:  *req.Index,
			Status: tasks.StatusDone.String(),
		}, lg)
	}
}
