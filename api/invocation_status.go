package api

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"task-dispatch/errors"
	"task-dispatch/logger"
	"task-dispatch/tasks/store"
)

// NewInvocationStatusHandler serves GET /invocations/{index}.
func NewInvocationStatusHandler(d Dispatcher, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondWithError(w, errors.NewValidationError("method not allowed"), lg)
			return
		}

		raw := r.PathValue("index")
		index, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, errors.NewValidationError("index must be an integer", map[string]any{
				"index": raw,
			}), lg)
			return
		}

		if index < 0 || index >= d.Size() {
			respondWithError(w, errors.NewOutOfRangeError(index, d.Size()), lg)
			return
		}

		inv, err := d.Invocation(r.Context(), index)
		if stderrors.Is(err, store.ErrNotFound) {
			respondWithError(w, errors.NewNotFoundError("index has not been invoked", map[string]any{
				"job_id": d.JobID(),
				"index":  index,
			}), lg)
			return
		}
		if err != nil {
			respondWithError(w, toTaskError(err), lg)
			return
		}

		respondWithJSON(w, http.StatusOK, inv, lg)
	}
}
