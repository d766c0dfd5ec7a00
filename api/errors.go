package api

import (
	"encoding/json"
	"net/http"

	"task-dispatch/errors"
	"task-dispatch/logger"
)

// errorResponse defines the JSON structure for error responses
type errorResponse struct {
	Error   string         `json:"error"`
	Type    string         `json:"type,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// toTaskError keeps structured errors and wraps anything else as internal.
func toTaskError(err error) *errors.TaskError {
	if taskErr, ok := errors.IsTaskError(err); ok {
		return taskErr
	}
	return errors.NewInternalError(err.Error())
}

// respondWithError sends a structured error response
func respondWithError(w http.ResponseWriter, taskErr *errors.TaskError, lg *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(taskErr.Code)

	errorResp := errorResponse{
		Error:   taskErr.Message,
		Type:    string(taskErr.Type),
		Details: taskErr.Details,
	}

	lg.Error("HTTP error response", map[string]any{
		"error_type":    string(taskErr.Type),
		"error_message": taskErr.Message,
		"status_code":   taskErr.Code,
		"error_details": taskErr.Details,
	})

	if err := json.NewEncoder(w).Encode(errorResp); err != nil {
		// headers are already out; nothing left to send
		lg.Error("failed to encode error response", map[string]any{
			"error": err.Error(),
		})
	}
}

func respondWithJSON(w http.ResponseWriter, status int, body any, lg *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		lg.Error("failed to encode response", map[string]any{
			"error": err.Error(),
		})
	}
}
