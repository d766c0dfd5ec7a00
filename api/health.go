package api

import (
	"net/http"
	"time"

	"task-dispatch/errors"
	"task-dispatch/logger"
)

var startTime = time.Now()

// HealthResponse provides detailed health information
type HealthResponse struct {
	Status         string   `json:"status"`
	Timestamp      string   `json:"timestamp"`
	Uptime         string   `json:"uptime"`
	JobID          string   `json:"job_id"`
	Size           int      `json:"size"`
	RegisteredJobs []string `json:"registered_jobs"`
	Version        string   `json:"version,omitempty"`
}

// NewHealthHandler returns a health check handler
func NewHealthHandler(version string, jobs JobLister, d Dispatcher, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondWithError(w, errors.NewValidationError("method not allowed"), lg)
			return
		}

		registered := []string{}
		if jobs != nil {
			registered = jobs.GetRegisteredJobs()
		}

		respondWithJSON(w, http.StatusOK, HealthResponse{
			Status:         "healthy",
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
			Uptime:         time.Since(startTime).String(),
			JobID:          d.JobID(),
			Size:           d.Size(),
			RegisteredJobs: registered,
			Version:        version,
		}, lg)
	}
}
