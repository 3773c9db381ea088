package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/Presence/internal/domain"
)

const defaultJobsLimit = 50

// ListJobs возвращает список заданий.
// GET /api/v1/jobs?status=pending&limit=50
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	var status domain.JobStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status = domain.JobStatus(statusStr)
		switch status {
		case domain.JobStatusPending, domain.JobStatusProcessing,
			domain.JobStatusCompleted, domain.JobStatusFailed:
		default:
			BadRequest(w, "invalid status")
			return
		}
	}

	limit := defaultJobsLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			BadRequest(w, "invalid limit")
			return
		}
		limit = parsed
	}

	jobs, err := h.jobs.List(r.Context(), status, limit)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]JobResponse, len(jobs))
	for i := range jobs {
		result[i] = JobFromDomain(&jobs[i])
	}

	List(w, result, len(result))
}

// GetJob возвращает задание по ID.
// GET /api/v1/jobs/{id}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid job id")
		return
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "job not found") {
		return
	}

	Success(w, JobFromDomain(job))
}
