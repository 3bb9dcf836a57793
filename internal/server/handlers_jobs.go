package server

import (
	"net/http"

	"github.com/jonathan/career-services/internal/records"
	"github.com/jonathan/career-services/internal/server/middleware"
	"github.com/jonathan/career-services/internal/types"
)

// ListJobsResponse represents the response for listing jobs
type ListJobsResponse struct {
	Jobs  []types.JobRecord `json:"jobs"`
	Count int               `json:"count"`
}

// JobResponse is a job with the caller's application state
type JobResponse struct {
	Job        *types.JobRecord `json:"job"`
	HasApplied bool             `json:"hasApplied"`
}

// handleCreateJob creates a job posting owned by the calling employer. The
// workflow validates the posting.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r)

	var req types.CreateJobRequest
	if err := decodeJSON(r, &req); err != nil {
		s.actionError(w, r, "create job", err)
		return
	}

	job, err := s.workflow.CreateJob(r.Context(), identity.UserID, req)
	if err != nil {
		s.actionError(w, r, "create job", err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

// handleListJobs lists active jobs, or the caller's own jobs with ?mine=true.
// ?q= searches title, description and company; ?department= and ?type=
// match exactly.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r)
	query := r.URL.Query()
	filter := records.JobFilter{
		Search:     query.Get("q"),
		Department: query.Get("department"),
		Type:       query.Get("type"),
	}

	var (
		jobs []types.JobRecord
		err  error
	)
	if query.Get("mine") == "true" {
		if !identity.Is(types.RoleEmployer) {
			s.errorResponse(w, http.StatusForbidden, "Only employers own jobs")
			return
		}
		jobs, err = s.workflow.ListJobsByEmployer(r.Context(), identity.UserID, filter)
	} else {
		jobs, err = s.workflow.ListActiveJobs(r.Context(), filter)
	}
	if err != nil {
		s.actionError(w, r, "list jobs", err)
		return
	}

	if jobs == nil {
		jobs = []types.JobRecord{}
	}
	for i := range jobs {
		redactJob(identity, &jobs[i])
	}
	s.jsonResponse(w, http.StatusOK, ListJobsResponse{Jobs: jobs, Count: len(jobs)})
}

// handleGetJob retrieves a job by its ID
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r)
	id := r.PathValue("id")
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	job, err := s.workflow.GetJob(r.Context(), id)
	if err != nil {
		s.actionError(w, r, "get job", err)
		return
	}

	resp := JobResponse{Job: job}
	if identity.Is(types.RoleStudent) {
		resp.HasApplied, err = s.workflow.HasApplied(r.Context(), id, identity.UserID)
		if err != nil {
			s.actionError(w, r, "get job", err)
			return
		}
	}
	redactJob(identity, job)
	s.jsonResponse(w, http.StatusOK, resp)
}

// redactJob hides the applicant list and status mirror from everyone but the
// owning employer and admins.
func redactJob(identity types.Identity, job *types.JobRecord) {
	if identity.Is(types.RoleAdmin) || job.EmployerID == identity.UserID {
		return
	}
	job.Applications = nil
	job.ApplicationStatuses = nil
}
