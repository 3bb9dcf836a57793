package workflow

import (
	"context"
	"time"

	"github.com/jonathan/career-services/internal/records"
	"github.com/jonathan/career-services/internal/types"
)

// CreateJob posts a new active job for the employer. The deadline may be
// today but not earlier.
func (s *Service) CreateJob(ctx context.Context, employerID string, req types.CreateJobRequest) (*types.JobRecord, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, invalidRequest(err)
	}
	deadline := req.Deadline.UTC()
	if deadline.Before(s.now().UTC().Truncate(24 * time.Hour)) {
		return nil, &ValidationError{Field: "deadline", Message: "cannot be in the past"}
	}

	id, err := s.repo.CreateJob(ctx, &types.JobRecord{
		EmployerID:   employerID,
		Title:        req.Title,
		CompanyName:  req.CompanyName,
		Department:   req.Department,
		Description:  req.Description,
		Requirements: req.Requirements,
		Skills:       req.Skills,
		Location:     req.Location,
		Type:         req.Type,
		Deadline:     &deadline,
		Status:       types.JobActive,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("job created", "job_id", id, "employer_id", employerID)
	return s.repo.GetJob(ctx, id)
}

// GetJob retrieves a job.
func (s *Service) GetJob(ctx context.Context, id string) (*types.JobRecord, error) {
	return s.repo.GetJob(ctx, id)
}

// ListActiveJobs returns the jobs open for applications that match filter,
// newest first. The filter's status and employer are ignored.
func (s *Service) ListActiveJobs(ctx context.Context, filter records.JobFilter) ([]types.JobRecord, error) {
	filter.Status = types.JobActive
	filter.EmployerID = ""
	return s.repo.ListJobs(ctx, filter)
}

// ListJobsByEmployer returns the employer's jobs that match filter, newest
// first.
func (s *Service) ListJobsByEmployer(ctx context.Context, employerID string, filter records.JobFilter) ([]types.JobRecord, error) {
	filter.EmployerID = employerID
	return s.repo.ListJobs(ctx, filter)
}
