package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/career-services/internal/db"
	"github.com/jonathan/career-services/internal/records"
	"github.com/jonathan/career-services/internal/types"
)

// SubmitApplication records a student's application to an active job. A
// student may apply to a job once.
func (s *Service) SubmitApplication(ctx context.Context, jobID, userID string, req types.SubmitApplicationRequest) (*types.ApplicationRecord, error) {
	if strings.TrimSpace(req.CoverLetter) == "" {
		return nil, &ValidationError{Field: "coverLetter", Message: "is required"}
	}
	if strings.TrimSpace(req.CVID) == "" {
		return nil, &ValidationError{Field: "cvId", Message: "a CV must be selected"}
	}

	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != types.JobActive {
		return nil, &ConflictError{Message: fmt.Sprintf("job %s is not accepting applications", jobID)}
	}

	applied, err := s.HasApplied(ctx, jobID, userID)
	if err != nil {
		return nil, err
	}
	if applied {
		return nil, &ConflictError{Message: "you have already applied for this job"}
	}

	app := &types.ApplicationRecord{
		JobID:       jobID,
		JobTitle:    job.Title,
		UserID:      userID,
		UserName:    req.UserName,
		EmployerID:  job.EmployerID,
		CompanyName: job.CompanyName,
		CoverLetter: req.CoverLetter,
		CVID:        req.CVID,
		Status:      types.ApplicationPending,
	}
	c := &types.CascadeRecord{
		Kind:          types.CascadeSubmit,
		ActorID:       userID,
		ApplicationID: s.newID(),
		JobID:         jobID,
		Application:   app,
	}
	if err := s.start(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.GetApplication(ctx, c.ApplicationID)
}

// HasApplied reports whether the user has an application to the job.
func (s *Service) HasApplied(ctx context.Context, jobID, userID string) (bool, error) {
	_, err := s.repo.FindApplication(ctx, jobID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// reviewTransitions lists the employer review decisions allowed from each
// status. Accepted and rejected are final.
var reviewTransitions = map[types.ApplicationStatus][]types.ApplicationStatus{
	types.ApplicationPending:            {types.ApplicationReviewing, types.ApplicationAccepted, types.ApplicationRejected},
	types.ApplicationReviewing:          {types.ApplicationAccepted, types.ApplicationRejected},
	types.ApplicationInterviewRequested: {types.ApplicationAccepted, types.ApplicationRejected},
	types.ApplicationInterviewConfirmed: {types.ApplicationAccepted, types.ApplicationRejected},
	types.ApplicationInterviewDeclined:  {types.ApplicationReviewing, types.ApplicationRejected},
}

func isAllowedReview(from, to types.ApplicationStatus) bool {
	for _, allowed := range reviewTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// UpdateApplicationStatus applies an employer review decision and mirrors it
// onto the job. Only the employer that owns the application may act.
func (s *Service) UpdateApplicationStatus(ctx context.Context, applicationID, employerID string, status types.ApplicationStatus) (*types.ApplicationRecord, error) {
	switch status {
	case types.ApplicationReviewing, types.ApplicationAccepted, types.ApplicationRejected:
	default:
		return nil, &ValidationError{Field: "status", Message: "must be reviewing, accepted, or rejected"}
	}

	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.EmployerID != employerID {
		return nil, &ForbiddenError{Message: "application belongs to another employer"}
	}
	if app.Status == status {
		return app, nil
	}
	if app.Status.IsFinal() || !isAllowedReview(app.Status, status) {
		return nil, &TransitionError{Entity: "application", ID: applicationID, From: app.Status.String(), Action: "move to " + status.String()}
	}

	c := &types.CascadeRecord{
		Kind:          types.CascadeReview,
		ActorID:       employerID,
		ApplicationID: applicationID,
		JobID:         app.JobID,
		TargetStatus:  status,
	}
	if err := s.start(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.GetApplication(ctx, applicationID)
}

// GetApplication retrieves an application.
func (s *Service) GetApplication(ctx context.Context, id string) (*types.ApplicationRecord, error) {
	return s.repo.GetApplication(ctx, id)
}

// ListApplicationsByStudent returns the student's applications, most recently
// updated first.
func (s *Service) ListApplicationsByStudent(ctx context.Context, userID string) ([]types.ApplicationRecord, error) {
	return s.repo.ListApplications(ctx, records.ApplicationFilter{UserID: userID})
}

// ListApplicationsByEmployer returns applications to the employer's jobs,
// most recently updated first.
func (s *Service) ListApplicationsByEmployer(ctx context.Context, employerID string) ([]types.ApplicationRecord, error) {
	return s.repo.ListApplications(ctx, records.ApplicationFilter{EmployerID: employerID})
}
