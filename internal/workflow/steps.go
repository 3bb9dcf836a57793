package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/jonathan/career-services/internal/db"
	"github.com/jonathan/career-services/internal/types"
)

func (s *Service) createInterviewOnce(ctx context.Context, id string, iv *types.InterviewRecord) error {
	_, err := s.repo.GetInterview(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return err
	}
	return s.repo.CreateInterview(ctx, id, iv)
}

func (s *Service) createApplicationOnce(ctx context.Context, id string, app *types.ApplicationRecord) error {
	_, err := s.repo.GetApplication(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return err
	}
	return s.repo.CreateApplication(ctx, id, app)
}

// superseded reports whether the application no longer follows interviewID:
// the employer closed it or linked another interview. Steps that would
// change such an application are skipped.
func (s *Service) superseded(app *types.ApplicationRecord, interviewID, step string) bool {
	if !app.Status.IsFinal() && app.InterviewID == interviewID {
		return false
	}
	s.logger.Warn("application moved on; step skipped",
		"step", step, "application_id", app.ID, "status", app.Status,
		"interview_id", interviewID, "current_interview_id", app.InterviewID)
	return true
}

func (s *Service) markApplication(ctx context.Context, applicationID, interviewID string) error {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.InterviewID == interviewID && app.HasInterviewRequest {
		return nil
	}
	if app.Status.IsFinal() {
		s.superseded(app, interviewID, stepMarkApplication)
		return nil
	}
	if app.InterviewID != "" && app.InterviewID != interviewID {
		pending, err := s.pendingInterview(ctx, app)
		if err != nil {
			return err
		}
		if pending != "" {
			s.superseded(app, interviewID, stepMarkApplication)
			return nil
		}
	}
	return s.repo.MarkInterviewRequested(ctx, applicationID, interviewID)
}

func (s *Service) confirmInterview(ctx context.Context, id string, selected time.Time) error {
	iv, err := s.repo.GetInterview(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case iv.Status == types.InterviewPending:
		return s.repo.ConfirmInterview(ctx, id, selected)
	case iv.Status == types.InterviewConfirmed && iv.ConfirmedTime != nil && iv.ConfirmedTime.Equal(selected):
		return nil
	default:
		return &TransitionError{Entity: "interview", ID: id, From: iv.Status.String(), Action: string(types.ActionAccept)}
	}
}

func (s *Service) declineInterview(ctx context.Context, id string) error {
	iv, err := s.repo.GetInterview(ctx, id)
	if err != nil {
		return err
	}
	switch iv.Status {
	case types.InterviewPending:
		return s.repo.DeclineInterview(ctx, id)
	case types.InterviewDeclined:
		return nil
	default:
		return &TransitionError{Entity: "interview", ID: id, From: iv.Status.String(), Action: string(types.ActionDecline)}
	}
}

func (s *Service) confirmApplication(ctx context.Context, id, interviewID string, selected time.Time) error {
	app, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return err
	}
	if s.superseded(app, interviewID, stepConfirmApplication) {
		return nil
	}
	if app.Status == types.ApplicationInterviewConfirmed &&
		app.ConfirmedInterviewTime != nil && app.ConfirmedInterviewTime.Equal(selected) {
		return nil
	}
	return s.repo.ConfirmApplicationInterview(ctx, id, selected)
}

func (s *Service) declineApplication(ctx context.Context, id, interviewID string) error {
	app, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return err
	}
	if s.superseded(app, interviewID, stepDeclineApplication) {
		return nil
	}
	if app.Status == types.ApplicationInterviewDeclined {
		return nil
	}
	return s.repo.DeclineApplicationInterview(ctx, id)
}

func (s *Service) setStatus(ctx context.Context, id string, status types.ApplicationStatus) error {
	app, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return err
	}
	if app.Status == status {
		return nil
	}
	return s.repo.SetApplicationStatus(ctx, id, status)
}

// syncMirror copies the application's current status onto the job.
func (s *Service) syncMirror(ctx context.Context, jobID, applicationID string) error {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if current, ok := job.MirroredStatus(applicationID); ok && current == app.Status {
		return nil
	}
	return s.repo.MirrorApplicationStatus(ctx, jobID, applicationID, app.Status)
}
